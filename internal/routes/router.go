package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargo-tracker/internal/config"
	"cargo-tracker/internal/delivery/http/handler"
	"cargo-tracker/internal/events"
	"cargo-tracker/internal/infrastructure/cache"
	"cargo-tracker/internal/infrastructure/database/postgres"
	"cargo-tracker/internal/logger"
	"cargo-tracker/internal/middleware"
	"cargo-tracker/internal/usecase/device"
	"cargo-tracker/internal/usecase/order"
	"cargo-tracker/internal/usecase/shipment"
	"cargo-tracker/internal/usecase/user"
)

// SetupRoutes wires repositories, services and handlers onto a gin engine.
// The telemetry cache and the event publisher are built in main and shared
// with the MQTT bridge.
func SetupRoutes(cfg *config.Config, db *postgres.DB, telemetry *cache.TelemetryCache, publisher events.Publisher) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(10 << 20))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	userRepository := postgres.NewUserRepository(db)
	refreshTokenRepository := postgres.NewRefreshTokenRepository(db)
	orderRepository := postgres.NewOrderRepository(db)
	shipmentRepository := postgres.NewShipmentRepository(db)
	deviceRepository := postgres.NewDeviceRepository(db)

	userService := user.NewService(userRepository, refreshTokenRepository, cfg)
	orderService := order.NewService(orderRepository, userRepository)
	shipmentService := shipment.NewService(shipmentRepository, userRepository, deviceRepository, publisher)
	deviceService := device.NewService(deviceRepository, shipmentRepository, telemetry, publisher)

	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	orderHandler := handler.NewOrderHandler(orderService)
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	deviceHandler := handler.NewDeviceHandler(deviceService)

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			authHandler.RegisterRoutes(protected)
			orderHandler.RegisterRoutes(protected)
			shipmentHandler.RegisterRoutes(protected)
			deviceHandler.RegisterRoutes(protected)

			customer := protected.Group("")
			customer.Use(middleware.CustomerOnly())
			{
				orderHandler.RegisterCustomerRoutes(customer)
			}

			provider := protected.Group("")
			provider.Use(middleware.ProviderOnly())
			{
				orderHandler.RegisterProviderRoutes(provider)
				shipmentHandler.RegisterProviderRoutes(provider)
				deviceHandler.RegisterProviderRoutes(provider)
			}

			shipper := protected.Group("")
			shipper.Use(middleware.ShipperOnly())
			{
				shipmentHandler.RegisterShipperRoutes(shipper)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				userHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	logger.Info("All routes initialized")
	return router
}
