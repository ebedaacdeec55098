package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cargo-tracker/internal/config"
	"cargo-tracker/internal/events"
	"cargo-tracker/internal/infrastructure/cache"
	"cargo-tracker/internal/infrastructure/database/postgres"
	"cargo-tracker/internal/logger"
	"cargo-tracker/internal/routes"
	"cargo-tracker/internal/usecase/user"
	"cargo-tracker/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("JWT secret is missing. Please set JWT_SECRET environment variable.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	telemetry := cache.NewTelemetryCache(&cfg.Redis)
	defer telemetry.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := telemetry.Ping(pingCtx); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	pingCancel()

	mqttClient := mqtt.NewClient(&mqtt.Config{
		Broker:               cfg.MQTT.Broker,
		ClientID:             cfg.MQTT.ClientID,
		Username:             cfg.MQTT.Username,
		Password:             cfg.MQTT.Password,
		CleanSession:         true,
		KeepAlive:            cfg.MQTT.KeepAlive,
		ConnectTimeout:       cfg.MQTT.ConnectTimeout,
		AutoReconnect:        true,
		MaxReconnectInterval: cfg.MQTT.MaxReconnectInterval,
	})
	if err := mqttClient.Connect(); err != nil {
		logger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer mqttClient.Disconnect()

	publisher := events.NewMQTTPublisher(mqttClient, &cfg.MQTT)

	deviceRepository := postgres.NewDeviceRepository(db)
	processor := events.NewProcessor(deviceRepository, telemetry, 0, 0)
	processor.Start()
	defer processor.Stop()

	consumer, err := events.NewConsumer(mqttClient, &cfg.MQTT, processor)
	if err != nil {
		logger.Fatal("Failed to create MQTT consumer", zap.Error(err))
	}
	if err := consumer.Start(); err != nil {
		logger.Fatal("Failed to start MQTT consumer", zap.Error(err))
	}
	defer consumer.Stop()

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	userService := user.NewService(
		postgres.NewUserRepository(db),
		postgres.NewRefreshTokenRepository(db),
		cfg,
	)
	go userService.StartTokenCleanupJob(cleanupCtx, time.Hour)

	router := routes.SetupRoutes(cfg, db, telemetry, publisher)

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
