package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargo-tracker/internal/usecase/order"
	"cargo-tracker/pkg/utils"
)

type OrderHandler struct {
	service *order.Service
}

func NewOrderHandler(service *order.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes mounts the read endpoints; the access gate inside the
// service scopes results to the caller.
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
	}
}

func (h *OrderHandler) RegisterCustomerRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
	}
}

func (h *OrderHandler) RegisterProviderRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	{
		orders.POST("/:id/accept", h.AcceptOrder)
		orders.POST("/:id/reject", h.RejectOrder)
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	customerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Create(c.Request.Context(), customerID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Order created successfully", result)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), actor, orderID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Order retrieved successfully", result)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var filter order.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	result, err := h.service.List(c.Request.Context(), actor, &filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", result)
}

func (h *OrderHandler) AcceptOrder(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Accept(c.Request.Context(), providerID, orderID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Order accepted successfully", result)
}

func (h *OrderHandler) RejectOrder(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req order.RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Reject(c.Request.Context(), providerID, orderID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Order rejected successfully", result)
}
