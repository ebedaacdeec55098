package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargo-tracker/internal/usecase/shipment"
	"cargo-tracker/pkg/utils"
)

type ShipmentHandler struct {
	service *shipment.Service
}

func NewShipmentHandler(service *shipment.Service) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

func (h *ShipmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	shipments := router.Group("/shipments")
	{
		shipments.GET("", h.ListShipments)
		shipments.GET("/statistics", h.GetStatistics)
		shipments.GET("/:id", h.GetShipment)
		shipments.POST("/:id/cancel", h.CancelShipment)
		shipments.PUT("/:id", h.UpdateShipment)
	}
}

func (h *ShipmentHandler) RegisterProviderRoutes(router *gin.RouterGroup) {
	shipments := router.Group("/shipments")
	{
		shipments.POST("/:id/assign-shipper", h.AssignShipper)
		shipments.POST("/:id/assign-device", h.AssignDevice)
		shipments.POST("/:id/start-transit", h.StartTransit)
	}
}

func (h *ShipmentHandler) RegisterShipperRoutes(router *gin.RouterGroup) {
	shipments := router.Group("/shipments")
	{
		shipments.POST("/:id/complete", h.CompleteShipment)
		shipments.POST("/:id/fail", h.FailShipment)
	}
}

func (h *ShipmentHandler) GetShipment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	shipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), actor, shipmentID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment retrieved successfully", result)
}

func (h *ShipmentHandler) ListShipments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var filter shipment.ShipmentFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	result, err := h.service.List(c.Request.Context(), actor, &filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipments retrieved successfully", result)
}

func (h *ShipmentHandler) UpdateShipment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	shipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req shipment.UpdateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Update(c.Request.Context(), actor, shipmentID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment updated successfully", result)
}

func (h *ShipmentHandler) AssignShipper(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req shipment.AssignShipperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.AssignShipper(c.Request.Context(), providerID, shipmentID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipper assigned successfully", result)
}

func (h *ShipmentHandler) AssignDevice(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req shipment.AssignDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.AssignDevice(c.Request.Context(), providerID, shipmentID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device assigned successfully", result)
}

func (h *ShipmentHandler) StartTransit(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.StartTransit(c.Request.Context(), providerID, shipmentID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Transit started successfully", result)
}

func (h *ShipmentHandler) CompleteShipment(c *gin.Context) {
	shipperID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Body is optional; an empty one means delivered now.
	var req shipment.CompleteShipmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	result, err := h.service.Complete(c.Request.Context(), shipperID, shipmentID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment completed successfully", result)
}

func (h *ShipmentHandler) FailShipment(c *gin.Context) {
	shipperID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req shipment.FailShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Fail(c.Request.Context(), shipperID, shipmentID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment marked as failed", result)
}

func (h *ShipmentHandler) CancelShipment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	shipmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), actor, shipmentID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Shipment cancelled successfully", result)
}

func (h *ShipmentHandler) GetStatistics(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := h.service.GetStatistics(c.Request.Context(), actor)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved successfully", result)
}
