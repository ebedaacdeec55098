package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargo-tracker/internal/usecase/device"
	"cargo-tracker/pkg/utils"
)

type DeviceHandler struct {
	service *device.Service
}

func NewDeviceHandler(service *device.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// RegisterRoutes mounts the read endpoints. Telemetry and device detail are
// reachable by customers and shippers through a linking shipment.
func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.GET("/:id", h.GetDevice)
		devices.GET("/:id/telemetry", h.GetTelemetry)
	}
}

func (h *DeviceHandler) RegisterProviderRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.POST("", h.RegisterDevice)
		devices.GET("", h.ListDevices)
		devices.GET("/statistics", h.GetStatistics)
		devices.PUT("/:id", h.UpdateDevice)
		devices.PUT("/:id/status", h.UpdateStatus)
	}
}

func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req device.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Register(c.Request.Context(), providerID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Device registered successfully", result)
}

func (h *DeviceHandler) GetDevice(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetByID(c.Request.Context(), actor, deviceID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device retrieved successfully", result)
}

func (h *DeviceHandler) ListDevices(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var filter device.DeviceFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	result, err := h.service.List(c.Request.Context(), providerID, &filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices retrieved successfully", result)
}

func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req device.UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Update(c.Request.Context(), providerID, deviceID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device updated successfully", result)
}

func (h *DeviceHandler) UpdateStatus(c *gin.Context) {
	providerID, ok := currentUserID(c)
	if !ok {
		return
	}

	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req device.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), providerID, deviceID, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device status updated successfully", result)
}

func (h *DeviceHandler) GetTelemetry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.GetTelemetry(c.Request.Context(), actor, deviceID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Telemetry retrieved successfully", result)
}

func (h *DeviceHandler) GetStatistics(c *gin.Context) {
	result, err := h.service.GetStatistics(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved successfully", result)
}
