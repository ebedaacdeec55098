package device

import (
	"time"

	"github.com/google/uuid"

	domainDevice "cargo-tracker/internal/domain/device"
	"cargo-tracker/internal/infrastructure/cache"
)

// Request DTOs

type RegisterDeviceRequest struct {
	HardwareUID     string  `json:"hardware_uid" validate:"required,min=3,max=100"`
	DeviceName      *string `json:"device_name" validate:"omitempty,max=100"`
	Model           *string `json:"model" validate:"omitempty,max=100"`
	FirmwareVersion *string `json:"firmware_version" validate:"omitempty,max=50"`
}

type UpdateDeviceRequest struct {
	DeviceName      *string `json:"device_name" validate:"omitempty,max=100"`
	Model           *string `json:"model" validate:"omitempty,max=100"`
	FirmwareVersion *string `json:"firmware_version" validate:"omitempty,max=50"`
}

type UpdateStatusRequest struct {
	Status     domainDevice.DeviceStatus `json:"status" validate:"required,oneof=available in_transit maintenance retired"`
	ShipmentID *uuid.UUID                `json:"shipment_id" validate:"omitempty"`
}

type DeviceFilterRequest struct {
	Status     *domainDevice.DeviceStatus `form:"status"`
	MinBattery *int                       `form:"min_battery" validate:"omitempty,min=0,max=100"`
	MaxBattery *int                       `form:"max_battery" validate:"omitempty,min=0,max=100"`
	Unbound    *bool                      `form:"unbound"`
	Search     string                     `form:"search"`

	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=created_at updated_at last_seen_at total_trips battery_level"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs

type DeviceResponse struct {
	ID                uuid.UUID                 `json:"id"`
	HardwareUID       string                    `json:"hardware_uid"`
	DeviceName        *string                   `json:"device_name,omitempty"`
	Model             *string                   `json:"model,omitempty"`
	FirmwareVersion   *string                   `json:"firmware_version,omitempty"`
	ProviderID        uuid.UUID                 `json:"provider_id"`
	CurrentShipmentID *uuid.UUID                `json:"current_shipment_id,omitempty"`
	Status            domainDevice.DeviceStatus `json:"status"`
	BatteryLevel      *int                      `json:"battery_level,omitempty"`
	TotalTrips        int                       `json:"total_trips"`
	LastSeenAt        *time.Time                `json:"last_seen_at,omitempty"`
	IsOnline          bool                      `json:"is_online"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

type DeviceListResponse struct {
	Devices    []DeviceResponse `json:"devices"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

type TelemetryResponse struct {
	DeviceID       uuid.UUID  `json:"device_id"`
	UpdateType     string     `json:"update_type"`
	BatteryLevel   *int       `json:"battery_level,omitempty"`
	SignalStrength *int       `json:"signal_strength,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	IsOnline       *bool      `json:"is_online,omitempty"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	ReceivedAt     time.Time  `json:"received_at"`
}

type StatisticsResponse struct {
	TotalDevices       int `json:"total_devices"`
	AvailableDevices   int `json:"available_devices"`
	InTransitDevices   int `json:"in_transit_devices"`
	MaintenanceDevices int `json:"maintenance_devices"`
	RetiredDevices     int `json:"retired_devices"`
	LowBatteryDevices  int `json:"low_battery_devices"`
}

func ToDeviceResponse(d *domainDevice.Device) *DeviceResponse {
	return &DeviceResponse{
		ID:                d.ID,
		HardwareUID:       d.HardwareUID,
		DeviceName:        d.DeviceName,
		Model:             d.Model,
		FirmwareVersion:   d.FirmwareVersion,
		ProviderID:        d.ProviderID,
		CurrentShipmentID: d.CurrentShipmentID,
		Status:            d.Status,
		BatteryLevel:      d.BatteryLevel,
		TotalTrips:        d.TotalTrips,
		LastSeenAt:        d.LastSeenAt,
		IsOnline:          d.IsOnline(domainDevice.DefaultOnlineThreshold),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func ToDeviceListResponse(devices []*domainDevice.Device, total int64, page, pageSize int) *DeviceListResponse {
	items := make([]DeviceResponse, len(devices))
	for i, d := range devices {
		items[i] = *ToDeviceResponse(d)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &DeviceListResponse{
		Devices:    items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func ToTelemetryResponse(s *cache.Snapshot) *TelemetryResponse {
	return &TelemetryResponse{
		DeviceID:       s.DeviceID,
		UpdateType:     s.UpdateType,
		BatteryLevel:   s.BatteryLevel,
		SignalStrength: s.SignalStrength,
		Latitude:       s.Latitude,
		Longitude:      s.Longitude,
		IsOnline:       s.IsOnline,
		LastSeenAt:     s.LastSeenAt,
		ReceivedAt:     s.ReceivedAt,
	}
}
