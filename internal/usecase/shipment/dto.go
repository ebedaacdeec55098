package shipment

import (
	"time"

	"github.com/google/uuid"

	domainShipment "cargo-tracker/internal/domain/shipment"
)

// Request DTOs

type AssignShipperRequest struct {
	ShipperID uuid.UUID `json:"shipper_id" validate:"required"`
}

type AssignDeviceRequest struct {
	DeviceID uuid.UUID `json:"device_id" validate:"required"`
}

type CompleteShipmentRequest struct {
	ActualDeliveryAt *time.Time `json:"actual_delivery_at" validate:"omitempty"`
}

type FailShipmentRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type UpdateShipmentRequest struct {
	GoodsDescription    *string    `json:"goods_description" validate:"omitempty,min=3,max=1000"`
	PickupAddress       *string    `json:"pickup_address" validate:"omitempty,min=10"`
	DeliveryAddress     *string    `json:"delivery_address" validate:"omitempty,min=10"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at" validate:"omitempty"`
}

type ShipmentFilterRequest struct {
	Status   *domainShipment.ShipmentStatus `form:"status"`
	DeviceID *uuid.UUID                     `form:"device_id"`
	OrderID  *uuid.UUID                     `form:"order_id"`

	CreatedAfter   *time.Time `form:"created_after"`
	CreatedBefore  *time.Time `form:"created_before"`
	DeliveryAfter  *time.Time `form:"delivery_after"`
	DeliveryBefore *time.Time `form:"delivery_before"`

	Search string `form:"search"`

	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=created_at updated_at estimated_delivery_at actual_delivery_at"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs

type ShipmentResponse struct {
	ID         uuid.UUID                     `json:"id"`
	OrderID    uuid.UUID                     `json:"order_id"`
	CustomerID uuid.UUID                     `json:"customer_id"`
	ProviderID uuid.UUID                     `json:"provider_id"`
	ShipperID  *uuid.UUID                    `json:"shipper_id,omitempty"`
	DeviceID   *uuid.UUID                    `json:"device_id,omitempty"`
	Status     domainShipment.ShipmentStatus `json:"status"`

	GoodsDescription string `json:"goods_description"`
	PickupAddress    string `json:"pickup_address"`
	DeliveryAddress  string `json:"delivery_address"`

	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at,omitempty"`
	ActualDeliveryAt    *time.Time `json:"actual_delivery_at,omitempty"`
	FailureReason       *string    `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ShipmentListResponse struct {
	Shipments  []ShipmentResponse `json:"shipments"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type StatisticsResponse struct {
	TotalShipments  int            `json:"total_shipments"`
	ActiveShipments int            `json:"active_shipments"`
	CompletedToday  int            `json:"completed_today"`
	ByStatus        map[string]int `json:"by_status"`
}

func ToShipmentResponse(s *domainShipment.Shipment) *ShipmentResponse {
	return &ShipmentResponse{
		ID:                  s.ID,
		OrderID:             s.OrderID,
		CustomerID:          s.CustomerID,
		ProviderID:          s.ProviderID,
		ShipperID:           s.ShipperID,
		DeviceID:            s.DeviceID,
		Status:              s.Status,
		GoodsDescription:    s.GoodsDescription,
		PickupAddress:       s.PickupAddress,
		DeliveryAddress:     s.DeliveryAddress,
		EstimatedDeliveryAt: s.EstimatedDeliveryAt,
		ActualDeliveryAt:    s.ActualDeliveryAt,
		FailureReason:       s.FailureReason,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func ToShipmentListResponse(shipments []*domainShipment.Shipment, total int64, page, pageSize int) *ShipmentListResponse {
	items := make([]ShipmentResponse, len(shipments))
	for i, s := range shipments {
		items[i] = *ToShipmentResponse(s)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &ShipmentListResponse{
		Shipments:  items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
