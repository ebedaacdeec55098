package order

import (
	"time"

	"github.com/google/uuid"

	domainOrder "cargo-tracker/internal/domain/order"
)

// Request DTOs

type CreateOrderRequest struct {
	ProviderID          uuid.UUID  `json:"provider_id" validate:"required"`
	GoodsDescription    string     `json:"goods_description" validate:"required,min=3,max=1000"`
	PickupAddress       string     `json:"pickup_address" validate:"required,min=10"`
	DeliveryAddress     string     `json:"delivery_address" validate:"required,min=10"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at" validate:"omitempty"`

	RequiresTemperatureTracking bool     `json:"requires_temperature_tracking"`
	TempMin                     *float64 `json:"temp_min" validate:"omitempty,min=-50,max=100"`
	TempMax                     *float64 `json:"temp_max" validate:"omitempty,min=-50,max=100"`
	RequiresHumidityTracking    bool     `json:"requires_humidity_tracking"`
	HumidityMin                 *float64 `json:"humidity_min" validate:"omitempty,min=0,max=100"`
	HumidityMax                 *float64 `json:"humidity_max" validate:"omitempty,min=0,max=100"`
	RequiresLocationTracking    bool     `json:"requires_location_tracking"`
}

type RejectOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type OrderFilterRequest struct {
	Status        *domainOrder.OrderStatus `form:"status"`
	CreatedAfter  *time.Time               `form:"created_after"`
	CreatedBefore *time.Time               `form:"created_before"`
	Search        string                   `form:"search"`

	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=created_at updated_at estimated_delivery_at"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs

type OrderResponse struct {
	ID         uuid.UUID               `json:"id"`
	CustomerID uuid.UUID               `json:"customer_id"`
	ProviderID uuid.UUID               `json:"provider_id"`
	ShipmentID *uuid.UUID              `json:"shipment_id,omitempty"`
	Status     domainOrder.OrderStatus `json:"status"`

	GoodsDescription    string     `json:"goods_description"`
	PickupAddress       string     `json:"pickup_address"`
	DeliveryAddress     string     `json:"delivery_address"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at,omitempty"`

	RequiresTemperatureTracking bool     `json:"requires_temperature_tracking"`
	TempMin                     *float64 `json:"temp_min,omitempty"`
	TempMax                     *float64 `json:"temp_max,omitempty"`
	RequiresHumidityTracking    bool     `json:"requires_humidity_tracking"`
	HumidityMin                 *float64 `json:"humidity_min,omitempty"`
	HumidityMax                 *float64 `json:"humidity_max,omitempty"`
	RequiresLocationTracking    bool     `json:"requires_location_tracking"`

	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

func ToOrderResponse(o *domainOrder.Order) *OrderResponse {
	return &OrderResponse{
		ID:                          o.ID,
		CustomerID:                  o.CustomerID,
		ProviderID:                  o.ProviderID,
		ShipmentID:                  o.ShipmentID,
		Status:                      o.Status,
		GoodsDescription:            o.GoodsDescription,
		PickupAddress:               o.PickupAddress,
		DeliveryAddress:             o.DeliveryAddress,
		EstimatedDeliveryAt:         o.EstimatedDeliveryAt,
		RequiresTemperatureTracking: o.RequiresTemperatureTracking,
		TempMin:                     o.TempMin,
		TempMax:                     o.TempMax,
		RequiresHumidityTracking:    o.RequiresHumidityTracking,
		HumidityMin:                 o.HumidityMin,
		HumidityMax:                 o.HumidityMax,
		RequiresLocationTracking:    o.RequiresLocationTracking,
		RejectionReason:             o.RejectionReason,
		ProcessedAt:                 o.ProcessedAt,
		CreatedAt:                   o.CreatedAt,
		UpdatedAt:                   o.UpdatedAt,
	}
}

func ToOrderListResponse(orders []*domainOrder.Order, total int64, page, pageSize int) *OrderListResponse {
	items := make([]OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = *ToOrderResponse(o)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OrderListResponse{
		Orders:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
