package shipment

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentStatus represents the status of a shipment
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"    // Created from an accepted order
	StatusAssigned  ShipmentStatus = "assigned"   // Provider assigned a shipper
	StatusInTransit ShipmentStatus = "in_transit" // Shipper started transit with a device
	StatusCompleted ShipmentStatus = "completed"  // Delivered
	StatusCancelled ShipmentStatus = "cancelled"  // Cancelled by customer or provider
	StatusFailed    ShipmentStatus = "failed"     // Shipper reported failure in transit
)

// Shipment is the operational transport job created when a provider accepts
// an order. Shipper and device are assigned in sequence: shipper first, then
// a device owned by the same provider.
type Shipment struct {
	ID uuid.UUID

	// Parties
	CustomerID uuid.UUID
	ProviderID uuid.UUID
	ShipperID  *uuid.UUID

	// Originating order
	OrderID uuid.UUID

	// Device assignment
	DeviceID *uuid.UUID

	Status ShipmentStatus

	// Goods information
	GoodsDescription string

	// Addresses
	PickupAddress   string
	DeliveryAddress string

	// Timing
	EstimatedDeliveryAt *time.Time
	ActualDeliveryAt    *time.Time

	// Failure/cancellation context
	FailureReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the shipment still holds operational resources.
func (s *Shipment) Active() bool {
	switch s.Status {
	case StatusPending, StatusAssigned, StatusInTransit:
		return true
	}
	return false
}
