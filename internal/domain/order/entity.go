package order

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"     // Awaiting provider decision
	StatusAccepted   OrderStatus = "accepted"    // Provider accepted, shipment created
	StatusRejected   OrderStatus = "rejected"    // Provider rejected with a reason
	StatusInProgress OrderStatus = "in_progress" // Linked shipment underway
	StatusCompleted  OrderStatus = "completed"   // Linked shipment delivered
	StatusCancelled  OrderStatus = "cancelled"   // Withdrawn before a decision
)

// Order is a customer's transport request awaiting a provider decision.
// Exactly one of accept/reject is ever applied; the accepting transition
// creates the shipment that carries the operational lifecycle.
type Order struct {
	ID uuid.UUID

	// Parties
	CustomerID uuid.UUID
	ProviderID uuid.UUID

	// Set only when the order is accepted
	ShipmentID *uuid.UUID

	Status OrderStatus

	// Shipping details copied onto the shipment on acceptance
	GoodsDescription    string
	PickupAddress       string
	DeliveryAddress     string
	EstimatedDeliveryAt *time.Time

	// Tracking requirements forwarded to the ingestion service
	RequiresTemperatureTracking bool
	TempMin                     *float64
	TempMax                     *float64
	RequiresHumidityTracking    bool
	HumidityMin                 *float64
	HumidityMax                 *float64
	RequiresLocationTracking    bool

	// Decision outcome
	RejectionReason *string
	ProcessedAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTerminal reports whether no further transition is possible.
func (o *Order) IsTerminal() bool {
	_, ok := validTransitions[o.Status]
	return ok && len(validTransitions[o.Status]) == 0
}
