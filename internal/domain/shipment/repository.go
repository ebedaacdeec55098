package shipment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for shipment repository operations.
// Lifecycle mutations are conditional writes: each guards on the expected
// current status so a concurrent transition loses cleanly instead of
// overwriting. Operations touching a device row run in one transaction
// with the shipment row.
type Repository interface {
	Create(ctx context.Context, shipment *Shipment) error
	GetByID(ctx context.Context, shipmentID uuid.UUID) (*Shipment, error)
	Update(ctx context.Context, shipment *Shipment) error
	List(ctx context.Context, filter *Filter) ([]*Shipment, int64, error)
	ListByDeviceID(ctx context.Context, deviceID uuid.UUID) ([]*Shipment, error)

	// AssignShipper moves pending -> assigned, setting shipper_id.
	AssignShipper(ctx context.Context, shipmentID, shipperID uuid.UUID) error

	// AssignDevice binds an available, unbound device to an assigned
	// shipment. Both rows are updated in one transaction; returns
	// ErrDeviceConflict if the device was claimed concurrently.
	AssignDevice(ctx context.Context, shipmentID, deviceID uuid.UUID) error

	// StartTransit moves assigned -> in_transit and marks the bound
	// device in_transit in the same transaction.
	StartTransit(ctx context.Context, shipmentID, deviceID uuid.UUID) error

	// Complete moves in_transit -> completed, records the delivery time
	// and releases the bound device (trip counted, status restored).
	Complete(ctx context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID, deliveredAt time.Time) error

	// Cancel moves any active status -> cancelled and releases the
	// bound device if there is one.
	Cancel(ctx context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID) error

	// Fail moves in_transit -> failed with a reason and releases the
	// bound device.
	Fail(ctx context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID, reason string) error

	// GetStatistics aggregates shipment counts, scoped to one provider
	// when providerID is non-nil.
	GetStatistics(ctx context.Context, providerID *uuid.UUID) (*Statistics, error)
}

// Filter represents filtering options for listing shipments
type Filter struct {
	Status     *ShipmentStatus
	CustomerID *uuid.UUID
	ProviderID *uuid.UUID
	ShipperID  *uuid.UUID
	DeviceID   *uuid.UUID
	OrderID    *uuid.UUID

	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	DeliveryAfter  *time.Time
	DeliveryBefore *time.Time

	// Case-insensitive substring match over description and addresses
	Search string

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Statistics represents shipment statistics
type Statistics struct {
	TotalShipments  int
	ByStatus        map[string]int
	ActiveShipments int
	CompletedToday  int
}
