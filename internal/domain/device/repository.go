package device

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for device repository operations.
// UpdateLastSeen is monotonic: a timestamp older than the stored one is a
// no-op so redelivered telemetry cannot regress the value.
type Repository interface {
	Create(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	GetByHardwareUID(ctx context.Context, hardwareUID string) (*Device, error)
	Update(ctx context.Context, device *Device) error
	UpdateStatus(ctx context.Context, deviceID uuid.UUID, status DeviceStatus) error
	UpdateBattery(ctx context.Context, deviceID uuid.UUID, batteryLevel int) error
	UpdateLastSeen(ctx context.Context, deviceID uuid.UUID, seenAt time.Time) error

	// Release clears the shipment binding, counts the trip and restores
	// the device to available if it was in transit. Guarded on the
	// current binding so a duplicate release is a no-op.
	Release(ctx context.Context, deviceID, shipmentID uuid.UUID) error

	// Retire marks the device retired; refused while bound to a shipment.
	Retire(ctx context.Context, deviceID uuid.UUID) error

	List(ctx context.Context, filter *Filter) ([]*Device, int64, error)
	GetStatistics(ctx context.Context) (*Statistics, error)
}

// Filter represents filtering options for listing devices
type Filter struct {
	Status     *DeviceStatus
	ProviderID *uuid.UUID
	MinBattery *int
	MaxBattery *int
	Unbound    *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// Statistics represents device statistics
type Statistics struct {
	TotalDevices       int
	AvailableDevices   int
	InTransitDevices   int
	MaintenanceDevices int
	RetiredDevices     int
	LowBatteryDevices  int
}
