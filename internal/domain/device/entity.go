package device

import (
	"time"

	"github.com/google/uuid"
)

// DeviceStatus represents the status of a device
type DeviceStatus string

const (
	StatusAvailable   DeviceStatus = "available"
	StatusInTransit   DeviceStatus = "in_transit"
	StatusMaintenance DeviceStatus = "maintenance"
	StatusRetired     DeviceStatus = "retired"
)

// DefaultOnlineThreshold is how recently a device must have reported to be
// considered online.
const DefaultOnlineThreshold = 5 * time.Minute

// Device represents a physical tracking unit. A device is bound to at most
// one shipment at a time via CurrentShipmentID; the bound shipment carries
// the matching back-reference in its device_id column.
type Device struct {
	ID                uuid.UUID
	HardwareUID       string
	DeviceName        *string
	Model             *string
	FirmwareVersion   *string
	ProviderID        uuid.UUID
	CurrentShipmentID *uuid.UUID
	Status            DeviceStatus
	BatteryLevel      *int
	TotalTrips        int
	LastSeenAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsOnline reports whether the device reported within threshold of now.
// Pure read-side derivation, never persisted.
func (d *Device) IsOnline(threshold time.Duration) bool {
	if d.LastSeenAt == nil {
		return false
	}
	if threshold <= 0 {
		threshold = DefaultOnlineThreshold
	}
	return time.Since(*d.LastSeenAt) < threshold
}

// Bound reports whether the device is currently attached to a shipment.
func (d *Device) Bound() bool {
	return d.CurrentShipmentID != nil
}
