package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceModel represents the database model for devices
type DeviceModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key"`
	HardwareUID       string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	DeviceName        *string    `gorm:"type:varchar(100)"`
	Model             *string    `gorm:"type:varchar(100)"`
	FirmwareVersion   *string    `gorm:"type:varchar(50)"`
	ProviderID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	CurrentShipmentID *uuid.UUID `gorm:"type:uuid;index"`
	Status            string     `gorm:"type:varchar(20);not null;default:'available';index"`
	BatteryLevel      *int       `gorm:"type:integer;check:battery_level >= 0 AND battery_level <= 100"`
	TotalTrips        int        `gorm:"type:integer;not null;default:0"`
	LastSeenAt        *time.Time `gorm:"type:timestamptz"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`

	Provider *UserModel `gorm:"foreignKey:ProviderID"`
}

func (DeviceModel) TableName() string {
	return "devices"
}
