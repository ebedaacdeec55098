package models

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentModel represents the database model for shipments
type ShipmentModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProviderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ShipperID  *uuid.UUID `gorm:"type:uuid;index"`
	DeviceID   *uuid.UUID `gorm:"type:uuid;index"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index"`

	GoodsDescription    string     `gorm:"type:text;not null"`
	PickupAddress       string     `gorm:"type:text;not null"`
	DeliveryAddress     string     `gorm:"type:text;not null"`
	EstimatedDeliveryAt *time.Time `gorm:"type:timestamptz"`
	ActualDeliveryAt    *time.Time `gorm:"type:timestamptz"`
	FailureReason       *string    `gorm:"type:varchar(500)"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Customer *UserModel   `gorm:"foreignKey:CustomerID"`
	Provider *UserModel   `gorm:"foreignKey:ProviderID"`
	Shipper  *UserModel   `gorm:"foreignKey:ShipperID"`
	Device   *DeviceModel `gorm:"foreignKey:DeviceID"`
}

func (ShipmentModel) TableName() string {
	return "shipments"
}
