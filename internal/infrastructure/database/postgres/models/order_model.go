package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderModel represents the database model for orders
type OrderModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProviderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ShipmentID *uuid.UUID `gorm:"type:uuid"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index"`

	GoodsDescription    string     `gorm:"type:text;not null"`
	PickupAddress       string     `gorm:"type:text;not null"`
	DeliveryAddress     string     `gorm:"type:text;not null"`
	EstimatedDeliveryAt *time.Time `gorm:"type:timestamptz"`

	RequiresTemperatureTracking bool     `gorm:"not null;default:false"`
	TempMin                     *float64 `gorm:"type:decimal(5,2)"`
	TempMax                     *float64 `gorm:"type:decimal(5,2)"`
	RequiresHumidityTracking    bool     `gorm:"not null;default:false"`
	HumidityMin                 *float64 `gorm:"type:decimal(5,2)"`
	HumidityMax                 *float64 `gorm:"type:decimal(5,2)"`
	RequiresLocationTracking    bool     `gorm:"not null;default:false"`

	RejectionReason *string    `gorm:"type:varchar(500)"`
	ProcessedAt     *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Customer *UserModel `gorm:"foreignKey:CustomerID"`
	Provider *UserModel `gorm:"foreignKey:ProviderID"`
}

func (OrderModel) TableName() string {
	return "orders"
}
