package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cargo-tracker/internal/domain/device"
	"cargo-tracker/internal/domain/shipment"
	"cargo-tracker/internal/infrastructure/database/postgres/models"
	appErrors "cargo-tracker/pkg/errors"
)

type ShipmentRepository struct {
	db *DB
}

func NewShipmentRepository(db *DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) Create(ctx context.Context, s *shipment.Shipment) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	if s.Status == "" {
		s.Status = shipment.StatusPending
	}

	dbModel := toShipmentModel(s)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}

	return nil
}

func (r *ShipmentRepository) GetByID(ctx context.Context, shipmentID uuid.UUID) (*shipment.Shipment, error) {
	var dbModel models.ShipmentModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", shipmentID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.NotFound("shipment", "shipment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}

	return toShipmentEntity(&dbModel), nil
}

// Update writes mutable shipment fields. Lifecycle columns (status,
// shipper_id, device_id, actual_delivery_at) are owned by the dedicated
// transition methods.
func (r *ShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	s.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"goods_description":     s.GoodsDescription,
			"pickup_address":        s.PickupAddress,
			"delivery_address":      s.DeliveryAddress,
			"estimated_delivery_at": s.EstimatedDeliveryAt,
			"updated_at":            s.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update shipment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.NotFound("shipment", "shipment not found")
	}

	return nil
}

func (r *ShipmentRepository) List(ctx context.Context, filter *shipment.Filter) ([]*shipment.Shipment, int64, error) {
	var dbModels []models.ShipmentModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.ShipmentModel{})

	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProviderID != nil {
		db = db.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.ShipperID != nil {
		db = db.Where("shipper_id = ?", *filter.ShipperID)
	}
	if filter.DeviceID != nil {
		db = db.Where("device_id = ?", *filter.DeviceID)
	}
	if filter.OrderID != nil {
		db = db.Where("order_id = ?", *filter.OrderID)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", filter.CreatedBefore)
	}
	if filter.DeliveryAfter != nil {
		db = db.Where("estimated_delivery_at >= ?", filter.DeliveryAfter)
	}
	if filter.DeliveryBefore != nil {
		db = db.Where("estimated_delivery_at <= ?", filter.DeliveryBefore)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where("LOWER(goods_description) LIKE ? OR LOWER(pickup_address) LIKE ? OR LOWER(delivery_address) LIKE ?",
			search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count shipments: %w", err)
	}

	sortBy := "created_at"
	if filter.SortBy != "" {
		sortBy = filter.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	err := db.Order(sortBy + " " + sortOrder).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shipments: %w", err)
	}

	shipments := make([]*shipment.Shipment, len(dbModels))
	for i := range dbModels {
		shipments[i] = toShipmentEntity(&dbModels[i])
	}

	return shipments, total, nil
}

func (r *ShipmentRepository) ListByDeviceID(ctx context.Context, deviceID uuid.UUID) ([]*shipment.Shipment, error) {
	var dbModels []models.ShipmentModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments by device: %w", err)
	}

	shipments := make([]*shipment.Shipment, len(dbModels))
	for i := range dbModels {
		shipments[i] = toShipmentEntity(&dbModels[i])
	}

	return shipments, nil
}

func (r *ShipmentRepository) AssignShipper(ctx context.Context, shipmentID, shipperID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("id = ? AND status = ?", shipmentID, string(shipment.StatusPending)).
		Updates(map[string]interface{}{
			"shipper_id": shipperID,
			"status":     string(shipment.StatusAssigned),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to assign shipper: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.InvalidState("shipment", "non-pending", string(shipment.StatusAssigned))
	}

	return nil
}

// AssignDevice claims the device and records the binding on the shipment in
// one transaction. The device update re-checks status = available and an
// empty binding under the transaction, so two shipments racing for the same
// device leave exactly one winner; the loser gets a conflict.
func (r *ShipmentRepository) AssignDevice(ctx context.Context, shipmentID, deviceID uuid.UUID) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.DeviceModel{}).
			Where("id = ? AND status = ? AND current_shipment_id IS NULL",
				deviceID, string(device.StatusAvailable)).
			Updates(map[string]interface{}{
				"current_shipment_id": shipmentID,
				"updated_at":          time.Now(),
			})

		if claim.Error != nil {
			return fmt.Errorf("failed to claim device: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			return shipment.ErrDeviceConflict
		}

		result := tx.Model(&models.ShipmentModel{}).
			Where("id = ? AND status = ?", shipmentID, string(shipment.StatusAssigned)).
			Updates(map[string]interface{}{
				"device_id":  deviceID,
				"updated_at": time.Now(),
			})

		if result.Error != nil {
			return fmt.Errorf("failed to record device on shipment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.InvalidState("shipment", "non-assigned", string(shipment.StatusAssigned))
		}

		return nil
	})
}

// StartTransit moves the shipment to in_transit and the bound device with
// it, atomically.
func (r *ShipmentRepository) StartTransit(ctx context.Context, shipmentID, deviceID uuid.UUID) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ShipmentModel{}).
			Where("id = ? AND status = ? AND device_id IS NOT NULL",
				shipmentID, string(shipment.StatusAssigned)).
			Updates(map[string]interface{}{
				"status":     string(shipment.StatusInTransit),
				"updated_at": time.Now(),
			})

		if result.Error != nil {
			return fmt.Errorf("failed to start transit: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.InvalidState("shipment", "non-assigned", string(shipment.StatusInTransit))
		}

		dev := tx.Model(&models.DeviceModel{}).
			Where("id = ? AND current_shipment_id = ?", deviceID, shipmentID).
			Updates(map[string]interface{}{
				"status":     string(device.StatusInTransit),
				"updated_at": time.Now(),
			})

		if dev.Error != nil {
			return fmt.Errorf("failed to mark device in transit: %w", dev.Error)
		}
		if dev.RowsAffected == 0 {
			return appErrors.Conflict("device binding changed while starting transit")
		}

		return nil
	})
}

func (r *ShipmentRepository) Complete(ctx context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID, deliveredAt time.Time) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ShipmentModel{}).
			Where("id = ? AND status = ?", shipmentID, string(shipment.StatusInTransit)).
			Updates(map[string]interface{}{
				"status":             string(shipment.StatusCompleted),
				"actual_delivery_at": deliveredAt,
				"updated_at":         time.Now(),
			})

		if result.Error != nil {
			return fmt.Errorf("failed to complete shipment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.InvalidState("shipment", "non-in_transit", string(shipment.StatusCompleted))
		}

		return releaseDeviceTx(tx, deviceID, shipmentID)
	})
}

func (r *ShipmentRepository) Cancel(ctx context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID) error {
	activeStatuses := []string{
		string(shipment.StatusPending),
		string(shipment.StatusAssigned),
		string(shipment.StatusInTransit),
	}

	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ShipmentModel{}).
			Where("id = ? AND status IN ?", shipmentID, activeStatuses).
			Updates(map[string]interface{}{
				"status":     string(shipment.StatusCancelled),
				"updated_at": time.Now(),
			})

		if result.Error != nil {
			return fmt.Errorf("failed to cancel shipment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.InvalidState("shipment", "terminal", string(shipment.StatusCancelled))
		}

		return releaseDeviceTx(tx, deviceID, shipmentID)
	})
}

func (r *ShipmentRepository) Fail(ctx context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID, reason string) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ShipmentModel{}).
			Where("id = ? AND status = ?", shipmentID, string(shipment.StatusInTransit)).
			Updates(map[string]interface{}{
				"status":         string(shipment.StatusFailed),
				"failure_reason": reason,
				"updated_at":     time.Now(),
			})

		if result.Error != nil {
			return fmt.Errorf("failed to fail shipment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.InvalidState("shipment", "non-in_transit", string(shipment.StatusFailed))
		}

		return releaseDeviceTx(tx, deviceID, shipmentID)
	})
}

// releaseDeviceTx clears the device binding inside an ongoing transaction.
// The binding guard makes a duplicate release a no-op so total_trips cannot
// double-count on redelivery.
func releaseDeviceTx(tx *gorm.DB, deviceID *uuid.UUID, shipmentID uuid.UUID) error {
	if deviceID == nil {
		return nil
	}

	result := tx.Model(&models.DeviceModel{}).
		Where("id = ? AND current_shipment_id = ?", *deviceID, shipmentID).
		Updates(map[string]interface{}{
			"current_shipment_id": nil,
			"total_trips":         gorm.Expr("total_trips + 1"),
			"status": gorm.Expr(
				"CASE WHEN status = ? THEN ? ELSE status END",
				string(device.StatusInTransit), string(device.StatusAvailable)),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to release device: %w", result.Error)
	}

	return nil
}

func (r *ShipmentRepository) GetStatistics(ctx context.Context, providerID *uuid.UUID) (*shipment.Statistics, error) {
	stats := &shipment.Statistics{ByStatus: make(map[string]int)}

	type statusCount struct {
		Status string
		Count  int
	}
	var counts []statusCount

	countQuery := r.db.DB.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Select("status, COUNT(*) as count").
		Group("status")
	if providerID != nil {
		countQuery = countQuery.Where("provider_id = ?", *providerID)
	}
	err := countQuery.Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment statistics: %w", err)
	}

	for _, c := range counts {
		stats.ByStatus[c.Status] = c.Count
		stats.TotalShipments += c.Count
		switch shipment.ShipmentStatus(c.Status) {
		case shipment.StatusPending, shipment.StatusAssigned, shipment.StatusInTransit:
			stats.ActiveShipments += c.Count
		}
	}

	var completedToday int64
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayQuery := r.db.DB.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Where("status = ? AND actual_delivery_at >= ?", string(shipment.StatusCompleted), startOfDay)
	if providerID != nil {
		todayQuery = todayQuery.Where("provider_id = ?", *providerID)
	}
	err = todayQuery.Count(&completedToday).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count completed shipments: %w", err)
	}
	stats.CompletedToday = int(completedToday)

	return stats, nil
}

func toShipmentModel(s *shipment.Shipment) *models.ShipmentModel {
	return &models.ShipmentModel{
		ID:                  s.ID,
		OrderID:             s.OrderID,
		CustomerID:          s.CustomerID,
		ProviderID:          s.ProviderID,
		ShipperID:           s.ShipperID,
		DeviceID:            s.DeviceID,
		Status:              string(s.Status),
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

func toShipmentEntity(m *models.ShipmentModel) *shipment.Shipment {
	return &shipment.Shipment{
		ID:                  m.ID,
		OrderID:             m.OrderID,
		CustomerID:          m.CustomerID,
		ProviderID:          m.ProviderID,
		ShipperID:           m.ShipperID,
		DeviceID:            m.DeviceID,
		Status:              shipment.ShipmentStatus(m.Status),
		GoodsDescription:    m.GoodsDescription,
		PickupAddress:       m.PickupAddress,
		DeliveryAddress:     m.DeliveryAddress,
		EstimatedDeliveryAt: m.EstimatedDeliveryAt,
		ActualDeliveryAt:    m.ActualDeliveryAt,
		FailureReason:       m.FailureReason,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
