package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cargo-tracker/internal/domain/order"
	"cargo-tracker/internal/domain/shipment"
	"cargo-tracker/internal/infrastructure/database/postgres/models"
	appErrors "cargo-tracker/pkg/errors"
)

type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
	if o.Status == "" {
		o.Status = order.StatusPending
	}

	dbModel := toOrderModel(o)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	var dbModel models.OrderModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", orderID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.NotFound("order", "order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return toOrderEntity(&dbModel), nil
}

func (r *OrderRepository) List(ctx context.Context, filter *order.Filter) ([]*order.Order, int64, error) {
	var dbModels []models.OrderModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.OrderModel{})

	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProviderID != nil {
		db = db.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", filter.CreatedBefore)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where("LOWER(goods_description) LIKE ? OR LOWER(pickup_address) LIKE ? OR LOWER(delivery_address) LIKE ?",
			search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
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
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*order.Order, len(dbModels))
	for i := range dbModels {
		orders[i] = toOrderEntity(&dbModels[i])
	}

	return orders, total, nil
}

// Accept creates the shipment row and flips the order to accepted in a
// single transaction. The order update is guarded on status = pending so a
// concurrent accept or reject has exactly one winner; the loser sees zero
// rows affected and the whole transaction rolls back.
func (r *OrderRepository) Accept(ctx context.Context, orderID uuid.UUID, s *shipment.Shipment, processedAt time.Time) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	if s.Status == "" {
		s.Status = shipment.StatusPending
	}

	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toShipmentModel(s)).Error; err != nil {
			return fmt.Errorf("failed to create shipment: %w", err)
		}

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND status = ?", orderID, string(order.StatusPending)).
			Updates(map[string]interface{}{
				"status":       string(order.StatusAccepted),
				"shipment_id":  s.ID,
				"processed_at": processedAt,
				"updated_at":   time.Now(),
			})

		if result.Error != nil {
			return fmt.Errorf("failed to accept order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return appErrors.InvalidState("order", "non-pending", string(order.StatusAccepted))
		}

		return nil
	})
}

// Reject flips the order to rejected with the reason; guarded on
// status = pending like Accept.
func (r *OrderRepository) Reject(ctx context.Context, orderID uuid.UUID, reason string, processedAt time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", orderID, string(order.StatusPending)).
		Updates(map[string]interface{}{
			"status":           string(order.StatusRejected),
			"rejection_reason": reason,
			"processed_at":     processedAt,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to reject order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.InvalidState("order", "non-pending", string(order.StatusRejected))
	}

	return nil
}

func toOrderModel(o *order.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:                          o.ID,
		CustomerID:                  o.CustomerID,
		ProviderID:                  o.ProviderID,
		ShipmentID:                  o.ShipmentID,
		Status:                      string(o.Status),
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

func toOrderEntity(m *models.OrderModel) *order.Order {
	return &order.Order{
		ID:                          m.ID,
		CustomerID:                  m.CustomerID,
		ProviderID:                  m.ProviderID,
		ShipmentID:                  m.ShipmentID,
		Status:                      order.OrderStatus(m.Status),
		GoodsDescription:            m.GoodsDescription,
		PickupAddress:               m.PickupAddress,
		DeliveryAddress:             m.DeliveryAddress,
		EstimatedDeliveryAt:         m.EstimatedDeliveryAt,
		RequiresTemperatureTracking: m.RequiresTemperatureTracking,
		TempMin:                     m.TempMin,
		TempMax:                     m.TempMax,
		RequiresHumidityTracking:    m.RequiresHumidityTracking,
		HumidityMin:                 m.HumidityMin,
		HumidityMax:                 m.HumidityMax,
		RequiresLocationTracking:    m.RequiresLocationTracking,
		RejectionReason:             m.RejectionReason,
		ProcessedAt:                 m.ProcessedAt,
		CreatedAt:                   m.CreatedAt,
		UpdatedAt:                   m.UpdatedAt,
	}
}
