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
	"cargo-tracker/internal/infrastructure/database/postgres/models"
	appErrors "cargo-tracker/pkg/errors"
)

type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *device.Device) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	if d.Status == "" {
		d.Status = device.StatusAvailable
	}

	dbModel := toDeviceModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return appErrors.AlreadyExists("device hardware uid already registered")
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*device.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.NotFound("device", "device not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByHardwareUID(ctx context.Context, hardwareUID string) (*device.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("hardware_uid = ?", hardwareUID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.NotFound("device", "device not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device by hardware uid: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

// Update writes descriptive fields only. Status, binding, battery and
// last-seen columns have dedicated guarded methods.
func (r *DeviceRepository) Update(ctx context.Context, d *device.Device) error {
	d.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"device_name":      d.DeviceName,
			"model":            d.Model,
			"firmware_version": d.FirmwareVersion,
			"updated_at":       d.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.NotFound("device", "device not found")
	}

	return nil
}

func (r *DeviceRepository) UpdateStatus(ctx context.Context, deviceID uuid.UUID, status device.DeviceStatus) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update device status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.NotFound("device", "device not found")
	}

	return nil
}

func (r *DeviceRepository) UpdateBattery(ctx context.Context, deviceID uuid.UUID, batteryLevel int) error {
	if err := device.ValidateBatteryLevel(batteryLevel); err != nil {
		return err
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(map[string]interface{}{
			"battery_level": batteryLevel,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update device battery: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.NotFound("device", "device not found")
	}

	return nil
}

// UpdateLastSeen advances last_seen_at only forward. Zero rows affected
// means the stored value is already newer, which is fine for redelivered
// telemetry.
func (r *DeviceRepository) UpdateLastSeen(ctx context.Context, deviceID uuid.UUID, seenAt time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ? AND (last_seen_at IS NULL OR last_seen_at < ?)", deviceID, seenAt).
		Updates(map[string]interface{}{
			"last_seen_at": seenAt,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update device last seen: %w", result.Error)
	}

	return nil
}

func (r *DeviceRepository) Release(ctx context.Context, deviceID, shipmentID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ? AND current_shipment_id = ?", deviceID, shipmentID).
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

func (r *DeviceRepository) Retire(ctx context.Context, deviceID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ? AND current_shipment_id IS NULL", deviceID).
		Updates(map[string]interface{}{
			"status":     string(device.StatusRetired),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to retire device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.Conflict("device is bound to a shipment or does not exist")
	}

	return nil
}

func (r *DeviceRepository) List(ctx context.Context, filter *device.Filter) ([]*device.Device, int64, error) {
	var dbModels []models.DeviceModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.DeviceModel{})

	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.ProviderID != nil {
		db = db.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.MinBattery != nil {
		db = db.Where("battery_level >= ?", *filter.MinBattery)
	}
	if filter.MaxBattery != nil {
		db = db.Where("battery_level <= ?", *filter.MaxBattery)
	}
	if filter.Unbound != nil {
		if *filter.Unbound {
			db = db.Where("current_shipment_id IS NULL")
		} else {
			db = db.Where("current_shipment_id IS NOT NULL")
		}
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where("LOWER(hardware_uid) LIKE ? OR LOWER(device_name) LIKE ? OR LOWER(model) LIKE ?",
			search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count devices: %w", err)
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
		return nil, 0, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*device.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}

	return devices, total, nil
}

func (r *DeviceRepository) GetStatistics(ctx context.Context) (*device.Statistics, error) {
	stats := &device.Statistics{}

	type statusCount struct {
		Status string
		Count  int
	}
	var counts []statusCount

	err := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get device statistics: %w", err)
	}

	for _, c := range counts {
		stats.TotalDevices += c.Count
		switch device.DeviceStatus(c.Status) {
		case device.StatusAvailable:
			stats.AvailableDevices = c.Count
		case device.StatusInTransit:
			stats.InTransitDevices = c.Count
		case device.StatusMaintenance:
			stats.MaintenanceDevices = c.Count
		case device.StatusRetired:
			stats.RetiredDevices = c.Count
		}
	}

	var lowBattery int64
	err = r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("battery_level IS NOT NULL AND battery_level < ? AND status != ?",
			20, string(device.StatusRetired)).
		Count(&lowBattery).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count low battery devices: %w", err)
	}
	stats.LowBatteryDevices = int(lowBattery)

	return stats, nil
}

func toDeviceModel(d *device.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:                d.ID,
		HardwareUID:       d.HardwareUID,
		DeviceName:        d.DeviceName,
		Model:             d.Model,
		FirmwareVersion:   d.FirmwareVersion,
		ProviderID:        d.ProviderID,
		CurrentShipmentID: d.CurrentShipmentID,
		Status:            string(d.Status),
		BatteryLevel:      d.BatteryLevel,
		TotalTrips:        d.TotalTrips,
		LastSeenAt:        d.LastSeenAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *device.Device {
	return &device.Device{
		ID:                m.ID,
		HardwareUID:       m.HardwareUID,
		DeviceName:        m.DeviceName,
		Model:             m.Model,
		FirmwareVersion:   m.FirmwareVersion,
		ProviderID:        m.ProviderID,
		CurrentShipmentID: m.CurrentShipmentID,
		Status:            device.DeviceStatus(m.Status),
		BatteryLevel:      m.BatteryLevel,
		TotalTrips:        m.TotalTrips,
		LastSeenAt:        m.LastSeenAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
