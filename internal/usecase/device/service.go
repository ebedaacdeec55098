package device

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cargo-tracker/internal/access"
	domainDevice "cargo-tracker/internal/domain/device"
	domainShipment "cargo-tracker/internal/domain/shipment"
	domainUser "cargo-tracker/internal/domain/user"
	"cargo-tracker/internal/events"
	"cargo-tracker/internal/infrastructure/cache"
	"cargo-tracker/internal/logger"
	appErrors "cargo-tracker/pkg/errors"
	"cargo-tracker/pkg/utils"
)

// TelemetryReader is the read side of the snapshot cache.
type TelemetryReader interface {
	Get(ctx context.Context, deviceID uuid.UUID) (*cache.Snapshot, error)
}

// Service implements device use cases. Devices belong to providers;
// customers and shippers reach a device only through a linking shipment.
type Service struct {
	deviceRepo   domainDevice.Repository
	shipmentRepo domainShipment.Repository
	telemetry    TelemetryReader
	publisher    events.Publisher
}

func NewService(
	deviceRepo domainDevice.Repository,
	shipmentRepo domainShipment.Repository,
	telemetry TelemetryReader,
	publisher events.Publisher,
) *Service {
	return &Service{
		deviceRepo:   deviceRepo,
		shipmentRepo: shipmentRepo,
		telemetry:    telemetry,
		publisher:    publisher,
	}
}

// Register enrols a new tracking unit under the calling provider and
// mirrors the config to the ingestion service.
func (s *Service) Register(ctx context.Context, providerID uuid.UUID, req *RegisterDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid device input", err)
	}

	d := &domainDevice.Device{
		HardwareUID:     strings.TrimSpace(req.HardwareUID),
		DeviceName:      req.DeviceName,
		Model:           req.Model,
		FirmwareVersion: req.FirmwareVersion,
		ProviderID:      providerID,
		Status:          domainDevice.StatusAvailable,
	}

	if err := s.deviceRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.publisher.PublishDeviceConfig(d)

	logger.Info("Device registered",
		zap.String("device_id", d.ID.String()),
		zap.String("hardware_uid", d.HardwareUID),
		zap.String("provider_id", providerID.String()),
		zap.String("event", "device_registered"),
	)

	return ToDeviceResponse(d), nil
}

// GetByID applies the access gate. Non-providers need a linking shipment,
// resolved here so the gate itself can stay pure.
func (s *Service) GetByID(ctx context.Context, actor access.Actor, deviceID uuid.UUID) (*DeviceResponse, error) {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	linked, err := s.linkedShipments(ctx, actor, d)
	if err != nil {
		return nil, err
	}

	if !access.CanReadDevice(actor, d, linked) {
		return nil, access.Denied("device")
	}

	return ToDeviceResponse(d), nil
}

// List returns the provider's own fleet. Other roles list nothing; they
// reach devices through their shipments.
func (s *Service) List(ctx context.Context, providerID uuid.UUID, req *DeviceFilterRequest) (*DeviceListResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid filter", err)
	}

	filter := &domainDevice.Filter{
		Status:     req.Status,
		ProviderID: &providerID,
		MinBattery: req.MinBattery,
		MaxBattery: req.MaxBattery,
		Unbound:    req.Unbound,
		Search:     req.Search,
		Page:       req.Page,
		PageSize:   req.PageSize,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	}

	devices, total, err := s.deviceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return ToDeviceListResponse(devices, total, page, pageSize), nil
}

// Update mutates descriptive fields; provider owner only.
func (s *Service) Update(ctx context.Context, providerID, deviceID uuid.UUID, req *UpdateDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid device input", err)
	}

	d, err := s.ownedDevice(ctx, providerID, deviceID)
	if err != nil {
		return nil, err
	}

	if req.DeviceName != nil {
		d.DeviceName = req.DeviceName
	}
	if req.Model != nil {
		d.Model = req.Model
	}
	if req.FirmwareVersion != nil {
		d.FirmwareVersion = req.FirmwareVersion
	}

	if err := s.deviceRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	updated, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return ToDeviceResponse(updated), nil
}

// UpdateStatus applies a transition from the fixed table. Moving to
// in_transit requires a resolvable shipment id; retiring requires the
// device to be unbound. Config changes are mirrored to ingestion.
func (s *Service) UpdateStatus(ctx context.Context, providerID, deviceID uuid.UUID, req *UpdateStatusRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid status input", err)
	}

	d, err := s.ownedDevice(ctx, providerID, deviceID)
	if err != nil {
		return nil, err
	}

	if err := domainDevice.ValidateTransition(d.Status, req.Status); err != nil {
		return nil, err
	}

	if req.Status == domainDevice.StatusInTransit {
		if req.ShipmentID == nil && d.CurrentShipmentID == nil {
			return nil, appErrors.Validation("in_transit requires a shipment id", nil)
		}
	}

	if req.Status == domainDevice.StatusRetired {
		if err := s.deviceRepo.Retire(ctx, deviceID); err != nil {
			return nil, err
		}
	} else {
		if err := s.deviceRepo.UpdateStatus(ctx, deviceID, req.Status); err != nil {
			return nil, err
		}
	}

	updated, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishDeviceConfig(updated)

	logger.Info("Device status updated",
		zap.String("device_id", deviceID.String()),
		zap.String("from", string(d.Status)),
		zap.String("to", string(req.Status)),
		zap.String("event", "device_status_updated"),
	)

	return ToDeviceResponse(updated), nil
}

// GetTelemetry serves the cached last-known snapshot after the access gate
// clears the caller. A device with no recent telemetry yields not-found.
func (s *Service) GetTelemetry(ctx context.Context, actor access.Actor, deviceID uuid.UUID) (*TelemetryResponse, error) {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	linked, err := s.linkedShipments(ctx, actor, d)
	if err != nil {
		return nil, err
	}

	if !access.CanAccessDeviceTelemetry(actor, d, linked) {
		return nil, access.Denied("device")
	}

	snapshot, err := s.telemetry.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, appErrors.NotFound("telemetry", "no recent telemetry for device")
	}

	return ToTelemetryResponse(snapshot), nil
}

// GetStatistics is a provider/fleet overview.
func (s *Service) GetStatistics(ctx context.Context) (*StatisticsResponse, error) {
	stats, err := s.deviceRepo.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}

	return &StatisticsResponse{
		TotalDevices:       stats.TotalDevices,
		AvailableDevices:   stats.AvailableDevices,
		InTransitDevices:   stats.InTransitDevices,
		MaintenanceDevices: stats.MaintenanceDevices,
		RetiredDevices:     stats.RetiredDevices,
		LowBatteryDevices:  stats.LowBatteryDevices,
	}, nil
}

func (s *Service) ownedDevice(ctx context.Context, providerID, deviceID uuid.UUID) (*domainDevice.Device, error) {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	actor := access.Actor{ID: providerID, Role: domainUser.RoleProvider}
	if !access.CanWriteDevice(actor, d) {
		return nil, access.Denied("device")
	}

	return d, nil
}

// linkedShipments fetches the shipments referencing the device, but only
// for roles whose access depends on them.
func (s *Service) linkedShipments(ctx context.Context, actor access.Actor, d *domainDevice.Device) ([]*domainShipment.Shipment, error) {
	switch actor.Role {
	case domainUser.RoleCustomer, domainUser.RoleShipper:
		return s.shipmentRepo.ListByDeviceID(ctx, d.ID)
	}
	return nil, nil
}
