package shipment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cargo-tracker/internal/access"
	domainDevice "cargo-tracker/internal/domain/device"
	domainShipment "cargo-tracker/internal/domain/shipment"
	domainUser "cargo-tracker/internal/domain/user"
	"cargo-tracker/internal/events"
	"cargo-tracker/internal/logger"
	appErrors "cargo-tracker/pkg/errors"
	"cargo-tracker/pkg/utils"
)

// Service implements shipment use cases. Device-coupled transitions run as
// one repository transaction; assignment events publish after commit and
// never fail the operation.
type Service struct {
	shipmentRepo domainShipment.Repository
	userRepo     domainUser.Repository
	deviceRepo   domainDevice.Repository
	publisher    events.Publisher
}

func NewService(
	shipmentRepo domainShipment.Repository,
	userRepo domainUser.Repository,
	deviceRepo domainDevice.Repository,
	publisher events.Publisher,
) *Service {
	return &Service{
		shipmentRepo: shipmentRepo,
		userRepo:     userRepo,
		deviceRepo:   deviceRepo,
		publisher:    publisher,
	}
}

func (s *Service) GetByID(ctx context.Context, actor access.Actor, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if !access.CanReadShipment(actor, sh) {
		return nil, access.Denied("shipment")
	}

	return ToShipmentResponse(sh), nil
}

// List scopes results to the actor's relationship: customers and providers
// by ownership, shippers by assignment.
func (s *Service) List(ctx context.Context, actor access.Actor, req *ShipmentFilterRequest) (*ShipmentListResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid filter", err)
	}

	filter := &domainShipment.Filter{
		Status:         req.Status,
		DeviceID:       req.DeviceID,
		OrderID:        req.OrderID,
		CreatedAfter:   req.CreatedAfter,
		CreatedBefore:  req.CreatedBefore,
		DeliveryAfter:  req.DeliveryAfter,
		DeliveryBefore: req.DeliveryBefore,
		Search:         req.Search,
		Page:           req.Page,
		PageSize:       req.PageSize,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
	}

	switch actor.Role {
	case domainUser.RoleCustomer:
		filter.CustomerID = &actor.ID
	case domainUser.RoleProvider:
		filter.ProviderID = &actor.ID
	case domainUser.RoleShipper:
		filter.ShipperID = &actor.ID
	default:
		return nil, access.Denied("shipment")
	}

	shipments, total, err := s.shipmentRepo.List(ctx, filter)
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

	return ToShipmentListResponse(shipments, total, page, pageSize), nil
}

// Update mutates descriptive fields. Only pending shipments are mutable,
// and only by the owning customer or provider.
func (s *Service) Update(ctx context.Context, actor access.Actor, shipmentID uuid.UUID, req *UpdateShipmentRequest) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid shipment input", err)
	}

	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if !access.CanWriteShipment(actor, sh) {
		return nil, access.Denied("shipment")
	}

	if sh.Status != domainShipment.StatusPending {
		return nil, appErrors.InvalidState("shipment", string(sh.Status), "update")
	}

	if req.GoodsDescription != nil {
		sh.GoodsDescription = utils.SanitizeText(*req.GoodsDescription)
	}
	if req.PickupAddress != nil {
		sh.PickupAddress = utils.SanitizeText(*req.PickupAddress)
	}
	if req.DeliveryAddress != nil {
		sh.DeliveryAddress = utils.SanitizeText(*req.DeliveryAddress)
	}
	if req.EstimatedDeliveryAt != nil {
		sh.EstimatedDeliveryAt = req.EstimatedDeliveryAt
	}

	if err := s.shipmentRepo.Update(ctx, sh); err != nil {
		return nil, err
	}

	updated, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return ToShipmentResponse(updated), nil
}

// AssignShipper moves a pending shipment to assigned. The target user must
// hold the shipper role and be active.
func (s *Service) AssignShipper(ctx context.Context, providerID, shipmentID uuid.UUID, req *AssignShipperRequest) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid input", err)
	}

	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if sh.ProviderID != providerID {
		return nil, access.Denied("shipment")
	}

	if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusAssigned); err != nil {
		return nil, err
	}

	shipper, err := s.userRepo.GetByID(ctx, req.ShipperID)
	if err != nil {
		return nil, appErrors.NotFound("user", "shipper not found")
	}
	if shipper.Role != domainUser.RoleShipper {
		return nil, appErrors.InvalidRole("assigned user must have the shipper role")
	}
	if !shipper.IsActive {
		return nil, appErrors.InactiveAccount("shipper account is inactive")
	}

	if err := s.shipmentRepo.AssignShipper(ctx, shipmentID, req.ShipperID); err != nil {
		return nil, err
	}

	logger.Info("Shipper assigned",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("shipper_id", req.ShipperID.String()),
		zap.String("event", "shipment_shipper_assigned"),
	)

	return s.respond(ctx, shipmentID)
}

// AssignDevice binds a device owned by the same provider to an assigned
// shipment. The device must be available and unbound; a concurrent claim
// surfaces as a conflict. An "assign" event is emitted on success.
func (s *Service) AssignDevice(ctx context.Context, providerID, shipmentID uuid.UUID, req *AssignDeviceRequest) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid input", err)
	}

	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if sh.ProviderID != providerID {
		return nil, access.Denied("shipment")
	}

	// Binding does not change the shipment status, but it is only legal
	// from the assigned state (shipper first, then device).
	if sh.Status != domainShipment.StatusAssigned {
		return nil, appErrors.InvalidState("shipment", string(sh.Status), "device assignment")
	}

	d, err := s.deviceRepo.GetByID(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if d.ProviderID != providerID {
		return nil, access.Denied("device")
	}
	if d.Status != domainDevice.StatusAvailable {
		return nil, appErrors.InvalidState("device", string(d.Status), string(domainDevice.StatusInTransit))
	}
	if d.Bound() {
		return nil, appErrors.Conflict("device is already bound to a shipment")
	}

	if err := s.shipmentRepo.AssignDevice(ctx, shipmentID, req.DeviceID); err != nil {
		if err == domainShipment.ErrDeviceConflict {
			return nil, appErrors.Conflict("device was claimed by another shipment")
		}
		return nil, err
	}

	s.publisher.PublishAssignment(req.DeviceID, shipmentID, events.ActionAssign)

	logger.Info("Device assigned to shipment",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("device_id", req.DeviceID.String()),
		zap.String("event", "shipment_device_assigned"),
	)

	return s.respond(ctx, shipmentID)
}

// StartTransit moves an assigned shipment with a bound device into transit.
func (s *Service) StartTransit(ctx context.Context, providerID, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if sh.ProviderID != providerID {
		return nil, access.Denied("shipment")
	}

	if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusInTransit); err != nil {
		return nil, err
	}
	if sh.DeviceID == nil {
		return nil, appErrors.Validation("a tracking device must be assigned before transit", nil)
	}

	if err := s.shipmentRepo.StartTransit(ctx, shipmentID, *sh.DeviceID); err != nil {
		return nil, err
	}

	logger.Info("Shipment in transit",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("event", "shipment_transit_started"),
	)

	return s.respond(ctx, shipmentID)
}

// Complete is called by the assigned shipper on delivery. The bound device
// is released in the same transaction and an "unassign" event is emitted.
func (s *Service) Complete(ctx context.Context, shipperID, shipmentID uuid.UUID, req *CompleteShipmentRequest) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid input", err)
	}

	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	actor := access.Actor{ID: shipperID, Role: domainUser.RoleShipper}
	if !access.IsAssignedShipper(actor, sh) {
		return nil, access.Denied("shipment")
	}

	if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusCompleted); err != nil {
		return nil, err
	}

	deliveredAt := time.Now()
	if req.ActualDeliveryAt != nil {
		deliveredAt = *req.ActualDeliveryAt
	}

	if err := s.shipmentRepo.Complete(ctx, shipmentID, sh.DeviceID, deliveredAt); err != nil {
		return nil, err
	}

	if sh.DeviceID != nil {
		s.publisher.PublishAssignment(*sh.DeviceID, shipmentID, events.ActionUnassign)
	}

	logger.Info("Shipment completed",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("shipper_id", shipperID.String()),
		zap.String("event", "shipment_completed"),
	)

	return s.respond(ctx, shipmentID)
}

// Cancel withdraws an active shipment. Customer or provider owners only;
// a bound device is released with an "unassign" event.
func (s *Service) Cancel(ctx context.Context, actor access.Actor, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	if !access.CanCancelShipment(actor, sh) {
		return nil, access.Denied("shipment")
	}

	if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusCancelled); err != nil {
		return nil, err
	}

	if err := s.shipmentRepo.Cancel(ctx, shipmentID, sh.DeviceID); err != nil {
		return nil, err
	}

	if sh.DeviceID != nil {
		s.publisher.PublishAssignment(*sh.DeviceID, shipmentID, events.ActionUnassign)
	}

	logger.Info("Shipment cancelled",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("cancelled_by", actor.ID.String()),
		zap.String("event", "shipment_cancelled"),
	)

	return s.respond(ctx, shipmentID)
}

// Fail is the assigned shipper reporting an unrecoverable problem in
// transit. The device is released symmetrically with complete and cancel.
func (s *Service) Fail(ctx context.Context, shipperID, shipmentID uuid.UUID, req *FailShipmentRequest) (*ShipmentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid input", err)
	}

	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	actor := access.Actor{ID: shipperID, Role: domainUser.RoleShipper}
	if !access.IsAssignedShipper(actor, sh) {
		return nil, access.Denied("shipment")
	}

	if err := domainShipment.ValidateTransition(sh.Status, domainShipment.StatusFailed); err != nil {
		return nil, err
	}

	reason := utils.SanitizeText(req.Reason)
	if err := s.shipmentRepo.Fail(ctx, shipmentID, sh.DeviceID, reason); err != nil {
		return nil, err
	}

	if sh.DeviceID != nil {
		s.publisher.PublishAssignment(*sh.DeviceID, shipmentID, events.ActionUnassign)
	}

	logger.Warn("Shipment failed",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("shipper_id", shipperID.String()),
		zap.String("reason", reason),
		zap.String("event", "shipment_failed"),
	)

	return s.respond(ctx, shipmentID)
}

// GetStatistics returns a fleet overview: providers get aggregates over
// their own shipments, admins the global ones.
func (s *Service) GetStatistics(ctx context.Context, actor access.Actor) (*StatisticsResponse, error) {
	if !access.CanViewShipmentStatistics(actor) {
		return nil, access.Denied("shipment statistics")
	}

	var providerID *uuid.UUID
	if actor.Role == domainUser.RoleProvider {
		providerID = &actor.ID
	}

	stats, err := s.shipmentRepo.GetStatistics(ctx, providerID)
	if err != nil {
		return nil, err
	}

	return &StatisticsResponse{
		TotalShipments:  stats.TotalShipments,
		ActiveShipments: stats.ActiveShipments,
		CompletedToday:  stats.CompletedToday,
		ByStatus:        stats.ByStatus,
	}, nil
}

func (s *Service) respond(ctx context.Context, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	sh, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return ToShipmentResponse(sh), nil
}
