package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cargo-tracker/internal/access"
	domainOrder "cargo-tracker/internal/domain/order"
	domainShipment "cargo-tracker/internal/domain/shipment"
	domainUser "cargo-tracker/internal/domain/user"
	"cargo-tracker/internal/logger"
	appErrors "cargo-tracker/pkg/errors"
	"cargo-tracker/pkg/utils"
)

// Service implements order use cases.
type Service struct {
	orderRepo domainOrder.Repository
	userRepo  domainUser.Repository
}

func NewService(orderRepo domainOrder.Repository, userRepo domainUser.Repository) *Service {
	return &Service{
		orderRepo: orderRepo,
		userRepo:  userRepo,
	}
}

// Create registers a new transport request from an authenticated customer.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req *CreateOrderRequest) (*OrderResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid order input", err)
	}

	if err := ValidateParties(ctx, s.userRepo, customerID, req.ProviderID); err != nil {
		return nil, err
	}

	if err := ValidateTrackingThresholds(req); err != nil {
		return nil, err
	}

	o := &domainOrder.Order{
		CustomerID:                  customerID,
		ProviderID:                  req.ProviderID,
		Status:                      domainOrder.StatusPending,
		GoodsDescription:            utils.SanitizeText(req.GoodsDescription),
		PickupAddress:               utils.SanitizeText(req.PickupAddress),
		DeliveryAddress:             utils.SanitizeText(req.DeliveryAddress),
		EstimatedDeliveryAt:         req.EstimatedDeliveryAt,
		RequiresTemperatureTracking: req.RequiresTemperatureTracking,
		TempMin:                     req.TempMin,
		TempMax:                     req.TempMax,
		RequiresHumidityTracking:    req.RequiresHumidityTracking,
		HumidityMin:                 req.HumidityMin,
		HumidityMax:                 req.HumidityMax,
		RequiresLocationTracking:    req.RequiresLocationTracking,
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}

	logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("provider_id", req.ProviderID.String()),
		zap.String("event", "order_created"),
	)

	return ToOrderResponse(o), nil
}

// GetByID returns the order if the actor passes the access gate.
func (s *Service) GetByID(ctx context.Context, actor access.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !access.CanReadOrder(actor, o) {
		return nil, access.Denied("order")
	}

	return ToOrderResponse(o), nil
}

// List returns the actor's own orders: customers see orders they placed,
// providers see orders addressed to them. Other roles get nothing.
func (s *Service) List(ctx context.Context, actor access.Actor, req *OrderFilterRequest) (*OrderListResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid filter", err)
	}

	filter := &domainOrder.Filter{
		Status:        req.Status,
		CreatedAfter:  req.CreatedAfter,
		CreatedBefore: req.CreatedBefore,
		Search:        req.Search,
		Page:          req.Page,
		PageSize:      req.PageSize,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}

	switch actor.Role {
	case domainUser.RoleCustomer:
		filter.CustomerID = &actor.ID
	case domainUser.RoleProvider:
		filter.ProviderID = &actor.ID
	default:
		return nil, access.Denied("order")
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
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

	return ToOrderListResponse(orders, total, page, pageSize), nil
}

// Accept lets the addressed provider take the order. The shipment is
// created and the order flipped in one transaction; a concurrent decision
// loses with an invalid-state error.
func (s *Service) Accept(ctx context.Context, providerID, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.ProviderID != providerID {
		return nil, access.Denied("order")
	}

	if err := domainOrder.ValidateTransition(o.Status, domainOrder.StatusAccepted); err != nil {
		return nil, err
	}

	sh := &domainShipment.Shipment{
		OrderID:             o.ID,
		CustomerID:          o.CustomerID,
		ProviderID:          o.ProviderID,
		Status:              domainShipment.StatusPending,
		GoodsDescription:    o.GoodsDescription,
		PickupAddress:       o.PickupAddress,
		DeliveryAddress:     o.DeliveryAddress,
		EstimatedDeliveryAt: o.EstimatedDeliveryAt,
	}

	if err := s.orderRepo.Accept(ctx, o.ID, sh, time.Now()); err != nil {
		return nil, err
	}

	logger.Info("Order accepted",
		zap.String("order_id", o.ID.String()),
		zap.String("provider_id", providerID.String()),
		zap.String("shipment_id", sh.ID.String()),
		zap.String("event", "order_accepted"),
	)

	accepted, err := s.orderRepo.GetByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(accepted), nil
}

// Reject lets the addressed provider decline the order with a reason.
func (s *Service) Reject(ctx context.Context, providerID, orderID uuid.UUID, req *RejectOrderRequest) (*OrderResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid rejection input", err)
	}

	reason := utils.SanitizeText(strings.TrimSpace(req.Reason))
	if reason == "" {
		return nil, appErrors.Validation("rejection reason is required", nil)
	}

	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.ProviderID != providerID {
		return nil, access.Denied("order")
	}

	if err := domainOrder.ValidateTransition(o.Status, domainOrder.StatusRejected); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Reject(ctx, o.ID, reason, time.Now()); err != nil {
		return nil, err
	}

	logger.Info("Order rejected",
		zap.String("order_id", o.ID.String()),
		zap.String("provider_id", providerID.String()),
		zap.String("event", "order_rejected"),
	)

	rejected, err := s.orderRepo.GetByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(rejected), nil
}
