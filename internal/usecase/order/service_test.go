package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargo-tracker/internal/access"
	domainOrder "cargo-tracker/internal/domain/order"
	domainShipment "cargo-tracker/internal/domain/shipment"
	domainUser "cargo-tracker/internal/domain/user"
	appErrors "cargo-tracker/pkg/errors"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*domainUser.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domainUser.User)}
}

func (r *fakeUserRepo) add(role domainUser.Role, active bool) uuid.UUID {
	id := uuid.New()
	r.users[id] = &domainUser.User{
		ID:       id,
		Username: id.String()[:8],
		Email:    id.String()[:8] + "@example.com",
		Role:     role,
		IsActive: active,
	}
	return id
}

func (r *fakeUserRepo) Create(_ context.Context, u *domainUser.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domainUser.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domainUser.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, appErrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) List(_ context.Context, _ *domainUser.Filter) ([]*domainUser.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domainUser.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	if u, ok := r.users[id]; ok {
		u.PasswordHashed = hash
		return nil
	}
	return appErrors.ErrUserNotFound
}

func (r *fakeUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if u, ok := r.users[id]; ok {
		u.IsActive = active
		return nil
	}
	return appErrors.ErrUserNotFound
}

type fakeOrderRepo struct {
	orders    map[uuid.UUID]*domainOrder.Order
	shipments map[uuid.UUID]*domainShipment.Shipment
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:    make(map[uuid.UUID]*domainOrder.Order),
		shipments: make(map[uuid.UUID]*domainShipment.Shipment),
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domainOrder.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domainOrder.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, appErrors.NotFound("order", "order not found")
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) List(_ context.Context, filter *domainOrder.Filter) ([]*domainOrder.Order, int64, error) {
	var out []*domainOrder.Order
	for _, o := range r.orders {
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.ProviderID != nil && o.ProviderID != *filter.ProviderID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Accept(_ context.Context, orderID uuid.UUID, sh *domainShipment.Shipment, processedAt time.Time) error {
	o, ok := r.orders[orderID]
	if !ok {
		return appErrors.NotFound("order", "order not found")
	}
	if o.Status != domainOrder.StatusPending {
		return appErrors.InvalidState("order", string(o.Status), string(domainOrder.StatusAccepted))
	}
	if sh.ID == uuid.Nil {
		sh.ID = uuid.New()
	}
	r.shipments[sh.ID] = sh
	o.Status = domainOrder.StatusAccepted
	o.ShipmentID = &sh.ID
	o.ProcessedAt = &processedAt
	return nil
}

func (r *fakeOrderRepo) Reject(_ context.Context, orderID uuid.UUID, reason string, processedAt time.Time) error {
	o, ok := r.orders[orderID]
	if !ok {
		return appErrors.NotFound("order", "order not found")
	}
	if o.Status != domainOrder.StatusPending {
		return appErrors.InvalidState("order", string(o.Status), string(domainOrder.StatusRejected))
	}
	o.Status = domainOrder.StatusRejected
	o.RejectionReason = &reason
	o.ProcessedAt = &processedAt
	return nil
}

type orderFixture struct {
	svc        *Service
	users      *fakeUserRepo
	orders     *fakeOrderRepo
	customerID uuid.UUID
	providerID uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	users := newFakeUserRepo()
	orders := newFakeOrderRepo()

	return &orderFixture{
		svc:        NewService(orders, users),
		users:      users,
		orders:     orders,
		customerID: users.add(domainUser.RoleCustomer, true),
		providerID: users.add(domainUser.RoleProvider, true),
	}
}

func validCreateRequest(providerID uuid.UUID) *CreateOrderRequest {
	return &CreateOrderRequest{
		ProviderID:       providerID,
		GoodsDescription: "vaccine shipment, cold chain",
		PickupAddress:    "45 Le Duan Boulevard, Danang",
		DeliveryAddress:  "102 Tran Hung Dao Street, Hue",
	}
}

func TestOrderService_Create(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, f.customerID, validCreateRequest(f.providerID))
	require.NoError(t, err)
	assert.Equal(t, domainOrder.StatusPending, resp.Status)
	assert.Equal(t, f.customerID, resp.CustomerID)
	assert.Nil(t, resp.ShipmentID)
}

func TestOrderService_Create_PartyChecks(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	// Target must hold the provider role.
	otherCustomer := f.users.add(domainUser.RoleCustomer, true)
	_, err := f.svc.Create(ctx, f.customerID, validCreateRequest(otherCustomer))
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidRole))

	inactiveProvider := f.users.add(domainUser.RoleProvider, false)
	_, err = f.svc.Create(ctx, f.customerID, validCreateRequest(inactiveProvider))
	assert.True(t, appErrors.IsKind(err, appErrors.KindInactiveAccount))

	_, err = f.svc.Create(ctx, f.customerID, validCreateRequest(uuid.New()))
	assert.True(t, appErrors.IsKind(err, appErrors.KindNotFound))

	// Only customers place orders.
	_, err = f.svc.Create(ctx, f.providerID, validCreateRequest(f.providerID))
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidRole))
}

func TestOrderService_Create_ThresholdChecks(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	low, high := 8.0, 2.0
	req := validCreateRequest(f.providerID)
	req.RequiresTemperatureTracking = true
	req.TempMin = &low
	req.TempMax = &high
	_, err := f.svc.Create(ctx, f.customerID, req)
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))

	// The same range is accepted when tracking is off.
	req.RequiresTemperatureTracking = false
	_, err = f.svc.Create(ctx, f.customerID, req)
	require.NoError(t, err)
}

func TestOrderService_Accept(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customerID, validCreateRequest(f.providerID))
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, uuid.New(), created.ID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	resp, err := f.svc.Accept(ctx, f.providerID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domainOrder.StatusAccepted, resp.Status)
	require.NotNil(t, resp.ShipmentID)
	assert.NotNil(t, resp.ProcessedAt)

	sh := f.orders.shipments[*resp.ShipmentID]
	require.NotNil(t, sh)
	assert.Equal(t, domainShipment.StatusPending, sh.Status)
	assert.Equal(t, created.GoodsDescription, sh.GoodsDescription)

	// The decision is spent.
	_, err = f.svc.Accept(ctx, f.providerID, created.ID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState))
	_, err = f.svc.Reject(ctx, f.providerID, created.ID, &RejectOrderRequest{Reason: "no capacity"})
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState))
}

func TestOrderService_Reject(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customerID, validCreateRequest(f.providerID))
	require.NoError(t, err)

	resp, err := f.svc.Reject(ctx, f.providerID, created.ID, &RejectOrderRequest{Reason: "no cold chain capacity this week"})
	require.NoError(t, err)
	assert.Equal(t, domainOrder.StatusRejected, resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Contains(t, *resp.RejectionReason, "no cold chain capacity")
	assert.Nil(t, resp.ShipmentID)

	_, err = f.svc.Accept(ctx, f.providerID, created.ID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState))
}

func TestOrderService_GetByID_Scoping(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.customerID, validCreateRequest(f.providerID))
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, access.Actor{ID: f.customerID, Role: domainUser.RoleCustomer}, created.ID)
	require.NoError(t, err)
	_, err = f.svc.GetByID(ctx, access.Actor{ID: f.providerID, Role: domainUser.RoleProvider}, created.ID)
	require.NoError(t, err)

	stranger := f.users.add(domainUser.RoleCustomer, true)
	_, err = f.svc.GetByID(ctx, access.Actor{ID: stranger, Role: domainUser.RoleCustomer}, created.ID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	shipper := f.users.add(domainUser.RoleShipper, true)
	_, err = f.svc.GetByID(ctx, access.Actor{ID: shipper, Role: domainUser.RoleShipper}, created.ID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))
}

func TestOrderService_List_Scoping(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.customerID, validCreateRequest(f.providerID))
	require.NoError(t, err)
	otherCustomer := f.users.add(domainUser.RoleCustomer, true)
	_, err = f.svc.Create(ctx, otherCustomer, validCreateRequest(f.providerID))
	require.NoError(t, err)

	got, err := f.svc.List(ctx, access.Actor{ID: f.customerID, Role: domainUser.RoleCustomer}, &OrderFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, got.Orders, 1)

	got, err = f.svc.List(ctx, access.Actor{ID: f.providerID, Role: domainUser.RoleProvider}, &OrderFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, got.Orders, 2)

	_, err = f.svc.List(ctx, access.Actor{ID: uuid.New(), Role: domainUser.RoleAdmin}, &OrderFilterRequest{})
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))
}
