package shipment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargo-tracker/internal/access"
	domainDevice "cargo-tracker/internal/domain/device"
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
	var out []*domainUser.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
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

type fakeDeviceRepo struct {
	devices map[uuid.UUID]*domainDevice.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[uuid.UUID]*domainDevice.Device)}
}

func (r *fakeDeviceRepo) add(providerID uuid.UUID, status domainDevice.DeviceStatus) uuid.UUID {
	id := uuid.New()
	r.devices[id] = &domainDevice.Device{
		ID:          id,
		HardwareUID: "HW-" + id.String()[:8],
		ProviderID:  providerID,
		Status:      status,
	}
	return id
}

func (r *fakeDeviceRepo) Create(_ context.Context, d *domainDevice.Device) error {
	r.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) GetByID(_ context.Context, id uuid.UUID) (*domainDevice.Device, error) {
	d, ok := r.devices[id]
	if !ok {
		return nil, appErrors.NotFound("device", "device not found")
	}
	return d, nil
}

func (r *fakeDeviceRepo) GetByHardwareUID(_ context.Context, hardwareUID string) (*domainDevice.Device, error) {
	for _, d := range r.devices {
		if d.HardwareUID == hardwareUID {
			return d, nil
		}
	}
	return nil, appErrors.NotFound("device", "device not found")
}

func (r *fakeDeviceRepo) Update(_ context.Context, d *domainDevice.Device) error {
	r.devices[d.ID] = d
	return nil
}

func (r *fakeDeviceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domainDevice.DeviceStatus) error {
	d, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	d.Status = status
	return nil
}

func (r *fakeDeviceRepo) UpdateBattery(_ context.Context, id uuid.UUID, level int) error {
	d, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	d.BatteryLevel = &level
	return nil
}

func (r *fakeDeviceRepo) UpdateLastSeen(_ context.Context, id uuid.UUID, seenAt time.Time) error {
	d, err := r.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	if d.LastSeenAt == nil || d.LastSeenAt.Before(seenAt) {
		d.LastSeenAt = &seenAt
	}
	return nil
}

func (r *fakeDeviceRepo) Release(_ context.Context, deviceID, shipmentID uuid.UUID) error {
	d, ok := r.devices[deviceID]
	if !ok {
		return appErrors.NotFound("device", "device not found")
	}
	if d.CurrentShipmentID == nil || *d.CurrentShipmentID != shipmentID {
		return nil
	}
	d.CurrentShipmentID = nil
	d.TotalTrips++
	if d.Status == domainDevice.StatusInTransit {
		d.Status = domainDevice.StatusAvailable
	}
	return nil
}

func (r *fakeDeviceRepo) Retire(_ context.Context, id uuid.UUID) error {
	d, ok := r.devices[id]
	if !ok {
		return appErrors.NotFound("device", "device not found")
	}
	if d.CurrentShipmentID != nil {
		return appErrors.Conflict("device is bound to a shipment")
	}
	d.Status = domainDevice.StatusRetired
	return nil
}

func (r *fakeDeviceRepo) List(_ context.Context, _ *domainDevice.Filter) ([]*domainDevice.Device, int64, error) {
	var out []*domainDevice.Device
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

func (r *fakeDeviceRepo) GetStatistics(_ context.Context) (*domainDevice.Statistics, error) {
	stats := &domainDevice.Statistics{TotalDevices: len(r.devices)}
	return stats, nil
}

// fakeShipmentRepo mirrors the transactional semantics of the real store:
// device binding and release move with the shipment transitions.
type fakeShipmentRepo struct {
	shipments map[uuid.UUID]*domainShipment.Shipment
	devices   *fakeDeviceRepo
}

func newFakeShipmentRepo(devices *fakeDeviceRepo) *fakeShipmentRepo {
	return &fakeShipmentRepo{
		shipments: make(map[uuid.UUID]*domainShipment.Shipment),
		devices:   devices,
	}
}

func (r *fakeShipmentRepo) add(customerID, providerID uuid.UUID) uuid.UUID {
	id := uuid.New()
	r.shipments[id] = &domainShipment.Shipment{
		ID:               id,
		CustomerID:       customerID,
		ProviderID:       providerID,
		OrderID:          uuid.New(),
		Status:           domainShipment.StatusPending,
		GoodsDescription: "frozen seafood",
		PickupAddress:    "12 Harbour Road, Haiphong",
		DeliveryAddress:  "88 Market Street, Hanoi",
		CreatedAt:        time.Now(),
	}
	return id
}

func (r *fakeShipmentRepo) Create(_ context.Context, sh *domainShipment.Shipment) error {
	if sh.ID == uuid.Nil {
		sh.ID = uuid.New()
	}
	r.shipments[sh.ID] = sh
	return nil
}

func (r *fakeShipmentRepo) GetByID(_ context.Context, id uuid.UUID) (*domainShipment.Shipment, error) {
	sh, ok := r.shipments[id]
	if !ok {
		return nil, appErrors.NotFound("shipment", "shipment not found")
	}
	copied := *sh
	return &copied, nil
}

func (r *fakeShipmentRepo) Update(_ context.Context, sh *domainShipment.Shipment) error {
	stored, ok := r.shipments[sh.ID]
	if !ok {
		return appErrors.NotFound("shipment", "shipment not found")
	}
	stored.GoodsDescription = sh.GoodsDescription
	stored.PickupAddress = sh.PickupAddress
	stored.DeliveryAddress = sh.DeliveryAddress
	stored.EstimatedDeliveryAt = sh.EstimatedDeliveryAt
	return nil
}

func (r *fakeShipmentRepo) List(_ context.Context, filter *domainShipment.Filter) ([]*domainShipment.Shipment, int64, error) {
	var out []*domainShipment.Shipment
	for _, sh := range r.shipments {
		if filter.CustomerID != nil && sh.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.ProviderID != nil && sh.ProviderID != *filter.ProviderID {
			continue
		}
		if filter.ShipperID != nil && (sh.ShipperID == nil || *sh.ShipperID != *filter.ShipperID) {
			continue
		}
		if filter.Status != nil && sh.Status != *filter.Status {
			continue
		}
		out = append(out, sh)
	}
	return out, int64(len(out)), nil
}

func (r *fakeShipmentRepo) ListByDeviceID(_ context.Context, deviceID uuid.UUID) ([]*domainShipment.Shipment, error) {
	var out []*domainShipment.Shipment
	for _, sh := range r.shipments {
		if sh.DeviceID != nil && *sh.DeviceID == deviceID {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (r *fakeShipmentRepo) AssignShipper(_ context.Context, shipmentID, shipperID uuid.UUID) error {
	sh, ok := r.shipments[shipmentID]
	if !ok {
		return appErrors.NotFound("shipment", "shipment not found")
	}
	if sh.Status != domainShipment.StatusPending {
		return appErrors.InvalidState("shipment", string(sh.Status), string(domainShipment.StatusAssigned))
	}
	sh.ShipperID = &shipperID
	sh.Status = domainShipment.StatusAssigned
	return nil
}

func (r *fakeShipmentRepo) AssignDevice(_ context.Context, shipmentID, deviceID uuid.UUID) error {
	sh, ok := r.shipments[shipmentID]
	if !ok {
		return appErrors.NotFound("shipment", "shipment not found")
	}
	d, ok := r.devices.devices[deviceID]
	if !ok {
		return appErrors.NotFound("device", "device not found")
	}
	if d.Status != domainDevice.StatusAvailable || d.CurrentShipmentID != nil {
		return domainShipment.ErrDeviceConflict
	}
	d.CurrentShipmentID = &shipmentID
	sh.DeviceID = &deviceID
	return nil
}

func (r *fakeShipmentRepo) StartTransit(_ context.Context, shipmentID, deviceID uuid.UUID) error {
	sh, ok := r.shipments[shipmentID]
	if !ok {
		return appErrors.NotFound("shipment", "shipment not found")
	}
	if sh.Status != domainShipment.StatusAssigned {
		return appErrors.InvalidState("shipment", string(sh.Status), string(domainShipment.StatusInTransit))
	}
	sh.Status = domainShipment.StatusInTransit
	if d, ok := r.devices.devices[deviceID]; ok {
		d.Status = domainDevice.StatusInTransit
	}
	return nil
}

func (r *fakeShipmentRepo) Complete(_ context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID, deliveredAt time.Time) error {
	sh, ok := r.shipments[shipmentID]
	if !ok {
		return appErrors.NotFound("shipment", "shipment not found")
	}
	if sh.Status != domainShipment.StatusInTransit {
		return appErrors.InvalidState("shipment", string(sh.Status), string(domainShipment.StatusCompleted))
	}
	sh.Status = domainShipment.StatusCompleted
	sh.ActualDeliveryAt = &deliveredAt
	if deviceID != nil {
		return r.devices.Release(context.Background(), *deviceID, shipmentID)
	}
	return nil
}

func (r *fakeShipmentRepo) Cancel(_ context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID) error {
	sh, ok := r.shipments[shipmentID]
	if !ok {
		return appErrors.NotFound("shipment", "shipment not found")
	}
	switch sh.Status {
	case domainShipment.StatusPending, domainShipment.StatusAssigned, domainShipment.StatusInTransit:
	default:
		return appErrors.InvalidState("shipment", string(sh.Status), string(domainShipment.StatusCancelled))
	}
	sh.Status = domainShipment.StatusCancelled
	if deviceID != nil {
		return r.devices.Release(context.Background(), *deviceID, shipmentID)
	}
	return nil
}

func (r *fakeShipmentRepo) Fail(_ context.Context, shipmentID uuid.UUID, deviceID *uuid.UUID, reason string) error {
	sh, ok := r.shipments[shipmentID]
	if !ok {
		return appErrors.NotFound("shipment", "shipment not found")
	}
	if sh.Status != domainShipment.StatusInTransit {
		return appErrors.InvalidState("shipment", string(sh.Status), string(domainShipment.StatusFailed))
	}
	sh.Status = domainShipment.StatusFailed
	sh.FailureReason = &reason
	if deviceID != nil {
		return r.devices.Release(context.Background(), *deviceID, shipmentID)
	}
	return nil
}

func (r *fakeShipmentRepo) GetStatistics(_ context.Context, providerID *uuid.UUID) (*domainShipment.Statistics, error) {
	stats := &domainShipment.Statistics{ByStatus: make(map[string]int)}
	for _, sh := range r.shipments {
		if providerID != nil && sh.ProviderID != *providerID {
			continue
		}
		stats.TotalShipments++
		stats.ByStatus[string(sh.Status)]++
	}
	return stats, nil
}

type publishedAssignment struct {
	DeviceID   uuid.UUID
	ShipmentID uuid.UUID
	Action     string
}

type fakePublisher struct {
	mu          sync.Mutex
	assignments []publishedAssignment
	configs     []uuid.UUID
}

func (p *fakePublisher) PublishAssignment(deviceID, shipmentID uuid.UUID, action string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.assignments = append(p.assignments, publishedAssignment{deviceID, shipmentID, action})
}

func (p *fakePublisher) PublishDeviceConfig(d *domainDevice.Device) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.configs = append(p.configs, d.ID)
}

type fixture struct {
	svc        *Service
	users      *fakeUserRepo
	devices    *fakeDeviceRepo
	shipments  *fakeShipmentRepo
	publisher  *fakePublisher
	customerID uuid.UUID
	providerID uuid.UUID
	shipperID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newFakeUserRepo()
	devices := newFakeDeviceRepo()
	shipments := newFakeShipmentRepo(devices)
	publisher := &fakePublisher{}

	return &fixture{
		svc:        NewService(shipments, users, devices, publisher),
		users:      users,
		devices:    devices,
		shipments:  shipments,
		publisher:  publisher,
		customerID: users.add(domainUser.RoleCustomer, true),
		providerID: users.add(domainUser.RoleProvider, true),
		shipperID:  users.add(domainUser.RoleShipper, true),
	}
}

func TestService_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shipmentID := f.shipments.add(f.customerID, f.providerID)
	deviceID := f.devices.add(f.providerID, domainDevice.StatusAvailable)

	resp, err := f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)
	assert.Equal(t, domainShipment.StatusAssigned, resp.Status)
	require.NotNil(t, resp.ShipperID)
	assert.Equal(t, f.shipperID, *resp.ShipperID)

	resp, err = f.svc.AssignDevice(ctx, f.providerID, shipmentID, &AssignDeviceRequest{DeviceID: deviceID})
	require.NoError(t, err)
	require.NotNil(t, resp.DeviceID)
	assert.Equal(t, deviceID, *resp.DeviceID)
	// Binding alone keeps the device available until transit starts.
	assert.Equal(t, domainDevice.StatusAvailable, f.devices.devices[deviceID].Status)

	resp, err = f.svc.StartTransit(ctx, f.providerID, shipmentID)
	require.NoError(t, err)
	assert.Equal(t, domainShipment.StatusInTransit, resp.Status)
	assert.Equal(t, domainDevice.StatusInTransit, f.devices.devices[deviceID].Status)

	resp, err = f.svc.Complete(ctx, f.shipperID, shipmentID, &CompleteShipmentRequest{})
	require.NoError(t, err)
	assert.Equal(t, domainShipment.StatusCompleted, resp.Status)
	assert.NotNil(t, resp.ActualDeliveryAt)

	d := f.devices.devices[deviceID]
	assert.Equal(t, domainDevice.StatusAvailable, d.Status)
	assert.Nil(t, d.CurrentShipmentID)
	assert.Equal(t, 1, d.TotalTrips)

	require.Len(t, f.publisher.assignments, 2)
	assert.Equal(t, "assign", f.publisher.assignments[0].Action)
	assert.Equal(t, "unassign", f.publisher.assignments[1].Action)
	assert.Equal(t, deviceID, f.publisher.assignments[0].DeviceID)
	assert.Equal(t, shipmentID, f.publisher.assignments[1].ShipmentID)
}

func TestService_AssignShipper_Checks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipmentID := f.shipments.add(f.customerID, f.providerID)

	otherProvider := f.users.add(domainUser.RoleProvider, true)
	_, err := f.svc.AssignShipper(ctx, otherProvider, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	_, err = f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.customerID})
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidRole))

	inactiveShipper := f.users.add(domainUser.RoleShipper, false)
	_, err = f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: inactiveShipper})
	assert.True(t, appErrors.IsKind(err, appErrors.KindInactiveAccount))

	_, err = f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)

	// Already assigned, the transition is spent.
	_, err = f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState))
}

func TestService_AssignDevice_Checks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipmentID := f.shipments.add(f.customerID, f.providerID)

	deviceID := f.devices.add(f.providerID, domainDevice.StatusAvailable)
	_, err := f.svc.AssignDevice(ctx, f.providerID, shipmentID, &AssignDeviceRequest{DeviceID: deviceID})
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState), "no device before a shipper is assigned")

	_, err = f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)

	maintenanceDevice := f.devices.add(f.providerID, domainDevice.StatusMaintenance)
	_, err = f.svc.AssignDevice(ctx, f.providerID, shipmentID, &AssignDeviceRequest{DeviceID: maintenanceDevice})
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState))

	otherProvider := f.users.add(domainUser.RoleProvider, true)
	foreignDevice := f.devices.add(otherProvider, domainDevice.StatusAvailable)
	_, err = f.svc.AssignDevice(ctx, f.providerID, shipmentID, &AssignDeviceRequest{DeviceID: foreignDevice})
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	_, err = f.svc.AssignDevice(ctx, f.providerID, shipmentID, &AssignDeviceRequest{DeviceID: deviceID})
	require.NoError(t, err)
	require.Len(t, f.publisher.assignments, 1)
	assert.Equal(t, "assign", f.publisher.assignments[0].Action)

	// A second shipment cannot claim the bound device.
	second := f.shipments.add(f.customerID, f.providerID)
	_, err = f.svc.AssignShipper(ctx, f.providerID, second, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)
	_, err = f.svc.AssignDevice(ctx, f.providerID, second, &AssignDeviceRequest{DeviceID: deviceID})
	assert.True(t, appErrors.IsKind(err, appErrors.KindConflict))
}

func TestService_StartTransit_RequiresDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipmentID := f.shipments.add(f.customerID, f.providerID)

	_, err := f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)

	_, err = f.svc.StartTransit(ctx, f.providerID, shipmentID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
}

func TestService_Complete_OnlyAssignedShipper(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipmentID := f.shipments.add(f.customerID, f.providerID)
	deviceID := f.devices.add(f.providerID, domainDevice.StatusAvailable)

	_, err := f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)
	_, err = f.svc.AssignDevice(ctx, f.providerID, shipmentID, &AssignDeviceRequest{DeviceID: deviceID})
	require.NoError(t, err)
	_, err = f.svc.StartTransit(ctx, f.providerID, shipmentID)
	require.NoError(t, err)

	otherShipper := f.users.add(domainUser.RoleShipper, true)
	_, err = f.svc.Complete(ctx, otherShipper, shipmentID, &CompleteShipmentRequest{})
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	_, err = f.svc.Complete(ctx, f.shipperID, shipmentID, &CompleteShipmentRequest{})
	require.NoError(t, err)
}

func TestService_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipmentID := f.shipments.add(f.customerID, f.providerID)

	shipperActor := access.Actor{ID: f.shipperID, Role: domainUser.RoleShipper}
	_, err := f.svc.Cancel(ctx, shipperActor, shipmentID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	customerActor := access.Actor{ID: f.customerID, Role: domainUser.RoleCustomer}
	resp, err := f.svc.Cancel(ctx, customerActor, shipmentID)
	require.NoError(t, err)
	assert.Equal(t, domainShipment.StatusCancelled, resp.Status)

	_, err = f.svc.Cancel(ctx, customerActor, shipmentID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState))
}

func TestService_Cancel_ReleasesDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipmentID := f.shipments.add(f.customerID, f.providerID)
	deviceID := f.devices.add(f.providerID, domainDevice.StatusAvailable)

	_, err := f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)
	_, err = f.svc.AssignDevice(ctx, f.providerID, shipmentID, &AssignDeviceRequest{DeviceID: deviceID})
	require.NoError(t, err)

	providerActor := access.Actor{ID: f.providerID, Role: domainUser.RoleProvider}
	_, err = f.svc.Cancel(ctx, providerActor, shipmentID)
	require.NoError(t, err)

	d := f.devices.devices[deviceID]
	assert.Nil(t, d.CurrentShipmentID)
	assert.Equal(t, "unassign", f.publisher.assignments[len(f.publisher.assignments)-1].Action)
}

func TestService_Fail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipmentID := f.shipments.add(f.customerID, f.providerID)
	deviceID := f.devices.add(f.providerID, domainDevice.StatusAvailable)

	_, err := f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)
	_, err = f.svc.AssignDevice(ctx, f.providerID, shipmentID, &AssignDeviceRequest{DeviceID: deviceID})
	require.NoError(t, err)

	// Failing is only legal in transit.
	_, err = f.svc.Fail(ctx, f.shipperID, shipmentID, &FailShipmentRequest{Reason: "truck breakdown"})
	assert.True(t, appErrors.IsKind(err, appErrors.KindInvalidState))

	_, err = f.svc.StartTransit(ctx, f.providerID, shipmentID)
	require.NoError(t, err)

	resp, err := f.svc.Fail(ctx, f.shipperID, shipmentID, &FailShipmentRequest{Reason: "truck breakdown on highway 5"})
	require.NoError(t, err)
	assert.Equal(t, domainShipment.StatusFailed, resp.Status)
	require.NotNil(t, resp.FailureReason)
	assert.Contains(t, *resp.FailureReason, "truck breakdown")

	d := f.devices.devices[deviceID]
	assert.Nil(t, d.CurrentShipmentID)
	assert.Equal(t, domainDevice.StatusAvailable, d.Status)
}

func TestService_GetByID_Scoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shipmentID := f.shipments.add(f.customerID, f.providerID)

	_, err := f.svc.GetByID(ctx, access.Actor{ID: f.customerID, Role: domainUser.RoleCustomer}, shipmentID)
	require.NoError(t, err)

	otherCustomer := f.users.add(domainUser.RoleCustomer, true)
	_, err = f.svc.GetByID(ctx, access.Actor{ID: otherCustomer, Role: domainUser.RoleCustomer}, shipmentID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	// Shippers gain visibility only once assigned.
	_, err = f.svc.GetByID(ctx, access.Actor{ID: f.shipperID, Role: domainUser.RoleShipper}, shipmentID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	_, err = f.svc.AssignShipper(ctx, f.providerID, shipmentID, &AssignShipperRequest{ShipperID: f.shipperID})
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, access.Actor{ID: f.shipperID, Role: domainUser.RoleShipper}, shipmentID)
	require.NoError(t, err)

	// Admins manage users, not cargo.
	admin := f.users.add(domainUser.RoleAdmin, true)
	_, err = f.svc.GetByID(ctx, access.Actor{ID: admin, Role: domainUser.RoleAdmin}, shipmentID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))
}

func TestService_GetStatistics_Scoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otherProvider := f.users.add(domainUser.RoleProvider, true)
	f.shipments.add(f.customerID, f.providerID)
	f.shipments.add(f.customerID, f.providerID)
	f.shipments.add(f.customerID, otherProvider)

	// Aggregates are fleet data: customers and shippers have no claim on them.
	_, err := f.svc.GetStatistics(ctx, access.Actor{ID: f.customerID, Role: domainUser.RoleCustomer})
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))
	_, err = f.svc.GetStatistics(ctx, access.Actor{ID: f.shipperID, Role: domainUser.RoleShipper})
	assert.True(t, appErrors.IsKind(err, appErrors.KindAccessDenied))

	stats, err := f.svc.GetStatistics(ctx, access.Actor{ID: f.providerID, Role: domainUser.RoleProvider})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalShipments)

	stats, err = f.svc.GetStatistics(ctx, access.Actor{ID: otherProvider, Role: domainUser.RoleProvider})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalShipments)

	admin := f.users.add(domainUser.RoleAdmin, true)
	stats, err = f.svc.GetStatistics(ctx, access.Actor{ID: admin, Role: domainUser.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalShipments)
}
