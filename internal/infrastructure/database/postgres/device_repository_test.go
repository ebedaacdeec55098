package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargo-tracker/internal/domain/device"
	"cargo-tracker/internal/domain/shipment"
	"cargo-tracker/internal/domain/user"
	appErrors "cargo-tracker/pkg/errors"
)

func TestDeviceRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceRepository(db)
	ctx := context.Background()

	providerID := seedTestUser(t, db, user.RoleProvider)
	d := &device.Device{
		HardwareUID: "TRK-0001",
		ProviderID:  providerID,
	}
	require.NoError(t, repo.Create(ctx, d))
	assert.Equal(t, device.StatusAvailable, d.Status)

	got, err := repo.GetByHardwareUID(ctx, "TRK-0001")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, 0, got.TotalTrips)

	dup := &device.Device{HardwareUID: "TRK-0001", ProviderID: providerID}
	err = repo.Create(ctx, dup)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAlreadyExists))
}

func TestDeviceRepository_UpdateLastSeen_Monotonic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceRepository(db)
	ctx := context.Background()

	d := seedDevice(t, db, seedTestUser(t, db, user.RoleProvider), device.StatusAvailable)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastSeen(ctx, d.ID, now))

	// An older timestamp from a redelivered message must not regress it.
	require.NoError(t, repo.UpdateLastSeen(ctx, d.ID, now.Add(-time.Hour)))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSeenAt)
	assert.WithinDuration(t, now, *got.LastSeenAt, time.Second)

	// A newer one advances it.
	later := now.Add(time.Minute)
	require.NoError(t, repo.UpdateLastSeen(ctx, d.ID, later))
	got, err = repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, later, *got.LastSeenAt, time.Second)
}

func TestDeviceRepository_UpdateBattery(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceRepository(db)
	ctx := context.Background()

	d := seedDevice(t, db, seedTestUser(t, db, user.RoleProvider), device.StatusAvailable)

	require.NoError(t, repo.UpdateBattery(ctx, d.ID, 42))
	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BatteryLevel)
	assert.Equal(t, 42, *got.BatteryLevel)

	err = repo.UpdateBattery(ctx, d.ID, 101)
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
	err = repo.UpdateBattery(ctx, d.ID, -1)
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
}

func TestDeviceRepository_Release_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceRepository(db)
	shipmentRepo := NewShipmentRepository(db)
	ctx := context.Background()

	s := seedShipment(t, db, shipment.StatusAssigned)
	d := seedDevice(t, db, s.ProviderID, device.StatusAvailable)
	require.NoError(t, shipmentRepo.AssignDevice(ctx, s.ID, d.ID))

	require.NoError(t, repo.Release(ctx, d.ID, s.ID))
	// A duplicate release finds no matching binding and counts nothing.
	require.NoError(t, repo.Release(ctx, d.ID, s.ID))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CurrentShipmentID)
	assert.Equal(t, 1, got.TotalTrips)
}

func TestDeviceRepository_Retire(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceRepository(db)
	shipmentRepo := NewShipmentRepository(db)
	ctx := context.Background()

	s := seedShipment(t, db, shipment.StatusAssigned)
	bound := seedDevice(t, db, s.ProviderID, device.StatusAvailable)
	require.NoError(t, shipmentRepo.AssignDevice(ctx, s.ID, bound.ID))

	err := repo.Retire(ctx, bound.ID)
	assert.True(t, appErrors.IsKind(err, appErrors.KindConflict))

	free := seedDevice(t, db, s.ProviderID, device.StatusAvailable)
	require.NoError(t, repo.Retire(ctx, free.ID))

	got, err := repo.GetByID(ctx, free.ID)
	require.NoError(t, err)
	assert.Equal(t, device.StatusRetired, got.Status)
}

func TestDeviceRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceRepository(db)
	ctx := context.Background()

	providerID := seedTestUser(t, db, user.RoleProvider)
	seedDevice(t, db, providerID, device.StatusAvailable)
	seedDevice(t, db, providerID, device.StatusMaintenance)
	otherProvider := seedTestUser(t, db, user.RoleProvider)
	seedDevice(t, db, otherProvider, device.StatusAvailable)

	got, total, err := repo.List(ctx, &device.Filter{ProviderID: &providerID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, got, 2)

	status := device.StatusAvailable
	_, total, err = repo.List(ctx, &device.Filter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	unbound := true
	_, total, err = repo.List(ctx, &device.Filter{Unbound: &unbound})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestDeviceRepository_GetStatistics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeviceRepository(db)
	ctx := context.Background()

	providerID := seedTestUser(t, db, user.RoleProvider)
	seedDevice(t, db, providerID, device.StatusAvailable)
	seedDevice(t, db, providerID, device.StatusInTransit)
	low := seedDevice(t, db, providerID, device.StatusAvailable)
	require.NoError(t, repo.UpdateBattery(ctx, low.ID, 10))

	stats, err := repo.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDevices)
	assert.Equal(t, 2, stats.AvailableDevices)
	assert.Equal(t, 1, stats.InTransitDevices)
	assert.Equal(t, 1, stats.LowBatteryDevices)
}
