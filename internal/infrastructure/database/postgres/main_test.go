package postgres

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"cargo-tracker/internal/domain/user"
	"cargo-tracker/internal/infrastructure/database/postgres/models"
)

// setupTestDB opens a per-test in-memory database and creates the schema
// with explicit DDL so the column set stays in sync with the models by
// inspection rather than by AutoMigrate.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hashed TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone_number TEXT,
  role TEXT NOT NULL,
  address TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);`
	refreshTokens := `
CREATE TABLE IF NOT EXISTS refresh_tokens (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  token TEXT NOT NULL UNIQUE,
  expires_at DATETIME NOT NULL,
  revoked INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  shipment_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  goods_description TEXT NOT NULL,
  pickup_address TEXT NOT NULL,
  delivery_address TEXT NOT NULL,
  estimated_delivery_at DATETIME,
  requires_temperature_tracking INTEGER NOT NULL DEFAULT 0,
  temp_min REAL,
  temp_max REAL,
  requires_humidity_tracking INTEGER NOT NULL DEFAULT 0,
  humidity_min REAL,
  humidity_max REAL,
  requires_location_tracking INTEGER NOT NULL DEFAULT 0,
  rejection_reason TEXT,
  processed_at DATETIME,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);`
	shipments := `
CREATE TABLE IF NOT EXISTS shipments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  shipper_id TEXT,
  device_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  goods_description TEXT NOT NULL,
  pickup_address TEXT NOT NULL,
  delivery_address TEXT NOT NULL,
  estimated_delivery_at DATETIME,
  actual_delivery_at DATETIME,
  failure_reason TEXT,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);`
	devices := `
CREATE TABLE IF NOT EXISTS devices (
  id TEXT PRIMARY KEY,
  hardware_uid TEXT NOT NULL UNIQUE,
  device_name TEXT,
  model TEXT,
  firmware_version TEXT,
  provider_id TEXT NOT NULL,
  current_shipment_id TEXT,
  status TEXT NOT NULL DEFAULT 'available',
  battery_level INTEGER,
  total_trips INTEGER NOT NULL DEFAULT 0,
  last_seen_at DATETIME,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);`

	for _, ddl := range []string{users, refreshTokens, orders, shipments, devices} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	return &DB{DB: db}
}

func seedTestUser(t *testing.T, db *DB, role user.Role) uuid.UUID {
	t.Helper()

	id := uuid.New()
	m := &models.UserModel{
		ID:             id,
		Username:       fmt.Sprintf("user-%s", id.String()[:8]),
		Email:          fmt.Sprintf("%s@example.com", id.String()[:8]),
		PasswordHashed: "$2a$10$abcdefghijklmnopqrstuv",
		FullName:       "Test User",
		Role:           string(role),
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, db.DB.Create(m).Error)
	return id
}
