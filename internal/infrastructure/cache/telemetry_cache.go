package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cargo-tracker/internal/config"
)

// DefaultSnapshotTTL bounds how long a stale snapshot is served after a
// device goes quiet.
const DefaultSnapshotTTL = 30 * time.Minute

// Snapshot is the last-known telemetry state of a device, kept hot for the
// read path so device detail requests do not wait on the ingestion service.
type Snapshot struct {
	DeviceID       uuid.UUID  `json:"device_id"`
	UpdateType     string     `json:"update_type"`
	BatteryLevel   *int       `json:"battery_level,omitempty"`
	SignalStrength *int       `json:"signal_strength,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	IsOnline       *bool      `json:"is_online,omitempty"`
	LastSeenAt     *time.Time `json:"last_seen_at,omitempty"`
	ReceivedAt     time.Time  `json:"received_at"`
}

// TelemetryCache stores one Snapshot per device in redis.
type TelemetryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTelemetryCache(cfg *config.RedisConfig) *TelemetryCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &TelemetryCache{
		client: client,
		ttl:    DefaultSnapshotTTL,
	}
}

func snapshotKey(deviceID uuid.UUID) string {
	return "telemetry:snapshot:" + deviceID.String()
}

// Put overwrites the stored snapshot for the device and refreshes the TTL.
func (c *TelemetryCache) Put(ctx context.Context, snapshot *Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode telemetry snapshot: %w", err)
	}

	if err := c.client.Set(ctx, snapshotKey(snapshot.DeviceID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store telemetry snapshot: %w", err)
	}

	return nil
}

// Get returns the stored snapshot, or (nil, nil) when the device has no
// recent telemetry.
func (c *TelemetryCache) Get(ctx context.Context, deviceID uuid.UUID) (*Snapshot, error) {
	payload, err := c.client.Get(ctx, snapshotKey(deviceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry snapshot: %w", err)
	}

	return &snapshot, nil
}

func (c *TelemetryCache) Delete(ctx context.Context, deviceID uuid.UUID) error {
	if err := c.client.Del(ctx, snapshotKey(deviceID)).Err(); err != nil {
		return fmt.Errorf("failed to delete telemetry snapshot: %w", err)
	}
	return nil
}

func (c *TelemetryCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *TelemetryCache) Close() error {
	return c.client.Close()
}
