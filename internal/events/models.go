package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outbound actions on the assignment topic.
const (
	ActionAssign   = "assign"
	ActionUnassign = "unassign"
)

// AssignmentEvent tells the ingestion service which shipment a device is
// reporting for.
type AssignmentEvent struct {
	DeviceID   uuid.UUID `json:"device_id"`
	ShipmentID uuid.UUID `json:"shipment_id"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

// DeviceConfigEvent mirrors device registration and status changes to the
// ingestion service.
type DeviceConfigEvent struct {
	DeviceID    uuid.UUID  `json:"device_id"`
	HardwareUID string     `json:"hardware_uid"`
	Name        *string    `json:"name,omitempty"`
	Model       *string    `json:"model,omitempty"`
	ShipmentID  *uuid.UUID `json:"shipment_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Inbound update types.
const (
	UpdateTypeHeartbeat = "heartbeat"
	UpdateTypeLocation  = "location"
	UpdateTypeStatus    = "status"
)

// Inbound event types.
const (
	EventDeviceOffline = "DEVICE_OFFLINE"
	EventDeviceOnline  = "DEVICE_ONLINE"
	EventLowBattery    = "LOW_BATTERY"
	EventTempHigh      = "TEMP_HIGH"
	EventTempLow       = "TEMP_LOW"
)

// Location is the GPS fix carried on location updates.
type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// DeviceUpdateMessage is the periodic state report from the ingestion
// service, keyed by the hardware uid printed on the unit.
type DeviceUpdateMessage struct {
	HardwareUID    string     `json:"hardware_uid"`
	UpdateType     string     `json:"update_type"`
	BatteryLevel   *int       `json:"battery_level,omitempty"`
	SignalStrength *int       `json:"signal_strength,omitempty"`
	Location       *Location  `json:"location,omitempty"`
	IsOnline       *bool      `json:"is_online,omitempty"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// DeviceEventMessage is a discrete alert raised by the ingestion service.
type DeviceEventMessage struct {
	HardwareUID string                 `json:"hardware_uid"`
	EventType   string                 `json:"event_type"`
	Severity    string                 `json:"severity"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// ParseDeviceUpdate decodes and validates an inbound device update payload.
func ParseDeviceUpdate(payload []byte) (*DeviceUpdateMessage, error) {
	var msg DeviceUpdateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("malformed device update: %w", err)
	}

	if strings.TrimSpace(msg.HardwareUID) == "" {
		return nil, fmt.Errorf("device update missing hardware_uid")
	}

	switch msg.UpdateType {
	case UpdateTypeHeartbeat, UpdateTypeLocation, UpdateTypeStatus:
	default:
		return nil, fmt.Errorf("unknown update type: %q", msg.UpdateType)
	}

	if msg.UpdateType == UpdateTypeLocation && msg.Location == nil {
		return nil, fmt.Errorf("location update missing location payload")
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	return &msg, nil
}

// ParseDeviceEvent decodes and validates an inbound device event payload.
func ParseDeviceEvent(payload []byte) (*DeviceEventMessage, error) {
	var msg DeviceEventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("malformed device event: %w", err)
	}

	if strings.TrimSpace(msg.HardwareUID) == "" {
		return nil, fmt.Errorf("device event missing hardware_uid")
	}

	switch msg.EventType {
	case EventDeviceOffline, EventDeviceOnline, EventLowBattery, EventTempHigh, EventTempLow:
	default:
		return nil, fmt.Errorf("unknown event type: %q", msg.EventType)
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	return &msg, nil
}
