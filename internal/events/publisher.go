package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cargo-tracker/internal/config"
	"cargo-tracker/internal/domain/device"
	"cargo-tracker/internal/logger"
	pkgmqtt "cargo-tracker/pkg/mqtt"
)

// Publisher emits assignment and device-config changes to the ingestion
// service. Publishing is fire-and-forget: failures are logged and swallowed
// so they can never fail the originating business transaction.
type Publisher interface {
	PublishAssignment(deviceID, shipmentID uuid.UUID, action string)
	PublishDeviceConfig(d *device.Device)
}

type MQTTPublisher struct {
	client *pkgmqtt.Client
	cfg    *config.MQTTConfig
}

func NewMQTTPublisher(client *pkgmqtt.Client, cfg *config.MQTTConfig) *MQTTPublisher {
	return &MQTTPublisher{client: client, cfg: cfg}
}

func (p *MQTTPublisher) PublishAssignment(deviceID, shipmentID uuid.UUID, action string) {
	event := AssignmentEvent{
		DeviceID:   deviceID,
		ShipmentID: shipmentID,
		Action:     action,
		Timestamp:  time.Now().UTC(),
	}

	p.publish(p.cfg.AssignmentTopic, event,
		zap.String("device_id", deviceID.String()),
		zap.String("shipment_id", shipmentID.String()),
		zap.String("action", action),
	)
}

func (p *MQTTPublisher) PublishDeviceConfig(d *device.Device) {
	event := DeviceConfigEvent{
		DeviceID:    d.ID,
		HardwareUID: d.HardwareUID,
		Name:        d.DeviceName,
		Model:       d.Model,
		ShipmentID:  d.CurrentShipmentID,
		IsActive:    d.Status != device.StatusRetired,
		Timestamp:   time.Now().UTC(),
	}

	p.publish(p.cfg.DeviceConfigTopic, event,
		zap.String("device_id", d.ID.String()),
		zap.String("hardware_uid", d.HardwareUID),
		zap.String("status", string(d.Status)),
	)
}

func (p *MQTTPublisher) publish(topic string, event interface{}, fields ...zap.Field) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode outbound event",
			append(fields, zap.String("topic", topic), zap.Error(err))...)
		return
	}

	if err := p.client.Publish(topic, byte(p.cfg.QoS), false, payload); err != nil {
		logger.Error("Failed to publish outbound event",
			append(fields, zap.String("topic", topic), zap.Error(err))...)
		return
	}

	logger.Debug("Published outbound event",
		append(fields, zap.String("topic", topic))...)
}
