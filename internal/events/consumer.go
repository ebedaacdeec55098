package events

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"cargo-tracker/internal/config"
	"cargo-tracker/internal/logger"
	pkgmqtt "cargo-tracker/pkg/mqtt"
)

// Consumer subscribes to the inbound ingestion topics and feeds parsed
// messages into the processor.
type Consumer struct {
	cfg       *config.MQTTConfig
	client    *pkgmqtt.Client
	processor *Processor

	mu            sync.Mutex
	started       bool
	subscriptions []string
}

func NewConsumer(client *pkgmqtt.Client, cfg *config.MQTTConfig, processor *Processor) (*Consumer, error) {
	if client == nil || cfg == nil {
		return nil, errors.New("mqtt client and config are required")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}

	return &Consumer{
		cfg:       cfg,
		client:    client,
		processor: processor,
	}, nil
}

// Start connects and subscribes to the device update and event topics. The
// connection is shared with the publisher, so a second Connect on an open
// client is a no-op in the paho client.
func (c *Consumer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}

	if !c.client.IsConnected() {
		if err := c.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect to broker: %w", err)
		}
	}

	type subscription struct {
		topic   string
		handler pkgmqtt.MessageHandler
	}

	subs := []subscription{}
	if c.cfg.DeviceUpdateTopic != "" {
		subs = append(subs, subscription{c.cfg.DeviceUpdateTopic, c.handleDeviceUpdate})
	}
	if c.cfg.DeviceEventTopic != "" {
		subs = append(subs, subscription{c.cfg.DeviceEventTopic, c.handleDeviceEvent})
	}
	if len(subs) == 0 {
		return errors.New("no inbound topics configured")
	}

	qos := byte(c.cfg.QoS)
	for _, sub := range subs {
		if err := c.client.Subscribe(sub.topic, qos, sub.handler); err != nil {
			return fmt.Errorf("subscribe failed for topic %s: %w", sub.topic, err)
		}
		c.subscriptions = append(c.subscriptions, sub.topic)
		logger.Info("Listening for ingestion messages", zap.String("topic", sub.topic))
	}

	c.started = true
	return nil
}

// Stop unsubscribes from the inbound topics. The shared client connection
// is left open for the publisher.
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}

	if len(c.subscriptions) > 0 {
		if err := c.client.Unsubscribe(c.subscriptions...); err != nil {
			logger.Error("Failed to unsubscribe from inbound topics", zap.Error(err))
		}
	}

	c.started = false
	c.subscriptions = nil
}

func (c *Consumer) handleDeviceUpdate(topic string, payload []byte) {
	msg, err := ParseDeviceUpdate(payload)
	if err != nil {
		logger.Warn("Invalid device update payload",
			zap.String("topic", topic), zap.Error(err))
		c.processor.Metrics().Update(func(m *BridgeMetrics) { m.Malformed++ })
		return
	}

	c.processor.EnqueueUpdate(msg)
}

func (c *Consumer) handleDeviceEvent(topic string, payload []byte) {
	msg, err := ParseDeviceEvent(payload)
	if err != nil {
		logger.Warn("Invalid device event payload",
			zap.String("topic", topic), zap.Error(err))
		c.processor.Metrics().Update(func(m *BridgeMetrics) { m.Malformed++ })
		return
	}

	c.processor.EnqueueEvent(msg)
}
