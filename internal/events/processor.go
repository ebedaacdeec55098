package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"cargo-tracker/internal/domain/device"
	"cargo-tracker/internal/infrastructure/cache"
	"cargo-tracker/internal/logger"
	appErrors "cargo-tracker/pkg/errors"
)

// SnapshotStore keeps the last-known telemetry state per device for the
// read path.
type SnapshotStore interface {
	Put(ctx context.Context, snapshot *cache.Snapshot) error
}

// Processor consumes inbound device updates and events through worker
// channels. Updates for unknown hardware uids are logged and dropped, never
// retried.
type Processor struct {
	devices   device.Repository
	snapshots SnapshotStore

	workerCount int
	updateChan  chan *DeviceUpdateMessage
	eventChan   chan *DeviceEventMessage

	// mu serializes enqueue against Stop so a transport callback in
	// flight during shutdown cannot send on a closed channel.
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	metrics *MetricsTracker
}

func NewProcessor(devices device.Repository, snapshots SnapshotStore, workerCount, bufferSize int) *Processor {
	if workerCount <= 0 {
		workerCount = 2
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}

	return &Processor{
		devices:     devices,
		snapshots:   snapshots,
		workerCount: workerCount,
		updateChan:  make(chan *DeviceUpdateMessage, bufferSize),
		eventChan:   make(chan *DeviceEventMessage, bufferSize),
		metrics:     NewMetricsTracker(),
	}
}

// Start launches the worker goroutines.
func (p *Processor) Start() {
	logger.Info("Starting event bridge processor",
		zap.Int("workers", p.workerCount),
		zap.Int("buffer_size", cap(p.updateChan)),
	)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.updateWorker()
	}

	p.wg.Add(1)
	go p.eventWorker()
}

// Stop drains the channels and waits for workers to finish. Messages
// enqueued after Stop are discarded.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.updateChan)
	close(p.eventChan)
	p.mu.Unlock()

	p.wg.Wait()
	logger.Info("Event bridge processor stopped")
}

// Metrics returns the throughput tracker.
func (p *Processor) Metrics() *MetricsTracker {
	return p.metrics
}

// EnqueueUpdate queues a device update; drops it when the buffer is full
// or the processor has stopped.
func (p *Processor) EnqueueUpdate(msg *DeviceUpdateMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.updateChan <- msg:
		p.metrics.Update(func(m *BridgeMetrics) { m.UpdatesReceived++ })
	default:
		logger.Warn("Device update buffer full, dropping message",
			zap.String("hardware_uid", msg.HardwareUID))
		p.metrics.Update(func(m *BridgeMetrics) { m.Dropped++ })
	}
}

// EnqueueEvent queues a device event; drops it when the buffer is full
// or the processor has stopped.
func (p *Processor) EnqueueEvent(msg *DeviceEventMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.eventChan <- msg:
		p.metrics.Update(func(m *BridgeMetrics) { m.EventsReceived++ })
	default:
		logger.Warn("Device event buffer full, dropping message",
			zap.String("hardware_uid", msg.HardwareUID))
		p.metrics.Update(func(m *BridgeMetrics) { m.Dropped++ })
	}
}

func (p *Processor) updateWorker() {
	defer p.wg.Done()

	for msg := range p.updateChan {
		p.processUpdate(msg)
	}
}

func (p *Processor) eventWorker() {
	defer p.wg.Done()

	for msg := range p.eventChan {
		p.processEvent(msg)
	}
}

// processUpdate applies a device update: battery and last-seen land on the
// device row, the full update lands in the snapshot store. Re-applied
// updates are harmless since everything here is an overwrite.
func (p *Processor) processUpdate(msg *DeviceUpdateMessage) {
	ctx, cancelFn := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFn()

	d, err := p.devices.GetByHardwareUID(ctx, msg.HardwareUID)
	if err != nil {
		if appErrors.IsKind(err, appErrors.KindNotFound) {
			logger.Warn("Device update for unknown hardware uid, dropping",
				zap.String("hardware_uid", msg.HardwareUID),
				zap.String("update_type", msg.UpdateType))
			p.metrics.Update(func(m *BridgeMetrics) { m.UnknownDevices++ })
			return
		}
		logger.Error("Failed to resolve device for update",
			zap.String("hardware_uid", msg.HardwareUID), zap.Error(err))
		p.metrics.Update(func(m *BridgeMetrics) { m.Failed++ })
		return
	}

	if msg.BatteryLevel != nil {
		if device.ValidateBatteryLevel(*msg.BatteryLevel) != nil {
			logger.Warn("Discarding out-of-range battery level",
				zap.String("hardware_uid", msg.HardwareUID),
				zap.Int("battery_level", *msg.BatteryLevel))
		} else if err := p.devices.UpdateBattery(ctx, d.ID, *msg.BatteryLevel); err != nil {
			logger.Error("Failed to update device battery",
				zap.String("device_id", d.ID.String()), zap.Error(err))
			p.metrics.Update(func(m *BridgeMetrics) { m.Failed++ })
			return
		}
	}

	seenAt := msg.Timestamp
	if msg.LastSeen != nil {
		seenAt = *msg.LastSeen
	}
	if err := p.devices.UpdateLastSeen(ctx, d.ID, seenAt); err != nil {
		logger.Error("Failed to update device last seen",
			zap.String("device_id", d.ID.String()), zap.Error(err))
		p.metrics.Update(func(m *BridgeMetrics) { m.Failed++ })
		return
	}

	snapshot := &cache.Snapshot{
		DeviceID:       d.ID,
		UpdateType:     msg.UpdateType,
		BatteryLevel:   msg.BatteryLevel,
		SignalStrength: msg.SignalStrength,
		IsOnline:       msg.IsOnline,
		LastSeenAt:     &seenAt,
		ReceivedAt:     time.Now().UTC(),
	}
	if msg.Location != nil {
		snapshot.Latitude = &msg.Location.Latitude
		snapshot.Longitude = &msg.Location.Longitude
	}
	if err := p.snapshots.Put(ctx, snapshot); err != nil {
		logger.Error("Failed to cache telemetry snapshot",
			zap.String("device_id", d.ID.String()), zap.Error(err))
	}

	p.metrics.Update(func(m *BridgeMetrics) {
		m.UpdatesProcessed++
		m.LastProcessedAt = time.Now()
	})
}

// processEvent records an ingestion-side alert. Offline/online flips keep
// the snapshot's online flag in step between periodic updates.
func (p *Processor) processEvent(msg *DeviceEventMessage) {
	ctx, cancelFn := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelFn()

	d, err := p.devices.GetByHardwareUID(ctx, msg.HardwareUID)
	if err != nil {
		if appErrors.IsKind(err, appErrors.KindNotFound) {
			logger.Warn("Device event for unknown hardware uid, dropping",
				zap.String("hardware_uid", msg.HardwareUID),
				zap.String("event_type", msg.EventType))
			p.metrics.Update(func(m *BridgeMetrics) { m.UnknownDevices++ })
			return
		}
		logger.Error("Failed to resolve device for event",
			zap.String("hardware_uid", msg.HardwareUID), zap.Error(err))
		p.metrics.Update(func(m *BridgeMetrics) { m.Failed++ })
		return
	}

	logger.Info("Device event received",
		zap.String("event", "device_alert"),
		zap.String("device_id", d.ID.String()),
		zap.String("event_type", msg.EventType),
		zap.String("severity", msg.Severity),
	)

	switch msg.EventType {
	case EventDeviceOffline, EventDeviceOnline:
		online := msg.EventType == EventDeviceOnline
		snapshot := &cache.Snapshot{
			DeviceID:   d.ID,
			UpdateType: UpdateTypeStatus,
			IsOnline:   &online,
			LastSeenAt: d.LastSeenAt,
			ReceivedAt: time.Now().UTC(),
		}
		if err := p.snapshots.Put(ctx, snapshot); err != nil {
			logger.Error("Failed to cache device online state",
				zap.String("device_id", d.ID.String()), zap.Error(err))
		}
	}

	p.metrics.Update(func(m *BridgeMetrics) {
		m.EventsProcessed++
		m.LastProcessedAt = time.Now()
	})
}
