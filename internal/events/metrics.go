package events

import (
	"sync"
	"time"
)

// BridgeMetrics tracks inbound event-bridge throughput.
type BridgeMetrics struct {
	UpdatesReceived  int64
	UpdatesProcessed int64
	EventsReceived   int64
	EventsProcessed  int64
	UnknownDevices   int64
	Malformed        int64
	Failed           int64
	Dropped          int64
	LastProcessedAt  time.Time
}

// MetricsTracker provides a goroutine-safe wrapper around BridgeMetrics.
type MetricsTracker struct {
	mu      sync.RWMutex
	metrics BridgeMetrics
}

func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{}
}

// Update applies a mutation in a thread-safe way.
func (t *MetricsTracker) Update(fn func(*BridgeMetrics)) {
	if fn == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.metrics)
}

// Snapshot returns a copy of the current metrics.
func (t *MetricsTracker) Snapshot() BridgeMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metrics
}

// Reset clears accumulated metrics.
func (t *MetricsTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics = BridgeMetrics{}
}
