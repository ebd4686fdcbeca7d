// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics published by the relay loop.
// The loop writes once per cycle; any goroutine may read a snapshot.

package control

import (
	"sync"
	"time"
)

// Metric keys published by the relay.
const (
	MetricConnectionsActive   = "connections_active"
	MetricConnectionsAccepted = "connections_accepted"
	MetricFramesRelayed       = "frames_relayed"
	MetricBytesRelayed        = "bytes_relayed"
	MetricBytesDiscarded      = "bytes_discarded"
	MetricBytesBuffered       = "bytes_buffered" // received, not yet framed
	MetricReadErrors          = "read_errors"
	MetricWriteErrors         = "write_errors"
)

// MetricsRegistry holds the latest published counter values.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]int64
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]int64),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value int64) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Publish replaces several keys under one lock.
func (mr *MetricsRegistry) Publish(values map[string]int64) {
	mr.mu.Lock()
	for k, v := range values {
		mr.metrics[k] = v
	}
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns a single metric.
func (mr *MetricsRegistry) Get(key string) (int64, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	v, ok := mr.metrics[key]
	return v, ok
}

// GetSnapshot returns the latest metrics and the time they were published.
func (mr *MetricsRegistry) GetSnapshot() (map[string]int64, time.Time) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out, mr.updated
}
