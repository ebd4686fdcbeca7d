// File: relay/options.go
// Package relay defines functional options for the Relay.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package relay

import (
	"time"

	"github.com/momentics/hioload-relay/control"
	"go.uber.org/zap"
)

// Option customizes relay initialization.
type Option func(*Relay)

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics publishes counters to m at the end of every cycle.
func WithMetrics(m *control.MetricsRegistry) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

// WithReadBufferSize bounds a single socket read.
func WithReadBufferSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.readSize = n
		}
	}
}

// WithMaxEvents bounds the readiness events handled per cycle.
func WithMaxEvents(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.maxEvents = n
		}
	}
}

// WithMaxFramePayload sets the largest declared frame length accepted;
// 0 disables the bound.
func WithMaxFramePayload(n int) Option {
	return func(r *Relay) {
		r.maxPayload.Store(int64(n))
	}
}

// WithMaxReadErrors tears a connection down after n consecutive read
// errors; 0 never does.
func WithMaxReadErrors(n int) Option {
	return func(r *Relay) {
		if n >= 0 {
			r.maxReadErrors = n
		}
	}
}

// WithPollTimeout bounds one readiness wait; d <= 0 blocks until an event.
func WithPollTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d <= 0 {
			r.pollTimeoutMs = -1
			return
		}
		ms := int(d / time.Millisecond)
		if ms == 0 {
			ms = 1
		}
		r.pollTimeoutMs = ms
	}
}
