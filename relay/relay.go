// File: relay/relay.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Readiness-driven broadcast loop.

package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/eapache/queue"
	"github.com/momentics/hioload-relay/api"
	"github.com/momentics/hioload-relay/control"
	"github.com/momentics/hioload-relay/protocol"
	"go.uber.org/zap"
)

const (
	defaultReadSize      = 4096
	defaultMaxEvents     = 1024
	defaultMaxReadErrors = 16
)

// counters are cumulative since the relay was created.
type counters struct {
	accepted    int64
	frames      int64
	bytes       int64
	discarded   int64
	readErrors  int64
	writeErrors int64
}

// Relay is the event loop. All fields except maxPayload belong to the
// goroutine running Run or Cycle.
type Relay struct {
	log      *zap.Logger
	poller   api.Poller
	listener api.Listener
	registry *Registry
	metrics  *control.MetricsRegistry

	batch   *queue.Queue // complete frames waiting for end-of-cycle broadcast
	flush   []byte
	scratch []byte
	events  []api.Event

	readSize      int
	maxEvents     int
	maxReadErrors int
	pollTimeoutMs int
	maxPayload    atomic.Int64

	stats    counters
	snapshot map[string]int64
}

// New registers listener with poller and returns a relay ready to Run.
// Failing to register the listener is fatal.
func New(listener api.Listener, poller api.Poller, opts ...Option) (*Relay, error) {
	r := &Relay{
		log:           zap.NewNop(),
		poller:        poller,
		listener:      listener,
		registry:      NewRegistry(api.ListenerToken + 1),
		batch:         queue.New(),
		readSize:      defaultReadSize,
		maxEvents:     defaultMaxEvents,
		maxReadErrors: defaultMaxReadErrors,
		pollTimeoutMs: -1,
	}
	r.maxPayload.Store(protocol.DefaultMaxPayload)
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With(zap.String("component", "relay"))
	r.scratch = make([]byte, r.readSize)
	r.events = make([]api.Event, r.maxEvents)

	if err := poller.Register(listener.FD(), api.ListenerToken); err != nil {
		return nil, fmt.Errorf("register listener: %w", err)
	}
	return r, nil
}

// Addr returns the listening address.
func (r *Relay) Addr() net.Addr { return r.listener.Addr() }

// Connections returns the number of live connections.
func (r *Relay) Connections() int { return r.registry.Len() }

// SetMaxFramePayload changes the declared-length bound for subsequent
// cycles. Safe to call from any goroutine.
func (r *Relay) SetMaxFramePayload(n int) {
	r.maxPayload.Store(int64(n))
}

// Run processes cycles until a fatal error occurs or ctx is done. ctx is
// checked between cycles, so with an unbounded poll timeout cancellation is
// noticed only after the next readiness event.
func (r *Relay) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Cycle(); err != nil {
			r.log.Error("relay loop stopped", zap.Error(err))
			return err
		}
	}
}

// Cycle waits for one batch of readiness events, handles every event in
// delivery order, then broadcasts the frames extracted during the cycle.
func (r *Relay) Cycle() error {
	n, err := r.poller.Wait(r.events, r.pollTimeoutMs)
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}

	dec := protocol.Decoder{MaxPayload: int(r.maxPayload.Load())}
	for _, ev := range r.events[:n] {
		if ev.Token == api.ListenerToken {
			if err := r.accept(); err != nil {
				return err
			}
			continue
		}
		if ev.Hangup && !ev.Readable {
			if c, ok := r.registry.Lookup(ev.Token); ok {
				r.disconnect(c, "hangup")
			}
			continue
		}
		r.receive(ev.Token, dec)
	}

	r.broadcast()
	r.publish()
	return nil
}

// Close tears down every connection, the listener and the poller.
func (r *Relay) Close() error {
	errs := []error{r.registry.CloseAll()}
	if err := r.poller.Deregister(r.listener.FD()); err != nil {
		r.log.Debug("deregister listener", zap.Error(err))
	}
	errs = append(errs, r.listener.Close(), r.poller.Close())
	return errors.Join(errs...)
}

// accept drains the pending connection queue.
func (r *Relay) accept() error {
	for {
		stream, peer, err := r.listener.Accept()
		if err != nil {
			if api.IsTransient(err) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		token := r.registry.Allocate()
		if err := r.poller.Register(stream.FD(), token); err != nil {
			r.log.Warn("dropping connection: register failed",
				zap.Uint32("token", uint32(token)), zap.Error(err))
			r.registry.Release(token)
			_ = stream.Close()
			continue
		}
		c := newConnection(token, stream, peer)
		r.registry.Insert(token, c)
		r.stats.accepted++
		r.log.Info("client connected", c.fields()...)
	}
}

// receive performs one bounded read for token and extracts frames.
func (r *Relay) receive(token api.Token, dec protocol.Decoder) {
	c, ok := r.registry.Lookup(token)
	if !ok {
		return
	}

	n, err := c.stream.Read(r.scratch)
	if err == nil && n == 0 {
		err = io.EOF
	}
	switch {
	case errors.Is(err, io.EOF):
		r.disconnect(c, "peer closed")
		return
	case err != nil:
		if api.IsTransient(err) {
			return
		}
		c.readErrors++
		r.stats.readErrors++
		r.log.Debug("read failed", append(c.fields(), zap.Int("consecutive", c.readErrors), zap.Error(err))...)
		if r.maxReadErrors > 0 && c.readErrors >= r.maxReadErrors {
			r.disconnect(c, "repeated read errors")
		}
		return
	}

	c.readErrors = 0
	c.recv.Append(r.scratch[:n])
	st := dec.Extract(&c.recv, func(frame []byte) {
		r.batch.Add(append([]byte(nil), frame...))
	})
	r.stats.frames += int64(st.Frames)
	if st.Discarded > 0 {
		r.stats.discarded += int64(st.Discarded)
		r.log.Debug("discarded unframed bytes", append(c.fields(), zap.Int("bytes", st.Discarded))...)
	}
}

func (r *Relay) disconnect(c *Connection, reason string) {
	if err := r.poller.Deregister(c.stream.FD()); err != nil {
		r.log.Debug("deregister failed", append(c.fields(), zap.Error(err))...)
	}
	_ = c.stream.Shutdown()
	_ = c.stream.Close()
	r.registry.Remove(c.Token)
	r.log.Info("client disconnected", append(c.fields(), zap.String("reason", reason))...)
}

// broadcast writes the cycle's frames, in order, to every live connection
// with one write per connection, then clears the batch.
func (r *Relay) broadcast() {
	if r.batch.Length() == 0 {
		return
	}
	r.flush = r.flush[:0]
	for r.batch.Length() > 0 {
		r.flush = append(r.flush, r.batch.Remove().([]byte)...)
	}
	failed := r.registry.Broadcast(r.flush, func(c *Connection, err error) {
		r.log.Debug("broadcast write failed", append(c.fields(), zap.Error(err))...)
	})
	r.stats.writeErrors += int64(failed)
	r.stats.bytes += int64(len(r.flush))
}

func (r *Relay) publish() {
	if r.metrics == nil {
		return
	}
	if r.snapshot == nil {
		r.snapshot = make(map[string]int64, 8)
	}
	buffered := 0
	r.registry.Each(func(c *Connection) { buffered += c.Buffered() })
	r.snapshot[control.MetricConnectionsActive] = int64(r.registry.Len())
	r.snapshot[control.MetricConnectionsAccepted] = r.stats.accepted
	r.snapshot[control.MetricFramesRelayed] = r.stats.frames
	r.snapshot[control.MetricBytesRelayed] = r.stats.bytes
	r.snapshot[control.MetricBytesDiscarded] = r.stats.discarded
	r.snapshot[control.MetricBytesBuffered] = int64(buffered)
	r.snapshot[control.MetricReadErrors] = r.stats.readErrors
	r.snapshot[control.MetricWriteErrors] = r.stats.writeErrors
	r.metrics.Publish(r.snapshot)
}
