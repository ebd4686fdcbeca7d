// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-relay/api"
)

// Poller is a scripted api.Poller. Each Push queues one batch that the next
// Wait returns; Wait with nothing queued reports zero events.
type Poller struct {
	mu         sync.Mutex
	registered map[int]api.Token
	batches    [][]api.Event
	closed     bool

	// RegisterErr, when set, fails registration of matching descriptors.
	RegisterErr func(fd int) error
	// WaitErr, when set, is returned by Wait once the queued batches run out.
	WaitErr error
	// Waits counts calls to Wait.
	Waits int
}

// NewPoller creates an empty scripted poller.
func NewPoller() *Poller {
	return &Poller{registered: make(map[int]api.Token)}
}

// Push queues one batch of events.
func (p *Poller) Push(events ...api.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, events)
}

// Readable is shorthand for a readable event on token.
func Readable(token api.Token) api.Event {
	return api.Event{Token: token, Readable: true}
}

func (p *Poller) Register(fd int, token api.Token) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.RegisterErr != nil {
		if err := p.RegisterErr(fd); err != nil {
			return err
		}
	}
	if _, dup := p.registered[fd]; dup {
		return fmt.Errorf("fd %d: %w", fd, errAlreadyRegistered)
	}
	p.registered[fd] = token
	return nil
}

func (p *Poller) Deregister(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.registered[fd]; !ok {
		return fmt.Errorf("fd %d: %w", fd, errNotRegistered)
	}
	delete(p.registered, fd)
	return nil
}

func (p *Poller) Wait(events []api.Event, timeoutMs int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Waits++
	if p.closed {
		return 0, api.ErrClosed
	}
	if len(p.batches) == 0 {
		return 0, p.WaitErr
	}
	batch := p.batches[0]
	p.batches = p.batches[1:]
	return copy(events, batch), nil
}

func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// TokenOf reports the token fd is registered under.
func (p *Poller) TokenOf(fd int) (api.Token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.registered[fd]
	return t, ok
}

// Registered returns the number of registered descriptors.
func (p *Poller) Registered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.registered)
}

// Closed reports whether Close was called.
func (p *Poller) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
