// File: relay/registry.go
// Author: momentics <momentics@gmail.com>
//
// Connection registry with compact, reusable tokens.

package relay

import (
	"errors"
	"io"

	"github.com/momentics/hioload-relay/api"
)

// Registry owns all live connections. Tokens come from a free stack before
// new ones are minted, so the token space stays dense under churn. A token
// is either live or free, never both.
type Registry struct {
	conns map[api.Token]*Connection
	free  []api.Token
	next  api.Token
}

// NewRegistry creates an empty registry minting tokens from first.
// first must be above api.ListenerToken.
func NewRegistry(first api.Token) *Registry {
	if first <= api.ListenerToken {
		first = api.ListenerToken + 1
	}
	return &Registry{
		conns: make(map[api.Token]*Connection),
		next:  first,
	}
}

// Allocate returns a token for a new connection.
func (r *Registry) Allocate() api.Token {
	if n := len(r.free); n > 0 {
		t := r.free[n-1]
		r.free = r.free[:n-1]
		return t
	}
	t := r.next
	r.next++
	return t
}

// Release returns an allocated token that was never inserted.
func (r *Registry) Release(t api.Token) {
	if _, live := r.conns[t]; live {
		return
	}
	r.free = append(r.free, t)
}

// Insert records c as live under t, which must come from Allocate and not
// already be live.
func (r *Registry) Insert(t api.Token, c *Connection) {
	c.Token = t
	r.conns[t] = c
}

// Remove detaches the connection under t and frees t. It is a no-op when t
// is not live.
func (r *Registry) Remove(t api.Token) (*Connection, bool) {
	c, ok := r.conns[t]
	if !ok {
		return nil, false
	}
	delete(r.conns, t)
	r.free = append(r.free, t)
	return c, true
}

// Lookup returns the live connection under t.
func (r *Registry) Lookup(t api.Token) (*Connection, bool) {
	c, ok := r.conns[t]
	return c, ok
}

// Len returns the number of live connections.
func (r *Registry) Len() int { return len(r.conns) }

// Each calls fn for every live connection in no particular order.
func (r *Registry) Each(fn func(*Connection)) {
	for _, c := range r.conns {
		fn(c)
	}
}

// Broadcast writes p to every live connection. A failed write is reported
// to onError and skipped; it never stops delivery to the others. It returns
// the number of failed connections.
func (r *Registry) Broadcast(p []byte, onError func(*Connection, error)) int {
	failed := 0
	for _, c := range r.conns {
		if err := writeAll(c.stream, p); err != nil {
			failed++
			if onError != nil {
				onError(c, err)
			}
		}
	}
	return failed
}

// CloseAll shuts down and removes every live connection.
func (r *Registry) CloseAll() error {
	var errs []error
	for t, c := range r.conns {
		_ = c.stream.Shutdown()
		if err := c.stream.Close(); err != nil {
			errs = append(errs, err)
		}
		r.Remove(t)
	}
	return errors.Join(errs...)
}

func writeAll(s api.Stream, p []byte) error {
	for len(p) > 0 {
		n, err := s.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
