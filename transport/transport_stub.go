//go:build !linux
// +build !linux

// File: transport/transport_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package transport

import (
	"fmt"
	"net"

	"github.com/momentics/hioload-relay/api"
)

// Listener is unavailable on this platform.
type Listener struct{}

// Listen returns an error for unsupported platforms.
func Listen(address string) (*Listener, error) {
	return nil, fmt.Errorf("transport: %w on this platform", api.ErrNotSupported)
}

// Accept always fails on this platform.
func (l *Listener) Accept() (api.Stream, net.Addr, error) {
	return nil, nil, api.ErrNotSupported
}

func (l *Listener) Addr() net.Addr { return nil }

func (l *Listener) FD() int { return -1 }

func (l *Listener) Close() error { return nil }
