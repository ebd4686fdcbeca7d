// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Non-blocking stream socket abstraction consumed by the relay loop.

package api

import "net"

// Stream is a non-blocking, full-duplex stream socket.
type Stream interface {
	// Read reads available bytes into p. It returns io.EOF on orderly peer
	// shutdown and ErrWouldBlock when no data is available yet.
	Read(p []byte) (n int, err error)

	// Write writes p without blocking; a short write returns the error that
	// stopped it (ErrWouldBlock when the socket buffer is full).
	Write(p []byte) (n int, err error)

	// Shutdown disables further sends and receives.
	Shutdown() error

	// Close releases the socket.
	Close() error

	// FD returns the OS-level descriptor used for readiness registration.
	FD() int
}

// Listener is a non-blocking listening socket.
type Listener interface {
	// Accept returns one pending connection and its peer address, or
	// ErrWouldBlock when none is pending.
	Accept() (Stream, net.Addr, error)

	// Addr returns the bound local address.
	Addr() net.Addr

	// Close stops listening.
	Close() error

	// FD returns the OS-level descriptor used for readiness registration.
	FD() int
}
