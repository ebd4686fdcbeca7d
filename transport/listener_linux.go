//go:build linux
// +build linux

// File: transport/listener_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Non-blocking TCP listener over raw sockets.

package transport

import (
	"errors"
	"fmt"
	"net"

	"github.com/momentics/hioload-relay/api"
	"golang.org/x/sys/unix"
)

// Listener is a non-blocking listening TCP socket.
type Listener struct {
	fd   int
	addr net.Addr
}

// Listen binds and listens on a TCP address such as "127.0.0.1:1024".
// Port 0 picks a free port; Addr reports the bound one.
func Listen(address string) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", address, err)
	}
	domain, sa, err := toSockaddr(tcpAddr)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", address, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen %s: %w", address, err)
	}

	bound, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("getsockname: %w", err)
	}
	return &Listener{fd: fd, addr: fromSockaddr(bound)}, nil
}

// Accept returns one pending connection. It never blocks.
func (l *Listener) Accept() (api.Stream, net.Addr, error) {
	nfd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		switch {
		case errors.Is(err, unix.EAGAIN):
			return nil, nil, fmt.Errorf("accept: %w", api.ErrWouldBlock)
		case errors.Is(err, unix.EINTR), errors.Is(err, unix.ECONNABORTED):
			return nil, nil, fmt.Errorf("accept: %w: %w", api.ErrTemporary, err)
		}
		return nil, nil, fmt.Errorf("accept: %w", err)
	}
	_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return &Stream{fd: nfd}, fromSockaddr(sa), nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.addr }

// FD returns the listening descriptor.
func (l *Listener) FD() int { return l.fd }

// Close stops listening.
func (l *Listener) Close() error {
	return unix.Close(l.fd)
}
