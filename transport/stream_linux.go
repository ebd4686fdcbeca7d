//go:build linux
// +build linux

// File: transport/stream_linux.go
// Author: momentics <momentics@gmail.com>
//
// Non-blocking connected TCP socket.

package transport

import (
	"errors"
	"fmt"
	"io"

	"github.com/momentics/hioload-relay/api"
	"golang.org/x/sys/unix"
)

// Stream is a connected non-blocking socket accepted by a Listener.
type Stream struct {
	fd int
}

// Read reads whatever is buffered in the kernel, up to len(p).
func (s *Stream) Read(p []byte) (int, error) {
	n, err := unix.Read(s.fd, p)
	if err != nil {
		return 0, classify("read", err)
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write sends p, retrying short writes until the kernel refuses more.
// MSG_NOSIGNAL keeps a closed peer from raising SIGPIPE.
func (s *Stream) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.SendmsgN(s.fd, p[written:], nil, nil, unix.MSG_NOSIGNAL)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return written, classify("write", err)
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
		written += n
	}
	return written, nil
}

// Shutdown disables both directions of the connection.
func (s *Stream) Shutdown() error {
	if err := unix.Shutdown(s.fd, unix.SHUT_RDWR); err != nil && !errors.Is(err, unix.ENOTCONN) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the descriptor.
func (s *Stream) Close() error {
	return unix.Close(s.fd)
}

// FD returns the socket descriptor.
func (s *Stream) FD() int { return s.fd }

func classify(op string, err error) error {
	switch {
	case errors.Is(err, unix.EAGAIN):
		return fmt.Errorf("%s: %w", op, api.ErrWouldBlock)
	case errors.Is(err, unix.EINTR):
		return fmt.Errorf("%s: %w: %w", op, api.ErrTemporary, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
