// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the transport interfaces.

package fake

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/momentics/hioload-relay/api"
)

var (
	errAlreadyRegistered = errors.New("already registered")
	errNotRegistered     = errors.New("not registered")
)

type readResult struct {
	data []byte
	err  error
}

// Stream is a scripted api.Stream. Reads are served from queued chunks;
// with nothing queued Read reports api.ErrWouldBlock.
type Stream struct {
	mu       sync.Mutex
	fd       int
	reads    []readResult
	written  []byte
	writeErr error
	shutdown bool
	closed   bool
}

// NewStream creates a stream with the given descriptor number.
func NewStream(fd int) *Stream {
	return &Stream{fd: fd}
}

// Feed queues bytes for a single Read.
func (s *Stream) Feed(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, readResult{data: append([]byte(nil), p...)})
}

// FeedError queues a failing Read.
func (s *Stream) FeedError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, readResult{err: err})
}

// FeedEOF queues an orderly peer shutdown.
func (s *Stream) FeedEOF() { s.FeedError(io.EOF) }

// FailWrites makes every later Write return err; nil restores writes.
func (s *Stream) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, api.ErrClosed
	}
	if len(s.reads) == 0 {
		return 0, api.ErrWouldBlock
	}
	r := &s.reads[0]
	if r.err != nil {
		s.reads = s.reads[1:]
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	if len(r.data) == 0 {
		s.reads = s.reads[1:]
	}
	return n, nil
}

func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, api.ErrClosed
	}
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.written = append(s.written, p...)
	return len(p), nil
}

func (s *Stream) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = true
	return nil
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Stream) FD() int { return s.fd }

// Written returns a copy of everything written so far.
func (s *Stream) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.written...)
}

// Closed reports whether the stream was shut down and closed.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown && s.closed
}

type pending struct {
	stream *Stream
	peer   net.Addr
}

// Listener is a scripted api.Listener handing out queued streams.
type Listener struct {
	mu      sync.Mutex
	fd      int
	queue   []pending
	closed  bool
	nextErr error
}

// NewListener creates a listener with the given descriptor number.
func NewListener(fd int) *Listener {
	return &Listener{fd: fd}
}

// Enqueue makes s pending; peer port is derived from its descriptor.
func (l *Listener) Enqueue(streams ...*Stream) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range streams {
		l.queue = append(l.queue, pending{
			stream: s,
			peer:   &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000 + s.fd},
		})
	}
}

// FailNextAccept makes the next Accept return err instead of a stream.
func (l *Listener) FailNextAccept(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextErr = err
}

func (l *Listener) Accept() (api.Stream, net.Addr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, nil, api.ErrClosed
	}
	if l.nextErr != nil {
		err := l.nextErr
		l.nextErr = nil
		return nil, nil, err
	}
	if len(l.queue) == 0 {
		return nil, nil, api.ErrWouldBlock
	}
	p := l.queue[0]
	l.queue = l.queue[1:]
	return p.stream, p.peer, nil
}

func (l *Listener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1024}
}

func (l *Listener) FD() int { return l.fd }

func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Closed reports whether Close was called.
func (l *Listener) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
