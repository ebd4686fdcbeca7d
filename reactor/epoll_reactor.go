//go:build linux
// +build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor - Linux epoll implementation.

package reactor

import (
	"errors"
	"fmt"

	"github.com/momentics/hioload-relay/api"
	"golang.org/x/sys/unix"
)

// epollReactor implements api.Poller using level-triggered Linux epoll.
// The token travels in the event's data word, so no lookup table is needed.
type epollReactor struct {
	epfd int
	raw  []unix.EpollEvent
}

// New creates an epoll-backed poller collecting up to maxEvents per Wait.
func New(maxEvents int) (api.Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollReactor{
		epfd: epfd,
		raw:  make([]unix.EpollEvent, eventCapacity(maxEvents)),
	}, nil
}

// Register adds fd to the epoll interest set for read readiness.
func (r *epollReactor) Register(fd int, token api.Token) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(token),
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

// Deregister removes fd from the epoll interest set.
func (r *epollReactor) Deregister(fd int) error {
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// Wait blocks for readiness on registered descriptors.
func (r *epollReactor) Wait(events []api.Event, timeoutMs int) (int, error) {
	limit := len(events)
	if limit > len(r.raw) {
		limit = len(r.raw)
	}
	if limit == 0 {
		return 0, fmt.Errorf("epoll wait: %w", errors.New("empty event buffer"))
	}
	if timeoutMs < 0 {
		timeoutMs = -1
	}

	n, err := unix.EpollWait(r.epfd, r.raw[:limit], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil // interrupted by signal, normal
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	for i := 0; i < n; i++ {
		ev := r.raw[i]
		events[i] = api.Event{
			Token:    api.Token(uint32(ev.Fd)),
			Readable: ev.Events&unix.EPOLLIN != 0,
			Hangup:   ev.Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0,
		}
	}
	return n, nil
}

// Close releases the epoll file descriptor.
func (r *epollReactor) Close() error {
	return unix.Close(r.epfd)
}
