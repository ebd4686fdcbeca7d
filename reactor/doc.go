// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness-notification backend for the relay
// event loop. Linux uses level-triggered epoll; other platforms are not
// supported yet.
package reactor
