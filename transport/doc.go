// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport provides non-blocking TCP sockets driven by a readiness
// reactor. Sockets are raw descriptors; they are not registered with the Go
// runtime's netpoller, so all I/O returns immediately and readiness comes
// from the caller's api.Poller.
package transport
