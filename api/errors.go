// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared by transports, pollers and the relay loop.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the module.
var (
	// ErrWouldBlock reports that a non-blocking operation has nothing to do yet.
	ErrWouldBlock = fmt.Errorf("operation would block")
	// ErrTemporary marks a failure that is expected to clear on retry
	// (interrupted call, connection aborted before accept).
	ErrTemporary    = fmt.Errorf("temporary failure")
	ErrClosed       = fmt.Errorf("resource is closed")
	ErrNotSupported = fmt.Errorf("operation not supported")
)

// IsTransient reports whether err should be retried on a later readiness
// event instead of being treated as a failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrWouldBlock) || errors.Is(err, ErrTemporary)
}
