// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Framing errors. The relay never surfaces them to peers; they drive the
// resynchronization policy and the blocking client helpers.

package protocol

import "errors"

var (
	ErrShortHeader    = errors.New("frame header truncated")
	ErrShortPayload   = errors.New("frame payload truncated")
	ErrMissingMarker  = errors.New("frame marker missing")
	ErrNegativeLength = errors.New("frame declares negative length")
	ErrFrameTooLarge  = errors.New("frame payload exceeds maximum allowed size")
)
