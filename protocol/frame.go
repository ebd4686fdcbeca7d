// File: protocol/frame.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frame layout constants and encoding helpers.

package protocol

import (
	"encoding/binary"
	"math"
)

const (
	// Marker is the fixed first byte of every frame.
	Marker byte = 0xFF

	// HeaderLen is the marker plus the 4-byte length field.
	HeaderLen = 5

	// DefaultMaxPayload bounds the declared payload length accepted by a
	// Decoder. Larger declarations are treated as corrupt headers.
	DefaultMaxPayload = 1 << 20 // 1 MiB
)

// AppendFrame appends the wire encoding of payload to dst.
func AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload) > math.MaxInt32 {
		return dst, ErrFrameTooLarge
	}
	var hdr [HeaderLen]byte
	hdr[0] = Marker
	binary.LittleEndian.PutUint32(hdr[1:], uint32(len(payload)))
	dst = append(dst, hdr[:]...)
	return append(dst, payload...), nil
}

// Encode returns payload wrapped in a frame.
func Encode(payload []byte) ([]byte, error) {
	return AppendFrame(make([]byte, 0, HeaderLen+len(payload)), payload)
}

// ParseHeader validates the first HeaderLen bytes of hdr and returns the
// declared payload length. maxPayload <= 0 disables the upper bound.
func ParseHeader(hdr []byte, maxPayload int) (int, error) {
	if len(hdr) < HeaderLen {
		return 0, ErrShortHeader
	}
	if hdr[0] != Marker {
		return 0, ErrMissingMarker
	}
	length := int32(binary.LittleEndian.Uint32(hdr[1:HeaderLen]))
	if length < 0 {
		return 0, ErrNegativeLength
	}
	if maxPayload > 0 && int(length) > maxPayload {
		return 0, ErrFrameTooLarge
	}
	return int(length), nil
}

// Payload returns the payload of a complete frame, aliasing frame.
func Payload(frame []byte) ([]byte, error) {
	n, err := ParseHeader(frame, 0)
	if err != nil {
		return nil, err
	}
	if n > len(frame)-HeaderLen {
		return nil, ErrShortPayload
	}
	return frame[HeaderLen : HeaderLen+n], nil
}
