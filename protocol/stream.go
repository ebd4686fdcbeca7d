// File: protocol/stream.go
// Author: momentics <momentics@gmail.com>
//
// Blocking helpers for clients speaking the relay protocol over net.Conn.

package protocol

import (
	"bufio"
	"errors"
	"io"
)

// WriteFrame writes payload to w as a single frame.
func WriteFrame(w io.Writer, payload []byte) error {
	frame, err := Encode(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ReadFrame reads the next frame from r and returns its payload. It skips
// bytes until a marker and drops headers with an invalid length the same way
// Decoder.Extract does.
func ReadFrame(r *bufio.Reader, maxPayload int) ([]byte, error) {
	var hdr [HeaderLen]byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != Marker {
			continue
		}
		peek, err := r.Peek(HeaderLen - 1)
		if err != nil {
			return nil, noEOF(err)
		}
		hdr[0] = Marker
		copy(hdr[1:], peek)
		length, err := ParseHeader(hdr[:], maxPayload)
		if err != nil {
			// Leave the length bytes unread; one of them may be the next marker.
			continue
		}
		if _, err := r.Discard(HeaderLen - 1); err != nil {
			return nil, noEOF(err)
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, noEOF(err)
		}
		return payload, nil
	}
}

func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
