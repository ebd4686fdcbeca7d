// File: protocol/frame_codec.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Incremental frame extraction with resynchronization.

package protocol

import "bytes"

// Stats summarizes one Extract call.
type Stats struct {
	Frames    int // complete frames emitted
	Discarded int // bytes dropped as noise or corrupt headers
}

// Decoder extracts frames from a receive Buffer.
type Decoder struct {
	// MaxPayload is the largest declared length accepted; <= 0 means unbounded.
	MaxPayload int
}

// Extract emits every complete frame currently held in buf, in order, and
// removes them from its head. Bytes before a marker are discarded; a buffer
// without any marker is emptied. A header declaring a negative or oversized
// length costs its marker byte and scanning resumes after it. Incomplete
// trailing bytes stay in buf for the next call.
//
// The slice passed to emit aliases buf and is only valid during the call.
func (d Decoder) Extract(buf *Buffer, emit func(frame []byte)) Stats {
	var st Stats
	for buf.Len() > 0 {
		data := buf.Bytes()
		i := bytes.IndexByte(data, Marker)
		if i < 0 {
			st.Discarded += len(data)
			buf.Reset()
			break
		}
		if i > 0 {
			st.Discarded += i
			buf.Discard(i)
			data = buf.Bytes()
		}
		if len(data) < HeaderLen {
			break
		}
		length, err := ParseHeader(data, d.MaxPayload)
		if err != nil {
			st.Discarded++
			buf.Discard(1)
			continue
		}
		// Compare without adding so a declared length near MaxInt32 cannot
		// overflow int on 32-bit targets.
		if length > len(data)-HeaderLen {
			break
		}
		size := HeaderLen + length
		emit(data[:size])
		st.Frames++
		buf.Discard(size)
	}
	return st
}
