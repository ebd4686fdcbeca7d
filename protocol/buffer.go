// File: protocol/buffer.go
// Author: momentics <momentics@gmail.com>
//
// Receive buffer with an explicit read cursor.

package protocol

// Buffer accumulates bytes received from a stream. Bytes are appended at the
// tail and consumed from the head; consumed space is reclaimed by compaction
// on the next Append that would otherwise grow the backing array.
type Buffer struct {
	data []byte
	off  int
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int { return len(b.data) - b.off }

// Bytes returns the unconsumed bytes. The slice aliases the buffer and is
// valid until the next Append, Discard or Reset.
func (b *Buffer) Bytes() []byte { return b.data[b.off:] }

// Append adds p at the tail.
func (b *Buffer) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	if b.off > 0 && len(b.data)+len(p) > cap(b.data) {
		b.compact()
	}
	b.data = append(b.data, p...)
}

// Discard drops n bytes from the head, keeping the remaining bytes in order.
func (b *Buffer) Discard(n int) {
	if n <= 0 {
		return
	}
	if n >= b.Len() {
		b.Reset()
		return
	}
	b.off += n
}

// Reset empties the buffer, retaining its storage.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.off = 0
}

func (b *Buffer) compact() {
	n := copy(b.data, b.data[b.off:])
	b.data = b.data[:n]
	b.off = 0
}
