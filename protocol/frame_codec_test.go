package protocol_test

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/momentics/hioload-relay/protocol"
)

func mustEncode(t *testing.T, payload []byte) []byte {
	t.Helper()
	frame, err := protocol.Encode(payload)
	if err != nil {
		t.Fatal(err)
	}
	return frame
}

// feed appends each chunk and extracts after every append, collecting copies
// of the emitted frames.
func feed(d protocol.Decoder, buf *protocol.Buffer, chunks ...[]byte) ([][]byte, int) {
	var frames [][]byte
	discarded := 0
	for _, c := range chunks {
		buf.Append(c)
		st := d.Extract(buf, func(f []byte) {
			frames = append(frames, append([]byte(nil), f...))
		})
		discarded += st.Discarded
	}
	return frames, discarded
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 5, 255, 256, 4096, 70000} {
		payload := bytes.Repeat([]byte{0xAB}, n)
		// 0xFF inside the payload must not confuse extraction.
		if n > 2 {
			payload[1] = protocol.Marker
		}
		var buf protocol.Buffer
		frames, _ := feed(protocol.Decoder{}, &buf, mustEncode(t, payload))
		if len(frames) != 1 {
			t.Fatalf("len %d: got %d frames", n, len(frames))
		}
		got, err := protocol.Payload(frames[0])
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("len %d: payload mismatch", n)
		}
		if buf.Len() != 0 {
			t.Errorf("len %d: %d bytes left in buffer", n, buf.Len())
		}
	}
}

func TestHelloWireBytes(t *testing.T) {
	want := []byte{0xFF, 0x05, 0x00, 0x00, 0x00, 'h', 'e', 'l', 'l', 'o'}
	if got := mustEncode(t, []byte("hello")); !bytes.Equal(got, want) {
		t.Fatalf("Encode(hello) = % X, want % X", got, want)
	}
}

func TestFragmentationInvariance(t *testing.T) {
	frame := mustEncode(t, []byte("fragmented payload"))
	for size := 1; size <= len(frame); size++ {
		var chunks [][]byte
		for i := 0; i < len(frame); i += size {
			end := i + size
			if end > len(frame) {
				end = len(frame)
			}
			chunks = append(chunks, frame[i:end])
		}
		var buf protocol.Buffer
		frames, _ := feed(protocol.Decoder{}, &buf, chunks...)
		if len(frames) != 1 || !bytes.Equal(frames[0], frame) {
			t.Fatalf("chunk size %d: got %d frames", size, len(frames))
		}
	}
}

func TestRandomSplitsYieldSameFrames(t *testing.T) {
	var stream []byte
	var want [][]byte
	for i := 0; i < 20; i++ {
		payload := bytes.Repeat([]byte{byte(i), protocol.Marker}, i*7)
		f := mustEncode(t, payload)
		want = append(want, f)
		stream = append(stream, f...)
	}

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		var chunks [][]byte
		for rest := stream; len(rest) > 0; {
			n := 1 + rng.Intn(min(len(rest), 64))
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}
		var buf protocol.Buffer
		frames, discarded := feed(protocol.Decoder{}, &buf, chunks...)
		if discarded != 0 {
			t.Fatalf("round %d: discarded %d bytes", round, discarded)
		}
		if len(frames) != len(want) {
			t.Fatalf("round %d: got %d frames, want %d", round, len(frames), len(want))
		}
		for i := range want {
			if !bytes.Equal(frames[i], want[i]) {
				t.Fatalf("round %d: frame %d differs", round, i)
			}
		}
	}
}

func TestMultiFrameBatching(t *testing.T) {
	var stream []byte
	var want [][]byte
	for i := 0; i < 10; i++ {
		f := mustEncode(t, bytes.Repeat([]byte{byte('a' + i)}, i))
		want = append(want, f)
		stream = append(stream, f...)
	}
	var buf protocol.Buffer
	frames, _ := feed(protocol.Decoder{}, &buf, stream)
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d", len(frames), len(want))
	}
	for i := range want {
		if !bytes.Equal(frames[i], want[i]) {
			t.Errorf("frame %d out of order or corrupted", i)
		}
	}
}

func TestResyncOnNoise(t *testing.T) {
	frame := mustEncode(t, []byte("payload"))
	noisy := append([]byte{0x01, 0x02, 0x03}, frame...)

	var clean, dirty protocol.Buffer
	want, _ := feed(protocol.Decoder{}, &clean, frame)
	got, discarded := feed(protocol.Decoder{}, &dirty, noisy)
	if len(got) != 1 || !bytes.Equal(got[0], want[0]) {
		t.Fatalf("noise changed extraction: %v vs %v", got, want)
	}
	if discarded != 3 {
		t.Errorf("discarded = %d, want 3", discarded)
	}
}

func TestResyncOnMissingMarker(t *testing.T) {
	var buf protocol.Buffer
	frames, discarded := feed(protocol.Decoder{}, &buf, []byte{0x00, 0x01, 0x05, 0x10, 0x7F, 0xFE})
	if len(frames) != 0 {
		t.Fatalf("got %d frames from markerless input", len(frames))
	}
	if buf.Len() != 0 {
		t.Fatalf("buffer holds %d bytes, want 0", buf.Len())
	}
	if discarded != 6 {
		t.Errorf("discarded = %d, want 6", discarded)
	}
}

func TestPartialHeaderWaits(t *testing.T) {
	var buf protocol.Buffer
	frames, _ := feed(protocol.Decoder{}, &buf, []byte{0xFF, 0x05})
	if len(frames) != 0 || buf.Len() != 2 {
		t.Fatalf("frames=%d len=%d, want 0 frames and 2 buffered bytes", len(frames), buf.Len())
	}
	frames, _ = feed(protocol.Decoder{}, &buf, []byte{0x00, 0x00, 0x00})
	if len(frames) != 0 || buf.Len() != 5 {
		t.Fatalf("frames=%d len=%d, want 0 frames and 5 buffered bytes", len(frames), buf.Len())
	}
	frames, _ = feed(protocol.Decoder{}, &buf, []byte("hello"))
	if len(frames) != 1 || len(frames[0]) != 10 {
		t.Fatalf("want one 10-byte frame, got %v", frames)
	}
}

func TestNegativeLengthResyncs(t *testing.T) {
	bad := make([]byte, protocol.HeaderLen)
	bad[0] = protocol.Marker
	binary.LittleEndian.PutUint32(bad[1:], uint32(0x80000000))
	good := mustEncode(t, []byte("ok"))

	var buf protocol.Buffer
	frames, discarded := feed(protocol.Decoder{}, &buf, append(bad, good...))
	if len(frames) != 1 || !bytes.Equal(frames[0], good) {
		t.Fatalf("frames = %v, want the valid frame only", frames)
	}
	if discarded != len(bad) {
		t.Errorf("discarded = %d, want %d", discarded, len(bad))
	}
}

func TestOversizedLengthResyncs(t *testing.T) {
	big := make([]byte, protocol.HeaderLen)
	big[0] = protocol.Marker
	binary.LittleEndian.PutUint32(big[1:], 1000)
	good := mustEncode(t, []byte("fits"))

	var buf protocol.Buffer
	frames, _ := feed(protocol.Decoder{MaxPayload: 16}, &buf, append(big, good...))
	if len(frames) != 1 || !bytes.Equal(frames[0], good) {
		t.Fatalf("frames = %v, want the valid frame only", frames)
	}

	// Without a bound the same header waits for its payload.
	buf.Reset()
	frames, _ = feed(protocol.Decoder{}, &buf, big)
	if len(frames) != 0 || buf.Len() != len(big) {
		t.Fatalf("unbounded decoder: frames=%d buffered=%d", len(frames), buf.Len())
	}
}

func TestTrailingBytesKeptAtHead(t *testing.T) {
	first := mustEncode(t, []byte("first"))
	second := mustEncode(t, []byte("second"))
	var buf protocol.Buffer
	frames, _ := feed(protocol.Decoder{}, &buf, append(first, second[:4]...))
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if !bytes.Equal(buf.Bytes(), second[:4]) {
		t.Fatalf("buffer head = % X, want % X", buf.Bytes(), second[:4])
	}
	frames, _ = feed(protocol.Decoder{}, &buf, second[4:])
	if len(frames) != 1 || !bytes.Equal(frames[0], second) {
		t.Fatalf("second frame not reassembled: %v", frames)
	}
}

func TestPayloadErrors(t *testing.T) {
	if _, err := protocol.Payload([]byte{0xFF, 0x01}); err != protocol.ErrShortHeader {
		t.Errorf("short header: %v", err)
	}
	if _, err := protocol.Payload([]byte{0x00, 0, 0, 0, 0}); err != protocol.ErrMissingMarker {
		t.Errorf("missing marker: %v", err)
	}
	if _, err := protocol.Payload([]byte{0xFF, 3, 0, 0, 0, 'a'}); err != protocol.ErrShortPayload {
		t.Errorf("short payload: %v", err)
	}
	if _, err := protocol.Payload([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F, 1, 2, 3}); err != protocol.ErrShortPayload {
		t.Errorf("max length, short payload: %v", err)
	}
}

func TestMaxInt32LengthWaitsWhenUnbounded(t *testing.T) {
	data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F, 1, 2, 3}
	var buf protocol.Buffer
	frames, discarded := feed(protocol.Decoder{}, &buf, data)
	if len(frames) != 0 || discarded != 0 {
		t.Fatalf("frames=%d discarded=%d, want 0 and 0", len(frames), discarded)
	}
	if buf.Len() != len(data) {
		t.Fatalf("buffered %d bytes, want %d", buf.Len(), len(data))
	}
}
