//go:build linux

package reactor_test

import (
	"testing"

	"github.com/momentics/hioload-relay/api"
	"github.com/momentics/hioload-relay/reactor"
	"golang.org/x/sys/unix"
)

func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestEpollReportsToken(t *testing.T) {
	p, err := reactor.New(8)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	a, b := socketPair(t)
	if err := p.Register(a, 7); err != nil {
		t.Fatal(err)
	}
	if _, err := unix.Write(b, []byte("x")); err != nil {
		t.Fatal(err)
	}

	events := make([]api.Event, 8)
	n, err := p.Wait(events, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || events[0].Token != 7 || !events[0].Readable {
		t.Fatalf("Wait = %d %+v, want one readable event for token 7", n, events[0])
	}

	// Level-triggered: unread data is reported again.
	n, err = p.Wait(events, 1000)
	if err != nil || n != 1 {
		t.Fatalf("second Wait = %d, %v; want 1 event", n, err)
	}
}

func TestEpollDeregister(t *testing.T) {
	p, err := reactor.New(0)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	a, b := socketPair(t)
	if err := p.Register(a, 3); err != nil {
		t.Fatal(err)
	}
	if err := p.Deregister(a); err != nil {
		t.Fatal(err)
	}
	unix.Write(b, []byte("x"))

	events := make([]api.Event, 4)
	n, err := p.Wait(events, 50)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("got %d events after Deregister", n)
	}
}

func TestEpollHangup(t *testing.T) {
	p, err := reactor.New(4)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	a, b := socketPair(t)
	if err := p.Register(a, 1); err != nil {
		t.Fatal(err)
	}
	unix.Shutdown(b, unix.SHUT_RDWR)

	events := make([]api.Event, 4)
	n, err := p.Wait(events, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || !events[0].Readable {
		t.Fatalf("Wait = %d %+v, want a readable event on peer shutdown", n, events[0])
	}
}
