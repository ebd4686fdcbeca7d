//go:build linux

package transport_test

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/momentics/hioload-relay/api"
	"github.com/momentics/hioload-relay/transport"
)

// retry polls fn until it stops reporting ErrWouldBlock.
func retry(t *testing.T, fn func() error) error {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		err := fn()
		if !errors.Is(err, api.ErrWouldBlock) || time.Now().After(deadline) {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListenAcceptReadWrite(t *testing.T) {
	ln, err := transport.Listen("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	addr := ln.Addr().(*net.TCPAddr)
	if addr.Port == 0 {
		t.Fatal("listener reported port 0")
	}

	if _, _, err := ln.Accept(); !errors.Is(err, api.ErrWouldBlock) {
		t.Fatalf("Accept with nothing pending: %v, want ErrWouldBlock", err)
	}

	client, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	var s api.Stream
	var peer net.Addr
	err = retry(t, func() error {
		var aerr error
		s, peer, aerr = ln.Accept()
		return aerr
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if peer.String() != client.LocalAddr().String() {
		t.Errorf("peer = %s, want %s", peer, client.LocalAddr())
	}

	buf := make([]byte, 16)
	if _, err := s.Read(buf); !errors.Is(err, api.ErrWouldBlock) {
		t.Fatalf("Read with no data: %v, want ErrWouldBlock", err)
	}

	if _, err := client.Write([]byte("ping")); err != nil {
		t.Fatal(err)
	}
	var n int
	err = retry(t, func() error {
		var rerr error
		n, rerr = s.Read(buf)
		return rerr
	})
	if err != nil || string(buf[:n]) != "ping" {
		t.Fatalf("Read = %q, %v", buf[:n], err)
	}

	if _, err := s.Write([]byte("pong")); err != nil {
		t.Fatal(err)
	}
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, 4)
	if _, err := io.ReadFull(client, got); err != nil || string(got) != "pong" {
		t.Fatalf("client read %q, %v", got, err)
	}

	client.Close()
	err = retry(t, func() error {
		_, rerr := s.Read(buf)
		return rerr
	})
	if err != io.EOF {
		t.Fatalf("Read after peer close: %v, want io.EOF", err)
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestListenBadAddress(t *testing.T) {
	if _, err := transport.Listen("not an address"); err == nil {
		t.Fatal("Listen accepted a malformed address")
	}
}
