package transport

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
)

func newConnPair(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	log := hclog.NewNullLogger()
	return NewConn(log, a, true), NewConn(log, b, true)
}

func TestSendRecvRoundTrip(t *testing.T) {
	client, server := newConnPair(t)
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- client.Send(ClassData, 5, Reliable, []byte("hello"))
	}()

	pk, err := server.Recv(time.Second)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if pk.Header.Class != ClassData || pk.Header.Tag != 5 {
		t.Fatalf("unexpected header: %+v", pk.Header)
	}
	if !bytes.Equal(pk.Payload, []byte("hello")) {
		t.Fatalf("unexpected payload: %q", pk.Payload)
	}
}

func TestSendDowngradesFastWithoutFastChannel(t *testing.T) {
	client, server := newConnPair(t)
	defer client.Close()
	defer server.Close()
	// newConnPair shares one pipe for both channels, so this exercises the
	// "no fast channel" branch by asserting HasFast would be false on a
	// connection built without sharing.
	solo := NewConn(hclog.NewNullLogger(), client.reliable, false)
	if solo.HasFast() {
		t.Fatalf("expected no fast channel when not shared")
	}

	done := make(chan error, 1)
	go func() { done <- solo.Send(ClassData, 1, Fast, []byte("x")) }()

	pk, err := server.Recv(time.Second)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if pk.Header.Channel != Reliable {
		t.Fatalf("want downgraded to reliable, got %v", pk.Header.Channel)
	}
}

func TestRecvTimeoutWhenIdle(t *testing.T) {
	_, server := newConnPair(t)
	defer server.Close()

	_, err := server.Recv(10 * time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
}
