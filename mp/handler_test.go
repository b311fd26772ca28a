package mp

import (
	"testing"

	"github.com/gazed/ve/transport"
)

func TestHandlerLookupFirstMatchWins(t *testing.T) {
	table := newHandlerTable()
	var got string
	table.Register(transport.ClassData, 5, func(*Coordinator, *Slave, transport.Packet) { got = "exact" })
	table.Register(transport.ClassData, TagWildcard, func(*Coordinator, *Slave, transport.Packet) { got = "class-exact" })
	table.Register(ClassWildcard, TagWildcard, func(*Coordinator, *Slave, transport.Packet) { got = "wildcard" })

	h, ok := table.lookup(transport.ClassData, 5)
	if !ok {
		t.Fatalf("expected a match")
	}
	h(nil, nil, transport.Packet{})
	if got != "exact" {
		t.Fatalf("want exact match to win, got %s", got)
	}
}

func TestHandlerLookupFallsBackToWildcard(t *testing.T) {
	table := newHandlerTable()
	var got string
	table.Register(ClassWildcard, TagWildcard, func(*Coordinator, *Slave, transport.Packet) { got = "wildcard" })

	h, ok := table.lookup(transport.ClassCtrl, 99)
	if !ok {
		t.Fatalf("expected wildcard to match")
	}
	h(nil, nil, transport.Packet{})
	if got != "wildcard" {
		t.Fatalf("want wildcard match, got %s", got)
	}
}

func TestHandlerLookupNoMatch(t *testing.T) {
	table := newHandlerTable()
	if _, ok := table.lookup(transport.ClassData, 1); ok {
		t.Fatalf("expected no match in an empty table")
	}
}
