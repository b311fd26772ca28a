package device

import (
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Insert(&Event{Device: "a"})
	q.Insert(&Event{Device: "b"})
	e, ok := q.TryPop()
	if !ok || e.Device != "a" {
		t.Fatalf("want a first, got %+v ok=%v", e, ok)
	}
	e, ok = q.TryPop()
	if !ok || e.Device != "b" {
		t.Fatalf("want b second, got %+v ok=%v", e, ok)
	}
	if _, ok := q.TryPop(); ok {
		t.Fatalf("expected empty queue")
	}
}

func TestQueuePushFront(t *testing.T) {
	q := NewQueue()
	q.Insert(&Event{Device: "a"})
	q.PushFront(&Event{Device: "urgent"})
	e, _ := q.TryPop()
	if e.Device != "urgent" {
		t.Fatalf("want urgent first, got %s", e.Device)
	}
}

func TestQueuePopBlocksUntilInsert(t *testing.T) {
	q := NewQueue()
	done := make(chan *Event, 1)
	go func() {
		e, _ := q.Pop()
		done <- e
	}()
	time.Sleep(10 * time.Millisecond)
	q.Insert(&Event{Device: "late"})
	select {
	case e := <-done:
		if e.Device != "late" {
			t.Fatalf("want late, got %s", e.Device)
		}
	case <-time.After(time.Second):
		t.Fatalf("Pop never returned")
	}
}

func TestQueueCloseUnblocksPop(t *testing.T) {
	q := NewQueue()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()
	time.Sleep(10 * time.Millisecond)
	q.Close()
	select {
	case ok := <-done:
		if ok {
			t.Fatalf("want Pop to report closed, got ok=true")
		}
	case <-time.After(time.Second):
		t.Fatalf("Pop never returned after Close")
	}
}
