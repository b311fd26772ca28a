package device

import "testing"

func TestDispatcherDeliversToMatchingPatterns(t *testing.T) {
	d := NewDispatcher()
	var got []string
	d.On("joy*.button0", func(e *Event, _ interface{}) {
		got = append(got, "wildcard")
	}, nil)
	d.On("joy1.button0", func(e *Event, _ interface{}) {
		got = append(got, "exact")
	}, nil)
	d.On("joy1.button1", func(e *Event, _ interface{}) {
		got = append(got, "other")
	}, nil)

	d.Dispatch(&Event{Device: "joy1", Element: "button0"})

	if len(got) != 2 || got[0] != "wildcard" || got[1] != "exact" {
		t.Fatalf("want [wildcard exact] in registration order, got %v", got)
	}
}
