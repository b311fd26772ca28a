// Package device provides the typed device-event pipeline: event content
// variants, a per-device filter chain, and glob-matched application
// callbacks. It is the toolkit's typed, five-variant event model
// (trigger, switch, keyboard, valuator, vector): drivers (including pseudo-devices fabricated by
// windowing collaborators) call Insert to post events; the main loop drains
// them with Pop and runs them through filters and callbacks.
package device

import "fmt"

// Kind identifies which Content variant an Event carries.
type Kind int

const (
	Trigger Kind = iota
	Switch
	Keyboard
	Valuator
	Vector
)

func (k Kind) String() string {
	switch k {
	case Trigger:
		return "trigger"
	case Switch:
		return "switch"
	case Keyboard:
		return "keyboard"
	case Valuator:
		return "valuator"
	case Vector:
		return "vector"
	default:
		return "unknown"
	}
}

// Content is a discriminated union over the five event payload variants.
// A filter that needs to change the variant replaces Event.Content wholesale
// rather than overwriting fields in place -- fields from the original
// content are never reused across variants.
type Content interface {
	Kind() Kind
}

// TriggerContent carries no payload; its occurrence is the event.
type TriggerContent struct{}

func (TriggerContent) Kind() Kind { return Trigger }

// SwitchContent is a boolean-ish state held as an int restricted to {0,1}.
type SwitchContent struct {
	State int
}

func (SwitchContent) Kind() Kind { return Switch }

// KeyboardContent pairs a portable keysym with a pressed state in {0,1}.
type KeyboardContent struct {
	Keysym int
	State  int
}

func (KeyboardContent) Kind() Kind { return Keyboard }

// ValuatorContent is a real value with an optional range. A Min and Max
// both zero means the range is unbounded.
type ValuatorContent struct {
	Value    float64
	Min, Max float64
}

func (ValuatorContent) Kind() Kind { return Valuator }

// Triple is one (value, min, max) element of a VectorContent.
type Triple struct {
	Value, Min, Max float64
}

// VectorContent is a fixed-size sequence of valuator-like triples, used for
// things like normalized mouse axes.
type VectorContent struct {
	Elements []Triple
}

func (VectorContent) Kind() Kind { return Vector }

// Event is a single device occurrence: a timestamp, the device and element
// names that produced it, and its typed content. Events are heap-owned --
// the dequeuing loop takes ownership and is responsible for it once popped.
type Event struct {
	TimeMs  int64 // monotonic milliseconds.
	Device  string
	Element string
	Content Content
}

// Name is the "device.element" identity used for glob matching and rename.
func (e *Event) Name() string { return e.Device + "." + e.Element }

func (e *Event) String() string {
	return fmt.Sprintf("%d %s %s %v", e.TimeMs, e.Device, e.Element, e.Content)
}

// Clone returns a new heap-owned Event with the same field values. Used by
// the copy filter to produce a fresh event to push onto the head of the
// queue without disturbing the original. VectorContent's Elements slice is
// deep-copied so the clone owns its backing array too.
func (e *Event) Clone() *Event {
	c := *e
	if v, ok := c.Content.(VectorContent); ok {
		c.Content = VectorContent{Elements: append([]Triple(nil), v.Elements...)}
	}
	return &c
}

// ElementSpec is metadata advertising one element a driver will emit.
type ElementSpec struct {
	Name string
	Kind Kind
	Min  float64
	Max  float64
}

// Model describes a device's advertised elements. Drivers publish a Model
// so configuration tooling can validate filter chains without the device
// having to be live.
type Model struct {
	Elements []ElementSpec
}
