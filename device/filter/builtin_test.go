package filter

import (
	"bytes"
	"testing"

	"github.com/gazed/ve/device"
)

func newEvent(content device.Content) *device.Event {
	return &device.Event{Device: "joint", Element: "trigger", Content: content}
}

func TestRenameInPlace(t *testing.T) {
	r := NewRegistry()
	inst, err := r.New("rename", "old.elem", map[string]string{"pattern": "new."})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := newEvent(device.TriggerContent{})
	q := device.NewQueue()
	if res := inst.Def.Handler(inst, e, q); res != Continue {
		t.Fatalf("want Continue, got %v", res)
	}
	if e.Device != "new" || e.Element != "trigger" {
		t.Fatalf("want new.trigger, got %s.%s", e.Device, e.Element)
	}
}

func TestRenameEmptyHalfLeavesFieldUntouched(t *testing.T) {
	r := NewRegistry()
	inst, err := r.New("rename", "old.elem", map[string]string{"pattern": ".button"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := newEvent(device.TriggerContent{})
	q := device.NewQueue()
	inst.Def.Handler(inst, e, q)
	if e.Device != "joint" || e.Element != "button" {
		t.Fatalf("want joint.button, got %s.%s", e.Device, e.Element)
	}
}

func TestCopyLeavesOriginalAndPushesFront(t *testing.T) {
	r := NewRegistry()
	inst, err := r.New("copy", "joint.trigger", map[string]string{"pattern": "joint.copied"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e := newEvent(device.TriggerContent{})
	q := device.NewQueue()
	if res := inst.Def.Handler(inst, e, q); res != Continue {
		t.Fatalf("want Continue, got %v", res)
	}
	if e.Device != "joint" || e.Element != "trigger" {
		t.Fatalf("original mutated: %s.%s", e.Device, e.Element)
	}
	dup, ok := q.TryPop()
	if !ok {
		t.Fatalf("expected a copy on the queue")
	}
	if dup.Device != "joint" || dup.Element != "copied" {
		t.Fatalf("want joint.copied, got %s.%s", dup.Device, dup.Element)
	}
}

func TestClampSwitchAndKeyboard(t *testing.T) {
	r := NewRegistry()
	inst, _ := r.New("clamp", "*", nil)
	q := device.NewQueue()

	e := newEvent(device.SwitchContent{State: 5})
	inst.Def.Handler(inst, e, q)
	if e.Content.(device.SwitchContent).State != 1 {
		t.Fatalf("switch state not clamped to 1")
	}

	e2 := newEvent(device.KeyboardContent{Keysym: 65, State: -3})
	inst.Def.Handler(inst, e2, q)
	if e2.Content.(device.KeyboardContent).State != 1 {
		t.Fatalf("keyboard state not clamped to 1")
	}
}

func TestClampValuatorRangeOnlyWhenBoundsSet(t *testing.T) {
	r := NewRegistry()
	inst, _ := r.New("clamp", "*", nil)
	q := device.NewQueue()

	e := newEvent(device.ValuatorContent{Value: 42, Min: 0, Max: 0})
	inst.Def.Handler(inst, e, q)
	if e.Content.(device.ValuatorContent).Value != 42 {
		t.Fatalf("value clamped despite zero min/max: %v", e.Content)
	}

	e2 := newEvent(device.ValuatorContent{Value: 42, Min: 0, Max: 10})
	inst.Def.Handler(inst, e2, q)
	if e2.Content.(device.ValuatorContent).Value != 10 {
		t.Fatalf("want clamped to 10, got %v", e2.Content.(device.ValuatorContent).Value)
	}
}

func TestDumpAlwaysContinuesAndWrites(t *testing.T) {
	var buf bytes.Buffer
	def := dumpDef(&buf)
	inst, err := def.Instantiate(nil)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	i := &Instance{Def: def, State: inst}
	e := newEvent(device.TriggerContent{})
	q := device.NewQueue()
	if res := def.Handler(i, e, q); res != Continue {
		t.Fatalf("want Continue, got %v", res)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected dump to write something")
	}
}

func TestToSwitchFromValuatorThreshold(t *testing.T) {
	r := NewRegistry()
	inst, err := r.New("to_switch", "*", map[string]string{"threshold": "0.5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	q := device.NewQueue()

	e := newEvent(device.ValuatorContent{Value: 0.8})
	if res := inst.Def.Handler(inst, e, q); res != Continue {
		t.Fatalf("want Continue, got %v", res)
	}
	if e.Content.(device.SwitchContent).State != 1 {
		t.Fatalf("want state 1 above threshold")
	}

	e2 := newEvent(device.ValuatorContent{Value: 0.2})
	inst.Def.Handler(inst, e2, q)
	if e2.Content.(device.SwitchContent).State != 0 {
		t.Fatalf("want state 0 below threshold")
	}
}

func TestToOneshotDiscardsOnZero(t *testing.T) {
	r := NewRegistry()
	inst, err := r.New("to_oneshot", "*", map[string]string{"threshold": "0.5"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	q := device.NewQueue()

	on := newEvent(device.ValuatorContent{Value: 1})
	if res := inst.Def.Handler(inst, on, q); res != Continue {
		t.Fatalf("want Continue on state 1, got %v", res)
	}
	if on.Content.Kind() != device.Trigger {
		t.Fatalf("want trigger content, got %v", on.Content)
	}

	off := newEvent(device.ValuatorContent{Value: 0})
	if res := inst.Def.Handler(inst, off, q); res != Discard {
		t.Fatalf("want Discard on state 0, got %v", res)
	}
}

func TestToSwitchFromVectorWithoutStateIsError(t *testing.T) {
	r := NewRegistry()
	inst, err := r.New("to_switch", "*", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	q := device.NewQueue()
	e := newEvent(device.VectorContent{Elements: []device.Triple{{Value: 1}}})
	if res := inst.Def.Handler(inst, e, q); res != Error {
		t.Fatalf("want Error converting vector without state=, got %v", res)
	}
}

func TestToValuatorWithExpr(t *testing.T) {
	r := NewRegistry()
	inst, err := r.New("to_valuator", "*", map[string]string{"expr": "x*2+1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	q := device.NewQueue()
	e := newEvent(device.ValuatorContent{Value: 3})
	if res := inst.Def.Handler(inst, e, q); res != Continue {
		t.Fatalf("want Continue, got %v", res)
	}
	if got := e.Content.(device.ValuatorContent).Value; got != 7 {
		t.Fatalf("want 7, got %v", got)
	}
}

func TestToKeyboardForcedState(t *testing.T) {
	r := NewRegistry()
	inst, err := r.New("to_keyboard", "*", map[string]string{"state": "1", "key": "27"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	q := device.NewQueue()
	e := newEvent(device.TriggerContent{})
	inst.Def.Handler(inst, e, q)
	kb := e.Content.(device.KeyboardContent)
	if kb.State != 1 || kb.Keysym != 27 {
		t.Fatalf("want state=1 key=27, got %+v", kb)
	}
}

func TestUnknownFilterErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.New("nope", "*", nil); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}
