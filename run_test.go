package ve

import (
	"testing"

	"github.com/gazed/ve/device"
	"github.com/gazed/ve/device/filter"
)

// TestRenameFilterScenario is spec end-to-end scenario 3: a rename filter
// on "joy.ax0" retargets an incoming valuator event to "wheel.steering"
// before it reaches an application callback.
func TestRenameFilterScenario(t *testing.T) {
	reg := filter.NewRegistry()
	inst, err := reg.New("rename", "joy.ax0", map[string]string{"pattern": "wheel.steering"})
	if err != nil {
		t.Fatalf("New rename: %v", err)
	}
	chain := &filter.Chain{Pattern: "joy.ax0", Instances: []*filter.Instance{inst}}

	q := device.NewQueue()
	disp := device.NewDispatcher()
	var got *device.Event
	disp.On("wheel.steering", func(e *device.Event, _ interface{}) { got = e }, nil)

	e := &device.Event{Device: "joy", Element: "ax0", Content: device.ValuatorContent{Value: 0.3}}
	result, out := chain.Run(e, q)
	if result != filter.Continue {
		t.Fatalf("want Continue, got %v", result)
	}
	disp.Dispatch(out)

	if got == nil {
		t.Fatalf("callback on wheel.steering never fired")
	}
	if got.Name() != "wheel.steering" {
		t.Fatalf("want renamed event name wheel.steering, got %s", got.Name())
	}
	vc, ok := got.Content.(device.ValuatorContent)
	if !ok || vc.Value != 0.3 {
		t.Fatalf("want valuator value preserved at 0.3, got %+v", got.Content)
	}
}

// TestCopyThenConvertScenario is spec end-to-end scenario 4: a copy
// ".button" chain on joy.ax0 plus a to_switch threshold=0.5 chain on
// joy.button deliver both the original valuator event and a derived switch
// event at joy.button.
func TestCopyThenConvertScenario(t *testing.T) {
	reg := filter.NewRegistry()
	copyInst, err := reg.New("copy", "joy.ax0", map[string]string{"pattern": ".button"})
	if err != nil {
		t.Fatalf("New copy: %v", err)
	}
	chain := &filter.Chain{Pattern: "joy.ax0", Instances: []*filter.Instance{copyInst}}

	convertReg := filter.NewRegistry()
	convertInst, err := convertReg.New("to_switch", "joy.button", map[string]string{"threshold": "0.5"})
	if err != nil {
		t.Fatalf("New to_switch: %v", err)
	}
	convertChain := &filter.Chain{Pattern: "joy.button", Instances: []*filter.Instance{convertInst}}

	q := device.NewQueue()
	disp := device.NewDispatcher()
	var valuatorSeen, switchSeen bool
	disp.On("joy.ax0", func(e *device.Event, _ interface{}) {
		valuatorSeen = true
		if vc, ok := e.Content.(device.ValuatorContent); !ok || vc.Value != 0.3 {
			t.Fatalf("want original valuator 0.3, got %+v", e.Content)
		}
	}, nil)
	disp.On("joy.button", func(e *device.Event, _ interface{}) {
		switchSeen = true
		if sc, ok := e.Content.(device.SwitchContent); !ok || sc.State != 0 {
			t.Fatalf("want derived switch state 0, got %+v", e.Content)
		}
	}, nil)

	e := &device.Event{Device: "joy", Element: "ax0", Content: device.ValuatorContent{Value: 0.3}}
	result, out := chain.Run(e, q)
	if result != filter.Continue {
		t.Fatalf("copy chain: want Continue, got %v", result)
	}
	disp.Dispatch(out)

	copied, ok := q.Pop()
	if !ok {
		t.Fatalf("want copy filter to push the derived event to the queue")
	}
	result, out = convertChain.Run(copied, q)
	if result != filter.Continue {
		t.Fatalf("convert chain: want Continue, got %v", result)
	}
	disp.Dispatch(out)

	if !valuatorSeen || !switchSeen {
		t.Fatalf("want both the original valuator and the derived switch dispatched, got valuator=%v switch=%v", valuatorSeen, switchSeen)
	}
}
