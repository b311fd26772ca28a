package filter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gazed/ve/device"
	"github.com/gazed/ve/device/expr"
)

func builtins() []*Definition {
	return []*Definition{
		renameDef(),
		copyDef(),
		clampDef(),
		dumpDef(nil),
		convertDef("to_trigger"),
		convertDef("to_switch"),
		convertDef("to_valuator"),
		convertDef("to_keyboard"),
		convertDef("to_oneshot"),
	}
}

// splitDotted parses a "device.element" pattern where either half may be
// empty, meaning "leave that field untouched".
func splitDotted(pattern string) (devicePart, elementPart string, err error) {
	i := strings.IndexByte(pattern, '.')
	if i < 0 {
		return "", "", fmt.Errorf("filter: pattern %q missing '.'", pattern)
	}
	return pattern[:i], pattern[i+1:], nil
}

// rename ==================================================================

func renameDef() *Definition {
	return &Definition{
		Name: "rename",
		Instantiate: func(params map[string]string) (interface{}, error) {
			dev, elem, err := splitDotted(params["pattern"])
			if err != nil {
				return nil, err
			}
			return [2]string{dev, elem}, nil
		},
		Handler: func(inst *Instance, e *device.Event, q *device.Queue) Result {
			dev, elem := inst.State.([2]string)[0], inst.State.([2]string)[1]
			if dev != "" {
				e.Device = dev
			}
			if elem != "" {
				e.Element = elem
			}
			return Continue
		},
	}
}

// copy ====================================================================

func copyDef() *Definition {
	return &Definition{
		Name:        "copy",
		Instantiate: renameDef().Instantiate, // same pattern grammar as rename.
		Handler: func(inst *Instance, e *device.Event, q *device.Queue) Result {
			dev, elem := inst.State.([2]string)[0], inst.State.([2]string)[1]
			dup := e.Clone()
			if dev != "" {
				dup.Device = dev
			}
			if elem != "" {
				dup.Element = elem
			}
			// NOTE: a chain like "filter foo.bar { copy }" that copies an
			// event back onto the same pattern it is attached to will loop
			// forever. No cycle detection is performed -- this mirrors the
			// original tool's documented, accepted risk.
			q.PushFront(dup)
			return Continue // the original event is untouched and continues.
		},
	}
}

// clamp ===================================================================

func clampDef() *Definition {
	return &Definition{
		Name: "clamp",
		Handler: func(inst *Instance, e *device.Event, q *device.Queue) Result {
			switch c := e.Content.(type) {
			case device.SwitchContent:
				c.State = clampBit(c.State)
				e.Content = c
			case device.KeyboardContent:
				c.State = clampBit(c.State)
				e.Content = c
			case device.ValuatorContent:
				if c.Min != 0 || c.Max != 0 {
					c.Value = clampRange(c.Value, c.Min, c.Max)
				}
				e.Content = c
			case device.VectorContent:
				els := make([]device.Triple, len(c.Elements))
				for i, t := range c.Elements {
					if t.Min != 0 || t.Max != 0 {
						t.Value = clampRange(t.Value, t.Min, t.Max)
					}
					els[i] = t
				}
				e.Content = device.VectorContent{Elements: els}
			}
			return Continue
		},
	}
}

func clampBit(state int) int {
	if state == 0 {
		return 0
	}
	return 1
}

func clampRange(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// dump ====================================================================

// dumpDef builds the dump filter. w defaults to os.Stderr when nil; tests
// can supply their own writer via Instantiate state.
func dumpDef(w io.Writer) *Definition {
	if w == nil {
		w = os.Stderr
	}
	return &Definition{
		Name: "dump",
		Instantiate: func(params map[string]string) (interface{}, error) {
			return w, nil
		},
		Handler: func(inst *Instance, e *device.Event, q *device.Queue) Result {
			out, _ := inst.State.(io.Writer)
			if out == nil {
				out = os.Stderr
			}
			fmt.Fprintln(out, e.String())
			return Continue
		},
	}
}

// convert family ==========================================================

type convertState struct {
	kind      string // to_trigger | to_switch | to_valuator | to_keyboard | to_oneshot
	hasState  bool
	state     int
	threshold float64
	invert    bool
	hasValue  bool
	value     float64
	exprSrc   string
	expr      *expr.Expr
	hasMin    bool
	min       float64
	hasMax    bool
	max       float64
	hasKey    bool
	key       int
}

func convertDef(kind string) *Definition {
	return &Definition{
		Name: kind,
		Instantiate: func(params map[string]string) (interface{}, error) {
			return parseConvertParams(kind, params)
		},
		Handler: convertHandler,
	}
}

func parseConvertParams(kind string, params map[string]string) (*convertState, error) {
	cs := &convertState{kind: kind, threshold: 0}
	if v, ok := params["state"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: bad state=%q", kind, v)
		}
		cs.hasState, cs.state = true, clampBit(n)
	}
	if v, ok := params["threshold"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: bad threshold=%q", kind, v)
		}
		cs.threshold = f
	}
	if v, ok := params["invert"]; ok {
		cs.invert = v == "1"
	}
	if v, ok := params["value"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: bad value=%q", kind, v)
		}
		cs.hasValue, cs.value = true, f
	}
	if v, ok := params["expr"]; ok {
		e, err := expr.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: %w", kind, err)
		}
		cs.exprSrc, cs.expr = v, e
	}
	if v, ok := params["min"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: bad min=%q", kind, v)
		}
		cs.hasMin, cs.min = true, f
	}
	if v, ok := params["max"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: bad max=%q", kind, v)
		}
		cs.hasMax, cs.max = true, f
	}
	if v, ok := params["key"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: bad key=%q", kind, v)
		}
		cs.hasKey, cs.key = true, n
	}
	return cs, nil
}

func convertHandler(inst *Instance, e *device.Event, q *device.Queue) Result {
	cs := inst.State.(*convertState)

	// A forced state trumps all else. invert is already applied by
	// deriveSwitchState.
	resolveState := func(fallback int, ok bool) (int, bool) {
		if cs.hasState {
			return cs.state, true
		}
		if !ok {
			return 0, false
		}
		return fallback, true
	}

	switch cs.kind {
	case "to_trigger":
		e.Content = device.TriggerContent{} // a trigger has no payload to force.
		return Continue
	case "to_switch", "to_oneshot":
		st, ok := deriveSwitchState(e, cs)
		if !ok {
			return Error
		}
		st, _ = resolveState(st, true)
		if cs.kind == "to_oneshot" {
			if st == 1 {
				e.Content = device.TriggerContent{}
				return Continue
			}
			return Discard
		}
		e.Content = device.SwitchContent{State: st}
		return Continue
	case "to_keyboard":
		st, ok := deriveSwitchState(e, cs)
		if !ok {
			return Error
		}
		st, _ = resolveState(st, true)
		key := cs.key
		if !cs.hasKey {
			if kb, ok := e.Content.(device.KeyboardContent); ok {
				key = kb.Keysym
			}
		}
		e.Content = device.KeyboardContent{Keysym: key, State: st}
		return Continue
	case "to_valuator":
		val, ok := deriveValuatorValue(e, cs)
		if !ok {
			return Error
		}
		min, max := 0.0, 0.0
		if vc, ok := e.Content.(device.ValuatorContent); ok {
			min, max = vc.Min, vc.Max
		}
		if cs.hasMin {
			min = cs.min
		}
		if cs.hasMax {
			max = cs.max
		}
		e.Content = device.ValuatorContent{Value: val, Min: min, Max: max}
		return Continue
	}
	return Error
}

// deriveSwitchState computes the resulting {0,1} state for to_switch,
// to_oneshot, and to_keyboard from whatever content the event currently
// carries.
func deriveSwitchState(e *device.Event, cs *convertState) (int, bool) {
	if cs.hasState {
		return cs.state, true
	}
	switch c := e.Content.(type) {
	case device.SwitchContent:
		st := c.State
		if cs.invert {
			st = 1 - clampBit(st)
		}
		return clampBit(st), true
	case device.KeyboardContent:
		st := clampBit(c.State)
		if cs.invert {
			st = 1 - st
		}
		return st, true
	case device.ValuatorContent:
		st := 0
		if c.Value >= cs.threshold {
			st = 1
		}
		if cs.invert {
			st = 1 - st
		}
		return st, true
	case device.TriggerContent:
		st := 1
		if cs.invert {
			st = 0
		}
		return st, true
	default:
		// A vector (or anything else) cannot be reduced to a switch state
		// without an explicit state= override.
		return 0, false
	}
}

// deriveValuatorValue computes the resulting value for to_valuator.
func deriveValuatorValue(e *device.Event, cs *convertState) (float64, bool) {
	if cs.hasValue {
		return cs.value, true
	}
	if cs.expr != nil {
		x, ok := currentX(e)
		if !ok {
			return 0, false
		}
		return cs.expr.Eval(x), true
	}
	if vc, ok := e.Content.(device.ValuatorContent); ok {
		return vc.Value, true
	}
	return 0, false
}

func currentX(e *device.Event) (float64, bool) {
	switch c := e.Content.(type) {
	case device.ValuatorContent:
		return c.Value, true
	case device.SwitchContent:
		return float64(c.State), true
	case device.KeyboardContent:
		return float64(c.State), true
	default:
		return 0, false
	}
}
