// Package filter implements the per-device/element filter chain: built-in
// filters (rename, copy, clamp, dump, and the to_* convert family) plus the
// registry and instance machinery a driver configuration attaches chains
// through. Filters are modeled as a capability set -- a shared Definition
// (name + handler + instantiate/destroy) plus per-instance parameters --
// a "plain-function virtual dispatch" pattern, held as a struct of Go func
// values.
package filter

import (
	"fmt"

	"github.com/gazed/ve/device"
)

// Result is what a filter returns after seeing an event.
type Result int

const (
	Continue Result = iota // event passes through to the next filter.
	Discard                // event is dropped, no warning.
	Error                  // event is dropped, warning logged by the caller.
)

// Handler is the per-event behavior of a filter instance. queue is passed
// so filters like copy can push a derived event onto the head of the input
// queue.
type Handler func(inst *Instance, e *device.Event, queue *device.Queue) Result

// Definition is a named, shared filter implementation. Instantiate/Destroy
// let a filter allocate and free per-instance state (e.g. compiled expr.Expr)
// from its configuration parameters.
type Definition struct {
	Name        string
	Handler     Handler
	Instantiate func(params map[string]string) (interface{}, error)
	Destroy     func(state interface{})
}

// Instance is one configured attachment of a filter Definition to a
// device/element pattern, holding its own parameters and any state the
// Definition's Instantiate produced.
type Instance struct {
	Def     *Definition
	Params  map[string]string
	State   interface{}
	Pattern string // device.element glob this instance is attached to.
}

// Registry is the name -> Definition map filters are looked up through.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry returns a registry pre-populated with the built-in filters.
func NewRegistry() *Registry {
	r := &Registry{defs: map[string]*Definition{}}
	for _, d := range builtins() {
		r.Register(d)
	}
	return r
}

// Register adds or replaces a filter definition by name.
func (r *Registry) Register(d *Definition) { r.defs[d.Name] = d }

// Lookup returns the named definition, or nil if unregistered.
func (r *Registry) Lookup(name string) *Definition { return r.defs[name] }

// New instantiates a registered filter by name with the given parameters.
func (r *Registry) New(name, pattern string, params map[string]string) (*Instance, error) {
	def := r.Lookup(name)
	if def == nil {
		return nil, fmt.Errorf("filter: unknown filter %q", name)
	}
	inst := &Instance{Def: def, Params: params, Pattern: pattern}
	if def.Instantiate != nil {
		state, err := def.Instantiate(params)
		if err != nil {
			return nil, fmt.Errorf("filter: %s: %w", name, err)
		}
		inst.State = state
	}
	return inst, nil
}

// Close releases any instance-owned state through the Definition's Destroy.
func (inst *Instance) Close() {
	if inst.Def.Destroy != nil {
		inst.Def.Destroy(inst.State)
	}
}

// Chain is an ordered list of filter instances attached to one
// device/element pattern. An event walks the chain in order; the first
// filter to return Discard or Error stops the walk.
type Chain struct {
	Pattern   string
	Instances []*Instance
}

// Run walks e through the chain. It returns the final result and, when
// every filter returned Continue, the event (possibly mutated in place).
func (c *Chain) Run(e *device.Event, queue *device.Queue) (Result, *device.Event) {
	for _, inst := range c.Instances {
		switch res := inst.Def.Handler(inst, e, queue); res {
		case Continue:
			continue
		default:
			return res, nil
		}
	}
	return Continue, e
}
