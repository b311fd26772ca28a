package device

import "fmt"

// Driver is a named, live source (or sink) of events: a pseudo-device such
// as the keyboard/mouse adapters, or a real hardware driver registered by a
// windowing collaborator. It shares the same capability-set shape as the
// filter package's Definition/Instance pair -- a Driver is instantiated
// once per device name, with its own teardown.
type Driver struct {
	Name        string
	Model       Model
	Instantiate func(q *Queue, params map[string]string) (interface{}, error)
	Destroy     func(state interface{})
}

// Registry is the named-driver map drivers and pseudo-devices register
// through.
type Registry struct {
	drivers map[string]*Driver
	live    map[string]interface{}
}

// NewRegistry returns an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{
		drivers: map[string]*Driver{},
		live:    map[string]interface{}{},
	}
}

// Register adds or replaces a driver definition by name.
func (r *Registry) Register(d *Driver) { r.drivers[d.Name] = d }

// Lookup returns the named driver definition, or nil if unregistered.
func (r *Registry) Lookup(name string) *Driver { return r.drivers[name] }

// Start instantiates the named driver against q, keeping the returned state
// so Stop can later tear it down. Starting an already-running driver is an
// error.
func (r *Registry) Start(name string, q *Queue, params map[string]string) error {
	d := r.Lookup(name)
	if d == nil {
		return fmt.Errorf("device: unknown driver %q", name)
	}
	if _, running := r.live[name]; running {
		return fmt.Errorf("device: driver %q already started", name)
	}
	state, err := d.Instantiate(q, params)
	if err != nil {
		return fmt.Errorf("device: %s: %w", name, err)
	}
	r.live[name] = state
	return nil
}

// Stop tears down a running driver. It is a no-op if the driver was never
// started.
func (r *Registry) Stop(name string) {
	d := r.Lookup(name)
	state, running := r.live[name]
	if d == nil || !running {
		return
	}
	if d.Destroy != nil {
		d.Destroy(state)
	}
	delete(r.live, name)
}

// StopAll tears down every running driver, in no particular order.
func (r *Registry) StopAll() {
	for name := range r.live {
		r.Stop(name)
	}
}
