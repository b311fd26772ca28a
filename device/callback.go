package device

import "github.com/gazed/ve/device/glob"

// Callback is invoked for events whose "device.element" name matches a
// registered glob pattern.
type Callback func(e *Event, userdata interface{})

type binding struct {
	pattern  string
	fn       Callback
	userdata interface{}
}

// Dispatcher holds the ordered list of application callback registrations
// and delivers survivors of the filter chain to every matching callback, in
// registration order.
type Dispatcher struct {
	bindings []binding
}

// NewDispatcher returns an empty callback dispatcher.
func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// On registers fn to be called for every event whose device.element name
// matches pattern. Order of registration is the order callbacks are tried.
func (d *Dispatcher) On(pattern string, fn Callback, userdata interface{}) {
	d.bindings = append(d.bindings, binding{pattern: pattern, fn: fn, userdata: userdata})
}

// Dispatch delivers e to every callback whose pattern matches e's name, in
// registration order.
func (d *Dispatcher) Dispatch(e *Event) {
	name := e.Name()
	for _, b := range d.bindings {
		if glob.Match(b.pattern, name) {
			b.fn(e, b.userdata)
		}
	}
}
