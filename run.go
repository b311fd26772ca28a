package ve

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/gazed/ve/device"
	"github.com/gazed/ve/device/filter"
	"github.com/gazed/ve/device/glob"
	"github.com/gazed/ve/mp"
	"github.com/gazed/ve/render"
)

// Runtime is the frame-tick loop: it owns the event queue, the filter
// chain, the callback dispatcher, the MP coordinator, and the render
// driver, and drives one application through its App contract.
type Runtime struct {
	log hclog.Logger

	app   App
	eng   *eng
	coord *mp.Coordinator

	queue  *device.Queue
	chains []*filter.Chain
	disp   *device.Dispatcher

	tickRate time.Duration
	stop     chan struct{}
}

// NewRuntime wires a fully-configured application run together. env and
// prof may be nil if Create is expected to populate them; driver may be
// nil for a headless/test run, in which case RenderWindow is a no-op.
func NewRuntime(log hclog.Logger, app App, coord *mp.Coordinator, driver render.Driver, env *Environment, prof *UserProfile) *Runtime {
	r := &Runtime{
		log:      log.Named("ve"),
		app:      app,
		coord:    coord,
		queue:    device.NewQueue(),
		disp:     device.NewDispatcher(),
		tickRate: 20 * time.Millisecond,
		stop:     make(chan struct{}),
	}
	r.eng = &eng{coord: coord, driver: driver, env: env, prof: prof}

	coord.OnEnv(func(payload []byte) {
		decoded, err := UnmarshalEnvironment(payload)
		if err != nil {
			r.log.Warn("dropped malformed environment push", "err", err)
			return
		}
		r.eng.setEnv(decoded)
	})
	coord.OnProfile(func(payload []byte) {
		decoded, err := UnmarshalProfile(payload)
		if err != nil {
			r.log.Warn("dropped malformed profile push", "err", err)
			return
		}
		r.eng.setProfile(decoded)
	})
	coord.OnLocation(func(payload []byte) {
		origin, eye, err := UnmarshalLocation(payload)
		if err != nil {
			r.log.Warn("dropped malformed location push", "err", err)
			return
		}
		r.eng.setLocation(origin, eye)
	})

	return r
}

// Queue returns the runtime's device-event queue, for wiring up drivers.
func (r *Runtime) Queue() *device.Queue { return r.queue }

// Dispatcher returns the runtime's callback dispatcher, for application
// registration of device.element callbacks.
func (r *Runtime) Dispatcher() *device.Dispatcher { return r.disp }

// AddChain attaches a filter chain to a device/element pattern. Events
// whose name matches are run through it before dispatch; an event may
// match more than one chain, each run in the order chains were added.
func (r *Runtime) AddChain(c *filter.Chain) { r.chains = append(r.chains, c) }

// SetTickRate overrides the default 50Hz frame-tick rate.
func (r *Runtime) SetTickRate(d time.Duration) { r.tickRate = d }

// Stop signals the run loop to exit after its current tick.
func (r *Runtime) Stop() { close(r.stop) }

// Run starts a goroutine draining the device queue into the filter chain
// and dispatcher, then blocks running the frame-tick loop until Stop is
// called. It does not watch the coordinator's connections; a lost
// connection does not end the loop. Create is called once before the
// first tick.
func (r *Runtime) Run() {
	r.app.Create(r.eng, r.eng.env)

	go r.drainEvents()

	ticker := time.NewTicker(r.tickRate)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.app.Update(r.eng, r.disp)
			if !r.coord.IsSlave() {
				var location []byte
				if origin, eye := r.eng.Origin(), r.eng.Eye(); origin != nil && eye != nil {
					if payload, err := MarshalLocation(origin, eye); err == nil {
						location = payload
					} else {
						r.log.Warn("failed to encode location push", "err", err)
					}
				}
				r.coord.PushFrame(location)
			}
		}
	}
}

// drainEvents pops events off the queue, runs each through every matching
// filter chain in order, and delivers survivors to the dispatcher. Runs
// until the queue is closed.
func (r *Runtime) drainEvents() {
	for {
		e, ok := r.queue.Pop()
		if !ok {
			return
		}
		dropped := false
		for _, c := range r.chains {
			if !glob.Match(c.Pattern, e.Name()) {
				continue
			}
			result, out := c.Run(e, r.queue)
			switch result {
			case filter.Discard:
				dropped = true
			case filter.Error:
				r.log.Warn("filter chain dropped event", "event", e.String())
				dropped = true
			default:
				e = out
			}
			if dropped {
				break
			}
		}
		if !dropped {
			r.disp.Dispatch(e)
		}
	}
}
