package ve

import (
	"sync"

	"github.com/gazed/ve/device"
	"github.com/gazed/ve/mp"
	"github.com/gazed/ve/render"
	"github.com/gazed/ve/transport"
)

// App is implemented by the application and registered once at startup.
// Create is called once after the environment and profile are loaded;
// Update is called once per frame tick thereafter and is handed the
// runtime's callback dispatcher. Device events are filtered and dispatched
// on a separate goroutine as they arrive; they are not batched per tick.
type App interface {
	Create(eng Eng, env *Environment)
	Update(eng Eng, in *device.Dispatcher)
}

// Eng is the application's view of the running toolkit: slave lifecycle,
// state-variable replication, and the render-driver contract, without
// exposing the coordinator or the device queue directly.
type Eng interface {
	// GetSlave resolves (node, process) to a dense slave id, spawning a
	// new slave on first request. See mp.Coordinator.GetSlave.
	GetSlave(node, process string, opts ...mp.GetSlaveOption) (uint32, error)

	// PushState registers application state for per-frame replication
	// (AUTO) or on-demand pushes (see mp.Coordinator.RegisterState).
	PushState(tag uint32, mem []byte, flags mp.StateFlags) error

	// Broadcast sends an application DATA message to every slave.
	Broadcast(tag uint32, payload []byte)

	// RenderWindow asks the render driver to draw one window this tick.
	RenderWindow(w *Window) error

	// SetSlaveGuard toggles the slave-guard flag (default on); see
	// mp.Coordinator.SetSlaveGuard.
	SetSlaveGuard(on bool)

	// Environment returns the currently loaded environment tree.
	Environment() *Environment

	// Profile returns the active user profile.
	Profile() *UserProfile

	// PushEnvironment broadcasts env as the authoritative ENV push to every
	// slave known at the time of the call. Slaves created afterwards do not
	// receive it. Slave-guarded: a no-op if called on a slave with
	// slave-guard on.
	PushEnvironment(env *Environment) error

	// PushProfile broadcasts prof as the authoritative PROFILE push.
	// Slave-guarded the same way as PushEnvironment.
	PushProfile(prof *UserProfile) error

	// SetLocation records the origin/default-eye frame pair the next
	// frame tick's automatic LOCATION push will carry.
	SetLocation(origin, eye *Frame)
}

// eng is the concrete Eng implementation wired up by Run. env, prof, and
// origin/eye are mutated by the mp reception goroutine whenever an
// ENV/PROFILE/LOCATION push arrives, and read by the update/render loop,
// hence the mutex -- everything else here only ever runs on the frame-tick
// goroutine.
type eng struct {
	coord  *mp.Coordinator
	driver render.Driver

	mu          sync.RWMutex
	env         *Environment
	prof        *UserProfile
	origin, eye *Frame
}

func (e *eng) GetSlave(node, process string, opts ...mp.GetSlaveOption) (uint32, error) {
	return e.coord.GetSlave(node, process, opts...)
}

func (e *eng) PushState(tag uint32, mem []byte, flags mp.StateFlags) error {
	return e.coord.RegisterState(tag, mem, flags)
}

func (e *eng) Broadcast(tag uint32, payload []byte) {
	e.coord.PushData(tag, payload, nil)
}

func (e *eng) RenderWindow(w *Window) error {
	if e.driver == nil {
		return nil
	}
	if err := e.driver.RenderWindow(w); err != nil {
		return err
	}
	return e.driver.Swap(w)
}

func (e *eng) SetSlaveGuard(on bool) { e.coord.SetSlaveGuard(on) }

func (e *eng) PushEnvironment(env *Environment) error {
	if e.coord.SlaveGuarded() {
		return nil
	}
	payload, err := MarshalEnvironment(env)
	if err != nil {
		return err
	}
	e.coord.Broadcast(transport.ClassEnv, 0, transport.Reliable, payload)
	e.setEnv(env)
	return nil
}

func (e *eng) PushProfile(prof *UserProfile) error {
	if e.coord.SlaveGuarded() {
		return nil
	}
	payload, err := MarshalProfile(prof)
	if err != nil {
		return err
	}
	e.coord.Broadcast(transport.ClassProfile, 0, transport.Reliable, payload)
	e.setProfile(prof)
	return nil
}

func (e *eng) Environment() *Environment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.env
}

func (e *eng) Profile() *UserProfile {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.prof
}

// Origin and Eye return the most recently received origin/default-eye
// frames, or nil if none has arrived yet.
func (e *eng) Origin() *Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.origin
}

func (e *eng) Eye() *Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.eye
}

func (e *eng) setEnv(env *Environment) {
	e.mu.Lock()
	e.env = env
	e.mu.Unlock()
}

func (e *eng) setProfile(prof *UserProfile) {
	e.mu.Lock()
	e.prof = prof
	e.mu.Unlock()
}

func (e *eng) setLocation(origin, eye *Frame) {
	e.mu.Lock()
	e.origin, e.eye = origin, eye
	e.mu.Unlock()
}

// SetLocation implements Eng.SetLocation.
func (e *eng) SetLocation(origin, eye *Frame) { e.setLocation(origin, eye) }
