// Package mp implements the multi-process coordinator: the abstract
// get_slave(node, process) API, the message-handler registries, per-frame
// state-variable replication, and the master/slave asymmetries the upper
// layers should not have to know about.
package mp

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/gazed/ve/transport"
)

// Coordinator is the single explicit session value the design notes call
// for in place of package-level globals: one master/slave-mode flag, one
// slave table, one state-variable list, one pair of handler registries.
// Constructed once by the entry point and passed down.
type Coordinator struct {
	log hclog.Logger

	isSlave bool
	selfID  uint32

	mu          sync.Mutex
	nextID      uint32
	slaveByKey  map[slaveKey]uint32
	slaves      []*Slave

	spawners map[transport.Method]transport.Spawner
	argvTmpl []string

	slaveHandlers  *handlerTable
	masterHandlers *handlerTable

	stateMu sync.RWMutex
	states  []*StateVar
	stateAt map[uint32]*StateVar

	slaveGuard bool

	subsysMu sync.Mutex
	subsys   map[string]uint32 // name -> base tag, for RegisterSubsystem bookkeeping.

	onLocation LocationListener
	onEnv      EnvListener
	onProfile  ProfileListener
}

type slaveKey struct {
	node, process string
}

// Slave is the MP coordinator's record of one slave: its dense id,
// spawn method, (node, process) identity, connection, and send lock.
type Slave struct {
	ID      uint32
	Method  transport.Method
	Node    string
	Process string
	Conn    *transport.Conn

	sendMu sync.Mutex
}

// New returns a master-mode Coordinator. argvTemplate is the master's own
// argv, copied before every CreateSlave call so the sentinel/id injection
// never mutates the template.
func New(log hclog.Logger, argvTemplate []string) *Coordinator {
	c := &Coordinator{
		log:            log.Named("mp"),
		slaveByKey:     map[slaveKey]uint32{},
		spawners:       map[transport.Method]transport.Spawner{},
		argvTmpl:       append([]string(nil), argvTemplate...),
		slaveHandlers:  newHandlerTable(),
		masterHandlers: newHandlerTable(),
		stateAt:        map[uint32]*StateVar{},
		slaveGuard:     true,
		subsys:         map[string]uint32{},
	}
	registerBuiltinSlaveHandlers(c)
	return c
}

// NewSlave returns a slave-mode Coordinator with the slave id SlaveInit
// parsed. The connection back to the master is passed separately, to
// ReceiveAsSlave.
func NewSlave(log hclog.Logger, selfID uint32) *Coordinator {
	c := New(log, nil)
	c.isSlave = true
	c.selfID = selfID
	return c
}

// IsSlave reports whether this process is running as a slave.
func (c *Coordinator) IsSlave() bool { return c.isSlave }

// SetSlaveGuard toggles the application-visible flag (default on) that
// causes certain master-only operations to silently no-op when called on
// a slave.
func (c *Coordinator) SetSlaveGuard(on bool) { c.slaveGuard = on }

// SlaveGuarded reports whether slave-guard is active and this process is a
// slave -- the condition under which master-only operations should no-op.
func (c *Coordinator) SlaveGuarded() bool { return c.slaveGuard && c.isSlave }

// RegisterSpawner installs the Spawner used for a given method. The
// entry point wires transport.NewThreadSpawner/NewLocalSpawner/
// NewRemoteSpawner here once, after construction.
func (c *Coordinator) RegisterSpawner(method transport.Method, s transport.Spawner) {
	c.spawners[method] = s
}

// RegisterSubsystem reserves a sub-tag range within the block of message
// classes set aside for add-on subsystems (render, audio), letting a
// collaborator claim a range without the coordinator knowing its contents.
func (c *Coordinator) RegisterSubsystem(name string, baseTag uint32) error {
	c.subsysMu.Lock()
	defer c.subsysMu.Unlock()
	if _, exists := c.subsys[name]; exists {
		return fmt.Errorf("mp: subsystem %q already registered", name)
	}
	c.subsys[name] = baseTag
	return nil
}

// resolveMethod implements the get_slave naming rule: both auto -> thread,
// node auto with a specific process -> local, node a real hostname ->
// remote.
func resolveMethod(node, process string) transport.Method {
	nodeAuto := node == "" || node == "auto"
	switch {
	case nodeAuto:
		if process == "" || process == "auto" {
			return transport.Thread
		}
		return transport.Local
	default:
		return transport.Remote
	}
}

// GetSlaveOption configures one GetSlave call.
type GetSlaveOption func(*getSlaveConfig)

type getSlaveConfig struct {
	allowFail bool
}

// AllowFail turns unrecoverable setup failures for this call into a
// returned error rather than a fatal process exit.
func AllowFail() GetSlaveOption {
	return func(c *getSlaveConfig) { c.allowFail = true }
}

// GetSlave returns the dense slave id for (node, process), spawning a new
// slave on first request. "auto"/"" for either field lets the system
// choose; the reserved process name "unique" always forces a new slave.
// Existing (node, process) pairs return the same id on every call.
func (c *Coordinator) GetSlave(node, process string, opts ...GetSlaveOption) (uint32, error) {
	cfg := &getSlaveConfig{}
	for _, o := range opts {
		o(cfg)
	}

	c.mu.Lock()
	if process != "unique" {
		if id, ok := c.slaveByKey[slaveKey{node, process}]; ok {
			c.mu.Unlock()
			return id, nil
		}
	}
	id := c.nextID
	c.nextID++
	c.mu.Unlock()

	method := resolveMethod(node, process)
	spawner := c.spawners[method]
	if spawner == nil {
		err := fmt.Errorf("mp: no spawner registered for method %s", method)
		return 0, c.setupFailed(id, err, cfg)
	}

	argv := append([]string(nil), c.argvTmpl...)
	conn, err := spawner.Spawn(id, node, argv)
	if err != nil {
		return 0, c.setupFailed(id, fmt.Errorf("mp: spawn: %w", err), cfg)
	}

	slave := &Slave{ID: id, Method: method, Node: node, Process: process, Conn: conn}

	if method != transport.Thread {
		if err := sendInit(conn, process, node); err != nil {
			return 0, c.setupFailed(id, fmt.Errorf("mp: init: %w", err), cfg)
		}
		if method == transport.Remote {
			if err := transport.Prepare(conn, node); err != nil {
				c.log.Warn("fast channel negotiation failed, staying reliable-only", "node", node, "err", err)
			}
		}
	}

	c.mu.Lock()
	c.slaves = append(c.slaves, slave)
	if process != "unique" {
		c.slaveByKey[slaveKey{node, process}] = id
	}
	c.mu.Unlock()

	conn.OnFatal(func(err error) { c.dropSlave(slave, err) })
	go c.receive(slave)

	return id, nil
}

// setupFailed reports a get_slave setup failure. Per the failure model this
// is fatal unless the caller passed AllowFail: GetSlave always returns the
// error either way, but without AllowFail it is logged at Error level as a
// signal to the entry point that it should treat the error as fatal (log
// and exit) rather than recover from it.
func (c *Coordinator) setupFailed(id uint32, err error, cfg *getSlaveConfig) error {
	if cfg.allowFail {
		c.log.Warn("get_slave setup failed, returning error", "id", id, "err", err)
	} else {
		c.log.Error("get_slave setup failed fatally", "id", id, "err", err)
	}
	return err
}

func sendInit(conn *transport.Conn, process, node string) error {
	payload := make([]byte, 256)
	copy(payload[0:128], process)
	copy(payload[128:256], node)
	return conn.Send(transport.ClassInit, 0, transport.Reliable, payload)
}

// dropSlave removes a slave whose connection failed fatally, per the
// per-slave-fatal failure model: the reception loop returning triggers
// this, the coordinator logs and continues for everyone else.
func (c *Coordinator) dropSlave(s *Slave, err error) {
	c.log.Warn("slave disappeared", "id", s.ID, "node", s.Node, "process", s.Process, "err", err)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sl := range c.slaves {
		if sl.ID == s.ID {
			c.slaves = append(c.slaves[:i], c.slaves[i+1:]...)
			break
		}
	}
	delete(c.slaveByKey, slaveKey{s.Node, s.Process})
}

// receive is the per-connection reception loop: it blocks on Recv and
// dispatches via the master-handler table until the connection fails.
func (c *Coordinator) receive(s *Slave) {
	for {
		pk, err := s.Conn.Recv(-1)
		if err != nil {
			return // fatal I/O already reported through OnFatal.
		}
		c.masterHandlers.dispatch(c, s, pk)
	}
}

// ReceiveAsSlave runs the slave-side reception loop against conn, used by
// processes that detected they are a slave at boot. It blocks until the
// connection fails.
func (c *Coordinator) ReceiveAsSlave(conn *transport.Conn) {
	for {
		pk, err := conn.Recv(-1)
		if err != nil {
			c.log.Error("connection to master lost", "err", err)
			return
		}
		c.slaveHandlers.dispatch(c, &Slave{ID: c.selfID, Conn: conn}, pk)
	}
}

// Broadcast sends a packet to every currently known slave, skipping any
// that have already disappeared.
func (c *Coordinator) Broadcast(class transport.Class, tag uint32, channel transport.Channel, payload []byte) {
	c.mu.Lock()
	slaves := append([]*Slave(nil), c.slaves...)
	c.mu.Unlock()
	for _, s := range slaves {
		s.sendMu.Lock()
		if err := s.Conn.Send(class, tag, channel, payload); err != nil {
			c.log.Warn("broadcast send failed", "slave", s.ID, "err", err)
		}
		s.sendMu.Unlock()
	}
}

// PushFrame runs one replication tick: push every AUTO state variable
// (one FAST message per variable), push the origin/eye location frames,
// issue CTRL RENDER then CTRL SWAP. location may be nil if the caller has
// nothing to push this tick. The location push uses FAST, matching
// veMPLocationPush's VE_MP_FAST in the original implementation -- every
// tick supersedes the last, so a dropped one is harmless.
func (c *Coordinator) PushFrame(location []byte) {
	if c.SlaveGuarded() {
		return
	}
	c.pushAutoStates()
	if location != nil {
		c.Broadcast(transport.ClassLocation, 0, transport.Fast, location)
	}
	c.Broadcast(transport.ClassCtrl, CtrlRender, transport.Reliable, nil)
	c.Broadcast(transport.ClassCtrl, CtrlSwap, transport.Reliable, nil)
}

// Control sub-tags within ClassCtrl.
const (
	CtrlRender uint32 = iota
	CtrlSwap
)

// PushData sends an application DATA message. On a slave with slave-guard
// on, this silently no-ops (§4.2 "slave guard"); on a slave with the guard
// off, the packet goes back to the master on the reliable channel.
func (c *Coordinator) PushData(tag uint32, payload []byte, masterConn *transport.Conn) {
	if c.isSlave {
		if c.slaveGuard {
			return
		}
		if masterConn != nil {
			_ = masterConn.Send(transport.ClassData, tag, transport.Reliable, payload)
		}
		return
	}
	c.Broadcast(transport.ClassData, tag, transport.Fast, payload)
}
