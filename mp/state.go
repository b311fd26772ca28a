package mp

import (
	"fmt"

	"github.com/gazed/ve/transport"
)

// StateFlags marks replication behavior for a registered state variable.
type StateFlags uint32

const (
	// Auto marks a variable for automatic per-frame replication.
	Auto StateFlags = 1 << iota
)

// StateVar is a registered (tag, memory region, length, flags) tuple. Tag
// must be registered with equally-sized backing storage on master and
// every slave. Mem is shared, not copied, by design -- replication writes
// directly into it.
type StateVar struct {
	Tag   uint32
	Mem   []byte
	Flags StateFlags
}

// RegisterState registers a state variable. Post-init registration carries
// no synchronization guarantees, matching the lifecycle the spec
// documents; the list itself is append-only in normal use and the
// per-frame walk takes no lock.
func (c *Coordinator) RegisterState(tag uint32, mem []byte, flags StateFlags) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if _, exists := c.stateAt[tag]; exists {
		return fmt.Errorf("mp: state tag %d already registered", tag)
	}
	sv := &StateVar{Tag: tag, Mem: mem, Flags: flags}
	c.states = append(c.states, sv)
	c.stateAt[tag] = sv
	return nil
}

// pushAutoStates sends one FAST message per AUTO-flagged state variable.
func (c *Coordinator) pushAutoStates() {
	c.stateMu.RLock()
	vars := c.states
	c.stateMu.RUnlock()
	for _, sv := range vars {
		if sv.Flags&Auto == 0 {
			continue
		}
		c.Broadcast(transport.ClassState, sv.Tag, transport.Fast, sv.Mem)
	}
}

// applyState copies an incoming STATE payload into the matching
// registered variable's backing storage, byte-for-byte. A payload whose
// length disagrees with the registered length is dropped with a warning
// (recoverable, per the failure model).
func (c *Coordinator) applyState(tag uint32, payload []byte) {
	c.stateMu.RLock()
	sv, ok := c.stateAt[tag]
	c.stateMu.RUnlock()
	if !ok {
		c.log.Debug("state push for unregistered tag", "tag", tag)
		return
	}
	if len(payload) != len(sv.Mem) {
		c.log.Warn("state push length mismatch", "tag", tag, "want", len(sv.Mem), "got", len(payload))
		return
	}
	copy(sv.Mem, payload)
}
