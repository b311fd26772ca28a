package mp

import (
	"bytes"

	"github.com/gazed/ve/transport"
)

// registerBuiltinSlaveHandlers installs the handlers every process (master
// and slave) runs for messages arriving from the master: INIT, LOCATION,
// ENV, PROFILE, STATE, SYSDEP.
func registerBuiltinSlaveHandlers(c *Coordinator) {
	c.RegisterSlaveHandler(transport.ClassInit, TagWildcard, handleInit)
	c.RegisterSlaveHandler(transport.ClassLocation, TagWildcard, handleLocation)
	c.RegisterSlaveHandler(transport.ClassEnv, TagWildcard, handleEnv)
	c.RegisterSlaveHandler(transport.ClassProfile, TagWildcard, handleProfile)
	c.RegisterSlaveHandler(transport.ClassState, TagWildcard, handleState)
	c.RegisterSlaveHandler(transport.ClassSysdep, TagWildcard, handleSysdep)
}

// LocationListener, EnvListener, and ProfileListener let ve wire its own
// frame/environment/profile types into the built-in handlers without mp
// importing those packages.
type LocationListener func(payload []byte)
type EnvListener func(payload []byte)
type ProfileListener func(payload []byte)

func handleInit(c *Coordinator, slave *Slave, pk transport.Packet) {
	if len(pk.Payload) < 256 {
		c.log.Warn("short INIT payload", "len", len(pk.Payload))
		return
	}
	process := trimNulls(pk.Payload[0:128])
	node := trimNulls(pk.Payload[128:256])
	c.log.Debug("INIT received", "process", process, "node", node)
}

func handleLocation(c *Coordinator, slave *Slave, pk transport.Packet) {
	if c.onLocation != nil {
		c.onLocation(pk.Payload)
	}
}

func handleEnv(c *Coordinator, slave *Slave, pk transport.Packet) {
	if c.onEnv != nil {
		c.onEnv(pk.Payload)
	}
}

func handleProfile(c *Coordinator, slave *Slave, pk transport.Packet) {
	if c.onProfile != nil {
		c.onProfile(pk.Payload)
	}
}

func handleState(c *Coordinator, slave *Slave, pk transport.Packet) {
	c.applyState(pk.Header.Tag, pk.Payload)
}

func handleSysdep(c *Coordinator, slave *Slave, pk transport.Packet) {
	c.log.Debug("sysdep message", "tag", pk.Header.Tag, "len", len(pk.Payload))
}

func trimNulls(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// OnLocation, OnEnv, OnProfile register the callbacks the built-in
// LOCATION/ENV/PROFILE handlers invoke when a push arrives. ve wires its
// own Frame/Environment/UserProfile parsing here at construction.
func (c *Coordinator) OnLocation(fn LocationListener) { c.onLocation = fn }
func (c *Coordinator) OnEnv(fn EnvListener)           { c.onEnv = fn }
func (c *Coordinator) OnProfile(fn ProfileListener)   { c.onProfile = fn }
