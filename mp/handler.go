package mp

import (
	"sync"

	"github.com/gazed/ve/transport"
)

// ClassWildcard and TagWildcard match any class or tag respectively when
// registering a handler.
const (
	ClassWildcard = transport.Class(^uint32(0))
	TagWildcard   = ^uint32(0)
)

// Handler processes one received packet. slave identifies which
// connection it arrived on (on a slave process this is the slave's own
// record, with Conn pointing back at the master).
type Handler func(c *Coordinator, slave *Slave, pk transport.Packet)

type handlerKey struct {
	class transport.Class
	tag   uint32
}

// handlerTable is a (class, tag) -> Handler registry with wildcard
// matching on either field; first match wins, checked in the order
// exact/exact, exact/wildcard, wildcard/exact, wildcard/wildcard.
type handlerTable struct {
	mu    sync.RWMutex
	exact map[handlerKey]Handler
}

func newHandlerTable() *handlerTable {
	return &handlerTable{exact: map[handlerKey]Handler{}}
}

// Register installs h for the given (class, tag), which may use
// ClassWildcard/TagWildcard.
func (t *handlerTable) Register(class transport.Class, tag uint32, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exact[handlerKey{class, tag}] = h
}

func (t *handlerTable) lookup(class transport.Class, tag uint32) (Handler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, k := range []handlerKey{
		{class, tag},
		{class, TagWildcard},
		{ClassWildcard, tag},
		{ClassWildcard, TagWildcard},
	} {
		if h, ok := t.exact[k]; ok {
			return h, true
		}
	}
	return nil, false
}

func (t *handlerTable) dispatch(c *Coordinator, slave *Slave, pk transport.Packet) {
	h, ok := t.lookup(pk.Header.Class, pk.Header.Tag)
	if !ok {
		c.log.Debug("no handler for message", "class", pk.Header.Class, "tag", pk.Header.Tag)
		return
	}
	h(c, slave, pk)
}

// RegisterSlaveHandler installs a handler in the slave-handler table (used
// on every process, including the master, for messages arriving from the
// master).
func (c *Coordinator) RegisterSlaveHandler(class transport.Class, tag uint32, h Handler) {
	c.slaveHandlers.Register(class, tag, h)
}

// RegisterMasterHandler installs a handler in the master-handler table
// (used only on the master, for messages arriving from a slave).
func (c *Coordinator) RegisterMasterHandler(class transport.Class, tag uint32, h Handler) {
	c.masterHandlers.Register(class, tag, h)
}
