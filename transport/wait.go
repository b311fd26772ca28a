package transport

import (
	"net"
	"time"
)

// connPair is the pair of underlying streams a single Conn may carry.
type connPair struct {
	Reliable net.Conn
	Fast     net.Conn
}

// Wait multiplexes readability across a set of connections, each of which
// may carry two underlying streams (reliable, fast). It fills a
// same-length, same-order result slice: an entry is the corresponding
// input Conn if either of its streams has data ready, or nil otherwise.
// The per-platform readiness check (pollStreams) selects on raw fds where a
// stream exposes one. Streams without one -- net.Pipe thread connections
// and the pipeConns behind local and remote slaves -- are always reported
// not ready, and bytes already buffered in a Conn's reader are not
// considered; those connections are served by their own reception
// goroutines instead.
func Wait(conns []*Conn, timeout time.Duration) []*Conn {
	out := make([]*Conn, len(conns))
	if len(conns) == 0 {
		return out
	}

	streams := make([]connPair, len(conns))
	for i, c := range conns {
		streams[i] = connPair{Reliable: c.reliable, Fast: c.fast}
	}
	ready := pollStreams(streams, timeout)
	for i, r := range ready {
		if r {
			out[i] = conns[i]
		}
	}
	return out
}
