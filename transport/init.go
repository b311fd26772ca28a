package transport

import (
	"bufio"
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/go-hclog"
)

// BootArgs is the result of SlaveInit: either this process is the master,
// or it is a slave with the given id. It carries no connection; a slave
// builds its connection back to the master separately (see
// AdoptInherited).
type BootArgs struct {
	IsSlave bool
	SlaveID uint32
	Argv    []string // argv with the sentinel+id stripped (slave) or untouched (master).
}

// SlaveInit inspects argv exactly once, very early in process startup. If
// argv[1] is the sentinel token followed by a decimal id, the process is a
// slave: those two arguments are stripped and the id is recorded. A
// malformed decimal id is fatal, per the failure model -- SlaveInit returns
// an error rather than guessing.
func SlaveInit(argv []string) (BootArgs, error) {
	if len(argv) >= 3 && argv[1] == SentinelArg {
		id, err := strconv.ParseUint(argv[2], 10, 32)
		if err != nil {
			return BootArgs{}, fmt.Errorf("transport: malformed slave id %q: %w", argv[2], err)
		}
		stripped := make([]string, 0, len(argv)-2)
		stripped = append(stripped, argv[0])
		stripped = append(stripped, argv[3:]...)
		return BootArgs{IsSlave: true, SlaveID: uint32(id), Argv: stripped}, nil
	}
	return BootArgs{IsSlave: false, Argv: argv}, nil
}

// AdoptInherited wraps a pair of inherited file-descriptor-backed streams
// (the bidirectional reliable channel a slave is typically handed, stdin
// for reading from the master and stdout for writing to it) into a Conn.
func AdoptInherited(log hclog.Logger, in net.Conn, out net.Conn) *Conn {
	c := &Conn{log: log}
	if in == out {
		c.reliable = in
		c.relBuf = bufio.NewReader(in)
		c.fast = in
		c.fastBuf = c.relBuf
		return c
	}
	// Distinct read/write streams: wrap them as a single duplex pipeConn
	// so the rest of Conn only ever deals with one net.Conn per channel.
	dup := newPipeConn(readOnly{in}, writeOnly{out}, "inherited")
	c.reliable = dup
	c.relBuf = bufio.NewReader(dup)
	c.fast = dup
	c.fastBuf = c.relBuf
	return c
}

type readOnly struct{ net.Conn }

func (r readOnly) Close() error { return r.Conn.Close() }

type writeOnly struct{ net.Conn }

func (w writeOnly) Close() error { return w.Conn.Close() }
