package transport

import (
	"io"
	"net"
	"time"
)

// pipeAddr satisfies net.Addr for pipeConn, which has no real network
// address.
type pipeAddr string

func (a pipeAddr) Network() string { return "pipe" }
func (a pipeAddr) String() string  { return string(a) }

// pipeConn adapts a pair of io.Reader/io.WriteCloser (as produced by
// os/exec's Stdin/Stdout pipes, or an os.Pipe) to net.Conn so it can be
// wrapped by Conn alongside real TCP/UDP sockets. Deadlines are supported
// when the underlying reader exposes SetReadDeadline (true for the pipes
// os/exec and os.Pipe return on every platform VE targets); otherwise they
// are a no-op and Recv's poll/timeout semantics degrade to "wait forever".
type pipeConn struct {
	r    io.ReadCloser
	w    io.WriteCloser
	name string
}

func newPipeConn(r io.ReadCloser, w io.WriteCloser, name string) net.Conn {
	return &pipeConn{r: r, w: w, name: name}
}

func (p *pipeConn) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *pipeConn) Close() error {
	err := p.r.Close()
	if werr := p.w.Close(); err == nil {
		err = werr
	}
	return err
}

func (p *pipeConn) LocalAddr() net.Addr  { return pipeAddr(p.name) }
func (p *pipeConn) RemoteAddr() net.Addr { return pipeAddr(p.name) }

type deadliner interface {
	SetReadDeadline(time.Time) error
}

func (p *pipeConn) SetDeadline(t time.Time) error {
	_ = p.SetReadDeadline(t)
	return p.SetWriteDeadline(t)
}

func (p *pipeConn) SetReadDeadline(t time.Time) error {
	if d, ok := p.r.(deadliner); ok {
		return d.SetReadDeadline(t)
	}
	return nil
}

func (p *pipeConn) SetWriteDeadline(time.Time) error { return nil }
