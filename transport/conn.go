package transport

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Conn is a connection to one slave: a reliable stream plus an optional
// fast stream. For thread and local slaves the single pipe serves both
// channels (fast aliases reliable); for remote slaves Prepare may later
// populate fast with a negotiated UDP socket.
type Conn struct {
	log hclog.Logger

	sendMu   sync.Mutex
	reliable net.Conn
	fast     net.Conn // nil until negotiated, or == reliable for thread/local.

	relBuf  *bufio.Reader
	fastBuf *bufio.Reader

	recvMu     sync.Mutex
	lastServed Channel // fairness: the channel checked second on the next Recv.

	seq     uint32
	closed  int32
	onFatal func(error)
}

// NewConn wraps a reliable stream (and, for thread/local slaves, reuses it
// as the fast stream too) in a Conn.
func NewConn(log hclog.Logger, reliable net.Conn, sharedFast bool) *Conn {
	c := &Conn{
		log:      log,
		reliable: reliable,
		relBuf:   bufio.NewReader(reliable),
	}
	if sharedFast {
		c.fast = reliable
		c.fastBuf = c.relBuf
	}
	return c
}

// OnFatal registers a callback invoked once, the first time a read/write on
// this connection fails fatally. The reception loop uses this to notify the
// coordinator so it can drop the slave and keep going.
func (c *Conn) OnFatal(fn func(error)) { c.onFatal = fn }

// SetFast installs a negotiated fast channel (used after Prepare completes
// UDP negotiation for a remote slave).
func (c *Conn) SetFast(fast net.Conn) {
	c.fast = fast
	c.fastBuf = bufio.NewReader(fast)
}

// HasFast reports whether a fast channel is available.
func (c *Conn) HasFast() bool { return c.fast != nil }

// Send serializes header+payload in a single write. A FAST request with no
// fast channel available, or whose payload exceeds MaxPayload, is silently
// downgraded to RELIABLE.
func (c *Conn) Send(class Class, tag uint32, channel Channel, payload []byte) error {
	if atomic.LoadInt32(&c.closed) != 0 {
		return ErrClosed
	}
	if channel == Fast && (c.fast == nil || len(payload) > MaxPayload) {
		if c.log != nil {
			c.log.Debug("downgrading fast send to reliable", "tag", tag, "len", len(payload))
		}
		channel = Reliable
	}
	pk := Packet{
		Header: Header{
			Seq:     atomic.AddUint32(&c.seq, 1),
			Channel: channel,
			Class:   class,
			Tag:     tag,
			Length:  uint32(len(payload)),
		},
		Payload: payload,
	}
	dst := c.reliable
	if channel == Fast {
		dst = c.fast
	}

	c.sendMu.Lock()
	_, err := dst.Write(pk.Encode())
	c.sendMu.Unlock()
	if err != nil {
		c.fail(fmt.Errorf("transport: send: %w", err))
		if c.log != nil {
			c.log.Warn("send failed", "tag", tag, "channel", channel, "err", err)
		}
	}
	return err
}

// Recv waits for the next packet on either channel. timeout < 0 waits
// forever, timeout == 0 polls without blocking, timeout > 0 waits up to
// that duration. Fairness: the channel not served last time is checked
// first. Once a header has arrived the remaining payload read ignores
// timeout -- framing must be preserved.
func (c *Conn) Recv(timeout time.Duration) (Packet, error) {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	if atomic.LoadInt32(&c.closed) != 0 {
		return Packet{}, ErrClosed
	}

	first, second := c.orderedChannels()
	for _, ch := range []Channel{first, second} {
		reader, stream := c.streamFor(ch)
		if reader == nil {
			continue
		}
		if pk, ok, err := c.tryRecvOn(ch, reader, stream, timeout); ok || err != nil {
			if ok {
				c.lastServed = ch
			}
			return pk, err
		}
	}
	return Packet{}, ErrTimeout
}

func (c *Conn) orderedChannels() (first, second Channel) {
	if c.lastServed == Reliable {
		return Fast, Reliable
	}
	return Reliable, Fast
}

func (c *Conn) streamFor(ch Channel) (*bufio.Reader, net.Conn) {
	if ch == Fast {
		return c.fastBuf, c.fast
	}
	return c.relBuf, c.reliable
}

func (c *Conn) tryRecvOn(ch Channel, reader *bufio.Reader, stream net.Conn, timeout time.Duration) (Packet, bool, error) {
	if reader == nil || stream == nil {
		return Packet{}, false, nil
	}
	if err := setPollDeadline(stream, timeout); err != nil {
		return Packet{}, false, nil
	}
	hdr := make([]byte, HeaderSize)
	if _, err := io.ReadFull(reader, hdr); err != nil {
		if isTimeout(err) {
			return Packet{}, false, nil
		}
		c.fail(fmt.Errorf("transport: recv header: %w", err))
		return Packet{}, false, err
	}
	h, err := DecodeHeader(hdr)
	if err != nil {
		c.fail(err)
		return Packet{}, false, err
	}
	// Framing: once a header has arrived the payload read ignores the
	// caller's timeout and must complete.
	stream.SetReadDeadline(time.Time{})
	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(reader, payload); err != nil {
		c.fail(fmt.Errorf("transport: recv payload: %w", err))
		return Packet{}, false, err
	}
	return Packet{Header: h, Payload: payload}, true, nil
}

func (c *Conn) fail(err error) {
	if atomic.SwapInt32(&c.closed, 1) != 0 {
		return
	}
	if c.log != nil {
		c.log.Error("connection failed", "err", err)
	}
	if c.onFatal != nil {
		c.onFatal(err)
	}
}

// Close tears down both channels.
func (c *Conn) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	var err error
	if c.reliable != nil {
		err = c.reliable.Close()
	}
	if c.fast != nil && c.fast != c.reliable {
		if ferr := c.fast.Close(); err == nil {
			err = ferr
		}
	}
	return err
}
