//go:build unix

package transport

import (
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// pollStreams uses a raw unix.Select over whichever streams expose a
// syscall.Conn (real TCP/UDP sockets). Anything that doesn't -- net.Pipe's
// in-memory thread connections and the pipeConns wrapping local/remote
// child pipes -- goes to peekReady, which reports it not ready.
func pollStreams(streams []connPair, timeout time.Duration) []bool {
	ready := make([]bool, len(streams))
	var fdSet unix.FdSet
	maxFd := -1
	type slot struct {
		idx    int
		isFast bool
		fd     int
		hasFd  bool
		conn   net.Conn
	}
	var slots []slot

	for i, pair := range streams {
		for _, s := range []struct {
			conn   net.Conn
			isFast bool
		}{{pair.Reliable, false}, {pair.Fast, true}} {
			if s.conn == nil {
				continue
			}
			fd, ok := rawFd(s.conn)
			if ok {
				setFd(&fdSet, fd)
				if fd > maxFd {
					maxFd = fd
				}
			}
			slots = append(slots, slot{idx: i, isFast: s.isFast, fd: fd, hasFd: ok, conn: s.conn})
		}
	}

	if maxFd >= 0 {
		tv := toTimeval(timeout)
		var tvp *unix.Timeval
		if timeout >= 0 {
			tvp = &tv
		}
		_, _ = unix.Select(maxFd+1, &fdSet, nil, nil, tvp)
	}

	for _, s := range slots {
		if ready[s.idx] {
			continue
		}
		if s.hasFd {
			if isFdSet(&fdSet, s.fd) {
				ready[s.idx] = true
			}
			continue
		}
		if peekReady(s.conn) {
			ready[s.idx] = true
		}
	}
	return ready
}

// setFd and isFdSet manipulate an FdSet's bitmap directly -- x/sys/unix
// exposes the raw Bits array but no Set/IsSet helpers of its own.
const fdBitsPerWord = 64

func setFd(set *unix.FdSet, fd int) {
	set.Bits[fd/fdBitsPerWord] |= 1 << (uint(fd) % fdBitsPerWord)
}

func isFdSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/fdBitsPerWord]&(1<<(uint(fd)%fdBitsPerWord)) != 0
}

func toTimeval(d time.Duration) unix.Timeval {
	if d < 0 {
		return unix.Timeval{}
	}
	return unix.NsecToTimeval(d.Nanoseconds())
}

// rawFd extracts the underlying file descriptor from a connection that
// exposes one, without blocking.
func rawFd(c net.Conn) (int, bool) {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return 0, false
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, false
	}
	var fd int
	err = raw.Control(func(descriptor uintptr) { fd = int(descriptor) })
	if err != nil {
		return 0, false
	}
	return fd, true
}

// peekReady is the fallback for streams with no raw fd to select on (an
// in-memory net.Pipe, as used by thread slaves). Each such connection
// already has its own dedicated reception goroutine blocked in Recv per
// the concurrency model, so Wait conservatively reports it not ready
// rather than risk consuming bytes that goroutine owns.
func peekReady(net.Conn) bool { return false }
