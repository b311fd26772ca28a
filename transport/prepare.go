package transport

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
)

// Sysdep sub-message tags, carried in packets of class ClassSysdep.
const (
	SysdepBestAddr uint32 = iota // query/response for source-IP determination.
	SysdepConnUDP                // fast-channel negotiation payload.
)

// connUDPPayload renders "addr port key check" null-terminated, the wire
// format SYSDEP CONNUDP carries.
func connUDPPayload(addr string, port int, key, check uint32) []byte {
	s := fmt.Sprintf("%s %d %d %d", addr, port, key, check)
	return append([]byte(s), 0)
}

func parseConnUDPPayload(b []byte) (addr string, port int, key, check uint32, err error) {
	s := string(b)
	if i := indexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	_, err = fmt.Sscanf(s, "%s %d %d %d", &addr, &port, &key, &check)
	return
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Prepare negotiates a UDP fast channel for a remote connection: the master
// binds a UDP socket, asks the slave over the reliable channel which source
// IP it observes (BESTADDR), then sends its address/port plus a random key
// and expected check word (CONNUDP); the slave opens its own UDP socket
// back and both sides exchange key/check to confirm the path works. Thread
// and local connections already share one pipe for both channels and skip
// negotiation entirely.
func Prepare(conn *Conn, remoteHost string) error {
	if conn.HasFast() {
		return nil // thread/local: the single pipe already serves both channels.
	}

	if err := conn.Send(ClassSysdep, SysdepBestAddr, Reliable, nil); err != nil {
		return fmt.Errorf("transport: prepare: bestaddr request: %w", err)
	}
	pk, err := conn.Recv(-1)
	if err != nil {
		return fmt.Errorf("transport: prepare: bestaddr response: %w", err)
	}
	sourceIP := string(pk.Payload)
	if i := indexByte(sourceIP, 0); i >= 0 {
		sourceIP = sourceIP[:i]
	}

	udpAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(sourceIP, "0"))
	if err != nil {
		return fmt.Errorf("transport: prepare: resolve %s: %w", sourceIP, err)
	}
	sock, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("transport: prepare: listen udp: %w", err)
	}

	key := randomUint32()
	check := randomUint32()
	_, localPort, err := net.SplitHostPort(sock.LocalAddr().String())
	if err != nil {
		sock.Close()
		return fmt.Errorf("transport: prepare: local addr: %w", err)
	}
	var portNum int
	fmt.Sscanf(localPort, "%d", &portNum)

	payload := connUDPPayload(sourceIP, portNum, key, check)
	if err := conn.Send(ClassSysdep, SysdepConnUDP, Reliable, payload); err != nil {
		sock.Close()
		return fmt.Errorf("transport: prepare: connudp: %w", err)
	}

	remoteAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(remoteHost, localPort))
	if err != nil {
		sock.Close()
		return fmt.Errorf("transport: prepare: resolve remote: %w", err)
	}
	if err := sock.SetWriteBuffer(1 << 16); err != nil {
		conn.log.Debug("udp write buffer not adjustable", "err", err)
	}
	udpConn, err := net.DialUDP("udp", nil, remoteAddr)
	if err != nil {
		sock.Close()
		return fmt.Errorf("transport: prepare: dial remote udp: %w", err)
	}
	sock.Close() // the dialed socket supersedes the listener for this peer.
	conn.SetFast(udpConn)
	return nil
}

func randomUint32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(b[:])
}
