// Package transport implements the wire-level framing, dual-channel
// send/receive, and slave spawning that the coordinator builds on: turning
// "slave at (node, process)" into a pair of byte streams (reliable, fast)
// and multiplexing packets over them.
package transport

import (
	"encoding/binary"
	"fmt"
)

// Channel selects which underlying stream a packet travels on.
type Channel uint32

const (
	Reliable Channel = 0
	Fast     Channel = 1
)

func (c Channel) String() string {
	if c == Fast {
		return "fast"
	}
	return "reliable"
}

// Class is the message class carried in a packet header. The low classes
// are reserved by the coordinator; ClassSubsystem and above are left for
// add-on subsystems to claim sub-tag ranges within.
type Class uint32

const (
	ClassData Class = iota
	ClassCtrl
	ClassLocation
	ClassEnv
	ClassProfile
	ClassState
	ClassInit
	ClassSysdep
	ClassSubsystem // base of the block reserved for render/audio add-ons.
)

// HeaderSize is the on-wire size of a Header: five uint32 fields, each
// written in the host's native byte order. The spec is explicit that no
// heterogeneous-endian support is attempted -- a literal byte-for-byte copy
// of the sender's representation is the faithful behavior, not a
// Go-specific choice of byte order.
const HeaderSize = 20

// MaxPayload is the compile-time limit past which a FAST send is silently
// downgraded to RELIABLE.
const MaxPayload = 30000

// Header is the fixed-width prefix of every packet.
type Header struct {
	Seq     uint32
	Channel Channel
	Class   Class
	Tag     uint32
	Length  uint32
}

// Encode writes h in native byte order to buf, which must be at least
// HeaderSize bytes.
func (h Header) Encode(buf []byte) {
	binary.NativeEndian.PutUint32(buf[0:4], h.Seq)
	binary.NativeEndian.PutUint32(buf[4:8], uint32(h.Channel))
	binary.NativeEndian.PutUint32(buf[8:12], uint32(h.Class))
	binary.NativeEndian.PutUint32(buf[12:16], h.Tag)
	binary.NativeEndian.PutUint32(buf[16:20], h.Length)
}

// DecodeHeader reads a Header from buf, which must be at least HeaderSize
// bytes.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("transport: short header (%d bytes)", len(buf))
	}
	return Header{
		Seq:     binary.NativeEndian.Uint32(buf[0:4]),
		Channel: Channel(binary.NativeEndian.Uint32(buf[4:8])),
		Class:   Class(binary.NativeEndian.Uint32(buf[8:12])),
		Tag:     binary.NativeEndian.Uint32(buf[12:16]),
		Length:  binary.NativeEndian.Uint32(buf[16:20]),
	}, nil
}

// Packet is a decoded header plus its payload bytes.
type Packet struct {
	Header  Header
	Payload []byte
}

// Encode returns the scatter-free, contiguous on-wire representation of p:
// header immediately followed by payload, matching the "single write" send
// contract so a reader sees both parts contiguously.
func (p Packet) Encode() []byte {
	buf := make([]byte, HeaderSize+len(p.Payload))
	p.Header.Encode(buf)
	copy(buf[HeaderSize:], p.Payload)
	return buf
}
