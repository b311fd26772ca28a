package transport

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Seq: 42, Channel: Fast, Class: ClassState, Tag: 7, Length: 16}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)
	got, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestPacketEncodeContiguous(t *testing.T) {
	p := Packet{
		Header:  Header{Seq: 1, Channel: Reliable, Class: ClassData, Tag: 5, Length: 3},
		Payload: []byte{0xAA, 0xBB, 0xCC},
	}
	buf := p.Encode()
	if len(buf) != HeaderSize+3 {
		t.Fatalf("want %d bytes, got %d", HeaderSize+3, len(buf))
	}
	if !bytes.Equal(buf[HeaderSize:], p.Payload) {
		t.Fatalf("payload not contiguous with header")
	}
}

func TestDecodeHeaderShortBuffer(t *testing.T) {
	if _, err := DecodeHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Fatalf("expected error for short buffer")
	}
}
