package mp

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestRegisterStateRejectsDuplicateTag(t *testing.T) {
	c := New(hclog.NewNullLogger(), nil)
	if err := c.RegisterState(7, make([]byte, 16), Auto); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := c.RegisterState(7, make([]byte, 16), Auto); err == nil {
		t.Fatalf("expected error on duplicate tag")
	}
}

func TestApplyStateCopiesMatchingLength(t *testing.T) {
	c := New(hclog.NewNullLogger(), nil)
	mem := make([]byte, 4)
	if err := c.RegisterState(1, mem, 0); err != nil {
		t.Fatalf("RegisterState: %v", err)
	}
	c.applyState(1, []byte{1, 2, 3, 4})
	if !bytes.Equal(mem, []byte{1, 2, 3, 4}) {
		t.Fatalf("state not applied, got %v", mem)
	}
}

func TestApplyStateIgnoresLengthMismatch(t *testing.T) {
	c := New(hclog.NewNullLogger(), nil)
	mem := make([]byte, 4)
	if err := c.RegisterState(1, mem, 0); err != nil {
		t.Fatalf("RegisterState: %v", err)
	}
	c.applyState(1, []byte{1, 2})
	if !bytes.Equal(mem, []byte{0, 0, 0, 0}) {
		t.Fatalf("state should be unchanged on length mismatch, got %v", mem)
	}
}

func TestApplyStateIgnoresUnknownTag(t *testing.T) {
	c := New(hclog.NewNullLogger(), nil)
	c.applyState(99, []byte{1}) // must not panic.
}
