package tracefile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBlockExactFitBoundary(t *testing.T) {
	t.Parallel()

	b := NewEventBlock(16)

	if !b.TryAppend(make([]byte, 12)) {
		t.Fatalf("append of 12 bytes into empty 16-byte block failed")
	}
	// Exactly fills the remaining space: must be accepted.
	if !b.TryAppend(make([]byte, 4)) {
		t.Fatalf("exact-fit append rejected")
	}
	if b.Size() != 16 {
		t.Fatalf("size = %d, want 16", b.Size())
	}
	// One byte over: must be rejected and leave the block untouched.
	if b.TryAppend([]byte{1}) {
		t.Fatalf("append into full block succeeded")
	}
	if b.Size() != 16 {
		t.Fatalf("rejected append changed size to %d", b.Size())
	}
}

func TestBlockAppendAllOrNothing(t *testing.T) {
	t.Parallel()

	b := NewEventBlock(8)
	if !b.TryAppend([]byte{1, 2, 3}) {
		t.Fatalf("first append failed")
	}
	if b.TryAppend(make([]byte, 6)) {
		t.Fatalf("overflowing append succeeded")
	}
	if got := b.Bytes(); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Fatalf("partial write leaked into block: %v", got)
	}
}

func TestBlockClearKeepsCapacity(t *testing.T) {
	t.Parallel()

	b := NewEventBlock(8)
	if !b.TryAppend(make([]byte, 8)) {
		t.Fatalf("fill failed")
	}
	b.Clear()
	if b.Size() != 0 {
		t.Fatalf("size after clear = %d", b.Size())
	}
	if b.Capacity() != 8 {
		t.Fatalf("capacity after clear = %d", b.Capacity())
	}
	if !b.TryAppend(make([]byte, 8)) {
		t.Fatalf("refill after clear failed")
	}
}

func TestBlockSerializePayload(t *testing.T) {
	t.Parallel()

	b := NewEventBlock(32)
	if !b.TryAppend([]byte{0xaa, 0xbb, 0xcc}) {
		t.Fatalf("append failed")
	}

	var out bytes.Buffer
	if err := b.Serialize(&out); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	raw := out.Bytes()
	if len(raw) != 4+3 {
		t.Fatalf("serialized length = %d, want 7", len(raw))
	}
	if got := binary.LittleEndian.Uint32(raw[:4]); got != 3 {
		t.Fatalf("size field = %d, want 3", got)
	}
	if !bytes.Equal(raw[4:], []byte{0xaa, 0xbb, 0xcc}) {
		t.Fatalf("payload mismatch: %v", raw[4:])
	}

	b.Clear()
	out.Reset()
	if err := b.Serialize(&out); err != nil {
		t.Fatalf("serialize empty: %v", err)
	}
	if got := out.Bytes(); len(got) != 4 || binary.LittleEndian.Uint32(got) != 0 {
		t.Fatalf("empty block serialization = %v", got)
	}
}

func TestBlockDefaultCapacity(t *testing.T) {
	t.Parallel()

	if got := NewEventBlock(0).Capacity(); got != DefaultBlockCapacity {
		t.Fatalf("default capacity = %d, want %d", got, DefaultBlockCapacity)
	}
}
