package tracefile

import (
	"encoding/binary"
	"io"
)

// EventBlock is a fixed-capacity append-only buffer of serialized event
// records. The backing storage is allocated once and reused for the
// writer's whole lifetime; Clear resets the cursor without releasing it.
type EventBlock struct {
	buf    []byte
	cursor int
}

// NewEventBlock allocates a block with the given capacity in bytes.
func NewEventBlock(capacity int) *EventBlock {
	if capacity <= 0 {
		capacity = DefaultBlockCapacity
	}
	return &EventBlock{buf: make([]byte, capacity)}
}

// TryAppend copies record into the block if it fits. The append is
// all-or-nothing: a record that would overflow leaves the block untouched
// and the caller must flush first. A record that exactly fills the
// remaining space is accepted.
func (b *EventBlock) TryAppend(record []byte) bool {
	if b.cursor+len(record) > len(b.buf) {
		return false
	}
	b.cursor += copy(b.buf[b.cursor:], record)
	return true
}

// Clear resets the write cursor. The storage is kept for reuse.
func (b *EventBlock) Clear() {
	clear(b.buf[:b.cursor])
	b.cursor = 0
}

// Size returns the number of occupied bytes.
func (b *EventBlock) Size() int { return b.cursor }

// Capacity returns the fixed capacity in bytes.
func (b *EventBlock) Capacity() int { return len(b.buf) }

// Bytes returns the occupied prefix of the block. The slice aliases the
// block storage and is invalidated by the next TryAppend or Clear.
func (b *EventBlock) Bytes() []byte { return b.buf[:b.cursor] }

func (b *EventBlock) TypeName() string        { return "EventBlock" }
func (b *EventBlock) ObjectVersion() int32    { return 1 }
func (b *EventBlock) MinReaderVersion() int32 { return 0 }

// Serialize writes the block payload: the occupied byte count followed by
// the concatenated records. An empty block serializes as a zero count.
func (b *EventBlock) Serialize(w io.Writer) error {
	var sizeField [4]byte
	binary.LittleEndian.PutUint32(sizeField[:], uint32(b.cursor))
	if _, err := w.Write(sizeField[:]); err != nil {
		return err
	}
	if b.cursor == 0 {
		return nil
	}
	_, err := w.Write(b.buf[:b.cursor])
	return err
}
