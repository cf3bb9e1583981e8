package tracefile

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// FieldType is the wire code for an event payload field. The values follow
// the consumer-side type code table and must not be renumbered.
type FieldType uint32

const (
	FieldTypeBoolean  FieldType = 3
	FieldTypeChar     FieldType = 4
	FieldTypeSByte    FieldType = 5
	FieldTypeByte     FieldType = 6
	FieldTypeInt16    FieldType = 7
	FieldTypeUInt16   FieldType = 8
	FieldTypeInt32    FieldType = 9
	FieldTypeUInt32   FieldType = 10
	FieldTypeInt64    FieldType = 11
	FieldTypeUInt64   FieldType = 12
	FieldTypeSingle   FieldType = 13
	FieldTypeDouble   FieldType = 14
	FieldTypeDateTime FieldType = 16
	FieldTypeString   FieldType = 18
)

// FieldDescriptor names one field of an event payload.
type FieldDescriptor struct {
	Type FieldType
	Name string
}

// EventTypeDescriptor identifies an event's shape. The writer never copies
// or owns descriptors; it keys its metadata registry by the stable
// (Provider, EventID, Version) triple, so two descriptors with the same
// triple describe the same event type regardless of object identity.
type EventTypeDescriptor struct {
	Provider string
	EventID  uint32
	Version  uint32
	Name     string
	Level    uint32
	Keywords uint64
	Fields   []FieldDescriptor
}

// descriptorKey is the registry key for an event type.
type descriptorKey struct {
	provider string
	eventID  uint32
	version  uint32
}

func (d *EventTypeDescriptor) key() descriptorKey {
	return descriptorKey{provider: d.Provider, eventID: d.EventID, version: d.Version}
}

// EventInstance is one occurrence of a traced event. Payload and Stack are
// opaque to the writer. The metadata id field is set by the writer
// immediately before the instance is serialized; this is the only in-place
// mutation of caller-owned data.
type EventInstance struct {
	Type              *EventTypeDescriptor
	ThreadID          uint32
	Timestamp         int64
	ActivityID        uuid.UUID
	RelatedActivityID uuid.UUID
	Payload           []byte
	Stack             []byte

	metadataID uint32
}

// MetadataID reports the id the writer stamped on the instance, 0 when the
// instance has not been written or is itself a metadata record.
func (e *EventInstance) MetadataID() uint32 { return e.metadataID }

func (e *EventInstance) setMetadataID(id uint32) { e.metadataID = id }

// recordSize is the serialized record size in bytes, including the leading
// size field and trailing padding to 4-byte alignment.
func (e *EventInstance) recordSize() int {
	n := 4 + // total size
		4 + // metadata id
		4 + // thread id
		8 + // timestamp
		16 + // activity id
		16 + // related activity id
		4 + len(e.Payload) + // payload length + payload
		4 + len(e.Stack) // stack length + stack
	return (n + 3) &^ 3
}

// encodeRecord serializes the instance into a fresh record:
//
//	[size u32][metadata id u32][thread id u32][timestamp i64]
//	[activity id 16B][related activity id 16B]
//	[payload len u32][payload][stack len u32][stack][pad to 4]
//
// The size field counts every byte that follows it, padding included.
func (e *EventInstance) encodeRecord() []byte {
	size := e.recordSize()
	rec := make([]byte, size)

	binary.LittleEndian.PutUint32(rec[0:], uint32(size-4))
	binary.LittleEndian.PutUint32(rec[4:], e.metadataID)
	binary.LittleEndian.PutUint32(rec[8:], e.ThreadID)
	binary.LittleEndian.PutUint64(rec[12:], uint64(e.Timestamp))
	copy(rec[20:], e.ActivityID[:])
	copy(rec[36:], e.RelatedActivityID[:])

	off := 52
	binary.LittleEndian.PutUint32(rec[off:], uint32(len(e.Payload)))
	off += 4
	off += copy(rec[off:], e.Payload)
	binary.LittleEndian.PutUint32(rec[off:], uint32(len(e.Stack)))
	off += 4
	copy(rec[off:], e.Stack)

	return rec
}
