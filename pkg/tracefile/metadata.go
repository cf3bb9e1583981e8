package tracefile

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// MetadataBuilder produces the synthetic event instance that describes an
// event type's schema. The returned instance is written with the sentinel
// metadata id 0, which marks it as a metadata record and keeps metadata
// records from needing metadata of their own.
type MetadataBuilder interface {
	Build(desc *EventTypeDescriptor, metadataID uint32) (*EventInstance, error)
}

// schemaBuilder is the default MetadataBuilder. It encodes the descriptor
// into the standard metadata payload layout.
type schemaBuilder struct{}

// Build encodes desc into a metadata record payload:
//
//	[metadata id u32][provider utf16z][event id u32][event name utf16z]
//	[keywords u64][version u32][level u32]
//	[field count u32] then per field [type u32][name utf16z]
//
// Strings are NUL-terminated UTF-16LE, matching what trace readers expect.
func (schemaBuilder) Build(desc *EventTypeDescriptor, metadataID uint32) (*EventInstance, error) {
	var b payloadBuilder
	b.addU32(metadataID)
	b.addUTF16Z(desc.Provider)
	b.addU32(desc.EventID)
	b.addUTF16Z(desc.Name)
	b.addU64(desc.Keywords)
	b.addU32(desc.Version)
	b.addU32(desc.Level)
	b.addU32(uint32(len(desc.Fields)))
	for _, f := range desc.Fields {
		b.addU32(uint32(f.Type))
		b.addUTF16Z(f.Name)
	}

	return &EventInstance{
		Type:    desc,
		Payload: b.bytes(),
	}, nil
}

type payloadBuilder struct {
	buf bytes.Buffer
}

func (b *payloadBuilder) addU32(v uint32) {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], v)
	b.buf.Write(raw[:])
}

func (b *payloadBuilder) addU64(v uint64) {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], v)
	b.buf.Write(raw[:])
}

// addUTF16Z writes s as NUL-terminated little-endian UTF-16.
func (b *payloadBuilder) addUTF16Z(s string) {
	for _, u := range utf16.Encode([]rune(s)) {
		var raw [2]byte
		binary.LittleEndian.PutUint16(raw[:], u)
		b.buf.Write(raw[:])
	}
	b.buf.Write([]byte{0, 0})
}

func (b *payloadBuilder) bytes() []byte { return b.buf.Bytes() }
