package tracefile

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

// metadataCursor decodes the default metadata payload layout for
// assertions.
type metadataCursor struct {
	raw []byte
	off int
	t   *testing.T
}

func (c *metadataCursor) u32() uint32 {
	c.t.Helper()
	if c.off+4 > len(c.raw) {
		c.t.Fatalf("payload truncated at offset %d", c.off)
	}
	v := binary.LittleEndian.Uint32(c.raw[c.off:])
	c.off += 4
	return v
}

func (c *metadataCursor) u64() uint64 {
	c.t.Helper()
	if c.off+8 > len(c.raw) {
		c.t.Fatalf("payload truncated at offset %d", c.off)
	}
	v := binary.LittleEndian.Uint64(c.raw[c.off:])
	c.off += 8
	return v
}

func (c *metadataCursor) utf16z() string {
	c.t.Helper()
	var units []uint16
	for {
		if c.off+2 > len(c.raw) {
			c.t.Fatalf("unterminated string at offset %d", c.off)
		}
		u := binary.LittleEndian.Uint16(c.raw[c.off:])
		c.off += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

func TestSchemaBuilderPayloadLayout(t *testing.T) {
	t.Parallel()

	desc := &EventTypeDescriptor{
		Provider: "Contoso-Runtime",
		EventID:  42,
		Version:  3,
		Name:     "AllocationTick",
		Level:    4,
		Keywords: 0x8000_0001,
		Fields: []FieldDescriptor{
			{Type: FieldTypeUInt64, Name: "Size"},
			{Type: FieldTypeString, Name: "TypeName"},
		},
	}

	inst, err := schemaBuilder{}.Build(desc, 7)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if inst.Type != desc {
		t.Fatalf("metadata instance does not reference the source descriptor")
	}
	if inst.MetadataID() != 0 {
		t.Fatalf("fresh metadata instance has stamped id %d", inst.MetadataID())
	}

	c := &metadataCursor{raw: inst.Payload, t: t}
	if got := c.u32(); got != 7 {
		t.Fatalf("embedded metadata id = %d, want 7", got)
	}
	if got := c.utf16z(); got != "Contoso-Runtime" {
		t.Fatalf("provider = %q", got)
	}
	if got := c.u32(); got != 42 {
		t.Fatalf("event id = %d", got)
	}
	if got := c.utf16z(); got != "AllocationTick" {
		t.Fatalf("event name = %q", got)
	}
	if got := c.u64(); got != 0x8000_0001 {
		t.Fatalf("keywords = %#x", got)
	}
	if got := c.u32(); got != 3 {
		t.Fatalf("version = %d", got)
	}
	if got := c.u32(); got != 4 {
		t.Fatalf("level = %d", got)
	}
	if got := c.u32(); got != 2 {
		t.Fatalf("field count = %d", got)
	}
	if typ, name := c.u32(), c.utf16z(); typ != uint32(FieldTypeUInt64) || name != "Size" {
		t.Fatalf("field 0 = (%d, %q)", typ, name)
	}
	if typ, name := c.u32(), c.utf16z(); typ != uint32(FieldTypeString) || name != "TypeName" {
		t.Fatalf("field 1 = (%d, %q)", typ, name)
	}
	if c.off != len(inst.Payload) {
		t.Fatalf("%d trailing payload bytes", len(inst.Payload)-c.off)
	}
}

func TestSchemaBuilderNonASCIIName(t *testing.T) {
	t.Parallel()

	desc := &EventTypeDescriptor{Provider: "p", EventID: 1, Version: 1, Name: "延迟事件"}
	inst, err := schemaBuilder{}.Build(desc, 1)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	c := &metadataCursor{raw: inst.Payload, t: t}
	c.u32()
	c.utf16z()
	c.u32()
	if got := c.utf16z(); got != "延迟事件" {
		t.Fatalf("round-tripped name = %q", got)
	}
}
