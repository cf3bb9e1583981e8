package tracefile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Serializable is an object that can be written to the trace stream. The
// type name and version pair identifies the object's wire schema to readers.
type Serializable interface {
	TypeName() string
	ObjectVersion() int32
	MinReaderVersion() int32

	// Serialize writes the object payload (everything between the type
	// info and the closing EndObject tag) to w.
	Serialize(w io.Writer) error
}

// ObjectSerializer writes tagged objects and raw tags to the backing store.
// It owns the output destination and the stream header convention.
type ObjectSerializer interface {
	WriteObject(obj Serializable) error
	WriteTag(tag Tag) error
}

// StreamSerializer is the default ObjectSerializer. It wraps an io.Writer
// and emits the tagged-object stream convention: the stream magic once at
// construction, then BeginObject / type info / payload / EndObject per
// object.
type StreamSerializer struct {
	w       io.Writer
	scratch [8]byte
}

// NewStreamSerializer wraps w and immediately writes the stream magic.
func NewStreamSerializer(w io.Writer) (*StreamSerializer, error) {
	if w == nil {
		return nil, errors.New("tracefile: nil output writer")
	}
	s := &StreamSerializer{w: w}
	if err := s.writeString(StreamMagic); err != nil {
		return nil, fmt.Errorf("tracefile: write stream magic: %w", err)
	}
	return s, nil
}

// WriteObject writes obj as a tagged object: a BeginObject tag, the type
// info (itself a private object carrying version, minimum reader version and
// type name), the payload, and an EndObject tag.
func (s *StreamSerializer) WriteObject(obj Serializable) error {
	if err := s.WriteTag(TagBeginObject); err != nil {
		return err
	}
	if err := s.writeTypeInfo(obj); err != nil {
		return err
	}
	if err := obj.Serialize(s.w); err != nil {
		return fmt.Errorf("tracefile: serialize %s: %w", obj.TypeName(), err)
	}
	return s.WriteTag(TagEndObject)
}

// WriteTag writes a single tag byte.
func (s *StreamSerializer) WriteTag(tag Tag) error {
	s.scratch[0] = byte(tag)
	_, err := s.w.Write(s.scratch[:1])
	return err
}

// writeTypeInfo writes the serialization type for obj: a private object
// whose fields are the object version, the minimum reader version and the
// type name.
func (s *StreamSerializer) writeTypeInfo(obj Serializable) error {
	if err := s.WriteTag(TagBeginPrivateObject); err != nil {
		return err
	}
	// The type of a type is well known to readers; a null reference
	// stands in for it.
	if err := s.WriteTag(TagNullReference); err != nil {
		return err
	}
	if err := s.writeInt32(obj.ObjectVersion()); err != nil {
		return err
	}
	if err := s.writeInt32(obj.MinReaderVersion()); err != nil {
		return err
	}
	if err := s.writeString(obj.TypeName()); err != nil {
		return err
	}
	return s.WriteTag(TagEndObject)
}

func (s *StreamSerializer) writeInt32(v int32) error {
	binary.LittleEndian.PutUint32(s.scratch[:4], uint32(v))
	_, err := s.w.Write(s.scratch[:4])
	return err
}

// writeString writes a length-prefixed string: an int32 character count
// followed by the raw bytes.
func (s *StreamSerializer) writeString(str string) error {
	if err := s.writeInt32(int32(len(str))); err != nil {
		return err
	}
	_, err := io.WriteString(s.w, str)
	return err
}
