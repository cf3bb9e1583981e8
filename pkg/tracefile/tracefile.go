// Package tracefile implements the trace event file format.
//
// A trace file is an append-only stream of tagged objects: a header object
// describing the producing process, zero or more event blocks, and a
// NullReference tag marking the end of the stream. Events are batched into
// fixed-capacity blocks and each distinct event type is described once by a
// metadata record emitted before the first event that references it.
package tracefile

// Format global constants must never change.
const (
	// StreamMagic opens every trace file. It is written as a
	// length-prefixed string so readers can reject foreign files early.
	StreamMagic = "!FastSerialization.1"

	// TraceObjectVersion is the version of the header object. Any change
	// indicates a breaking format change.
	TraceObjectVersion int32 = 3

	// TraceMinReaderVersion is the oldest reader version able to decode
	// files produced by this writer.
	TraceMinReaderVersion int32 = 0

	// DefaultBlockCapacity is the event block size used when the caller
	// does not configure one.
	DefaultBlockCapacity = 100 * 1024
)

// Tag is a single-byte marker in the object stream. The values are fixed by
// the consumer-side deserializer and must not be renumbered.
type Tag byte

const (
	TagError              Tag = 0 // illegal, eases debugging of corrupt files
	TagNullReference      Tag = 1 // null object reference; ends the stream
	TagObjectReference    Tag = 2 // followed by a stream label
	TagBeginObject        Tag = 4 // followed by type info, data, EndObject
	TagBeginPrivateObject Tag = 5 // like BeginObject, never interned by readers
	TagEndObject          Tag = 6 // closes the matching BeginObject
	TagByte               Tag = 8
	TagInt16              Tag = 9
	TagInt32              Tag = 10
	TagInt64              Tag = 11
	TagSkipRegion         Tag = 12
	TagString             Tag = 13
)

// ConcurrencyMode selects the writer's locking regime. It is fixed at
// construction and cannot change for the lifetime of a Writer.
type ConcurrencyMode int

const (
	// SingleWriter assumes exactly one goroutine calls WriteEvent, for
	// example a drain loop pulling from a queue. No lock is taken.
	SingleWriter ConcurrencyMode = iota

	// MultiWriter allows any number of goroutines to call WriteEvent
	// concurrently. The block flush sequence is serialized by a lock.
	MultiWriter
)

func (m ConcurrencyMode) String() string {
	switch m {
	case SingleWriter:
		return "single-writer"
	case MultiWriter:
		return "multi-writer"
	default:
		return "unknown"
	}
}
