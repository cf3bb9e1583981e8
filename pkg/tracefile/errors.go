package tracefile

import "errors"

var (
	// ErrWriterClosed is returned by WriteEvent and Close after the
	// writer has been finalized.
	ErrWriterClosed = errors.New("trace writer closed")

	// ErrRecordTooLarge is returned when a single serialized record does
	// not fit in an empty block. The block capacity is misconfigured.
	ErrRecordTooLarge = errors.New("record exceeds block capacity")

	// ErrNilInstance is returned when an event instance or its type
	// descriptor is missing.
	ErrNilInstance = errors.New("nil event instance")
)
