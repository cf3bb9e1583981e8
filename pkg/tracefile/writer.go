package tracefile

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// WriterConfig configures a trace Writer. The zero value selects the
// default block capacity, single-writer mode, the default metadata builder
// and an environment snapshot collected from the standard library.
type WriterConfig struct {
	// BlockCapacity is the event block size in bytes. 0 means
	// DefaultBlockCapacity. A capacity smaller than the largest record
	// ever written is a configuration error surfaced as
	// ErrRecordTooLarge.
	BlockCapacity int

	// Mode selects the locking regime; see ConcurrencyMode.
	Mode ConcurrencyMode

	// Metadata builds schema-describing records. nil means the default
	// builder.
	Metadata MetadataBuilder

	// Env is the environment snapshot recorded in the header. nil means
	// CollectEnv(0).
	Env *EnvInfo

	// Serializer overrides the object serializer. When set, the output
	// writer passed to NewWriter is ignored and the caller owns the
	// stream header convention.
	Serializer ObjectSerializer
}

// Writer serializes a live stream of event instances into the trace file
// format: a header object, event blocks, and an end-of-stream tag. A Writer
// is bound to one output destination and finalized exactly once by Close.
type Writer struct {
	out   ObjectSerializer
	block *EventBlock
	reg   metadataRegistry
	meta  MetadataBuilder
	mode  ConcurrencyMode

	// blockMu serializes block access in MultiWriter mode. Registry
	// traffic stays lock-free in both modes.
	blockMu sync.Mutex

	closed atomic.Bool
}

// NewWriter binds a Writer to w and immediately writes the stream header
// followed by the trace header object. A construction failure leaves
// nothing usable behind; the caller owns cleanup of w.
func NewWriter(w io.Writer, cfg WriterConfig) (*Writer, error) {
	out := cfg.Serializer
	if out == nil {
		var err error
		out, err = NewStreamSerializer(w)
		if err != nil {
			return nil, err
		}
	}

	meta := cfg.Metadata
	if meta == nil {
		meta = schemaBuilder{}
	}

	env := cfg.Env
	if env == nil {
		collected := CollectEnv(0)
		env = &collected
	}

	tw := &Writer{
		out:   out,
		block: NewEventBlock(cfg.BlockCapacity),
		meta:  meta,
		mode:  cfg.Mode,
	}

	// The header is always the first object in the stream.
	if err := out.WriteObject(NewTraceHeader(*env)); err != nil {
		return nil, fmt.Errorf("tracefile: write header: %w", err)
	}
	return tw, nil
}

// WriteEvent submits one event instance. The first time an event type is
// seen, a metadata record describing it is written ahead of the event
// through the same block path. WriteEvent stamps the resolved metadata id
// onto inst before serializing it.
func (w *Writer) WriteEvent(inst *EventInstance) error {
	if w.closed.Load() {
		return ErrWriterClosed
	}
	if inst == nil || inst.Type == nil {
		return ErrNilInstance
	}

	id := w.reg.lookup(inst.Type)
	if id == 0 {
		id = w.reg.nextID()

		md, err := w.meta.Build(inst.Type, id)
		if err != nil {
			return fmt.Errorf("tracefile: build metadata for %s: %w", inst.Type.Name, err)
		}
		md.ThreadID = inst.ThreadID
		md.Timestamp = inst.Timestamp

		// Sentinel id 0 marks the record as metadata and breaks the
		// recursion: metadata records never need metadata entries.
		if err := w.writeToBlock(md, 0); err != nil {
			return err
		}
		w.reg.register(inst.Type, id)
	}

	return w.writeToBlock(inst, id)
}

// Close flushes the current block (an event block object is always emitted
// at end-of-stream, even when empty) and writes the end-of-stream tag.
// Further calls to WriteEvent or Close return ErrWriterClosed.
func (w *Writer) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return ErrWriterClosed
	}
	if w.mode == MultiWriter {
		w.blockMu.Lock()
		defer w.blockMu.Unlock()
	}
	if err := w.out.WriteObject(w.block); err != nil {
		return fmt.Errorf("tracefile: flush final block: %w", err)
	}
	w.block.Clear()
	if err := w.out.WriteTag(TagNullReference); err != nil {
		return fmt.Errorf("tracefile: write end of stream: %w", err)
	}
	return nil
}

// writeToBlock stamps the metadata id onto inst and appends its serialized
// record to the current block, flushing and retrying once when full.
func (w *Writer) writeToBlock(inst *EventInstance, metadataID uint32) error {
	inst.setMetadataID(metadataID)
	rec := inst.encodeRecord()

	// Single-writer mode has no concurrent flush to defend against and
	// skips the lock. The metadata registry is not covered by this lock
	// in either mode: racing first registrations of the same type may
	// emit duplicate metadata records, which readers tolerate.
	if w.mode == MultiWriter {
		w.blockMu.Lock()
		defer w.blockMu.Unlock()
	}

	if w.block.TryAppend(rec) {
		return nil
	}

	// The block is full: flush it as one object, reset, retry once.
	if err := w.out.WriteObject(w.block); err != nil {
		return fmt.Errorf("tracefile: flush block: %w", err)
	}
	w.block.Clear()

	if !w.block.TryAppend(rec) {
		return fmt.Errorf("tracefile: record of %d bytes does not fit block capacity %d: %w",
			len(rec), w.block.Capacity(), ErrRecordTooLarge)
	}
	return nil
}
