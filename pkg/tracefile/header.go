package tracefile

import (
	"encoding/binary"
	"io"
	"os"
	"runtime"
	"time"
	"unsafe"
)

// EnvInfo carries the process and clock facts recorded in the trace header.
// The zero value is not useful; use CollectEnv or fill the fields from a
// richer platform-specific source.
type EnvInfo struct {
	// WallClockTime is the wall-clock time the trace was opened.
	WallClockTime time.Time

	// Timestamp is the high-resolution clock reading at open time, in
	// ticks of TimestampFrequency.
	Timestamp int64

	// TimestampFrequency is the number of high-resolution ticks per
	// second.
	TimestampFrequency int64

	// PointerSize is the producing process pointer width in bytes.
	PointerSize uint32

	// ProcessID is the producing process id.
	ProcessID uint32

	// ProcessorCount is the number of logical processors.
	ProcessorCount uint32

	// SamplingRateNs is the event sampling interval in nanoseconds, or 0
	// when sampling is disabled.
	SamplingRateNs uint32
}

var clockEpoch = time.Now()

// CollectEnv gathers EnvInfo from the standard library. The timestamp is
// monotonic nanoseconds with a fixed 1 GHz tick frequency; platforms with a
// raw monotonic clock can substitute their own readings.
func CollectEnv(samplingRateNs uint32) EnvInfo {
	return EnvInfo{
		WallClockTime:      time.Now(),
		Timestamp:          int64(time.Since(clockEpoch)),
		TimestampFrequency: int64(time.Second / time.Nanosecond),
		PointerSize:        uint32(unsafe.Sizeof(uintptr(0))),
		ProcessID:          uint32(os.Getpid()),
		ProcessorCount:     uint32(runtime.NumCPU()),
		SamplingRateNs:     samplingRateNs,
	}
}

// TraceHeader is the first object in every trace file. Immutable after
// construction.
type TraceHeader struct {
	env EnvInfo
}

// NewTraceHeader builds the header object for env.
func NewTraceHeader(env EnvInfo) *TraceHeader {
	return &TraceHeader{env: env}
}

// Env returns the environment snapshot the header was built from.
func (h *TraceHeader) Env() EnvInfo { return h.env }

func (h *TraceHeader) TypeName() string        { return "Trace" }
func (h *TraceHeader) ObjectVersion() int32    { return TraceObjectVersion }
func (h *TraceHeader) MinReaderVersion() int32 { return TraceMinReaderVersion }

// Serialize writes the header payload: the wall-clock open time split into
// calendar fields, then the high-resolution timestamp, its frequency, and
// the process facts, all little-endian.
func (h *TraceHeader) Serialize(w io.Writer) error {
	t := h.env.WallClockTime
	var buf [8*2 + 8 + 8 + 4*4]byte

	fields := []uint16{
		uint16(t.Year()),
		uint16(t.Month()),
		uint16(t.Weekday()),
		uint16(t.Day()),
		uint16(t.Hour()),
		uint16(t.Minute()),
		uint16(t.Second()),
		uint16(t.Nanosecond() / int(time.Millisecond)),
	}
	off := 0
	for _, f := range fields {
		binary.LittleEndian.PutUint16(buf[off:], f)
		off += 2
	}
	binary.LittleEndian.PutUint64(buf[off:], uint64(h.env.Timestamp))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(h.env.TimestampFrequency))
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], h.env.PointerSize)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.env.ProcessID)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.env.ProcessorCount)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], h.env.SamplingRateNs)
	off += 4

	_, err := w.Write(buf[:off])
	return err
}
