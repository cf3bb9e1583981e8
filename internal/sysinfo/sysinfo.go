// Package sysinfo collects the process and clock facts recorded in a trace
// file header. Platforms with a raw monotonic clock report it directly;
// everywhere else the standard library fallback is used.
package sysinfo

import (
	"os"
	"runtime"
	"time"
	"unsafe"

	"github.com/samcharles93/tracepipe/pkg/tracefile"
)

// Now returns the current high-resolution clock reading in the same tick
// domain as Collect's Timestamp field.
func Now() int64 {
	ts, _ := clockReading()
	return ts
}

// Collect builds the environment snapshot for a trace session opening now.
func Collect(samplingRateNs uint32) tracefile.EnvInfo {
	ts, freq := clockReading()
	return tracefile.EnvInfo{
		WallClockTime:      time.Now(),
		Timestamp:          ts,
		TimestampFrequency: freq,
		PointerSize:        uint32(unsafe.Sizeof(uintptr(0))),
		ProcessID:          uint32(os.Getpid()),
		ProcessorCount:     uint32(runtime.NumCPU()),
		SamplingRateNs:     samplingRateNs,
	}
}
