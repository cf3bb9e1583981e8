package sysinfo

import "time"

var clockEpoch = time.Now()

// fallbackClockReading derives a monotonic reading from the Go runtime
// clock, measured against a process-local epoch with a 1 GHz frequency.
func fallbackClockReading() (ticks, frequency int64) {
	return int64(time.Since(clockEpoch)), int64(time.Second / time.Nanosecond)
}
