package sysinfo

import (
	"time"

	"golang.org/x/sys/unix"
)

// clockReading returns the raw monotonic clock in nanoseconds. The raw
// clock is immune to NTP slewing, so timestamps recorded against it stay
// comparable across the whole session.
func clockReading() (ticks, frequency int64) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return fallbackClockReading()
	}
	return ts.Nano(), int64(time.Second / time.Nanosecond)
}
