package domain

import "time"

// Clock supplies wall-clock time for TTL checks.
//
// Wall time is used on purpose over a monotonic source: records must be
// comparable across process restarts, where monotonic readings reset.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}
