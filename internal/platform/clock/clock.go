package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports UTC wall time. Use it for timestamps that get persisted.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// MonotonicClock keeps the monotonic reading of time.Now so that timer
// arithmetic is immune to wall clock adjustments.
type MonotonicClock struct{}

func (MonotonicClock) Now() time.Time {
	return time.Now()
}
