package booking

import "time"

// Clock supplies the current time so window and visibility decisions
// can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
