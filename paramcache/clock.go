package paramcache

import "time"

// Clock provides wall-clock time in milliseconds since the Unix epoch.
// Injected so tests can drive expiration deterministically (grounded on
// the teacher's Options.Clock / cache_test.go fakeClock pattern, adapted
// from UnixNano to UnixMilli to match this domain's millisecond
// timestamps).
type Clock interface {
	NowMillis() int64
}

// systemClock wraps time.Now. It is the default Clock when Options.Clock
// is nil.
type systemClock struct{}

func (systemClock) NowMillis() int64 { return time.Now().UnixMilli() }

// ManualClock is a Clock a test can advance explicitly. Not safe for
// concurrent use without external synchronization, matching the
// teacher's fakeClock.
type ManualClock struct {
	millis int64
}

// NewManualClock returns a ManualClock starting at the given time.
func NewManualClock(startMillis int64) *ManualClock {
	return &ManualClock{millis: startMillis}
}

// NowMillis implements Clock.
func (c *ManualClock) NowMillis() int64 { return c.millis }

// Set pins the clock to an absolute time.
func (c *ManualClock) Set(millis int64) { c.millis = millis }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.millis += d.Milliseconds() }
