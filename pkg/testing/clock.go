package testing

import (
	"sync"
	"time"
)

// Epoch is where NewFakeClock starts.
var Epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// FakeClock is a clock that only moves when told to. It satisfies
// animation.Clock and is safe for concurrent use, so background jobs may
// read it while a test pumps the scheduler.
type FakeClock struct {
	mu      sync.Mutex
	start   time.Time
	elapsed time.Duration
}

// NewFakeClock returns a clock standing at Epoch.
func NewFakeClock() *FakeClock {
	return NewFakeClockAt(Epoch)
}

// NewFakeClockAt returns a clock standing at t.
func NewFakeClockAt(t time.Time) *FakeClock {
	return &FakeClock{start: t}
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(c.elapsed)
}

// Elapsed returns how far the clock moved since it was created or last Set.
func (c *FakeClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Advance moves the clock by d. Negative durations are ignored; schedulers
// never see time run backwards.
func (c *FakeClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.elapsed += d
	c.mu.Unlock()
}

// Set jumps to t and restarts Elapsed from there.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.start, c.elapsed = t, 0
	c.mu.Unlock()
}
