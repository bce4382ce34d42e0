// Package testutil holds small deterministic helpers shared by tests.
package testutil

import (
	"sync"
	"time"
)

// Clock is a thread-safe deterministic time source for tests. Each
// Now call advances the clock by a fixed step, so event timestamps in
// a test run are strictly increasing and reproducible.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewClock creates a clock starting at the given instant, advancing
// one second per Now call.
func NewClock(start time.Time) *Clock {
	return &Clock{current: start, step: time.Second}
}

// NewDefaultClock starts at a fixed epoch used across tests.
func NewDefaultClock() *Clock {
	return NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.current
	c.current = c.current.Add(c.step)
	return t
}

// Peek returns the instant the next Now call will produce.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
