package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a SteppingClock reports.
var Epoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// SteppingClock is a deterministic wall clock for tests.
//
// Every call to Now returns the previous instant plus the step, starting at
// Epoch, so records written in a test get distinct, predictable timestamps.
// Safe for concurrent use.
type SteppingClock struct {
	mu   sync.Mutex
	step time.Duration
	next time.Time
}

// NewSteppingClock creates a clock that advances by step on every read.
// A non-positive step defaults to one second.
func NewSteppingClock(step time.Duration) *SteppingClock {
	if step <= 0 {
		step = time.Second
	}
	return &SteppingClock{step: step, next: Epoch}
}

// Now returns the current instant and advances the clock.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

// Peek returns the instant the next Now call will report.
func (c *SteppingClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// Reset rewinds the clock to Epoch.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = Epoch
}
