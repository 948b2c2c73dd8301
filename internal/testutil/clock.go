package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a fresh DeterministicClock.
var Epoch = time.Date(2022, time.May, 15, 8, 0, 0, 0, time.UTC)

// DeterministicClock is a thread-safe wall clock for tests. Every call to
// Now advances it by a fixed step, so rows written in sequence get distinct,
// strictly increasing timestamps.
type DeterministicClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewDeterministicClock creates a clock at Epoch stepping one second per call.
//
// The first call to Now() returns Epoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{now: Epoch, step: time.Second}
}

// Now returns the current instant and advances the clock by its step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Current returns the next instant Now will return, without advancing.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}
