// Package testutil holds helpers shared by package tests.
package testutil

import (
	"sync"
	"time"
)

// Clock is a deterministic wall clock for tests. Each call to Now returns
// the previous time plus a fixed step, starting at the configured start.
//
// Safe for concurrent use.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int64
}

// NewClock returns a clock whose first reading is start.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{start: start, step: step}
}

// Now returns the next reading. Its signature matches time.Now so it can
// be passed wherever a clock function is injected.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls returns how many readings have been taken.
func (c *Clock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock so the next reading is start again.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
