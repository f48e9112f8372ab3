package common

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock reads so frame scheduling can be driven deterministically in tests.
type Clock interface {
	// Now returns the current time.
	//
	// Returns:
	//   - time.Time: the current instant
	Now() time.Time
}

type systemClock struct{}

// SystemClock returns a Clock backed by time.Now.
//
// Returns:
//   - Clock: the wall clock
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  *sync.Mutex
	now time.Time
}

var _ Clock = &ManualClock{}

// NewManualClock creates a ManualClock positioned at start.
//
// Parameters:
//   - start: the initial time reported by Now
//
// Returns:
//   - *ManualClock: the new clock
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{mu: &sync.Mutex{}, now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t. Moving backwards is allowed.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
