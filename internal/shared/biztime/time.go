// Package biztime centralises time handling. All storage and transport use UTC,
// and every component that needs "now" takes a Clock so tests can pin it.
package biztime

import (
	"sync"
	"time"
)

// Clock is the source of the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// SystemClock returns a Clock backed by the wall clock, in UTC.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return NowUTC()
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ToUTC converts a possibly nil time pointer to UTC.
func ToUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// FakeClock is a manually advanced Clock for tests and replay tools.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a FakeClock pinned at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set pins the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}
