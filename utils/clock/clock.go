package clock

import "time"

// Clock provides time operations that can be faked for testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// New creates a new RealClock.
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a Clock pinned to a settable instant.
type FakeClock struct {
	Current time.Time
}

// NewFake creates a FakeClock starting at t.
func NewFake(t time.Time) *FakeClock {
	return &FakeClock{Current: t}
}

func (c *FakeClock) Now() time.Time {
	return c.Current
}

// Advance moves the fake clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
