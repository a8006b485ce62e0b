// Package testutil provides deterministic stand-ins for the presentation
// runtime so the engine can be driven without a window, audio device or
// wall-clock delays.
package testutil

import "time"

// FakeClock only moves when told to.
type FakeClock struct {
	now time.Duration
}

func NewFakeClock() *FakeClock {
	return &FakeClock{}
}

func (c *FakeClock) Now() time.Duration {
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.now += d
}
