package fakes

import (
	"time"

	"code.cloudfoundry.org/clock"
)

// FakeClock advances its notion of now by every slept duration, so
// timeout-based retry strategies run through their attempts without
// the test waiting in real time.
type FakeClock struct {
	clock.Clock

	now            time.Time
	SleptDurations []time.Duration
}

func NewFakeClock() *FakeClock {
	return &FakeClock{Clock: clock.NewClock()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Sleep(d time.Duration) {
	c.SleptDurations = append(c.SleptDurations, d)
	c.now = c.now.Add(d)
}
