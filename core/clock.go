package core

import (
	"time"
)

// Clock reports seconds elapsed since it was created. It is never reset.
type Clock struct {
	now   func() float64
	start float64
}

// NewClock starts a clock over the given seconds source (for example
// glfw.GetTime). A nil source uses the process monotonic clock.
func NewClock(source func() float64) *Clock {
	if source == nil {
		origin := time.Now()
		source = func() float64 { return time.Since(origin).Seconds() }
	}
	return &Clock{now: source, start: source()}
}

func (c *Clock) Elapsed() float64 {
	return c.now() - c.start
}
