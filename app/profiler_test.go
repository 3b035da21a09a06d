package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfiler_FrameDone(t *testing.T) {
	p := NewProfiler()

	assert.False(t, p.FrameDone(0), "first frame only starts the window")
	now := 0.0
	reported := 0
	for i := 0; i < 100; i++ {
		now += 1.0 / 60.0
		if p.FrameDone(now) {
			reported++
		}
	}

	assert.Equal(t, 1, reported)
	assert.InDelta(t, 60, p.FPS, 0.5)
}

func TestProfiler_StatsString(t *testing.T) {
	p := NewProfiler()
	p.BeginScope("render")
	p.EndScope("render")
	p.BeginScope("controls")
	p.EndScope("controls")
	p.BeginScope("render")
	p.Scopes["render"] = 2500 * time.Microsecond
	p.SetCount("particles", 20000)

	s := p.GetStatsString()

	assert.Equal(t, []string{"render", "controls"}, p.Order)
	assert.Contains(t, s, "render")
	assert.Contains(t, s, "2.50 ms")
	assert.Contains(t, s, "particles")
	assert.Contains(t, s, "20000")

	p.Reset()
	assert.Zero(t, p.Scopes["render"])
}
