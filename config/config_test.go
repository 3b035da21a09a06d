package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 20000, cfg.Particles.Count)
	assert.Equal(t, 5.0, cfg.Particles.Spread)
	assert.Equal(t, 0.05, cfg.Animation.AngularSpeed)
	assert.Equal(t, 2.0, cfg.Render.MaxPixelRatio)
	assert.True(t, cfg.Controls.Damping)
	assert.Equal(t, [3]float64{0, 0, 3}, cfg.Camera.Position)
	assert.Equal(t, 0.3, cfg.Text.Size)
	assert.Equal(t, 0.2, cfg.Text.Depth)
	assert.Equal(t, 4, cfg.Text.CurveSegments)
	assert.Equal(t, BevelConfig{Enabled: true, Thickness: 0.03, Size: 0.02, Segments: 4}, cfg.Text.Bevel)
	assert.NoError(t, cfg.Validate())
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
particles:
  count: 500
  seed: 99
animation:
  angular_speed: 0.2
debug: true
`))
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Particles.Count)
	assert.Equal(t, int64(99), cfg.Particles.Seed)
	assert.Equal(t, 0.2, cfg.Animation.AngularSpeed)
	assert.True(t, cfg.Debug)

	// Untouched keys keep their defaults.
	assert.Equal(t, 5.0, cfg.Particles.Spread)
	assert.Equal(t, DefaultWidth, cfg.Window.Width)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("particles: [unterminated"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "particles.yaml")

	cfg := DefaultConfig()
	cfg.Particles.Count = 1234
	cfg.Text.Content = "round trip"
	cfg.Camera.Position = [3]float64{0, 2, 4}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero count", func(c *Config) { c.Particles.Count = 0 }},
		{"negative count", func(c *Config) { c.Particles.Count = -1 }},
		{"zero spread", func(c *Config) { c.Particles.Spread = 0 }},
		{"negative size", func(c *Config) { c.Particles.Size = -0.1 }},
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"inverted clip", func(c *Config) { c.Camera.Near, c.Camera.Far = 10, 1 }},
		{"fov", func(c *Config) { c.Camera.FovDegrees = 180 }},
		{"damping factor", func(c *Config) { c.Controls.DampingFactor = 0 }},
		{"distance bounds", func(c *Config) { c.Controls.MinDistance, c.Controls.MaxDistance = 5, 1 }},
		{"text size", func(c *Config) { c.Text.Size = 0 }},
		{"text depth", func(c *Config) { c.Text.Depth = -0.1 }},
		{"curve segments", func(c *Config) { c.Text.CurveSegments = 0 }},
		{"bevel segments", func(c *Config) { c.Text.Bevel.Segments = 0 }},
		{"bevel thickness", func(c *Config) { c.Text.Bevel.Thickness = -1 }},
		{"pixel ratio", func(c *Config) { c.Render.MaxPixelRatio = 0 }},
		{"pixel ratio above 2", func(c *Config) { c.Render.MaxPixelRatio = 4 }},
		{"overlay font pixels", func(c *Config) { c.Debug = true; c.Overlay.FontPixels = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
		})
	}
}

func TestValidate_EmptyTextSkipsTextChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Text.Content = ""
	cfg.Text.Size = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BevelDisabledSkipsBevelChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Text.Bevel = BevelConfig{Segments: 0, Thickness: -1}
	assert.NoError(t, cfg.Validate())

	cfg.Text.Depth = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidate_PixelRatioBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.MaxPixelRatio = 1.5
	assert.NoError(t, cfg.Validate())

	cfg.Render.MaxPixelRatio = 2
	assert.NoError(t, cfg.Validate())

	cfg.Render.MaxPixelRatio = 2.5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.max_pixel_ratio")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Particles.Count = 0
	cfg.Particles.Spread = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "particles.count")
	assert.Contains(t, err.Error(), "particles.spread")
}
