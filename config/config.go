package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth         = 1280
	DefaultHeight        = 720
	DefaultTitle         = "Particles"
	DefaultCount         = 20000
	DefaultSpread        = 5.0
	DefaultPointSize     = 0.1
	DefaultAngularSpeed  = 0.05
	DefaultFov           = 75.0
	DefaultNear          = 0.1
	DefaultFar           = 100.0
	DefaultDampingFactor = 0.05
	DefaultMaxPixelRatio = 2.0
	DefaultText          = "Hello Particles"
	DefaultTextSize      = 0.3
	DefaultTextDepth     = 0.2
	DefaultCurveSegments = 4
	DefaultBevelSegments = 4
	DefaultOverlayPixels = 16
)

// ErrInvalidConfiguration is wrapped by every Validate failure.
var ErrInvalidConfiguration = errors.New("config: invalid configuration")

type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Particles ParticlesConfig `yaml:"particles"`
	Animation AnimationConfig `yaml:"animation"`
	Camera    CameraConfig    `yaml:"camera"`
	Controls  ControlsConfig  `yaml:"controls"`
	Text      TextConfig      `yaml:"text"`
	Assets    AssetsConfig    `yaml:"assets"`
	Render    RenderConfig    `yaml:"render"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Debug     bool            `yaml:"debug"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type ParticlesConfig struct {
	Count           int     `yaml:"count"`
	Spread          float64 `yaml:"spread"`
	Seed            int64   `yaml:"seed"`
	Size            float64 `yaml:"size"`
	SizeAttenuation bool    `yaml:"size_attenuation"`
}

type AnimationConfig struct {
	AngularSpeed float64 `yaml:"angular_speed"`
}

type CameraConfig struct {
	FovDegrees float64    `yaml:"fov_degrees"`
	Near       float64    `yaml:"near"`
	Far        float64    `yaml:"far"`
	Position   [3]float64 `yaml:"position,flow"`
}

type ControlsConfig struct {
	Damping       bool    `yaml:"damping"`
	DampingFactor float64 `yaml:"damping_factor"`
	RotateSpeed   float64 `yaml:"rotate_speed"`
	ZoomSpeed     float64 `yaml:"zoom_speed"`
	MinDistance   float64 `yaml:"min_distance"`
	MaxDistance   float64 `yaml:"max_distance"`
}

// TextConfig describes the extruded text mesh. Size is the em height and
// Depth the extrusion before the bevel, both in world units.
type TextConfig struct {
	Content       string      `yaml:"content"`
	Size          float64     `yaml:"size"`
	Depth         float64     `yaml:"depth"`
	CurveSegments int         `yaml:"curve_segments"`
	Bevel         BevelConfig `yaml:"bevel"`
	Font          string      `yaml:"font"`
}

type BevelConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Thickness float64 `yaml:"thickness"`
	Size      float64 `yaml:"size"`
	Segments  int     `yaml:"segments"`
}

// OverlayConfig styles the frame stats drawn in debug mode.
type OverlayConfig struct {
	FontPixels float64    `yaml:"font_pixels"`
	Color      [4]float64 `yaml:"color,flow"`
}

type AssetsConfig struct {
	AlphaMap string `yaml:"alpha_map"`
}

type RenderConfig struct {
	MaxPixelRatio float64    `yaml:"max_pixel_ratio"`
	ClearColor    [4]float64 `yaml:"clear_color,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Title:  DefaultTitle,
		},
		Particles: ParticlesConfig{
			Count:           DefaultCount,
			Spread:          DefaultSpread,
			Size:            DefaultPointSize,
			SizeAttenuation: true,
		},
		Animation: AnimationConfig{
			AngularSpeed: DefaultAngularSpeed,
		},
		Camera: CameraConfig{
			FovDegrees: DefaultFov,
			Near:       DefaultNear,
			Far:        DefaultFar,
			Position:   [3]float64{0, 0, 3},
		},
		Controls: ControlsConfig{
			Damping:       true,
			DampingFactor: DefaultDampingFactor,
			RotateSpeed:   1,
			ZoomSpeed:     1,
			MinDistance:   0.5,
			MaxDistance:   50,
		},
		Text: TextConfig{
			Content:       DefaultText,
			Size:          DefaultTextSize,
			Depth:         DefaultTextDepth,
			CurveSegments: DefaultCurveSegments,
			Bevel: BevelConfig{
				Enabled:   true,
				Thickness: 0.03,
				Size:      0.02,
				Segments:  DefaultBevelSegments,
			},
		},
		Render: RenderConfig{
			MaxPixelRatio: DefaultMaxPixelRatio,
			ClearColor:    [4]float64{0, 0, 0, 1},
		},
		Overlay: OverlayConfig{
			FontPixels: DefaultOverlayPixels,
			Color:      [4]float64{1, 1, 1, 1},
		},
	}
}

// Load reads a YAML file on top of the defaults, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		fail("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Particles.Count <= 0 {
		fail("particles.count %d must be positive", c.Particles.Count)
	}
	if !positive(c.Particles.Spread) {
		fail("particles.spread %v must be positive", c.Particles.Spread)
	}
	if !positive(c.Particles.Size) {
		fail("particles.size %v must be positive", c.Particles.Size)
	}
	if math.IsNaN(c.Animation.AngularSpeed) || math.IsInf(c.Animation.AngularSpeed, 0) {
		fail("animation.angular_speed %v must be finite", c.Animation.AngularSpeed)
	}
	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		fail("camera.fov_degrees %v must be in (0, 180)", c.Camera.FovDegrees)
	}
	if !positive(c.Camera.Near) || c.Camera.Far <= c.Camera.Near {
		fail("camera clip planes near=%v far=%v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far)
	}
	if c.Controls.DampingFactor <= 0 || c.Controls.DampingFactor > 1 {
		fail("controls.damping_factor %v must be in (0, 1]", c.Controls.DampingFactor)
	}
	if c.Controls.MinDistance < 0 || (c.Controls.MaxDistance > 0 && c.Controls.MaxDistance < c.Controls.MinDistance) {
		fail("controls distance bounds [%v, %v] are inverted", c.Controls.MinDistance, c.Controls.MaxDistance)
	}
	if c.Text.Content != "" {
		c.validateText(fail)
	}
	if !(c.Render.MaxPixelRatio > 0) || c.Render.MaxPixelRatio > DefaultMaxPixelRatio {
		fail("render.max_pixel_ratio %v must be in (0, %v]", c.Render.MaxPixelRatio, DefaultMaxPixelRatio)
	}
	if c.Debug && !positive(c.Overlay.FontPixels) {
		fail("overlay.font_pixels %v must be positive", c.Overlay.FontPixels)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
}

func (c *Config) validateText(fail func(string, ...any)) {
	t := c.Text
	if !positive(t.Size) {
		fail("text.size %v must be positive", t.Size)
	}
	if !nonNegative(t.Depth) {
		fail("text.depth %v must be finite and not negative", t.Depth)
	}
	if t.CurveSegments < 1 {
		fail("text.curve_segments %d must be at least 1", t.CurveSegments)
	}
	if !t.Bevel.Enabled {
		return
	}
	if !nonNegative(t.Bevel.Thickness) || !nonNegative(t.Bevel.Size) {
		fail("text.bevel thickness %v and size %v must be finite and not negative", t.Bevel.Thickness, t.Bevel.Size)
	}
	if t.Bevel.Segments < 1 {
		fail("text.bevel.segments %d must be at least 1", t.Bevel.Segments)
	}
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
