package app

import (
	"errors"
	"time"

	"github.com/gekko3d/particles/assets"
	"github.com/gekko3d/particles/config"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/logging"
)

var ErrNoRenderer = errors.New("app: no renderer")

type AppBuilder struct {
	app *App
}

// NewAppBuilder starts from cfg, or from config.DefaultConfig when cfg is
// nil.
func NewAppBuilder(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &AppBuilder{app: &App{
		Config:   cfg,
		Profiler: NewProfiler(),
		Viewport: core.NewViewport(cfg.Window.Width, cfg.Window.Height, 1),
	}}
}

func (b *AppBuilder) WithRenderer(r Renderer) *AppBuilder {
	b.app.Renderer = r
	return b
}

func (b *AppBuilder) WithHost(h Host) *AppBuilder {
	b.app.Host = h
	return b
}

// WithControls replaces the orbit controls stepped by Frame.
func (b *AppBuilder) WithControls(c Controls) *AppBuilder {
	b.app.Controls = c
	return b
}

func (b *AppBuilder) WithLogger(l logging.Logger) *AppBuilder {
	b.app.Logger = l
	return b
}

func (b *AppBuilder) WithAssets(s *assets.Server) *AppBuilder {
	b.app.Assets = s
	return b
}

func (b *AppBuilder) WithClock(c *core.Clock) *AppBuilder {
	b.app.Clock = c
	return b
}

// WithRandomSource overrides the seeded source built from the config.
func (b *AppBuilder) WithRandomSource(src core.RandomSource) *AppBuilder {
	b.app.source = src
	return b
}

// WithPixelRatio sets the initial device pixel ratio (window content scale).
func (b *AppBuilder) WithPixelRatio(ratio float64) *AppBuilder {
	b.app.Viewport.PixelRatio = ratio
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	a := b.app
	if err := a.Config.Validate(); err != nil {
		return nil, err
	}
	if a.Renderer == nil {
		return nil, ErrNoRenderer
	}

	a.Logger = logging.OrNop(a.Logger)
	if a.Assets == nil {
		a.Assets = assets.NewServer()
	}
	if a.Clock == nil {
		a.Clock = core.NewClock(nil)
	}
	if a.source == nil {
		a.Seed = a.Config.Particles.Seed
		if a.Seed == 0 {
			a.Seed = time.Now().UnixNano()
		}
		a.source = core.NewSeededSource(a.Seed)
	}
	return a, nil
}
