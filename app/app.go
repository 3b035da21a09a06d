package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gekko3d/particles/assets"
	"github.com/gekko3d/particles/config"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/logging"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrNotInitialized = errors.New("app: not initialized")

// App owns everything one run of the demo needs. Build it with AppBuilder,
// then Init, Run and Dispose.
type App struct {
	Config   *config.Config
	Logger   logging.Logger
	Assets   *assets.Server
	Renderer Renderer
	Host     Host
	Clock    *core.Clock
	Profiler *Profiler

	Scene    *core.Scene
	Camera   *core.Camera
	Orbit    *core.OrbitControls
	Controls Controls
	Viewport core.Viewport

	// Seed is the particle seed actually used; zero when a custom source
	// was supplied.
	Seed int64

	source   core.RandomSource
	stopped  atomic.Bool
	disposed bool
}

// Init generates the particle field, awaits the startup assets, assembles
// the scene and hands it to the renderer. Missing assets are logged and
// skipped.
func (a *App) Init(ctx context.Context) error {
	cfg := a.Config

	if a.Seed != 0 {
		a.Logger.Infof("particle seed %d", a.Seed)
	}

	// Both loads start before either is awaited.
	var fontFuture *assets.Future[*assets.Font]
	if cfg.Text.Content != "" {
		fontFuture = a.Assets.LoadFont(ctx, cfg.Text.Font, core.DefaultFontBytes())
	}
	alphaFuture := a.Assets.LoadTexture(ctx, cfg.Assets.AlphaMap)

	buf, err := core.Generate(cfg.Particles.Count, float32(cfg.Particles.Spread), a.source)
	if err != nil {
		return fmt.Errorf("generate particles: %w", err)
	}
	points := core.NewPointCloud(buf)
	points.Size = float32(cfg.Particles.Size)
	points.SizeAttenuation = cfg.Particles.SizeAttenuation

	a.Camera = core.NewCamera(float32(cfg.Camera.FovDegrees), a.Viewport.Aspect(),
		float32(cfg.Camera.Near), float32(cfg.Camera.Far))
	p := cfg.Camera.Position
	a.Camera.Position = mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}

	a.Orbit = core.NewOrbitControls(a.Camera)
	a.Orbit.EnableDamping = cfg.Controls.Damping
	a.Orbit.DampingFactor = cfg.Controls.DampingFactor
	a.Orbit.RotateSpeed = cfg.Controls.RotateSpeed
	a.Orbit.ZoomSpeed = cfg.Controls.ZoomSpeed
	a.Orbit.MinDistance = cfg.Controls.MinDistance
	if cfg.Controls.MaxDistance > 0 {
		a.Orbit.MaxDistance = cfg.Controls.MaxDistance
	}
	if a.Controls == nil {
		a.Controls = a.Orbit
	}

	scene := &core.Scene{Camera: a.Camera, Points: points, Viewport: a.Viewport}
	if cfg.Debug {
		atlas, err := core.NewFontAtlas(core.DefaultFontBytes(), cfg.Overlay.FontPixels)
		if err != nil {
			return fmt.Errorf("overlay font: %w", err)
		}
		scene.Overlay = core.NewOverlay(atlas, toColor(cfg.Overlay.Color))
	}
	if err := a.attachAssets(ctx, scene, fontFuture, alphaFuture); err != nil {
		if !errors.Is(err, assets.ErrAssetLoad) {
			return err
		}
		a.Logger.Warnf("continuing without some assets: %v", err)
	}
	a.Scene = scene

	a.Profiler.SetCount("particles", buf.Count())
	if scene.Text != nil {
		a.Profiler.SetCount("text_vertices", len(scene.Text.Vertices))
	}

	if err := a.Renderer.Init(scene); err != nil {
		return fmt.Errorf("renderer init: %w", err)
	}
	a.Resize(a.Viewport.Width, a.Viewport.Height)
	return nil
}

// attachAssets awaits both futures and fills in the text mesh and alpha map.
// Load failures are joined and returned; they wrap assets.ErrAssetLoad.
func (a *App) attachAssets(ctx context.Context, scene *core.Scene,
	fontFuture *assets.Future[*assets.Font], alphaFuture *assets.Future[*assets.Texture]) error {
	var errs []error

	if fontFuture != nil {
		font, err := fontFuture.Await(ctx)
		if err == nil {
			var mesh *core.TextMesh
			if mesh, err = a.buildText(font); err == nil {
				scene.Text = mesh
			} else {
				err = &assets.LoadError{Kind: assets.KindFont, Path: font.Path, Err: err}
			}
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	tex, err := alphaFuture.Await(ctx)
	if err != nil {
		errs = append(errs, err)
	} else if tex != nil {
		scene.Points.AlphaMap = string(tex.Id)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return errors.Join(errs...)
}

func (a *App) buildText(font *assets.Font) (*core.TextMesh, error) {
	if font.Parsed == nil {
		return nil, fmt.Errorf("font %q has no outlines", font.Path)
	}
	return core.BuildTextMesh(font.Parsed, a.Config.Text.Content, textStyle(a.Config.Text))
}

func textStyle(cfg config.TextConfig) core.TextStyle {
	return core.TextStyle{
		Size:           float32(cfg.Size),
		Depth:          float32(cfg.Depth),
		CurveSegments:  cfg.CurveSegments,
		BevelEnabled:   cfg.Bevel.Enabled,
		BevelThickness: float32(cfg.Bevel.Thickness),
		BevelSize:      float32(cfg.Bevel.Size),
		BevelSegments:  cfg.Bevel.Segments,
	}
}

func toColor(c [4]float64) [4]float32 {
	return [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
}

// Frame advances the animation and submits one render: rotation from the
// clock, then the controls, then the renderer. Render errors are logged.
func (a *App) Frame() {
	if a.Scene == nil {
		return
	}
	a.Profiler.BeginScope("frame")

	elapsed := a.Clock.Elapsed()
	a.Scene.Points.Update(elapsed, a.Config.Animation.AngularSpeed)

	a.Profiler.BeginScope("controls")
	if a.Controls != nil {
		a.Controls.Update()
	}
	a.Profiler.EndScope("controls")

	a.Profiler.BeginScope("render")
	if err := a.Renderer.Render(a.Scene); err != nil {
		a.Logger.Errorf("render: %v", err)
	}
	a.Profiler.EndScope("render")

	a.Profiler.EndScope("frame")
	if !a.Profiler.FrameDone(elapsed) {
		return
	}
	if a.Scene.Overlay != nil {
		a.Scene.Overlay.Text = a.Profiler.GetStatsString()
	}
	if a.Logger.DebugEnabled() {
		a.Logger.Debugf("frame profile\n%s", a.Profiler.GetStatsString())
	}
}

// Resize replaces the viewport with a new logical size. Non-positive sizes
// (a minimized window) are ignored.
func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.Viewport = core.NewViewport(width, height, a.Viewport.PixelRatio)
	if a.Scene == nil {
		return
	}
	a.Scene.Viewport = a.Viewport
	a.Camera.SetAspect(a.Viewport.Aspect())
	a.Renderer.Resize(width, height, a.Viewport.ClampedPixelRatio(a.Config.Render.MaxPixelRatio))
}

// SetPixelRatio records a new device pixel ratio and re-runs Resize.
func (a *App) SetPixelRatio(ratio float64) {
	a.Viewport.PixelRatio = ratio
	a.Resize(a.Viewport.Width, a.Viewport.Height)
}

// Rotate forwards a pointer drag in window pixels to the orbit controls.
func (a *App) Rotate(dx, dy float64) {
	if a.Orbit != nil {
		a.Orbit.Rotate(dx, dy, a.Viewport.Height)
	}
}

func (a *App) Zoom(steps float64) {
	if a.Orbit != nil {
		a.Orbit.Zoom(steps)
	}
}

// Stop makes Run return before its next frame.
func (a *App) Stop() {
	a.stopped.Store(true)
}

// Run loops until ctx is cancelled, the host asks to close or Stop is
// called. Each iteration polls host events and then draws one frame.
func (a *App) Run(ctx context.Context) error {
	if a.Scene == nil {
		return ErrNotInitialized
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if a.stopped.Load() || (a.Host != nil && a.Host.ShouldClose()) {
			return nil
		}
		if a.Host != nil {
			a.Host.PollEvents()
		}
		a.Frame()
	}
}

// Dispose releases the renderer. Calling it twice is a no-op.
func (a *App) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	if a.Renderer != nil {
		a.Renderer.Dispose()
	}
}
