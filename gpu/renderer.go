package gpu

import (
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/assets"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/logging"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

// Renderer submits one frame per Render call: the text first (writing
// depth), then the points (depth tested, additive), then the overlay.
type Renderer struct {
	Context    *Context
	Assets     *assets.Server
	Logger     logging.Logger
	ClearColor wgpu.Color

	Points  *PointsPass
	Text    *TextPass
	Overlay *OverlayPass

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView

	surfaceW, surfaceH int
}

func NewRenderer(ctx *Context, server *assets.Server, logger logging.Logger) *Renderer {
	return &Renderer{
		Context:    ctx,
		Assets:     server,
		Logger:     logging.OrNop(logger),
		ClearColor: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
}

// Init builds the pipelines and uploads everything the scene owns.
func (r *Renderer) Init(scene *core.Scene) error {
	if r.Context == nil || r.Context.Device == nil {
		return ErrNoContext
	}
	if scene == nil || scene.Points == nil {
		return fmt.Errorf("renderer: scene has no point cloud")
	}
	device, queue := r.Context.Device, r.Context.Queue
	format := r.Context.Config.Format

	var err error
	if r.Points, err = NewPointsPass(device, format, depthFormat); err != nil {
		return fmt.Errorf("points pass: %w", err)
	}
	if err = r.Points.SetParticles(scene.Points.Buffer); err != nil {
		return err
	}

	var alpha *assets.Texture
	if scene.Points.AlphaMap != "" && r.Assets != nil {
		var ok bool
		alpha, ok = r.Assets.Texture(assets.AssetId(scene.Points.AlphaMap))
		if !ok {
			r.Logger.Warnf("alpha map %s not registered, drawing opaque points", scene.Points.AlphaMap)
		}
	}
	if err = r.Points.SetAlphaMap(queue, alpha); err != nil {
		return fmt.Errorf("alpha map: %w", err)
	}

	if r.Text, err = NewTextPass(device, format, depthFormat); err != nil {
		return fmt.Errorf("text pass: %w", err)
	}
	if err = r.Text.SetMesh(scene.Text); err != nil {
		return fmt.Errorf("text mesh: %w", err)
	}

	if scene.Overlay != nil && scene.Overlay.Atlas != nil {
		if r.Overlay, err = NewOverlayPass(device, format, depthFormat); err != nil {
			return fmt.Errorf("overlay pass: %w", err)
		}
		if err = r.Overlay.SetAtlas(queue, scene.Overlay.Atlas); err != nil {
			return fmt.Errorf("overlay atlas: %w", err)
		}
	}

	return r.createDepth(int(r.Context.Config.Width), int(r.Context.Config.Height))
}

// Resize reconfigures the surface at width*pixelRatio by height*pixelRatio.
func (r *Renderer) Resize(width, height int, pixelRatio float64) {
	pw := int(math.Round(float64(width) * pixelRatio))
	ph := int(math.Round(float64(height) * pixelRatio))
	if pw == r.surfaceW && ph == r.surfaceH {
		return
	}
	if r.Context == nil || !r.Context.Configure(pw, ph) {
		return
	}
	if err := r.createDepth(pw, ph); err != nil {
		r.Logger.Errorf("resize depth buffer: %v", err)
	}
	r.Logger.Debugf("surface resized to %dx%d (ratio %.2f)", pw, ph, pixelRatio)
}

func (r *Renderer) createDepth(width, height int) error {
	if r.DepthView != nil {
		r.DepthView.Release()
		r.DepthView = nil
	}
	if r.DepthTexture != nil {
		r.DepthTexture.Release()
		r.DepthTexture = nil
	}

	tex, err := r.Context.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth",
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	r.DepthTexture, r.DepthView = tex, view
	r.surfaceW, r.surfaceH = width, height
	return nil
}

// Render draws the scene. Errors leave the frame unpresented; the caller
// keeps looping.
func (r *Renderer) Render(scene *core.Scene) error {
	if r.Points == nil || r.DepthView == nil {
		return ErrNoContext
	}
	queue := r.Context.Queue

	pu := NewPointsUniforms(scene.Camera, scene.Points, r.surfaceW, r.surfaceH)
	if err := r.Points.Update(queue, &pu); err != nil {
		return fmt.Errorf("points uniforms: %w", err)
	}
	if scene.Text != nil && r.Text != nil {
		tu := NewTextUniforms(scene.Camera)
		if err := r.Text.Update(queue, &tu); err != nil {
			return fmt.Errorf("text uniforms: %w", err)
		}
	}
	if scene.Overlay != nil && r.Overlay != nil {
		ou := NewOverlayUniforms(scene.Overlay, scene.Viewport)
		if err := r.Overlay.Update(queue, scene.Overlay, &ou); err != nil {
			return fmt.Errorf("overlay: %w", err)
		}
	}

	nextTexture, err := r.Context.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("GetCurrentTexture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("CreateView: %w", err)
	}
	defer view.Release()

	encoder, err := r.Context.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("CreateCommandEncoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	if scene.Text != nil && r.Text != nil {
		r.Text.Draw(pass)
	}
	r.Points.Draw(pass)
	if scene.Overlay != nil && r.Overlay != nil {
		r.Overlay.Draw(pass)
	}
	if err = pass.End(); err != nil {
		return fmt.Errorf("render pass End: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder Finish: %w", err)
	}
	defer cmd.Release()

	queue.Submit(cmd)
	r.Context.Surface.Present()
	return nil
}

// Dispose releases GPU resources in reverse creation order. The context is
// released too.
func (r *Renderer) Dispose() {
	if r.DepthView != nil {
		r.DepthView.Release()
		r.DepthView = nil
	}
	if r.DepthTexture != nil {
		r.DepthTexture.Release()
		r.DepthTexture = nil
	}
	if r.Overlay != nil {
		r.Overlay.Release()
		r.Overlay = nil
	}
	if r.Text != nil {
		r.Text.Release()
		r.Text = nil
	}
	if r.Points != nil {
		r.Points.Release()
		r.Points = nil
	}
	if r.Context != nil {
		r.Context.Release()
	}
}
