package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ErrNoContext means no usable surface, adapter or device could be acquired.
var ErrNoContext = errors.New("gpu: rendering context unavailable")

// Context is the WebGPU state shared by every pass.
type Context struct {
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration
}

// NewContext wraps the GLFW window into a surface and configures it at the
// window's framebuffer size.
func NewContext(window *glfw.Window) (*Context, error) {
	if window == nil {
		return nil, fmt.Errorf("%w: no window", ErrNoContext)
	}

	c := &Context{}
	c.Instance = wgpu.CreateInstance(nil)

	c.Surface = c.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))
	if c.Surface == nil {
		c.Release()
		return nil, fmt.Errorf("%w: surface creation failed", ErrNoContext)
	}

	adapter, err := c.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: c.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("%w: request adapter: %w", ErrNoContext, err)
	}
	c.Adapter = adapter

	c.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("%w: request device: %w", ErrNoContext, err)
	}
	c.Queue = c.Device.GetQueue()

	caps := c.Surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		c.Release()
		return nil, fmt.Errorf("%w: surface reports no formats", ErrNoContext)
	}

	width, height := window.GetFramebufferSize()
	c.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	c.Surface.Configure(c.Adapter, c.Device, c.Config)

	return c, nil
}

// Configure resizes the swapchain. Zero sizes (minimized windows) are
// ignored.
func (c *Context) Configure(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	c.Config.Width = uint32(width)
	c.Config.Height = uint32(height)
	c.Surface.Configure(c.Adapter, c.Device, c.Config)
	return true
}

func (c *Context) Release() {
	if c.Device != nil {
		c.Device.Release()
		c.Device = nil
	}
	if c.Adapter != nil {
		c.Adapter.Release()
		c.Adapter = nil
	}
	if c.Surface != nil {
		c.Surface.Release()
		c.Surface = nil
	}
	if c.Instance != nil {
		c.Instance.Release()
		c.Instance = nil
	}
}
