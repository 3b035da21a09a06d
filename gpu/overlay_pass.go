package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/shaders"
)

// OverlayPass draws screen-space text from a glyph atlas on top of the
// scene. Vertices are rebuilt only when the text changes.
type OverlayPass struct {
	Device   *wgpu.Device
	Pipeline *wgpu.RenderPipeline

	VertexBuffer  *wgpu.Buffer
	VertexCount   uint32
	UniformBuffer *wgpu.Buffer

	Sampler   *wgpu.Sampler
	Atlas     *wgpu.Texture
	AtlasView *wgpu.TextureView
	BindGroup *wgpu.BindGroup

	text string
}

func overlayTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format:    format,
		WriteMask: wgpu.ColorWriteMaskAll,
		Blend:     alphaBlend,
	}
}

func NewOverlayPass(device *wgpu.Device, format, depthFormat wgpu.TextureFormat) (*OverlayPass, error) {
	mod, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Overlay Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.OverlayWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer mod.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Overlay Pipeline",
		Vertex: wgpu.VertexState{
			Module:     mod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.GlyphVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     mod,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{overlayTarget(format)},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		// Shares the scene's render pass, so it must declare the depth
		// attachment even though it ignores it.
		DepthStencil: depthState(depthFormat, false, wgpu.CompareFunctionAlways),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	o := &OverlayPass{Device: device, Pipeline: pipeline}

	o.UniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "OverlayUniforms",
		Size:  uint64(unsafe.Sizeof(OverlayUniforms{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		o.Release()
		return nil, err
	}

	o.Sampler, err = newLinearSampler(device)
	if err != nil {
		o.Release()
		return nil, err
	}
	return o, nil
}

// SetAtlas uploads the glyph atlas and binds it.
func (o *OverlayPass) SetAtlas(queue *wgpu.Queue, atlas *core.FontAtlas) error {
	img := atlas.AtlasImage
	w, h := uint32(img.Bounds().Dx()), uint32(img.Bounds().Dy())
	var err error
	o.Atlas, o.AtlasView, err = uploadTexture(o.Device, queue, "Overlay Atlas", wgpu.TextureFormatR8Unorm, w, h, 1, img.Pix)
	if err != nil {
		return err
	}

	o.BindGroup, err = o.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "OverlayBG",
		Layout: o.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: o.UniformBuffer, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: o.AtlasView},
			{Binding: 2, Sampler: o.Sampler},
		},
	})
	return err
}

// Update writes the uniforms and re-lays the text out when it changed.
func (o *OverlayPass) Update(queue *wgpu.Queue, overlay *core.Overlay, u *OverlayUniforms) error {
	if err := queue.WriteBuffer(o.UniformBuffer, 0, wgpu.ToBytes([]OverlayUniforms{*u})); err != nil {
		return err
	}
	if overlay.Text == o.text && o.VertexBuffer != nil {
		return nil
	}
	o.text = overlay.Text

	verts := overlay.Layout()
	o.VertexCount = uint32(len(verts))
	if len(verts) == 0 {
		return nil
	}

	size := uint64(len(verts)) * uint64(unsafe.Sizeof(core.GlyphVertex{}))
	if o.VertexBuffer == nil || o.VertexBuffer.GetSize() < size {
		if o.VertexBuffer != nil {
			o.VertexBuffer.Release()
		}
		var err error
		o.VertexBuffer, err = o.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Overlay Vertices",
			Size:  size * 2,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			o.VertexCount = 0
			return err
		}
	}
	return queue.WriteBuffer(o.VertexBuffer, 0, wgpu.ToBytes(verts))
}

func (o *OverlayPass) Draw(pass *wgpu.RenderPassEncoder) {
	if o.VertexCount == 0 || o.BindGroup == nil {
		return
	}
	pass.SetPipeline(o.Pipeline)
	pass.SetBindGroup(0, o.BindGroup, nil)
	pass.SetVertexBuffer(0, o.VertexBuffer, 0, o.VertexBuffer.GetSize())
	pass.Draw(o.VertexCount, 1, 0, 0)
}

func (o *OverlayPass) Release() {
	if o.BindGroup != nil {
		o.BindGroup.Release()
		o.BindGroup = nil
	}
	if o.VertexBuffer != nil {
		o.VertexBuffer.Release()
		o.VertexBuffer = nil
	}
	o.VertexCount = 0
	if o.AtlasView != nil {
		o.AtlasView.Release()
		o.AtlasView = nil
	}
	if o.Atlas != nil {
		o.Atlas.Release()
		o.Atlas = nil
	}
	if o.UniformBuffer != nil {
		o.UniformBuffer.Release()
		o.UniformBuffer = nil
	}
	if o.Sampler != nil {
		o.Sampler.Release()
		o.Sampler = nil
	}
	if o.Pipeline != nil {
		o.Pipeline.Release()
		o.Pipeline = nil
	}
}
