package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/assets"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/shaders"
)

// quadVertices is the number of vertices drawn per point (two triangles).
const quadVertices = 6

// PointsPass draws a point cloud as camera-facing quads, one instance per
// particle. Positions and colors live in separate instance buffers.
type PointsPass struct {
	Device   *wgpu.Device
	Pipeline *wgpu.RenderPipeline

	PositionBuffer *wgpu.Buffer
	ColorBuffer    *wgpu.Buffer
	UniformBuffer  *wgpu.Buffer
	Count          uint32

	Sampler      *wgpu.Sampler
	AlphaTexture *wgpu.Texture
	AlphaView    *wgpu.TextureView
	BindGroup    *wgpu.BindGroup
}

// pointsTarget adds each particle's color onto what is already drawn, so
// overlapping particles brighten.
func pointsTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format:    format,
		WriteMask: wgpu.ColorWriteMaskAll,
		Blend:     additiveBlend,
	}
}

func NewPointsPass(device *wgpu.Device, format, depthFormat wgpu.TextureFormat) (*PointsPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "PointsShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PointsWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer shaderModule.Release()

	vec3Stride := uint64(3 * unsafe.Sizeof(float32(0)))
	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "PointsPipeline",
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: vec3Stride,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: vec3Stride,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{pointsTarget(format)},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		// Points are tested against the text but never occlude each other.
		DepthStencil: depthState(depthFormat, false, wgpu.CompareFunctionLess),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p := &PointsPass{Device: device, Pipeline: pipeline}

	p.UniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PointsUniforms",
		Size:  uint64(unsafe.Sizeof(PointsUniforms{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		p.Release()
		return nil, err
	}

	p.Sampler, err = newLinearSampler(device)
	if err != nil {
		p.Release()
		return nil, err
	}

	return p, nil
}

// SetParticles uploads the particle buffer once. The buffer is never
// rewritten afterwards.
func (p *PointsPass) SetParticles(buf *core.ParticleBuffer) error {
	if buf.Count() == 0 {
		return fmt.Errorf("points pass: empty particle buffer")
	}
	if p.PositionBuffer != nil {
		p.PositionBuffer.Release()
		p.PositionBuffer = nil
	}
	if p.ColorBuffer != nil {
		p.ColorBuffer.Release()
		p.ColorBuffer = nil
	}

	var err error
	p.PositionBuffer, err = p.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "PointsPositions",
		Contents: wgpu.ToBytes(buf.Positions),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return err
	}
	p.ColorBuffer, err = p.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "PointsColors",
		Contents: wgpu.ToBytes(buf.Colors),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return err
	}
	p.Count = uint32(buf.Count())
	return nil
}

// SetAlphaMap binds tex as the per-point alpha mask. A nil texture binds a
// 1x1 opaque white texel so every point is fully visible.
func (p *PointsPass) SetAlphaMap(queue *wgpu.Queue, tex *assets.Texture) error {
	texels := []uint8{255, 255, 255, 255}
	width, height := uint32(1), uint32(1)
	if tex != nil {
		texels, width, height = tex.Texels, tex.Width, tex.Height
	}

	gpuTex, view, err := uploadTexture(p.Device, queue, "PointsAlphaMap", wgpu.TextureFormatRGBA8Unorm, width, height, 4, texels)
	if err != nil {
		return err
	}
	p.releaseAlpha()
	p.AlphaTexture, p.AlphaView = gpuTex, view

	p.BindGroup, err = p.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "PointsBG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.UniformBuffer, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: p.AlphaView},
			{Binding: 2, Sampler: p.Sampler},
		},
	})
	return err
}

func (p *PointsPass) Update(queue *wgpu.Queue, u *PointsUniforms) error {
	return queue.WriteBuffer(p.UniformBuffer, 0, wgpu.ToBytes([]PointsUniforms{*u}))
}

func (p *PointsPass) Draw(pass *wgpu.RenderPassEncoder) {
	if p.Count == 0 || p.BindGroup == nil {
		return
	}
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	pass.SetVertexBuffer(0, p.PositionBuffer, 0, p.PositionBuffer.GetSize())
	pass.SetVertexBuffer(1, p.ColorBuffer, 0, p.ColorBuffer.GetSize())
	pass.Draw(quadVertices, p.Count, 0, 0)
}

func (p *PointsPass) releaseAlpha() {
	if p.BindGroup != nil {
		p.BindGroup.Release()
		p.BindGroup = nil
	}
	if p.AlphaView != nil {
		p.AlphaView.Release()
		p.AlphaView = nil
	}
	if p.AlphaTexture != nil {
		p.AlphaTexture.Release()
		p.AlphaTexture = nil
	}
}

func (p *PointsPass) Release() {
	p.releaseAlpha()
	for _, b := range []*wgpu.Buffer{p.PositionBuffer, p.ColorBuffer, p.UniformBuffer} {
		if b != nil {
			b.Release()
		}
	}
	p.PositionBuffer, p.ColorBuffer, p.UniformBuffer = nil, nil, nil
	if p.Sampler != nil {
		p.Sampler.Release()
		p.Sampler = nil
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
		p.Pipeline = nil
	}
}
