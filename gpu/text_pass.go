package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particles/core"
	"github.com/gekko3d/particles/shaders"
)

// TextPass draws the extruded text mesh, shaded by its view-space normals.
// It is opaque and writes depth so points behind the text are hidden.
type TextPass struct {
	Device   *wgpu.Device
	Pipeline *wgpu.RenderPipeline

	VertexBuffer  *wgpu.Buffer
	VertexCount   uint32
	UniformBuffer *wgpu.Buffer
	BindGroup     *wgpu.BindGroup
}

// textTarget replaces the destination; the mesh is opaque.
func textTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format:    format,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
}

func NewTextPass(device *wgpu.Device, format, depthFormat wgpu.TextureFormat) (*TextPass, error) {
	textMod, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Text Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer textMod.Release()

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     textMod,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.MeshVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     textMod,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{textTarget(format)},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		DepthStencil: depthState(depthFormat, true, wgpu.CompareFunctionLess),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	t := &TextPass{Device: device, Pipeline: pipeline}

	t.UniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "TextUniforms",
		Size:  uint64(unsafe.Sizeof(TextUniforms{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		t.Release()
		return nil, err
	}

	t.BindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "TextBG",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: t.UniformBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// SetMesh uploads the mesh vertices. A mesh without triangles leaves the
// pass empty.
func (t *TextPass) SetMesh(mesh *core.TextMesh) error {
	t.releaseMesh()
	if mesh == nil || len(mesh.Vertices) == 0 {
		return nil
	}

	var err error
	t.VertexBuffer, err = t.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Text Vertices",
		Contents: wgpu.ToBytes(mesh.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return err
	}
	t.VertexCount = uint32(len(mesh.Vertices))
	return nil
}

func (t *TextPass) Update(queue *wgpu.Queue, u *TextUniforms) error {
	return queue.WriteBuffer(t.UniformBuffer, 0, wgpu.ToBytes([]TextUniforms{*u}))
}

func (t *TextPass) Draw(pass *wgpu.RenderPassEncoder) {
	if t.VertexCount == 0 {
		return
	}
	pass.SetPipeline(t.Pipeline)
	pass.SetBindGroup(0, t.BindGroup, nil)
	pass.SetVertexBuffer(0, t.VertexBuffer, 0, t.VertexBuffer.GetSize())
	pass.Draw(t.VertexCount, 1, 0, 0)
}

func (t *TextPass) releaseMesh() {
	if t.VertexBuffer != nil {
		t.VertexBuffer.Release()
		t.VertexBuffer = nil
	}
	t.VertexCount = 0
}

func (t *TextPass) Release() {
	t.releaseMesh()
	if t.BindGroup != nil {
		t.BindGroup.Release()
		t.BindGroup = nil
	}
	if t.UniformBuffer != nil {
		t.UniformBuffer.Release()
		t.UniformBuffer = nil
	}
	if t.Pipeline != nil {
		t.Pipeline.Release()
		t.Pipeline = nil
	}
}
