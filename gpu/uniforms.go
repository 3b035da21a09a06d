package gpu

import (
	"github.com/gekko3d/particles/core"
	"github.com/go-gl/mathgl/mgl32"
)

// PointsUniforms matches Uniforms in points.wgsl (224 bytes).
type PointsUniforms struct {
	Proj     mgl32.Mat4
	View     mgl32.Mat4
	Model    mgl32.Mat4
	Params   [4]float32 // x: size, y: attenuation flag
	Viewport [4]float32 // xy: surface size in pixels
}

// TextUniforms matches Uniforms in text.wgsl (192 bytes).
type TextUniforms struct {
	ViewProj mgl32.Mat4
	View     mgl32.Mat4
	Model    mgl32.Mat4
}

// OverlayUniforms matches Uniforms in overlay.wgsl (32 bytes).
type OverlayUniforms struct {
	Viewport [4]float32 // xy: logical size in pixels
	Color    [4]float32
}

// depthRemap maps OpenGL clip depth [-w, w] onto the WebGPU range [0, w].
var depthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func NewPointsUniforms(cam *core.Camera, cloud *core.PointCloud, surfaceW, surfaceH int) PointsUniforms {
	u := PointsUniforms{
		Proj:     depthRemap.Mul4(cam.ProjectionMatrix()),
		View:     cam.ViewMatrix(),
		Model:    cloud.ModelMatrix(),
		Params:   [4]float32{cloud.Size, 0, 0, 0},
		Viewport: [4]float32{float32(surfaceW), float32(surfaceH), 0, 0},
	}
	if cloud.SizeAttenuation {
		u.Params[1] = 1
	}
	return u
}

// NewTextUniforms places the mesh at the origin; it never moves.
func NewTextUniforms(cam *core.Camera) TextUniforms {
	return TextUniforms{
		ViewProj: depthRemap.Mul4(cam.ViewProjection()),
		View:     cam.ViewMatrix(),
		Model:    mgl32.Ident4(),
	}
}

func NewOverlayUniforms(overlay *core.Overlay, vp core.Viewport) OverlayUniforms {
	return OverlayUniforms{
		Viewport: [4]float32{float32(max(vp.Width, 1)), float32(max(vp.Height, 1)), 0, 0},
		Color:    overlay.Color,
	}
}
