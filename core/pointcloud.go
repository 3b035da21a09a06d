package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultAngularSpeed = 0.05
	DefaultPointSize    = 0.1
)

// PointCloud is the renderable built from a ParticleBuffer. Only RotationX
// changes after construction.
type PointCloud struct {
	Buffer *ParticleBuffer

	// RotationX is the rotation about the X axis in radians.
	RotationX float64

	Size            float32
	SizeAttenuation bool

	// AlphaMap is an opaque texture handle; empty means no alpha map.
	AlphaMap string
}

func NewPointCloud(buf *ParticleBuffer) *PointCloud {
	return &PointCloud{
		Buffer:          buf,
		Size:            DefaultPointSize,
		SizeAttenuation: true,
	}
}

// Update sets the rotation from the elapsed time. It does not accumulate:
// repeated calls with the same arguments leave the same rotation.
func (p *PointCloud) Update(elapsedSeconds, angularSpeed float64) {
	p.RotationX = elapsedSeconds * angularSpeed
}

// ModelMatrix is the current X rotation; the cloud stays at the origin.
func (p *PointCloud) ModelMatrix() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(float32(p.RotationX))
}
