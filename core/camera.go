package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a Y-up perspective camera looking at Target.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FovDegrees float32
	Aspect     float32
	Near       float32
	Far        float32

	projection mgl32.Mat4
}

func NewCamera(fovDegrees, aspect, near, far float32) *Camera {
	c := &Camera{
		Position:   mgl32.Vec3{0, 0, 3},
		Target:     mgl32.Vec3{0, 0, 0},
		Up:         mgl32.Vec3{0, 1, 0},
		FovDegrees: fovDegrees,
		Aspect:     aspect,
		Near:       near,
		Far:        far,
	}
	c.UpdateProjection()
	return c
}

// SetAspect stores the aspect ratio and recomputes the projection.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		aspect = 1
	}
	c.Aspect = aspect
	c.UpdateProjection()
}

func (c *Camera) UpdateProjection() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FovDegrees), c.Aspect, c.Near, c.Far)
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.ViewMatrix())
}
