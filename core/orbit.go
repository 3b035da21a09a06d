package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultDampingFactor = 0.05

	orbitEpsilon = 1e-6
	zoomBase     = 0.95
)

// OrbitControls moves a Camera on a sphere around its target. Input methods
// only record deltas; Update applies them, so it must run once per frame.
type OrbitControls struct {
	Camera *Camera

	EnableDamping bool
	DampingFactor float64
	RotateSpeed   float64
	ZoomSpeed     float64

	MinDistance float64
	MaxDistance float64

	// Polar angle limits in radians, measured from +Y.
	MinPolarAngle float64
	MaxPolarAngle float64

	deltaTheta float64
	deltaPhi   float64
	scale      float64
}

func NewOrbitControls(cam *Camera) *OrbitControls {
	return &OrbitControls{
		Camera:        cam,
		EnableDamping: true,
		DampingFactor: DefaultDampingFactor,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		MinDistance:   0,
		MaxDistance:   math.Inf(1),
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		scale:         1,
	}
}

// Rotate records a pointer drag of (dx, dy) pixels on a surface viewHeight
// pixels tall. A drag across the full height turns the camera once around.
func (o *OrbitControls) Rotate(dx, dy float64, viewHeight int) {
	if viewHeight <= 0 {
		return
	}
	h := float64(viewHeight)
	o.deltaTheta -= 2 * math.Pi * dx / h * o.RotateSpeed
	o.deltaPhi -= 2 * math.Pi * dy / h * o.RotateSpeed
}

// Zoom records scroll steps; positive steps move the camera closer.
func (o *OrbitControls) Zoom(steps float64) {
	o.scale *= math.Pow(zoomBase, o.ZoomSpeed*steps)
}

// Pending reports whether recorded input still has to be applied.
func (o *OrbitControls) Pending() bool {
	return math.Abs(o.deltaTheta) > orbitEpsilon ||
		math.Abs(o.deltaPhi) > orbitEpsilon ||
		math.Abs(o.scale-1) > orbitEpsilon
}

// Update applies pending input to the camera and decays it when damping is
// enabled. It returns true when the camera moved.
func (o *OrbitControls) Update() bool {
	cam := o.Camera
	if cam == nil {
		return false
	}

	offset := cam.Position.Sub(cam.Target)
	radius, theta, phi := toSpherical(offset)

	factor := 1.0
	if o.EnableDamping {
		factor = o.DampingFactor
	}
	theta += o.deltaTheta * factor
	phi += o.deltaPhi * factor

	minPhi := math.Max(o.MinPolarAngle, orbitEpsilon)
	maxPhi := math.Min(o.MaxPolarAngle, math.Pi-orbitEpsilon)
	phi = math.Max(minPhi, math.Min(maxPhi, phi))

	radius *= o.scale
	radius = math.Max(o.MinDistance, math.Min(o.MaxDistance, radius))

	newPos := cam.Target.Add(fromSpherical(radius, theta, phi))
	moved := newPos.Sub(cam.Position).Len() > orbitEpsilon
	cam.Position = newPos

	if o.EnableDamping {
		o.deltaTheta *= 1 - o.DampingFactor
		o.deltaPhi *= 1 - o.DampingFactor
	} else {
		o.deltaTheta = 0
		o.deltaPhi = 0
	}
	o.scale = 1

	return moved
}

func toSpherical(v mgl32.Vec3) (radius, theta, phi float64) {
	x, y, z := float64(v.X()), float64(v.Y()), float64(v.Z())
	radius = math.Sqrt(x*x + y*y + z*z)
	if radius == 0 {
		return 0, 0, math.Pi / 2
	}
	theta = math.Atan2(x, z)
	phi = math.Acos(math.Max(-1, math.Min(1, y/radius)))
	return
}

func fromSpherical(radius, theta, phi float64) mgl32.Vec3 {
	sinPhi := math.Sin(phi)
	return mgl32.Vec3{
		float32(radius * sinPhi * math.Sin(theta)),
		float32(radius * math.Cos(phi)),
		float32(radius * sinPhi * math.Cos(theta)),
	}
}
