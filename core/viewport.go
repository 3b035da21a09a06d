package core

import "math"

const MaxPixelRatio = 2.0

// Viewport is the logical size of the drawing surface plus the device pixel
// ratio reported by the host.
type Viewport struct {
	Width      int
	Height     int
	PixelRatio float64
}

func NewViewport(width, height int, pixelRatio float64) Viewport {
	return Viewport{Width: width, Height: height, PixelRatio: pixelRatio}
}

// Aspect is width/height, 1 when the height is zero.
func (v Viewport) Aspect() float32 {
	if v.Height <= 0 || v.Width <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// ClampedPixelRatio caps the ratio at limit, which itself never exceeds
// MaxPixelRatio (limit <= 0 means MaxPixelRatio). Non-positive or NaN ratios
// count as 1.
func (v Viewport) ClampedPixelRatio(limit float64) float64 {
	if !(limit > 0) {
		limit = MaxPixelRatio
	}
	limit = math.Min(limit, MaxPixelRatio)
	r := v.PixelRatio
	if !(r > 0) {
		r = 1
	}
	return math.Min(r, limit)
}

// SurfaceSize is the physical pixel size of the output surface.
func (v Viewport) SurfaceSize(limit float64) (int, int) {
	r := v.ClampedPixelRatio(limit)
	return int(math.Round(float64(v.Width) * r)), int(math.Round(float64(v.Height) * r))
}
