package core

// Scene is everything one frame draws.
type Scene struct {
	Camera   *Camera
	Points   *PointCloud
	Text     *TextMesh // nil when no font could be loaded
	Overlay  *Overlay  // nil outside debug mode
	Viewport Viewport
}
