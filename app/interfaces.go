package app

import (
	"github.com/gekko3d/particles/core"
)

// Renderer turns a Scene into pixels. gpu.Renderer is the WebGPU
// implementation.
type Renderer interface {
	Init(scene *core.Scene) error
	Resize(width, height int, pixelRatio float64)
	Render(scene *core.Scene) error
	Dispose()
}

// Host is the windowing side of the loop. PollEvents may deliver resize and
// input callbacks synchronously.
type Host interface {
	PollEvents()
	ShouldClose() bool
}

// Controls is stepped once per frame; Update reports whether the camera
// moved.
type Controls interface {
	Update() bool
}
