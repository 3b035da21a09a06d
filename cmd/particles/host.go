package main

import (
	"github.com/gekko3d/particles/app"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// GLFWHost adapts a GLFW window to app.Host and routes its callbacks into
// an App. It must be used from the thread that created the window.
type GLFWHost struct {
	Window *glfw.Window

	dragging     bool
	lastX, lastY float64
}

func NewGLFWHost(window *glfw.Window) *GLFWHost {
	return &GLFWHost{Window: window}
}

func (h *GLFWHost) PollEvents() {
	glfw.PollEvents()
}

func (h *GLFWHost) ShouldClose() bool {
	return h.Window.ShouldClose()
}

// Size is the logical window size and the content scale reported by the OS.
func (h *GLFWHost) Size() (width, height int, pixelRatio float64) {
	width, height = h.Window.GetSize()
	sx, _ := h.Window.GetContentScale()
	return width, height, float64(sx)
}

// Bind installs resize, content-scale and input callbacks that drive a.
func (h *GLFWHost) Bind(a *app.App) {
	h.Window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		a.Resize(width, height)
	})
	h.Window.SetContentScaleCallback(func(w *glfw.Window, x, y float32) {
		a.SetPixelRatio(float64(x))
	})

	h.Window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		h.dragging = action == glfw.Press
		if h.dragging {
			h.lastX, h.lastY = w.GetCursorPos()
		}
	})
	h.Window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !h.dragging {
			return
		}
		a.Rotate(xpos-h.lastX, ypos-h.lastY)
		h.lastX, h.lastY = xpos, ypos
	})
	h.Window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		a.Zoom(yoff)
	})

	h.Window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
}
