// Package render documents the contract between the toolkit's frame-tick
// loop and whatever graphics collaborator actually draws a Window: the
// core never touches a graphics API, it only calls through this
// interface once per window per render tick.
package render

// Driver is implemented by the external rendering collaborator (OpenGL,
// Vulkan, or a test double). The core only depends on this surface; scene
// graphs, shaders, and GPU resource management are entirely out of scope
// here and live in the collaborator's own package.
type Driver interface {
	// Init is called once, before the first RenderWindow call.
	Init() error

	// RenderWindow draws one frame for the given window. win is the
	// *ve.Window that owns this surface; the driver is expected to type
	// assert win.RenderData for its own cached per-window resources.
	RenderWindow(win Window) error

	// Swap presents the most recently rendered frame for win.
	Swap(win Window) error

	// Dispose releases any resources the driver is holding for win, e.g.
	// on window close.
	Dispose(win Window)
}

// Window is the subset of *ve.Window's surface the render driver needs,
// kept as an interface here so this package never imports the root ve
// package (which would create an import cycle -- ve.Eng depends on
// render.Driver, not the other way around).
type Window interface {
	ID() uint32
	Geometry() string
	Viewport() (x, y, w, h float64, ok bool)
	RenderData() interface{}
	SetRenderData(interface{})
}
