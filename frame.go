// Package ve implements the Virtual Environment toolkit: the environment
// and profile data model, the application entry-point contract, and the
// frame-tick loop that drives the multi-process coordinator and the
// device-event pipeline each render tick.
package ve

import "github.com/gazed/ve/math/lin"

// Frame is a named coordinate frame: a location plus a forward direction
// and an up direction. Forward and up are not required to be unit length
// or mutually orthogonal; the rendering collaborator orthonormalizes. The
// one invariant this type does not enforce at construction -- forward and
// up must not be parallel -- is documented, not checked, matching the
// collaborator-owned responsibility described for this data.
type Frame struct {
	Name     string
	Location lin.V3
	Forward  lin.V3
	Up       lin.V3
}

// NewFrame returns a Frame with the given name and a sensible default
// orientation (looking down -Z, up +Y) at the origin.
func NewFrame(name string) *Frame {
	return &Frame{
		Name:     name,
		Location: lin.V3{X: 0, Y: 0, Z: 0},
		Forward:  lin.V3{X: 0, Y: 0, Z: -1},
		Up:       lin.V3{X: 0, Y: 1, Z: 0},
	}
}

// Eq reports whether two frames have the same name, location, forward, and
// up, by exact float comparison.
func (f *Frame) Eq(o *Frame) bool {
	return f.Name == o.Name && f.Location.Eq(&o.Location) && f.Forward.Eq(&o.Forward) && f.Up.Eq(&o.Up)
}
