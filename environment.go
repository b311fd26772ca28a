package ve

import "sync"

// OptionList is a name->value string map attached to an Environment, Wall,
// Window, or audio channel. Lookups resolve innermost-wins: a Window's own
// options beat its Wall's, which beat the Environment's.
type OptionList struct {
	values map[string]string
}

// NewOptionList returns an empty option list.
func NewOptionList() *OptionList {
	return &OptionList{values: map[string]string{}}
}

// Set stores a name/value pair, overwriting any existing value for name.
func (o *OptionList) Set(name, value string) {
	if o.values == nil {
		o.values = map[string]string{}
	}
	o.values[name] = value
}

// Get returns the value for name and whether it was present in this list
// specifically (callers doing innermost-wins resolution chain Get calls
// themselves, see Environment.Option).
func (o *OptionList) Get(name string) (string, bool) {
	v, ok := o.values[name]
	return v, ok
}

// All returns a copy of every name/value pair in this list, for
// serialization.
func (o *OptionList) All() map[string]string {
	out := make(map[string]string, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// View is a wall's planar viewport: a frame, a physical width and height,
// and a flag selecting world-anchored vs eye-anchored geometry.
type View struct {
	Frame        Frame
	Width        float64
	Height       float64
	TracksEye    bool // false: anchored to world origin. true: moves with the eye.
}

// Window is one physical output of a Wall. It satisfies render.Window so
// the render driver contract can depend on it without this package
// importing the render package.
type Window struct {
	id uint32

	Display   string
	geometry  string
	WidthErr  float64
	HeightErr float64
	XOffset   float64
	YOffset   float64

	// Distortion is a 2-D affine stored as the top-left 3x3 of a 4x4
	// matrix, matching the calibration data's on-disk shape.
	Distortion [4][4]float64

	Eye EyeMode

	hasViewport bool
	viewport    Rect

	Node    string
	Process string
	Thread  string

	// slaveID is cached the first time the render collaborator resolves
	// this window's slave triple through the coordinator.
	slaveID    uint32
	hasSlaveID bool

	// renderData and AppData are opaque pointers reserved for the render
	// collaborator and the application respectively; this package never
	// reads or writes them.
	renderData interface{}
	AppData    interface{}

	opts OptionList
}

// ID returns the window's session-unique id.
func (w *Window) ID() uint32 { return w.id }

// Geometry returns the window's platform geometry string.
func (w *Window) Geometry() string { return w.geometry }

// SetGeometry sets the window's platform geometry string.
func (w *Window) SetGeometry(g string) { w.geometry = g }

// Viewport returns the window's viewport sub-rectangle, if one is set.
func (w *Window) Viewport() (x, y, wd, ht float64, ok bool) {
	if !w.hasViewport {
		return 0, 0, 0, 0, false
	}
	return w.viewport.X, w.viewport.Y, w.viewport.W, w.viewport.H, true
}

// SetViewport sets the window's viewport sub-rectangle.
func (w *Window) SetViewport(r Rect) { w.viewport = r; w.hasViewport = true }

// RenderData returns the opaque pointer reserved for the render
// collaborator.
func (w *Window) RenderData() interface{} { return w.renderData }

// SetRenderData sets the opaque pointer reserved for the render
// collaborator.
func (w *Window) SetRenderData(v interface{}) { w.renderData = v }

// EyeMode selects which eye(s) a window renders.
type EyeMode int

const (
	EyeMono EyeMode = iota
	EyeLeft
	EyeRight
	EyeStereo
)

// Rect is a viewport sub-rectangle in normalized window coordinates.
type Rect struct {
	X, Y, W, H float64
}

func newWindow(id uint32) *Window {
	return &Window{id: id, Node: "auto", Process: "auto", Thread: "auto", opts: *NewOptionList()}
}

// SetOption sets a window-local option, which shadows the owning Wall's and
// Environment's option of the same name.
func (w *Window) SetOption(name, value string) { w.opts.Set(name, value) }

// Options returns a copy of this window's own option pairs, for
// serialization.
func (w *Window) Options() map[string]string { return w.opts.All() }

// SlaveTriple returns the window's (node, process, thread) slave
// assignment. Any field left unset at construction defaults to "auto".
func (w *Window) SlaveTriple() (node, process, thread string) {
	return w.Node, w.Process, w.Thread
}

// CacheSlaveID records the slave id resolved for this window by the MP
// coordinator at render initialization, so repeated lookups are free.
func (w *Window) CacheSlaveID(id uint32) { w.slaveID = id; w.hasSlaveID = true }

// SlaveID returns the cached slave id and whether one has been resolved.
func (w *Window) SlaveID() (uint32, bool) { return w.slaveID, w.hasSlaveID }

// Wall is a planar viewport with physical geometry and an ordered set of
// Windows rendering it.
type Wall struct {
	Name    string
	View    View
	Windows []*Window

	opts OptionList
}

// NewWall returns a named, empty Wall.
func NewWall(name string) *Wall {
	return &Wall{Name: name, opts: *NewOptionList()}
}

// addWindow appends and returns a new Window with the given id. The id
// comes from Environment.AddWindow (freshly allocated) or
// Environment.RestoreWindow (preserved from a serialized tree).
func (w *Wall) addWindow(id uint32) *Window {
	win := newWindow(id)
	w.Windows = append(w.Windows, win)
	return win
}

// SetOption sets a wall-local option, which shadows the Environment's option
// of the same name but is itself shadowed by any owning Window's option.
func (w *Wall) SetOption(name, value string) { w.opts.Set(name, value) }

// Options returns a copy of this wall's own option pairs, for
// serialization.
func (w *Wall) Options() map[string]string { return w.opts.All() }

// Environment is the ordered set of Walls that make up a virtual
// environment description, plus environment-wide options.
type Environment struct {
	Name  string
	Walls []*Wall

	opts OptionList

	mu     sync.Mutex
	nextID uint32
}

// NewEnvironment returns a named, empty Environment with its window-id
// counter starting at zero.
func NewEnvironment(name string) *Environment {
	return &Environment{Name: name, opts: *NewOptionList()}
}

// AddWall appends a new, empty Wall to the environment and returns it.
func (e *Environment) AddWall(name string) *Wall {
	w := NewWall(name)
	e.Walls = append(e.Walls, w)
	return w
}

// AddWindow appends a new Window to wall, allocating its id from the
// environment's single monotonically increasing counter so that ids stay
// unique for the whole session regardless of which wall they belong to.
func (e *Environment) AddWindow(wall *Wall) *Window {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.mu.Unlock()
	return wall.addWindow(id)
}

// RestoreWindow appends a Window to wall with an explicit id, for use by
// deserialization so that a reloaded environment's window ids match
// exactly what was written -- required to keep (node,process) slave
// assignment deterministic across master and slaves. It advances the
// environment's id counter past id so subsequently added windows never
// collide with a restored one.
func (e *Environment) RestoreWindow(wall *Wall, id uint32) *Window {
	e.mu.Lock()
	if id >= e.nextID {
		e.nextID = id + 1
	}
	e.mu.Unlock()
	return wall.addWindow(id)
}

// SetOption sets an environment-wide option, the outermost and
// lowest-priority layer of the Window > Wall > Environment resolution
// order.
func (e *Environment) SetOption(name, value string) { e.opts.Set(name, value) }

// Options returns a copy of this environment's own option pairs, for
// serialization.
func (e *Environment) Options() map[string]string { return e.opts.All() }

// Option resolves name with innermost-wins precedence: win's own option,
// then wall's, then the environment's. wall may be nil if win is not known
// to belong to one, in which case only win and the environment are
// consulted.
func (e *Environment) Option(wall *Wall, win *Window, name string) (string, bool) {
	if win != nil {
		if v, ok := win.opts.Get(name); ok {
			return v, true
		}
	}
	if wall != nil {
		if v, ok := wall.opts.Get(name); ok {
			return v, true
		}
	}
	return e.opts.Get(name)
}

// WallByName returns the first wall with the given name, or nil.
func (e *Environment) WallByName(name string) *Wall {
	for _, w := range e.Walls {
		if w.Name == name {
			return w
		}
	}
	return nil
}

// Windows returns every window in the environment across all walls, in
// wall order then within-wall order.
func (e *Environment) Windows() []*Window {
	var out []*Window
	for _, w := range e.Walls {
		out = append(out, w.Windows...)
	}
	return out
}

// UserProfile holds per-user rendering parameters: identity, stereo
// eye-distance, and an open-ended set of named module data blocks.
type UserProfile struct {
	Name        string
	FullName    string
	HasFullName bool
	EyeDistance float64

	// Modules maps a collaborator name (e.g. "audio", "physics") to its
	// own name->value data, opaque to this package.
	Modules map[string]map[string]string
}

// NewUserProfile returns a profile for name with an empty module set.
func NewUserProfile(name string) *UserProfile {
	return &UserProfile{Name: name, Modules: map[string]map[string]string{}}
}

// Module returns the named module's data map, creating it if absent.
func (p *UserProfile) Module(name string) map[string]string {
	m, ok := p.Modules[name]
	if !ok {
		m = map[string]string{}
		p.Modules[name] = m
	}
	return m
}
