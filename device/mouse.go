package device

// MouseFeed is the handle a windowing collaborator uses to report raw mouse
// transitions into the mouse pseudo-device: button presses, motion, and
// scroll, each translated into its own typed Event.
type MouseFeed struct {
	buttons chan mouseButton
	moves   chan mouseMove
	scrolls chan float64
	stop    chan struct{}
}

type mouseButton struct {
	code int
	down bool
}

type mouseMove struct {
	x, y float64
}

// ButtonDown reports a mouse button press.
func (f *MouseFeed) ButtonDown(code int) { f.buttons <- mouseButton{code: code, down: true} }

// ButtonUp reports a mouse button release.
func (f *MouseFeed) ButtonUp(code int) { f.buttons <- mouseButton{code: code, down: false} }

// Move reports an absolute pointer position.
func (f *MouseFeed) Move(x, y float64) { f.moves <- mouseMove{x: x, y: y} }

// Scroll reports a scroll wheel delta.
func (f *MouseFeed) Scroll(delta float64) { f.scrolls <- delta }

// NewMouseDriver returns the pseudo-device Driver definition for a mouse.
// Like the keyboard driver, Instantiate starts a translation goroutine fed
// by the returned Feed and Destroy stops it.
func NewMouseDriver() *Driver {
	return &Driver{
		Name: "mouse",
		Model: Model{Elements: []ElementSpec{
			{Name: "button", Kind: Keyboard},
			{Name: "position", Kind: Vector},
			{Name: "scroll", Kind: Valuator},
		}},
		Instantiate: func(q *Queue, params map[string]string) (interface{}, error) {
			f := &MouseFeed{
				buttons: make(chan mouseButton),
				moves:   make(chan mouseMove),
				scrolls: make(chan float64),
				stop:    make(chan struct{}),
			}
			go runMouseFeed(f, q)
			return f, nil
		},
		Destroy: func(state interface{}) {
			f := state.(*MouseFeed)
			close(f.stop)
		},
	}
}

func runMouseFeed(f *MouseFeed, q *Queue) {
	for {
		select {
		case b := <-f.buttons:
			state := 0
			if b.down {
				state = 1
			}
			q.Insert(&Event{
				Device:  "mouse",
				Element: "button",
				Content: KeyboardContent{Keysym: b.code, State: state},
			})
		case m := <-f.moves:
			q.Insert(&Event{
				Device:  "mouse",
				Element: "position",
				Content: VectorContent{Elements: []Triple{{Value: m.x}, {Value: m.y}}},
			})
		case d := <-f.scrolls:
			q.Insert(&Event{
				Device:  "mouse",
				Element: "scroll",
				Content: ValuatorContent{Value: d},
			})
		case <-f.stop:
			return
		}
	}
}
