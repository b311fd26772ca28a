package device

// Keyboard and mouse are pseudo-devices: nothing here talks to the OS
// directly. A windowing collaborator owns the real event source and feeds
// raw key/button codes in through the Feed returned by Instantiate; this
// file only owns the goroutine that turns those codes into typed Events on
// the queue. The concurrency shape -- a goroutine draining an events
// channel, woken also by a stop channel -- mirrors the teacher's
// processEvents select loop, translated to push onto a device.Queue instead
// of populating a Pressed struct.

// KeyboardFeed is the handle a windowing collaborator uses to report raw
// key transitions into the keyboard pseudo-device.
type KeyboardFeed struct {
	events chan keyTransition
	stop   chan struct{}
}

type keyTransition struct {
	keysym int
	down   bool
}

// KeyDown reports a key press. Non-blocking for the caller only in the
// sense that the receiving goroutine is always ready; it may still block a
// caller briefly if a transition is already in flight.
func (f *KeyboardFeed) KeyDown(keysym int) { f.events <- keyTransition{keysym: keysym, down: true} }

// KeyUp reports a key release.
func (f *KeyboardFeed) KeyUp(keysym int) { f.events <- keyTransition{keysym: keysym, down: false} }

// NewKeyboardDriver returns the pseudo-device Driver definition for a
// keyboard. Instantiate starts the translation goroutine against the given
// queue and returns its Feed as state; Destroy stops the goroutine.
func NewKeyboardDriver() *Driver {
	return &Driver{
		Name: "keyboard",
		Model: Model{Elements: []ElementSpec{
			{Name: "key", Kind: Keyboard},
		}},
		Instantiate: func(q *Queue, params map[string]string) (interface{}, error) {
			f := &KeyboardFeed{
				events: make(chan keyTransition),
				stop:   make(chan struct{}),
			}
			go runKeyboardFeed(f, q)
			return f, nil
		},
		Destroy: func(state interface{}) {
			f := state.(*KeyboardFeed)
			close(f.stop)
		},
	}
}

func runKeyboardFeed(f *KeyboardFeed, q *Queue) {
	for {
		select {
		case t := <-f.events:
			state := 0
			if t.down {
				state = 1
			}
			q.Insert(&Event{
				Device:  "keyboard",
				Element: "key",
				Content: KeyboardContent{Keysym: t.keysym, State: state},
			})
		case <-f.stop:
			return
		}
	}
}
