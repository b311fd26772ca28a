package ve

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gazed/ve/math/lin"
)

// codec.go is the byte-level Environment/Profile/Frame-pair wire format:
// the same YAML shape the envfile package reads and writes from disk, and
// what mp's ENV/PROFILE/LOCATION pushes carry over the wire. Kept in this
// package (rather than envfile) so Runtime can wire mp.Coordinator's
// OnEnv/OnProfile/OnLocation callbacks without envfile importing ve and ve
// importing envfile back.

type docEnvironment struct {
	Name    string            `yaml:"name"`
	Options map[string]string `yaml:"options,omitempty"`
	Walls   []docWall         `yaml:"walls"`
}

type docWall struct {
	Name      string            `yaml:"name"`
	Options   map[string]string `yaml:"options,omitempty"`
	Frame     docFrame          `yaml:"frame"`
	Width     float64           `yaml:"width"`
	Height    float64           `yaml:"height"`
	TracksEye bool              `yaml:"tracks_eye"`
	Windows   []docWindow       `yaml:"windows"`
}

type docFrame struct {
	Location [3]float64 `yaml:"location"`
	Forward  [3]float64 `yaml:"forward"`
	Up       [3]float64 `yaml:"up"`
}

type docWindow struct {
	ID        uint32            `yaml:"id"`
	Display   string            `yaml:"display"`
	Geometry  string            `yaml:"geometry"`
	WidthErr  float64           `yaml:"width_err"`
	HeightErr float64           `yaml:"height_err"`
	XOffset   float64           `yaml:"x_offset"`
	YOffset   float64           `yaml:"y_offset"`
	Eye       int               `yaml:"eye"`
	Node      string            `yaml:"node"`
	Process   string            `yaml:"process"`
	Thread    string            `yaml:"thread"`
	Options   map[string]string `yaml:"options,omitempty"`
}

type docProfile struct {
	Name        string                       `yaml:"name"`
	FullName    string                       `yaml:"full_name,omitempty"`
	EyeDistance float64                      `yaml:"eye_distance"`
	Modules     map[string]map[string]string `yaml:"modules,omitempty"`
}

func vec3(a [3]float64) lin.V3    { return lin.V3{X: a[0], Y: a[1], Z: a[2]} }
func unvec3(v lin.V3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// MarshalEnvironment encodes env in the wire/on-disk YAML format.
func MarshalEnvironment(env *Environment) ([]byte, error) {
	doc := &docEnvironment{Name: env.Name, Options: env.Options()}
	for _, w := range env.Walls {
		dw := docWall{
			Name:    w.Name,
			Options: w.Options(),
			Frame: docFrame{
				Location: unvec3(w.View.Frame.Location),
				Forward:  unvec3(w.View.Frame.Forward),
				Up:       unvec3(w.View.Frame.Up),
			},
			Width:     w.View.Width,
			Height:    w.View.Height,
			TracksEye: w.View.TracksEye,
		}
		for _, win := range w.Windows {
			dw.Windows = append(dw.Windows, docWindow{
				ID:        win.ID(),
				Display:   win.Display,
				Geometry:  win.Geometry(),
				WidthErr:  win.WidthErr,
				HeightErr: win.HeightErr,
				XOffset:   win.XOffset,
				YOffset:   win.YOffset,
				Eye:       int(win.Eye),
				Node:      win.Node,
				Process:   win.Process,
				Thread:    win.Thread,
				Options:   win.Options(),
			})
		}
		doc.Walls = append(doc.Walls, dw)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("ve: marshal environment: %w", err)
	}
	return out, nil
}

// UnmarshalEnvironment decodes the wire/on-disk YAML format, preserving
// window ids exactly as stored.
func UnmarshalEnvironment(raw []byte) (*Environment, error) {
	var doc docEnvironment
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("ve: unmarshal environment: %w", err)
	}
	env := NewEnvironment(doc.Name)
	for k, v := range doc.Options {
		env.SetOption(k, v)
	}
	for _, dw := range doc.Walls {
		wall := env.AddWall(dw.Name)
		for k, v := range dw.Options {
			wall.SetOption(k, v)
		}
		wall.View = View{
			Frame: Frame{
				Name:     dw.Name,
				Location: vec3(dw.Frame.Location),
				Forward:  vec3(dw.Frame.Forward),
				Up:       vec3(dw.Frame.Up),
			},
			Width:     dw.Width,
			Height:    dw.Height,
			TracksEye: dw.TracksEye,
		}
		for _, dwin := range dw.Windows {
			win := env.RestoreWindow(wall, dwin.ID)
			win.Display = dwin.Display
			win.SetGeometry(dwin.Geometry)
			win.WidthErr = dwin.WidthErr
			win.HeightErr = dwin.HeightErr
			win.XOffset = dwin.XOffset
			win.YOffset = dwin.YOffset
			win.Eye = EyeMode(dwin.Eye)
			win.Node = dwin.Node
			win.Process = dwin.Process
			win.Thread = dwin.Thread
			for k, v := range dwin.Options {
				win.SetOption(k, v)
			}
		}
	}
	return env, nil
}

// MarshalProfile encodes prof in the wire/on-disk YAML format.
func MarshalProfile(prof *UserProfile) ([]byte, error) {
	doc := docProfile{
		Name:        prof.Name,
		EyeDistance: prof.EyeDistance,
		Modules:     prof.Modules,
	}
	if prof.HasFullName {
		doc.FullName = prof.FullName
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("ve: marshal profile: %w", err)
	}
	return out, nil
}

// UnmarshalProfile decodes the wire/on-disk YAML format.
func UnmarshalProfile(raw []byte) (*UserProfile, error) {
	var doc docProfile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("ve: unmarshal profile: %w", err)
	}
	prof := NewUserProfile(doc.Name)
	prof.EyeDistance = doc.EyeDistance
	if doc.FullName != "" {
		prof.FullName = doc.FullName
		prof.HasFullName = true
	}
	for name, data := range doc.Modules {
		m := prof.Module(name)
		for k, v := range data {
			m[k] = v
		}
	}
	return prof, nil
}

// MarshalLocation encodes an origin/eye frame pair for a LOCATION push.
func MarshalLocation(origin, eye *Frame) ([]byte, error) {
	doc := struct {
		Origin docFrame `yaml:"origin"`
		Eye    docFrame `yaml:"eye"`
	}{
		Origin: docFrame{Location: unvec3(origin.Location), Forward: unvec3(origin.Forward), Up: unvec3(origin.Up)},
		Eye:    docFrame{Location: unvec3(eye.Location), Forward: unvec3(eye.Forward), Up: unvec3(eye.Up)},
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("ve: marshal location: %w", err)
	}
	return out, nil
}

// UnmarshalLocation decodes a LOCATION push back into an origin/eye frame
// pair.
func UnmarshalLocation(raw []byte) (origin, eye *Frame, err error) {
	var doc struct {
		Origin docFrame `yaml:"origin"`
		Eye    docFrame `yaml:"eye"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("ve: unmarshal location: %w", err)
	}
	origin = &Frame{Name: "origin", Location: vec3(doc.Origin.Location), Forward: vec3(doc.Origin.Forward), Up: vec3(doc.Origin.Up)}
	eye = &Frame{Name: "eye", Location: vec3(doc.Eye.Location), Forward: vec3(doc.Eye.Forward), Up: vec3(doc.Eye.Up)}
	return origin, eye, nil
}
