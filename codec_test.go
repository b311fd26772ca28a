package ve

import "testing"

func TestMarshalUnmarshalEnvironmentRoundTrip(t *testing.T) {
	env := NewEnvironment("cave")
	env.SetOption("units", "meters")
	wall := env.AddWall("front")
	wall.SetOption("driver", "gl")
	wall.View = View{
		Frame:     *NewFrame("front"),
		Width:     2.4,
		Height:    1.8,
		TracksEye: true,
	}
	win := env.AddWindow(wall)
	win.Display = ":0.0"
	win.SetGeometry("1920x1080+0+0")
	win.SetOption("vsync", "on")

	raw, err := MarshalEnvironment(env)
	if err != nil {
		t.Fatalf("MarshalEnvironment: %v", err)
	}
	got, err := UnmarshalEnvironment(raw)
	if err != nil {
		t.Fatalf("UnmarshalEnvironment: %v", err)
	}

	if got.Name != env.Name {
		t.Fatalf("want name %q, got %q", env.Name, got.Name)
	}
	if v, ok := got.Options()["units"]; !ok || v != "meters" {
		t.Fatalf("want option units=meters, got %v", got.Options())
	}
	if len(got.Walls) != 1 || len(got.Walls[0].Windows) != 1 {
		t.Fatalf("want 1 wall with 1 window, got %d walls", len(got.Walls))
	}
	gotWin := got.Walls[0].Windows[0]
	if gotWin.ID() != win.ID() {
		t.Fatalf("want window id %d preserved, got %d", win.ID(), gotWin.ID())
	}
	if gotWin.Geometry() != "1920x1080+0+0" {
		t.Fatalf("want geometry round-tripped, got %q", gotWin.Geometry())
	}
	if got.Walls[0].View.Width != 2.4 || !got.Walls[0].View.TracksEye {
		t.Fatalf("want view width/tracks_eye round-tripped, got %+v", got.Walls[0].View)
	}
}

func TestMarshalUnmarshalProfileRoundTrip(t *testing.T) {
	prof := NewUserProfile("alice")
	prof.FullName = "Alice Anderson"
	prof.HasFullName = true
	prof.EyeDistance = 0.065
	prof.Module("nav")["speed"] = "fast"

	raw, err := MarshalProfile(prof)
	if err != nil {
		t.Fatalf("MarshalProfile: %v", err)
	}
	got, err := UnmarshalProfile(raw)
	if err != nil {
		t.Fatalf("UnmarshalProfile: %v", err)
	}

	if got.Name != "alice" || !got.HasFullName || got.FullName != "Alice Anderson" {
		t.Fatalf("want name/full-name round-tripped, got %+v", got)
	}
	if got.EyeDistance != 0.065 {
		t.Fatalf("want eye distance 0.065, got %v", got.EyeDistance)
	}
	if got.Module("nav")["speed"] != "fast" {
		t.Fatalf("want module data round-tripped, got %v", got.Module("nav"))
	}
}

func TestMarshalUnmarshalLocationRoundTrip(t *testing.T) {
	origin := NewFrame("origin")
	origin.Location.X = 1.5
	eye := NewFrame("eye")
	eye.Location.Y = 2.0

	raw, err := MarshalLocation(origin, eye)
	if err != nil {
		t.Fatalf("MarshalLocation: %v", err)
	}
	gotOrigin, gotEye, err := UnmarshalLocation(raw)
	if err != nil {
		t.Fatalf("UnmarshalLocation: %v", err)
	}

	if gotOrigin.Location.X != 1.5 {
		t.Fatalf("want origin.Location.X 1.5, got %v", gotOrigin.Location.X)
	}
	if gotEye.Location.Y != 2.0 {
		t.Fatalf("want eye.Location.Y 2.0, got %v", gotEye.Location.Y)
	}
	if !gotOrigin.Forward.Eq(&origin.Forward) || !gotEye.Up.Eq(&eye.Up) {
		t.Fatalf("want forward/up preserved, got origin=%+v eye=%+v", gotOrigin, gotEye)
	}
}
