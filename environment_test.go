package ve

import "testing"

func TestWindowIDsMonotonicAcrossWalls(t *testing.T) {
	env := NewEnvironment("cave")
	w1 := env.AddWall("front")
	w2 := env.AddWall("left")

	a := env.AddWindow(w1)
	b := env.AddWindow(w2)
	c := env.AddWindow(w1)

	if a.ID() != 0 || b.ID() != 1 || c.ID() != 2 {
		t.Fatalf("want ids 0,1,2 got %d,%d,%d", a.ID(), b.ID(), c.ID())
	}
}

func TestOptionResolutionInnermostWins(t *testing.T) {
	env := NewEnvironment("cave")
	env.SetOption("fullscreen", "env")
	wall := env.AddWall("front")
	wall.SetOption("fullscreen", "wall")
	win := env.AddWindow(wall)

	v, ok := env.Option(wall, win, "fullscreen")
	if !ok || v != "wall" {
		t.Fatalf("want wall value to win over env, got %q,%v", v, ok)
	}

	win.SetOption("fullscreen", "window")
	v, ok = env.Option(wall, win, "fullscreen")
	if !ok || v != "window" {
		t.Fatalf("want window value to win over wall and env, got %q,%v", v, ok)
	}
}

func TestOptionResolutionFallsBackToEnvironment(t *testing.T) {
	env := NewEnvironment("cave")
	env.SetOption("debug", "env-only")
	wall := env.AddWall("front")
	win := env.AddWindow(wall)

	v, ok := env.Option(wall, win, "debug")
	if !ok || v != "env-only" {
		t.Fatalf("want fallback to environment option, got %q,%v", v, ok)
	}
}

func TestWindowDefaultSlaveTripleIsAuto(t *testing.T) {
	env := NewEnvironment("cave")
	wall := env.AddWall("front")
	win := env.AddWindow(wall)

	node, process, thread := win.SlaveTriple()
	if node != "auto" || process != "auto" || thread != "auto" {
		t.Fatalf("want all-auto default triple, got %q,%q,%q", node, process, thread)
	}
}

func TestRestoreWindowAdvancesCounterPastRestoredID(t *testing.T) {
	env := NewEnvironment("cave")
	wall := env.AddWall("front")
	env.RestoreWindow(wall, 41)
	next := env.AddWindow(wall)
	if next.ID() != 42 {
		t.Fatalf("want next allocated id 42 after restoring 41, got %d", next.ID())
	}
}

func TestUserProfileModuleCreatesOnFirstAccess(t *testing.T) {
	p := NewUserProfile("alice")
	m := p.Module("audio")
	m["volume"] = "0.8"
	if p.Modules["audio"]["volume"] != "0.8" {
		t.Fatalf("module data not stored")
	}
}

func TestFrameEq(t *testing.T) {
	a := NewFrame("origin")
	b := NewFrame("origin")
	if !a.Eq(b) {
		t.Fatalf("two default frames with the same name should be equal")
	}
	b.Location.X = 1
	if a.Eq(b) {
		t.Fatalf("frames with different locations should not be equal")
	}
}
