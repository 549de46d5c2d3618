package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// horizontalWall returns a wall along y=0 from x=0..100 whose interior is
// below it (inward normal +y, screen coordinates).
func horizontalWall(p Polarity) Wall {
	return NewWall(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 100, Y: 0}, r2.Vec{X: 0, Y: 1}, p)
}

func TestShouldBlock(t *testing.T) {
	leaving := r2.Vec{X: 0, Y: -2}  // against the inward normal
	entering := r2.Vec{X: 0, Y: 2}  // along the inward normal
	sliding := r2.Vec{X: 2, Y: 0}   // parallel to the wall
	creeping := r2.Vec{X: 0, Y: -0.05} // within the deadband

	tests := []struct {
		name     string
		polarity Polarity
		velocity r2.Vec
		want     bool
	}{
		{"solid blocks leaving", PolaritySolid, leaving, true},
		{"solid blocks entering", PolaritySolid, entering, true},
		{"solid blocks at rest", PolaritySolid, r2.Vec{}, true},
		{"permeable never blocks leaving", PolarityPermeable, leaving, false},
		{"permeable never blocks entering", PolarityPermeable, entering, false},
		{"inward blocks leaving", PolarityInward, leaving, true},
		{"inward passes entering", PolarityInward, entering, false},
		{"inward passes sliding", PolarityInward, sliding, false},
		{"inward ignores deadband creep", PolarityInward, creeping, false},
		{"outward blocks entering", PolarityOutward, entering, true},
		{"outward passes leaving", PolarityOutward, leaving, false},
		{"outward passes sliding", PolarityOutward, sliding, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := horizontalWall(tc.polarity)
			if got := w.ShouldBlock(tc.velocity); got != tc.want {
				t.Errorf("ShouldBlock(%v) = %v, want %v", tc.velocity, got, tc.want)
			}
		})
	}
}

func TestEnforceWallContactsProjectsToMargin(t *testing.T) {
	walls := []Wall{horizontalWall(PolaritySolid)}
	margin := 15.0

	// Agent inside the container, drifting up into the wall, ends up
	// 5 units away after integration.
	prePos := r2.Vec{X: 50, Y: 12}
	pos := r2.Vec{X: 50, Y: 5}
	vel := r2.Vec{X: 1, Y: -7}

	newPos, newVel, blocked := EnforceWallContacts(prePos, pos, vel, walls, margin)

	if blocked != 1 {
		t.Fatalf("blocked = %d, want 1", blocked)
	}
	if math.Abs(newPos.Y-margin) > 1e-9 {
		t.Errorf("pos.Y = %v, want margin %v", newPos.Y, margin)
	}
	if newVel.Y != 0 {
		t.Errorf("inward velocity component not removed: %v", newVel)
	}
	if newVel.X != 1 {
		t.Errorf("tangential velocity altered: %v", newVel)
	}
}

func TestEnforceWallContactsStopsTunneling(t *testing.T) {
	walls := []Wall{horizontalWall(PolaritySolid)}

	// The agent crossed the wall entirely in one step.
	prePos := r2.Vec{X: 50, Y: 8}
	pos := r2.Vec{X: 50, Y: -20}
	vel := r2.Vec{X: 0, Y: -28}

	newPos, newVel, blocked := EnforceWallContacts(prePos, pos, vel, walls, 15)

	if blocked != 1 {
		t.Fatalf("blocked = %d, want 1", blocked)
	}
	if newPos.Y <= 0 {
		t.Errorf("agent remained on the far side: pos = %v", newPos)
	}
	if newVel.Y < 0 {
		t.Errorf("outbound velocity survived: %v", newVel)
	}
}

func TestEnforceWallContactsPermeableNeverCorrects(t *testing.T) {
	walls := []Wall{horizontalWall(PolarityPermeable)}

	pos := r2.Vec{X: 50, Y: 2}
	vel := r2.Vec{X: 0, Y: -40} // fast approach

	newPos, newVel, blocked := EnforceWallContacts(r2.Vec{X: 50, Y: 10}, pos, vel, walls, 15)

	if blocked != 0 {
		t.Errorf("permeable wall blocked: %d", blocked)
	}
	if newPos != pos || newVel != vel {
		t.Errorf("permeable wall altered state: pos %v vel %v", newPos, newVel)
	}
}

func TestInwardWallOneWay(t *testing.T) {
	walls := []Wall{horizontalWall(PolarityInward)}
	margin := 15.0

	// Approaching from outside (above the wall, moving along the inward
	// normal): never blocked.
	outsidePre := r2.Vec{X: 50, Y: -20}
	outsidePos := r2.Vec{X: 50, Y: -10}
	entering := r2.Vec{X: 0, Y: 10}
	pos, vel, blocked := EnforceWallContacts(outsidePre, outsidePos, entering, walls, margin)
	if blocked != 0 {
		t.Fatalf("entering agent was blocked")
	}
	if pos != outsidePos || vel != entering {
		t.Errorf("entering agent was corrected: pos %v vel %v", pos, vel)
	}

	// Same agent once inside, trying to leave: blocked, outward component
	// zeroed.
	insidePre := r2.Vec{X: 50, Y: 12}
	insidePos := r2.Vec{X: 50, Y: 4}
	leaving := r2.Vec{X: 0, Y: -8}
	pos, vel, blocked = EnforceWallContacts(insidePre, insidePos, leaving, walls, margin)
	if blocked != 1 {
		t.Fatalf("leaving agent was not blocked")
	}
	if math.Abs(pos.Y-margin) > 1e-9 {
		t.Errorf("pos.Y = %v, want %v", pos.Y, margin)
	}
	if vel.Y != 0 {
		t.Errorf("outward component survived: %v", vel)
	}
}

func TestPolarityString(t *testing.T) {
	names := map[Polarity]string{
		PolaritySolid:     "solid",
		PolarityPermeable: "permeable",
		PolarityInward:    "inward",
		PolarityOutward:   "outward",
	}
	for p, want := range names {
		if got := p.String(); got != want {
			t.Errorf("Polarity(%d).String() = %q, want %q", p, got, want)
		}
	}
}
