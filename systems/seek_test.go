package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/components"
)

func TestDirectSeekPullsTowardAttractor(t *testing.T) {
	p := testForceParams()
	b := &BlobSnapshot{
		Pos:    r2.Vec{X: 0, Y: 0},
		Target: targetAt(100, 0, 10),
	}

	force, ok := DirectSeek{}.Seek(b, 0, p)
	if !ok {
		t.Fatal("expected a seek force outside the target bounds")
	}
	if math.Abs(r2.Norm(force)-p.SeekStrength) > 1e-9 {
		t.Errorf("seek magnitude %.6f, want %.6f", r2.Norm(force), p.SeekStrength)
	}
	if force.X <= 0 || math.Abs(force.Y) > 1e-9 {
		t.Errorf("seek direction %v, want +x", force)
	}
}

func TestDirectSeekStopsInsideBounds(t *testing.T) {
	p := testForceParams()
	b := &BlobSnapshot{
		Pos:    r2.Vec{X: 100, Y: 0},
		Target: targetAt(100, 0, 10),
	}

	if _, ok := (DirectSeek{}).Seek(b, 0, p); ok {
		t.Error("no seek force should apply inside the target bounds")
	}
}

func TestDirectSeekInactiveTarget(t *testing.T) {
	p := testForceParams()
	b := &BlobSnapshot{Pos: r2.Vec{X: 0, Y: 0}}

	if _, ok := (DirectSeek{}).Seek(b, 0, p); ok {
		t.Error("no seek force should apply without an active target")
	}
}

func TestDirectSeekDirectionalTarget(t *testing.T) {
	p := testForceParams()
	b := &BlobSnapshot{
		Pos: r2.Vec{X: 0, Y: 0},
		Target: components.Target{
			Active:      true,
			Bounds:      targetAt(100, 0, 10).Bounds,
			Directional: true,
			Direction:   r2.Vec{X: 0, Y: 3},
		},
	}

	force, ok := DirectSeek{}.Seek(b, 0, p)
	if !ok {
		t.Fatal("expected a directional seek force")
	}
	if math.Abs(force.X) > 1e-9 || force.Y <= 0 {
		t.Errorf("directional seek %v, want +y", force)
	}
}

func TestArcSeekWaitsForLaunchTick(t *testing.T) {
	p := testForceParams()
	b := &BlobSnapshot{
		Pos:        r2.Vec{X: 0, Y: 0},
		Target:     targetAt(100, 0, 10),
		LaunchTick: 50,
		ArcSign:    1,
	}
	arc := ArcSeek{Lift: 0.8, Falloff: 200}

	if _, ok := arc.Seek(b, 49, p); ok {
		t.Error("no seek force should apply before the launch tick")
	}
	if _, ok := arc.Seek(b, 50, p); !ok {
		t.Error("seek force should apply at the launch tick")
	}
}

func TestArcSeekBowsAndStraightens(t *testing.T) {
	p := testForceParams()
	arc := ArcSeek{Lift: 0.8, Falloff: 200}

	far := &BlobSnapshot{Pos: r2.Vec{X: -1000, Y: 0}, Target: targetAt(0, 0, 10), ArcSign: 1}
	near := &BlobSnapshot{Pos: r2.Vec{X: -30, Y: 0}, Target: targetAt(0, 0, 10), ArcSign: 1}

	farForce, ok := arc.Seek(far, 0, p)
	if !ok {
		t.Fatal("expected far seek force")
	}
	nearForce, ok := arc.Seek(near, 0, p)
	if !ok {
		t.Fatal("expected near seek force")
	}

	farAngle := math.Abs(math.Atan2(farForce.Y, farForce.X))
	nearAngle := math.Abs(math.Atan2(nearForce.Y, nearForce.X))
	if farAngle <= nearAngle {
		t.Errorf("bow should decay with distance: far %.3f rad, near %.3f rad", farAngle, nearAngle)
	}
	if math.Abs(r2.Norm(farForce)-p.SeekStrength) > 1e-9 {
		t.Errorf("arc seek magnitude %.6f, want %.6f", r2.Norm(farForce), p.SeekStrength)
	}

	// Opposite arc signs bow to opposite sides.
	mirrored := &BlobSnapshot{Pos: far.Pos, Target: far.Target, ArcSign: -1}
	mirroredForce, _ := arc.Seek(mirrored, 0, p)
	if farForce.Y*mirroredForce.Y >= 0 {
		t.Errorf("arc signs should mirror the bow: %v vs %v", farForce, mirroredForce)
	}
}
