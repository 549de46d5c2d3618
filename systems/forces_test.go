package systems

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/components"
)

// targetAt builds an active target centered at (x, y) with half-extent r.
func targetAt(x, y, r float64) components.Target {
	return components.Target{
		Active:    true,
		Bounds:    orb.Bound{Min: orb.Point{x - r, y - r}, Max: orb.Point{x + r, y + r}},
		Attractor: orb.Point{x, y},
	}
}

func testForceParams() *ForceParams {
	return &ForceParams{
		RepulsionRange:    50,
		RepulsionStrength: 1.5,
		WallRange:         60,
		WallPush:          2.0,
		SeekStrength:      0.8,
		ContactMargin:     15,
		Damping:           0.92,
		MaxSpeed:          4,
		MaxForce:          1,
	}
}

// neighborOf builds the grid-style neighbor record for other as seen from
// self.
func neighborOf(self, other *BlobSnapshot, idx int32) Neighbor {
	dx := other.Pos.X - self.Pos.X
	dy := other.Pos.Y - self.Pos.Y
	return Neighbor{Index: idx, DX: dx, DY: dy, DistSq: dx*dx + dy*dy}
}

func TestRepulsionForceSkipsCoincident(t *testing.T) {
	p := testForceParams()
	snaps := []BlobSnapshot{
		{ID: 0, Pos: r2.Vec{X: 10, Y: 10}, Weight: 1, Pressure: 1},
		{ID: 1, Pos: r2.Vec{X: 10, Y: 10}, Weight: 1, Pressure: 1},
	}
	neighbors := []Neighbor{neighborOf(&snaps[0], &snaps[1], 1)}

	force := RepulsionForce(&snaps[0], snaps, neighbors, p)
	if force != (r2.Vec{}) {
		t.Errorf("coincident pair produced force %v, want zero", force)
	}
	if math.IsNaN(force.X) || math.IsNaN(force.Y) {
		t.Errorf("coincident pair produced NaN: %v", force)
	}
}

func TestRepulsionForcePushesApart(t *testing.T) {
	p := testForceParams()
	snaps := []BlobSnapshot{
		{ID: 0, Pos: r2.Vec{X: 0, Y: 0}, Weight: 1, Pressure: 1},
		{ID: 1, Pos: r2.Vec{X: 20, Y: 0}, Weight: 1, Pressure: 1},
	}
	neighbors := []Neighbor{neighborOf(&snaps[0], &snaps[1], 1)}

	force := RepulsionForce(&snaps[0], snaps, neighbors, p)
	if force.X >= 0 {
		t.Errorf("left agent pushed toward right neighbor: %v", force)
	}
	if force.Y != 0 {
		t.Errorf("axis-aligned pair produced lateral force: %v", force)
	}
}

func TestRepulsionForcePressureSkew(t *testing.T) {
	p := testForceParams()

	// Same geometry both times; only the pressure of the pushing agent
	// changes. The compressed agent must push harder than the baseline.
	baseline := []BlobSnapshot{
		{ID: 0, Pos: r2.Vec{X: 0, Y: 0}, Weight: 1, Pressure: 1},
		{ID: 1, Pos: r2.Vec{X: 20, Y: 0}, Weight: 1, Pressure: 1},
	}
	compressed := []BlobSnapshot{
		{ID: 0, Pos: r2.Vec{X: 0, Y: 0}, Weight: 1, Pressure: 3},
		{ID: 1, Pos: r2.Vec{X: 20, Y: 0}, Weight: 1, Pressure: 1},
	}
	neighbors := []Neighbor{neighborOf(&baseline[0], &baseline[1], 1)}

	f0 := RepulsionForce(&baseline[0], baseline, neighbors, p)
	f1 := RepulsionForce(&compressed[0], compressed, neighbors, p)
	if r2.Norm(f1) <= r2.Norm(f0) {
		t.Errorf("compressed agent pushed %v, baseline %v; want stronger", r2.Norm(f1), r2.Norm(f0))
	}

	// And an agent shoving a compressed neighbor yields a weaker push.
	shoved := []BlobSnapshot{
		{ID: 0, Pos: r2.Vec{X: 0, Y: 0}, Weight: 1, Pressure: 1},
		{ID: 1, Pos: r2.Vec{X: 20, Y: 0}, Weight: 1, Pressure: 3},
	}
	f2 := RepulsionForce(&shoved[0], shoved, neighbors, p)
	if r2.Norm(f2) >= r2.Norm(f0) {
		t.Errorf("push against compressed neighbor %v, baseline %v; want weaker", r2.Norm(f2), r2.Norm(f0))
	}
}

func TestRepulsionForceOutOfRange(t *testing.T) {
	p := testForceParams()
	snaps := []BlobSnapshot{
		{ID: 0, Pos: r2.Vec{X: 0, Y: 0}, Weight: 1, Pressure: 1},
		{ID: 1, Pos: r2.Vec{X: p.RepulsionRange + 1, Y: 0}, Weight: 1, Pressure: 1},
	}
	neighbors := []Neighbor{neighborOf(&snaps[0], &snaps[1], 1)}

	if force := RepulsionForce(&snaps[0], snaps, neighbors, p); force != (r2.Vec{}) {
		t.Errorf("out-of-range neighbor produced force %v", force)
	}
}

func TestWallForceFalloff(t *testing.T) {
	p := testForceParams()
	walls := []Wall{horizontalWall(PolaritySolid)}

	near := WallForce(r2.Vec{X: 50, Y: 10}, walls, p)
	far := WallForce(r2.Vec{X: 50, Y: 40}, walls, p)
	outside := WallForce(r2.Vec{X: 50, Y: p.WallRange + 5}, walls, p)

	if near.Y <= 0 {
		t.Errorf("wall pushed toward itself: %v", near)
	}
	if r2.Norm(near) <= r2.Norm(far) {
		t.Errorf("force did not grow toward the wall: near %v far %v", r2.Norm(near), r2.Norm(far))
	}
	if outside != (r2.Vec{}) {
		t.Errorf("out-of-range wall produced force %v", outside)
	}
}

func TestWallForceOnSegmentUsesInwardNormal(t *testing.T) {
	p := testForceParams()
	walls := []Wall{horizontalWall(PolaritySolid)}

	force := WallForce(r2.Vec{X: 50, Y: 0}, walls, p)
	if force.Y <= 0 || force.X != 0 {
		t.Errorf("on-segment force = %v, want along inward normal (+y)", force)
	}
}

func TestIntegrateOrder(t *testing.T) {
	p := testForceParams()

	pos := r2.Vec{X: 10, Y: 10}
	vel := r2.Vec{X: 2, Y: 0}
	force := r2.Vec{X: 5, Y: 0} // above MaxForce, must be clamped first

	newPos, newVel := Integrate(pos, vel, force, p)

	// (2 + clamp(5→1)) * 0.92 = 2.76, below MaxSpeed.
	wantVelX := (2 + p.MaxForce) * p.Damping
	if math.Abs(newVel.X-wantVelX) > 1e-12 {
		t.Errorf("vel.X = %v, want %v", newVel.X, wantVelX)
	}
	if math.Abs(newPos.X-(10+wantVelX)) > 1e-12 {
		t.Errorf("pos.X = %v, want %v", newPos.X, 10+wantVelX)
	}
}

func TestIntegrateSpeedClamp(t *testing.T) {
	p := testForceParams()

	_, vel := Integrate(r2.Vec{}, r2.Vec{X: 100, Y: 0}, r2.Vec{}, p)
	if math.Abs(r2.Norm(vel)-p.MaxSpeed) > 1e-12 {
		t.Errorf("speed = %v, want clamped to %v", r2.Norm(vel), p.MaxSpeed)
	}
}

func TestDirectSeekGating(t *testing.T) {
	p := testForceParams()
	target := targetAt(200, 200, 50)

	tests := []struct {
		name string
		blob BlobSnapshot
		want bool
	}{
		{"outside bounds seeks", BlobSnapshot{Pos: r2.Vec{X: 0, Y: 200}, Target: target}, true},
		{"inside bounds does not", BlobSnapshot{Pos: r2.Vec{X: 200, Y: 200}, Target: target}, false},
		{"no target does not", BlobSnapshot{Pos: r2.Vec{X: 0, Y: 200}}, false},
	}

	var s DirectSeek
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			force, ok := s.Seek(&tc.blob, 0, p)
			if ok != tc.want {
				t.Fatalf("ok = %v, want %v", ok, tc.want)
			}
			if ok && math.Abs(r2.Norm(force)-p.SeekStrength) > 1e-9 {
				t.Errorf("seek magnitude = %v, want %v", r2.Norm(force), p.SeekStrength)
			}
		})
	}
}

func TestArcSeekLaunchStagger(t *testing.T) {
	p := testForceParams()
	blob := BlobSnapshot{
		Pos:        r2.Vec{X: 0, Y: 200},
		Target:     targetAt(200, 200, 50),
		LaunchTick: 40,
		ArcSign:    1,
	}
	s := ArcSeek{Lift: 0.8, Falloff: 200}

	if _, ok := s.Seek(&blob, 39, p); ok {
		t.Error("agent launched before its tick")
	}
	force, ok := s.Seek(&blob, 40, p)
	if !ok {
		t.Fatal("agent did not launch at its tick")
	}
	// The bow must rotate the pull off the straight line toward the
	// attractor but keep a positive component along it.
	straight := r2.Vec{X: 1, Y: 0}
	if force.Y == 0 {
		t.Error("arc seek produced a straight pull")
	}
	if r2.Dot(force, straight) <= 0 {
		t.Errorf("arc pull lost its forward component: %v", force)
	}
	if math.Abs(r2.Norm(force)-p.SeekStrength) > 1e-9 {
		t.Errorf("arc magnitude = %v, want %v", r2.Norm(force), p.SeekStrength)
	}
}
