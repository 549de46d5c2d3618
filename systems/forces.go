package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/components"
	"github.com/anka-dev/membrane/geom"
)

// BlobSnapshot captures the read-only per-agent state a frame pass works
// from. Forces for every agent read the same prior-frame snapshot, which is
// what keeps the pressure feedback one frame lagged.
type BlobSnapshot struct {
	ID       uint32
	Pos      r2.Vec
	Vel      r2.Vec
	Weight   float64
	Pressure float64
	Target   components.Target

	LaunchTick int32
	ArcSign    float64
}

// ForceParams holds the physics constants consumed by the force model.
type ForceParams struct {
	RepulsionRange    float64
	RepulsionStrength float64
	WallRange         float64
	WallPush          float64
	SeekStrength      float64
	ContactMargin     float64
	Damping           float64
	MaxSpeed          float64
	MaxForce          float64
}

// pressureGain scales how strongly the pressure differential skews
// pairwise repulsion. Compressed agents push harder, roomy agents yield.
const pressureGain = 0.4

// RepulsionForce accumulates pressure-weighted repulsion from the given
// neighbors. Coincident agents (zero distance) contribute nothing; a
// zero-length normalize would poison the whole velocity with NaN.
func RepulsionForce(self *BlobSnapshot, snapshots []BlobSnapshot, neighbors []Neighbor, p *ForceParams) r2.Vec {
	var force r2.Vec
	for _, n := range neighbors {
		if n.DistSq == 0 || n.DistSq > p.RepulsionRange*p.RepulsionRange {
			continue
		}
		other := &snapshots[n.Index]

		dist := r2.Norm(r2.Vec{X: n.DX, Y: n.DY})
		t := 1 - dist/p.RepulsionRange
		pressureDiff := (1 + pressureGain*(self.Pressure-1)) / (1 + pressureGain*(other.Pressure-1))

		// Push from the neighbor toward self.
		away := r2.Scale(-1/dist, r2.Vec{X: n.DX, Y: n.DY})
		force = r2.Add(force, r2.Scale(p.RepulsionStrength*t*pressureDiff, away))
	}
	return force
}

// WallForce accumulates the soft repulsion every wall exerts within its
// sensing range, proportional to ((range - d) / range)^2. This is what lets
// agents feel walls before committing to cross; the hard constraint for
// blocking walls is applied separately after integration.
func WallForce(pos r2.Vec, walls []Wall, p *ForceParams) r2.Vec {
	var force r2.Vec
	for i := range walls {
		w := &walls[i]
		closest, dist := w.Closest(pos)
		if dist >= p.WallRange {
			continue
		}
		away, ok := geom.SafeUnit(r2.Sub(pos, closest))
		if !ok {
			// Sitting exactly on the segment; push along the inward normal.
			away = w.InwardNormal
		}
		t := (p.WallRange - dist) / p.WallRange
		force = r2.Add(force, r2.Scale(p.WallPush*t*t, away))
	}
	return force
}

// Integrate applies the fixed update order: accumulated force (clamped to
// MaxForce) is added to velocity, damping is applied, then the speed clamp,
// then the position step. Reordering these changes settling behavior.
func Integrate(pos, vel, force r2.Vec, p *ForceParams) (r2.Vec, r2.Vec) {
	vel = r2.Add(vel, geom.ClampMag(force, p.MaxForce))
	vel = geom.ClampMag(r2.Scale(p.Damping, vel), p.MaxSpeed)
	pos = r2.Add(pos, vel)
	return pos, vel
}

// EnforceWallContacts applies the hard constraint for blocking walls: an
// agent within the contact margin of a wall that blocks its motion is
// projected back out to exactly the margin and loses the velocity
// component pointing into the wall. The side is judged from the pre-move
// position so an agent that stepped across the segment this frame is pushed
// back to the side it came from rather than tunneling through.
// Returns the number of walls that blocked.
func EnforceWallContacts(prePos r2.Vec, pos, vel r2.Vec, walls []Wall, margin float64) (r2.Vec, r2.Vec, int) {
	blocked := 0
	for i := range walls {
		w := &walls[i]
		if !w.ShouldBlock(vel) {
			continue
		}

		preClosest, _ := w.Closest(prePos)
		away, ok := geom.SafeUnit(r2.Sub(prePos, preClosest))
		if !ok {
			away = w.InwardNormal
			if away == (r2.Vec{}) {
				continue
			}
		}

		closest, _ := w.Closest(pos)
		// Signed distance along the away direction; negative means the
		// agent ended up past the wall this frame.
		signedDist := r2.Dot(r2.Sub(pos, closest), away)
		if signedDist >= margin {
			continue
		}

		pos = r2.Add(closest, r2.Scale(margin, away))
		if inward := r2.Dot(vel, away); inward < 0 {
			vel = r2.Sub(vel, r2.Scale(inward, away))
		}
		blocked++
	}
	return pos, vel, blocked
}
