// Package components defines ECS components for the simulation.
package components

import (
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/geom"
)

// MinWeight is the smallest weight accepted at construction. Non-positive
// weights would corrupt every later pressure computation, so they are
// clamped here instead of propagating.
const MinWeight = 1e-3

// MinBlobRadius is the smallest blob radius accepted at construction.
const MinBlobRadius = 1e-3

// Position is an entity's world position. All containers share one world
// coordinate space so agents stay comparable while in transit between them.
type Position struct {
	r2.Vec
}

// Velocity is an entity's velocity in world units per tick.
type Velocity struct {
	r2.Vec
}

// Claim holds an agent's inherent and current claim on space.
type Claim struct {
	// Weight is the inherent claim; drives target area and bisector splits.
	Weight float64
	// TargetArea is pi * blobRadius^2 * Weight.
	TargetArea float64
	// CurrentArea is |signed area| of the current cell polygon.
	CurrentArea float64
	// Pressure is TargetArea / CurrentArea; 1 when the area is degenerate.
	// >1 means compressed (push harder), <1 means roomy.
	Pressure float64
}

// NewClaim builds a claim, clamping weight and radius to positive minimums
// and priming pressure at equilibrium.
func NewClaim(weight, blobRadius float64) Claim {
	if weight < MinWeight {
		weight = MinWeight
	}
	if blobRadius < MinBlobRadius {
		blobRadius = MinBlobRadius
	}
	return Claim{
		Weight:     weight,
		TargetArea: math.Pi * blobRadius * blobRadius * weight,
		Pressure:   1,
	}
}

// SetArea records a freshly tessellated cell area and derives pressure.
func (c *Claim) SetArea(area float64) {
	c.CurrentArea = area
	if area > 0 {
		c.Pressure = c.TargetArea / area
	} else {
		c.Pressure = 1
	}
}

// Cell is the emergent polygon claimed by an agent this frame.
type Cell struct {
	// Polygon may hold fewer than 3 vertices between ticks; consumers must
	// treat that as "no valid cell" and fall back to a circle.
	Polygon geom.Polygon
	// Fallback marks a frame where clipping degenerated and the polygon is
	// the substitute octagon rather than a carved cell.
	Fallback bool
}

// Blob carries identity and slow-changing agent state.
type Blob struct {
	// ID is a stable identity used to exclude self in neighbor loops and
	// as a deterministic tie-breaker.
	ID uint32
	// Home is the index of the container the agent is assigned to, or -1.
	Home int32
	// Settled is true once speed has stayed under the settle threshold
	// for enough consecutive frames.
	Settled    bool
	SettledFor int32
	// LaunchTick delays the seek force when arc navigation staggers
	// departures. Zero means launch immediately.
	LaunchTick int32
	// ArcSign picks the bow direction of the arc path (-1 or +1).
	ArcSign float64
}

// Target is the optional region an agent seeks toward. The seek force only
// applies while the position is outside Bounds; inside, local repulsion and
// walls settle the agent.
type Target struct {
	Active bool
	Bounds orb.Bound
	// Attractor is the magnet point pulled toward while outside Bounds.
	Attractor orb.Point
	// Directional magnets pull along Direction instead of toward the point.
	Directional bool
	Direction   r2.Vec
}

// Contains reports whether p lies inside the target bounds.
func (t *Target) Contains(p r2.Vec) bool {
	return t.Bounds.Contains(orb.Point{p.X, p.Y})
}
