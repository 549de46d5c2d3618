package systems

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// CollisionParams configures the post-integration separation pass.
type CollisionParams struct {
	// MinDist is the separation below which two agents are considered
	// overlapping.
	MinDist float64
	// Push is the fixed velocity nudge applied alongside the positional
	// correction.
	Push float64
}

// CollisionBody is the mutable view of one agent during collision
// resolution.
type CollisionBody struct {
	ID     uint32
	Pos    r2.Vec
	Vel    r2.Vec
	Weight float64
}

// ResolvePair pushes two overlapping agents apart along their separation
// direction. The displacement fraction for each agent uses the *other*
// agent's weight share, so a heavier agent moves less. This is a positional
// correction, not physics: it runs once per frame after integration and
// does not replace the wall hard constraint.
// Returns true when a correction was applied.
func ResolvePair(a, b *CollisionBody, p *CollisionParams) bool {
	sep := r2.Sub(a.Pos, b.Pos)
	dist := r2.Norm(sep)
	if dist >= p.MinDist {
		return false
	}

	var dir r2.Vec
	if dist == 0 {
		// Coincident agents: deterministic tie-break on id so repeated
		// frames separate the pair instead of oscillating.
		dir = r2.Vec{X: 1}
		if a.ID > b.ID {
			dir = r2.Vec{X: -1}
		}
	} else {
		dir = r2.Scale(1/dist, sep)
	}

	overlap := p.MinDist - dist
	total := a.Weight + b.Weight
	shareA := b.Weight / total
	shareB := a.Weight / total

	a.Pos = r2.Add(a.Pos, r2.Scale(overlap*0.5*shareA, dir))
	b.Pos = r2.Sub(b.Pos, r2.Scale(overlap*0.5*shareB, dir))

	a.Vel = r2.Add(a.Vel, r2.Scale(p.Push*shareA, dir))
	b.Vel = r2.Sub(b.Vel, r2.Scale(p.Push*shareB, dir))
	return true
}

// ResolveCollisions runs one separation pass over all bodies using the
// spatial grid for pair discovery. Each unordered pair is processed once
// (lower snapshot index owns the pair). Returns the number of corrected
// pairs.
func ResolveCollisions(bodies []CollisionBody, grid *SpatialGrid, scratch []Neighbor, p *CollisionParams) (int, []Neighbor) {
	corrected := 0
	for i := range bodies {
		scratch = grid.QueryRadiusInto(scratch[:0], bodies[i].Pos.X, bodies[i].Pos.Y, p.MinDist, int32(i))
		for _, n := range scratch {
			if int(n.Index) <= i {
				continue
			}
			if ResolvePair(&bodies[i], &bodies[n.Index], p) {
				corrected++
			}
		}
	}
	return corrected, scratch
}
