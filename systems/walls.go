// Package systems contains the per-frame simulation passes: wall
// permeability, force accumulation, integration, collision resolution, and
// the incremental cell tessellation.
package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/geom"
)

// Polarity is a wall's directional permeability mode.
type Polarity uint8

const (
	// PolaritySolid blocks all crossing.
	PolaritySolid Polarity = iota
	// PolarityPermeable blocks nothing.
	PolarityPermeable
	// PolarityInward blocks an agent attempting to leave, i.e. moving
	// against the inward normal. The trapping half of a one-way membrane.
	PolarityInward
	// PolarityOutward blocks an agent attempting to enter, i.e. moving
	// along the inward normal. The releasing half of a one-way membrane.
	PolarityOutward
)

// String returns the polarity name for logs and UI labels.
func (p Polarity) String() string {
	switch p {
	case PolaritySolid:
		return "solid"
	case PolarityPermeable:
		return "permeable"
	case PolarityInward:
		return "inward"
	case PolarityOutward:
		return "outward"
	}
	return "unknown"
}

// polarityEpsilon is the velocity deadband for directional polarities.
// Without it agents flicker between blocked and free at near-zero speed.
const polarityEpsilon = 0.1

// Wall is an oriented boundary segment. The inward normal points toward the
// interior of the region the wall bounds; the sign convention must be
// consistent across all walls of a container for polarity logic to hold.
type Wall struct {
	Start, End   r2.Vec
	InwardNormal r2.Vec
	Polarity     Polarity
}

// NewWall builds a wall from endpoints, an inward direction, and a polarity.
// The inward direction is normalized; a zero vector leaves the normal zero,
// which degrades directional polarities to never blocking.
func NewWall(start, end, inward r2.Vec, polarity Polarity) Wall {
	n, _ := geom.SafeUnit(inward)
	return Wall{Start: start, End: end, InwardNormal: n, Polarity: polarity}
}

// ShouldBlock reports whether the wall currently blocks an agent moving
// with the given velocity.
func (w *Wall) ShouldBlock(velocity r2.Vec) bool {
	switch w.Polarity {
	case PolaritySolid:
		return true
	case PolarityPermeable:
		return false
	case PolarityInward:
		return r2.Dot(velocity, w.InwardNormal) < -polarityEpsilon
	case PolarityOutward:
		return r2.Dot(velocity, w.InwardNormal) > polarityEpsilon
	}
	return true
}

// Closest returns the closest point on the wall segment to p and the
// distance to it.
func (w *Wall) Closest(p r2.Vec) (r2.Vec, float64) {
	return geom.PointToSegment(p, w.Start, w.End)
}
