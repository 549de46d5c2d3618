package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/geom"
)

// Seed and influence radii as multiples of the blob radius. The seed circle
// is oversized so the clips always have area to carve from; neighbors beyond
// the influence radius cannot intersect the seed and are skipped.
const (
	seedRadiusFactor = 4
	influenceFactor  = 6
	fallbackSegments = 8
)

// pressureSplitGain scales the secondary, pressure-driven shift of the
// bisector point between two agents.
const pressureSplitGain = 0.2

// TessellationParams configures the cell builder.
type TessellationParams struct {
	BlobRadius   float64
	SeedSegments int
}

// InfluenceRadius is how far away a neighbor can still clip this agent's
// cell.
func (p *TessellationParams) InfluenceRadius() float64 {
	return influenceFactor * p.BlobRadius
}

// Tessellator builds cell polygons by iterative half-plane clipping. It
// keeps scratch buffers, so each worker needs its own instance.
type Tessellator struct {
	params TessellationParams
	cur    geom.Polygon
	next   geom.Polygon
}

// NewTessellator creates a tessellator for the given parameters.
func NewTessellator(params TessellationParams) *Tessellator {
	if params.SeedSegments < 3 {
		params.SeedSegments = 24
	}
	if params.BlobRadius <= 0 {
		params.BlobRadius = 1
	}
	return &Tessellator{
		params: params,
		cur:    make(geom.Polygon, 0, params.SeedSegments+16),
		next:   make(geom.Polygon, 0, params.SeedSegments+16),
	}
}

// BisectorT returns the lerp parameter that places the clipping plane
// between self and a neighbor. The weight ratio is the primary term; the
// pressure split adds a small shift so a compressed agent claims a little
// extra of the shared boundary. Clamped away from the endpoints so neither
// agent's plane ever collapses onto a position.
func BisectorT(selfWeight, selfPressure, otherWeight, otherPressure float64) float64 {
	t := selfWeight / (selfWeight + otherWeight)
	t += (selfPressure/(selfPressure+otherPressure) - 0.5) * pressureSplitGain
	return clampFloat(t, 0.05, 0.95)
}

// BuildCell carves the agent's cell polygon from an oversized seed circle:
// first clipping against every wall segment close enough to matter, then
// against the weighted bisector of every neighbor in influence range.
// Neighbors must arrive sorted (the spatial grid guarantees snapshot-index
// order) so the clip sequence is deterministic per agent per frame. If
// clipping ever degenerates below 3 vertices the result is a fixed fallback
// octagon and fallback=true; a degenerate shape must never reach the area
// computation.
//
// The returned polygon aliases internal scratch; callers must copy it
// before the next BuildCell call.
func (ts *Tessellator) BuildCell(self *BlobSnapshot, snapshots []BlobSnapshot, neighbors []Neighbor, walls []Wall) (geom.Polygon, bool) {
	seedRadius := seedRadiusFactor * ts.params.BlobRadius
	influenceSq := ts.params.InfluenceRadius() * ts.params.InfluenceRadius()

	poly := geom.CircleAppend(ts.cur, self.Pos, seedRadius, ts.params.SeedSegments)

	// Walls first, in registration order. A wall farther away than the
	// seed radius cannot intersect the seed circle. An opening is simply
	// where no wall segment exists: nothing to clip against there, so the
	// cell squeezes through.
	for i := range walls {
		closest, dist := walls[i].Closest(self.Pos)
		if dist > seedRadius {
			continue
		}
		away, ok := geom.SafeUnit(r2.Sub(closest, self.Pos))
		if !ok {
			// Agent exactly on the segment; skip and let next frame's
			// corrected position recover.
			continue
		}
		poly = ts.clip(poly, closest, away)
		if !poly.Valid() {
			return ts.fallback(self.Pos), true
		}
	}

	// Then neighbors, in snapshot-index order.
	for _, n := range neighbors {
		if n.DistSq == 0 || n.DistSq > influenceSq {
			continue
		}
		other := &snapshots[n.Index]

		t := BisectorT(self.Weight, self.Pressure, other.Weight, other.Pressure)
		planePoint := geom.Lerp(self.Pos, other.Pos, t)
		normal, ok := geom.SafeUnit(r2.Vec{X: n.DX, Y: n.DY})
		if !ok {
			continue
		}
		poly = ts.clip(poly, planePoint, normal)
		if !poly.Valid() {
			return ts.fallback(self.Pos), true
		}
	}

	ts.cur = poly
	return poly, false
}

// clip runs one half-plane clip through the double buffer.
func (ts *Tessellator) clip(poly geom.Polygon, point, normal r2.Vec) geom.Polygon {
	out := geom.ClipByPlaneAppend(ts.next, poly, point, normal)
	ts.next = poly
	return out
}

// fallback returns the substitute octagon at the blob radius. Allocated
// fresh: the rare path must not disturb the clip double buffer.
func (ts *Tessellator) fallback(pos r2.Vec) geom.Polygon {
	return geom.Circle(pos, ts.params.BlobRadius, fallbackSegments)
}
