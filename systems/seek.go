package systems

import (
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/geom"
)

// SeekStrategy shapes the force that pulls an agent toward its assigned
// target region. Strategies only fire while the agent is outside the
// region's bounds; inside, repulsion and walls settle the agent on their
// own. This is the navigation variant switch: the polarity-gated direct
// seek is the reference behavior, the arc strategy is an alternate
// presentation with bowed approach paths and staggered launches.
type SeekStrategy interface {
	// Seek returns the seek force for the agent, or ok=false when no seek
	// applies this frame.
	Seek(b *BlobSnapshot, tick int32, p *ForceParams) (r2.Vec, bool)
}

// DirectSeek pulls straight toward the attractor at constant magnitude.
type DirectSeek struct{}

// Seek implements SeekStrategy.
func (DirectSeek) Seek(b *BlobSnapshot, tick int32, p *ForceParams) (r2.Vec, bool) {
	dir, ok := seekDirection(b)
	if !ok {
		return r2.Vec{}, false
	}
	return r2.Scale(p.SeekStrength, dir), true
}

// ArcSeek pulls along a bowed path toward the attractor, like tea poured
// between containers. The bow angle decays as the agent closes in, and each
// agent launches only after its own staggered tick.
type ArcSeek struct {
	// Lift is the maximum bow angle in radians at long range.
	Lift float64
	// Falloff is the distance scale over which the bow straightens out.
	Falloff float64
}

// Seek implements SeekStrategy.
func (a ArcSeek) Seek(b *BlobSnapshot, tick int32, p *ForceParams) (r2.Vec, bool) {
	if tick < b.LaunchTick {
		return r2.Vec{}, false
	}
	dir, ok := seekDirection(b)
	if !ok {
		return r2.Vec{}, false
	}

	falloff := a.Falloff
	if falloff <= 0 {
		falloff = 200
	}
	dist := r2.Norm(r2.Sub(attractorVec(b.Target.Attractor), b.Pos))
	angle := b.ArcSign * a.Lift * (dist / (dist + falloff))
	dir = rotate(dir, angle)
	return r2.Scale(p.SeekStrength, dir), true
}

// seekDirection resolves the unit direction of the seek force, or ok=false
// when the agent has no active target or is already inside its bounds.
func seekDirection(b *BlobSnapshot) (r2.Vec, bool) {
	t := &b.Target
	if !t.Active || t.Contains(b.Pos) {
		return r2.Vec{}, false
	}
	if t.Directional {
		return geom.SafeUnit(t.Direction)
	}
	return geom.SafeUnit(r2.Sub(attractorVec(t.Attractor), b.Pos))
}

func attractorVec(p orb.Point) r2.Vec {
	return r2.Vec{X: p.X(), Y: p.Y()}
}

func rotate(v r2.Vec, angle float64) r2.Vec {
	s, c := math.Sin(angle), math.Cos(angle)
	return r2.Vec{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}
