// Package geom provides the 2D geometry kernel for the tessellation
// simulation: vector helpers, point/segment queries, and polygon clipping.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Lerp linearly interpolates between a and b. t=0 returns a, t=1 returns b.
func Lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(t, r2.Sub(b, a)))
}

// SafeUnit returns the unit vector of v, or (zero, false) when v has
// zero length. Callers must skip the contribution rather than divide.
func SafeUnit(v r2.Vec) (r2.Vec, bool) {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}, false
	}
	return r2.Scale(1/n, v), true
}

// ClampMag limits the magnitude of v to max. A non-positive max zeroes v.
func ClampMag(v r2.Vec, max float64) r2.Vec {
	if max <= 0 {
		return r2.Vec{}
	}
	n2 := r2.Norm2(v)
	if n2 <= max*max {
		return v
	}
	return r2.Scale(max/math.Sqrt(n2), v)
}

// Perp returns v rotated 90 degrees counter-clockwise.
func Perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// PointToSegment returns the closest point on segment [a, b] to p and the
// distance to it. A degenerate segment (a == b) collapses to the point a.
func PointToSegment(p, a, b r2.Vec) (closest r2.Vec, dist float64) {
	ab := r2.Sub(b, a)
	len2 := r2.Norm2(ab)
	if len2 == 0 {
		return a, r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest = r2.Add(a, r2.Scale(t, ab))
	return closest, r2.Norm(r2.Sub(p, closest))
}
