package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polygon is an ordered vertex loop; the last vertex connects back to the
// first implicitly. Fewer than 3 vertices means "no valid shape" and callers
// are expected to substitute a fallback.
type Polygon []r2.Vec

// Valid reports whether the polygon encloses any area at all.
func (p Polygon) Valid() bool {
	return len(p) >= 3
}

// ClipByPlane clips the polygon against a half-plane, keeping the side where
// dot(v - planePoint, planeNormal) <= 0. Polygons with fewer than 3 vertices
// are returned unchanged; the result may have zero vertices when the polygon
// lies entirely on the discarded side.
func (p Polygon) ClipByPlane(planePoint, planeNormal r2.Vec) Polygon {
	return ClipByPlaneAppend(nil, p, planePoint, planeNormal)
}

// ClipByPlaneAppend is ClipByPlane writing into dst (reset to length zero),
// so per-frame clipping can reuse scratch buffers.
func ClipByPlaneAppend(dst Polygon, p Polygon, planePoint, planeNormal r2.Vec) Polygon {
	dst = dst[:0]
	if len(p) < 3 {
		return append(dst, p...)
	}
	for i := 0; i < len(p); i++ {
		cur := p[i]
		next := p[(i+1)%len(p)]
		curD := r2.Dot(r2.Sub(cur, planePoint), planeNormal)
		nextD := r2.Dot(r2.Sub(next, planePoint), planeNormal)

		if curD <= 0 {
			dst = append(dst, cur)
		}
		// Edge crosses the plane strictly; vertices on the plane itself
		// are kept above and emit no duplicate intersection.
		if (curD < 0 && nextD > 0) || (curD > 0 && nextD < 0) {
			t := curD / (curD - nextD)
			dst = append(dst, Lerp(cur, next, t))
		}
	}
	return dst
}

// Area returns the signed shoelace area. Counter-clockwise winding (in a
// y-up frame) is positive; callers wanting cell size take the absolute value.
func (p Polygon) Area() float64 {
	if len(p) < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < len(p); i++ {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// Centroid returns the area centroid. Degenerate polygons fall back to the
// vertex mean so the result is always finite.
func (p Polygon) Centroid() r2.Vec {
	a := p.Area()
	if a == 0 {
		var c r2.Vec
		if len(p) == 0 {
			return c
		}
		for _, v := range p {
			c = r2.Add(c, v)
		}
		return r2.Scale(1/float64(len(p)), c)
	}
	var c r2.Vec
	for i := 0; i < len(p); i++ {
		j := (i + 1) % len(p)
		cross := p[i].X*p[j].Y - p[j].X*p[i].Y
		c.X += (p[i].X + p[j].X) * cross
		c.Y += (p[i].Y + p[j].Y) * cross
	}
	return r2.Scale(1/(6*a), c)
}

// Circle approximates a circle as a regular polygon with the given number
// of segments (minimum 3).
func Circle(center r2.Vec, radius float64, segments int) Polygon {
	return CircleAppend(nil, center, radius, segments)
}

// CircleAppend is Circle writing into dst (reset to length zero).
func CircleAppend(dst Polygon, center r2.Vec, radius float64, segments int) Polygon {
	if segments < 3 {
		segments = 3
	}
	dst = dst[:0]
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		dst = append(dst, r2.Vec{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		})
	}
	return dst
}

// Rect builds an axis-aligned rectangle polygon from a corner and extents.
func Rect(x, y, w, h float64) Polygon {
	return Polygon{
		{X: x, Y: y},
		{X: x + w, Y: y},
		{X: x + w, Y: y + h},
		{X: x, Y: y + h},
	}
}
