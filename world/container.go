// Package world holds the container layout and the per-frame wall registry.
// It is explicit state passed into the frame update, not a global: the wall
// list is rebuilt from container geometry once per frame, so polarity edits
// and pours take effect on the next tick without cross-frame aliasing.
package world

import (
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/components"
	"github.com/anka-dev/membrane/systems"
)

// Side identifies one wall of a rectangular container. The order is the
// wall registration order, which tessellation clipping depends on.
type Side int

const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight

	// SideNone marks a container with all four walls present.
	SideNone Side = -1
)

var sideNames = [...]string{"top", "bottom", "left", "right"}

func (s Side) String() string {
	if s < 0 || int(s) >= len(sideNames) {
		return "none"
	}
	return sideNames[s]
}

// Container is a rectangular region owning up to four walls and a magnet
// that agents assigned here seek toward. Screen coordinates: y grows
// downward, so the top wall's inward normal points +y.
type Container struct {
	Name   string
	Bounds orb.Bound

	// Polarities holds the per-side wall polarity, indexed by Side.
	Polarities [4]systems.Polarity

	// Open removes one side entirely. An opening is not a permeable wall:
	// there is no segment there, so nothing clips or pushes agents near it.
	Open Side

	// Directional magnets pull along Direction instead of toward the
	// attractor point. The attractor defaults to the container center.
	Attractor   orb.Point
	Directional bool
	Direction   r2.Vec
}

// NewContainer builds a solid-walled container with the magnet at its
// center.
func NewContainer(name string, bounds orb.Bound) *Container {
	return &Container{
		Name:      name,
		Bounds:    bounds,
		Open:      SideNone,
		Attractor: bounds.Center(),
	}
}

// corners returns the wall endpoints for a side, ordered so walls trace the
// rectangle consistently.
func (c *Container) corners(s Side) (r2.Vec, r2.Vec) {
	minX, minY := c.Bounds.Min.X(), c.Bounds.Min.Y()
	maxX, maxY := c.Bounds.Max.X(), c.Bounds.Max.Y()
	switch s {
	case SideTop:
		return r2.Vec{X: minX, Y: minY}, r2.Vec{X: maxX, Y: minY}
	case SideBottom:
		return r2.Vec{X: minX, Y: maxY}, r2.Vec{X: maxX, Y: maxY}
	case SideLeft:
		return r2.Vec{X: minX, Y: minY}, r2.Vec{X: minX, Y: maxY}
	default:
		return r2.Vec{X: maxX, Y: minY}, r2.Vec{X: maxX, Y: maxY}
	}
}

// inwardNormal for each side under y-down screen coordinates.
var inwardNormals = [4]r2.Vec{
	SideTop:    {X: 0, Y: 1},
	SideBottom: {X: 0, Y: -1},
	SideLeft:   {X: 1, Y: 0},
	SideRight:  {X: -1, Y: 0},
}

// AppendWalls appends this container's walls to dst in side order, skipping
// the open side.
func (c *Container) AppendWalls(dst []systems.Wall) []systems.Wall {
	for s := SideTop; s <= SideRight; s++ {
		if s == c.Open {
			continue
		}
		start, end := c.corners(s)
		dst = append(dst, systems.NewWall(start, end, inwardNormals[s], c.Polarities[s]))
	}
	return dst
}

// Target builds the seek descriptor for agents assigned to this container.
// The bounds are shrunk by pad so agents settle comfortably inside rather
// than hugging the walls.
func (c *Container) Target(pad float64) components.Target {
	b := c.Bounds
	if pad > 0 && b.Max.X()-b.Min.X() > 2*pad && b.Max.Y()-b.Min.Y() > 2*pad {
		b = orb.Bound{
			Min: orb.Point{b.Min.X() + pad, b.Min.Y() + pad},
			Max: orb.Point{b.Max.X() - pad, b.Max.Y() - pad},
		}
	}
	return components.Target{
		Active:      true,
		Bounds:      b,
		Attractor:   c.Attractor,
		Directional: c.Directional,
		Direction:   c.Direction,
	}
}

// SpawnBounds is the padded interior rectangle agents spawn into.
func (c *Container) SpawnBounds(pad float64) orb.Bound {
	b := c.Bounds
	if pad > 0 && b.Max.X()-b.Min.X() > 2*pad && b.Max.Y()-b.Min.Y() > 2*pad {
		return orb.Bound{
			Min: orb.Point{b.Min.X() + pad, b.Min.Y() + pad},
			Max: orb.Point{b.Max.X() - pad, b.Max.Y() - pad},
		}
	}
	return b
}

// Contains reports whether p lies inside the container bounds.
func (c *Container) Contains(p r2.Vec) bool {
	return c.Bounds.Contains(orb.Point{p.X, p.Y})
}

// Center returns the container center as a vector.
func (c *Container) Center() r2.Vec {
	ctr := c.Bounds.Center()
	return r2.Vec{X: ctr.X(), Y: ctr.Y()}
}

// FacingSide returns the side of this container closest to the other
// container, judged by the dominant axis between the two centers.
func (c *Container) FacingSide(other *Container) Side {
	delta := r2.Sub(other.Center(), c.Center())
	if absFloat(delta.X) >= absFloat(delta.Y) {
		if delta.X >= 0 {
			return SideRight
		}
		return SideLeft
	}
	if delta.Y >= 0 {
		return SideBottom
	}
	return SideTop
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
