package game

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Census is a point-in-time population summary for headless tooling.
type Census struct {
	Population int
	Settled    int
	// InContainer counts agents inside each container, indexed like the
	// scene's container list. Agents in the gaps between containers are in
	// no bucket.
	InContainer []int

	MeanPressure   float64
	PressureStdDev float64
	MeanSpeed      float64
}

// TakeCensus summarizes the current population state.
func (g *Game) TakeCensus() Census {
	c := Census{
		InContainer: make([]int, len(g.scene.Containers)),
	}

	g.pressures = g.pressures[:0]
	g.speeds = g.speeds[:0]

	query := g.blobFilter.Query()
	for query.Next() {
		pos, vel, claim, _, blob, _ := query.Get()

		c.Population++
		if blob.Settled {
			c.Settled++
		}
		if idx := g.containerAt(pos.Vec); idx >= 0 {
			c.InContainer[idx]++
		}
		g.pressures = append(g.pressures, claim.Pressure)
		g.speeds = append(g.speeds, r2.Norm(vel.Vec))
	}

	if c.Population > 1 {
		c.MeanPressure, c.PressureStdDev = stat.MeanStdDev(g.pressures, nil)
		c.MeanSpeed = stat.Mean(g.speeds, nil)
	} else if c.Population == 1 {
		c.MeanPressure = g.pressures[0]
		c.MeanSpeed = g.speeds[0]
	}
	return c
}
