package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/systems"
	"github.com/anka-dev/membrane/telemetry"
)

// simulationStep runs a single tick. Every phase reads the snapshot taken at
// the top of the phase and applies results afterward, so all agents within a
// phase see the same prior state. Pressure in particular is only rewritten
// by the tessellation apply, which is what gives the force pass its
// one-frame-lagged pressure feedback.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	// 1. Regenerate walls from container polarities
	g.perfCollector.StartPhase(telemetry.PhaseWalls)
	g.scene.RebuildWalls()

	// 2. Snapshot agents and rebuild the spatial index
	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	n := g.buildSnapshots()

	// 3. Forces, integration, wall contacts
	g.perfCollector.StartPhase(telemetry.PhaseForces)
	g.runPhase(n, phaseForces)
	g.applyForceIntents()

	// 4. Pairwise separation on the moved positions
	g.perfCollector.StartPhase(telemetry.PhaseCollision)
	g.resolveCollisions()

	// 5. Tessellation from the separated positions; pressures still lagged
	g.perfCollector.StartPhase(telemetry.PhaseTessellation)
	n = g.buildSnapshots()
	g.runPhase(n, phaseCells)
	g.applyCellIntents()

	// 6. Settle detection and container crossings
	g.perfCollector.StartPhase(telemetry.PhaseSettle)
	g.updateSettleAndCrossings()

	// 7. Window flush
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// buildSnapshots captures all agents into the shared snapshot slice in spawn
// order and rebuilds the spatial grid on the same indices. Returns the agent
// count. Also sizes the intent slices, preserving their buffers.
func (g *Game) buildSnapshots() int {
	p := g.parallel
	p.snapshots = p.snapshots[:0]
	g.grid.Clear()

	for i, e := range g.entities {
		pos, vel, claim, _, blob, target := g.blobMapper.Get(e)
		p.snapshots = append(p.snapshots, systems.BlobSnapshot{
			ID:         blob.ID,
			Pos:        pos.Vec,
			Vel:        vel.Vec,
			Weight:     claim.Weight,
			Pressure:   claim.Pressure,
			Target:     *target,
			LaunchTick: blob.LaunchTick,
			ArcSign:    blob.ArcSign,
		})
		g.grid.Insert(int32(i), pos.X, pos.Y)
	}

	n := len(p.snapshots)
	for len(p.forceIntents) < n {
		p.forceIntents = append(p.forceIntents, forceIntent{})
	}
	p.forceIntents = p.forceIntents[:n]
	for len(p.cellIntents) < n {
		p.cellIntents = append(p.cellIntents, cellIntent{})
	}
	p.cellIntents = p.cellIntents[:n]
	return n
}

// applyForceIntents writes the computed physics back to the components.
func (g *Game) applyForceIntents() {
	blocked := 0
	for i, e := range g.entities {
		intent := &g.parallel.forceIntents[i]
		pos := g.posMap.Get(e)
		vel := g.velMap.Get(e)
		pos.Vec = intent.Pos
		vel.Vec = intent.Vel
		blocked += intent.Blocked
	}
	g.collector.RecordWallBlocks(blocked)
}

// resolveCollisions runs one weight-proportional separation pass over the
// post-integration positions and writes the corrections back.
func (g *Game) resolveCollisions() {
	g.bodies = g.bodies[:0]
	g.grid.Clear()
	for i, e := range g.entities {
		pos, vel, claim, _, blob, _ := g.blobMapper.Get(e)
		g.bodies = append(g.bodies, systems.CollisionBody{
			ID:     blob.ID,
			Pos:    pos.Vec,
			Vel:    vel.Vec,
			Weight: claim.Weight,
		})
		g.grid.Insert(int32(i), pos.X, pos.Y)
	}

	scratch := g.parallel.scratches[0].Neighbors
	corrected, scratch := systems.ResolveCollisions(g.bodies, g.grid, scratch, &g.collisionParams)
	g.parallel.scratches[0].Neighbors = scratch
	g.collector.RecordCollisionPairs(corrected)

	for i, e := range g.entities {
		pos := g.posMap.Get(e)
		vel := g.velMap.Get(e)
		pos.Vec = g.bodies[i].Pos
		vel.Vec = g.bodies[i].Vel
	}
}

// applyCellIntents installs the tessellated polygons and derives next
// frame's pressures from the areas.
func (g *Game) applyCellIntents() {
	fallbacks := 0
	for i, e := range g.entities {
		intent := &g.parallel.cellIntents[i]
		_, _, claim, cell, _, _ := g.blobMapper.Get(e)

		cell.Polygon = append(cell.Polygon[:0], intent.Polygon...)
		cell.Fallback = intent.Fallback
		claim.SetArea(intent.Area)
		if intent.Fallback {
			fallbacks++
		}
	}
	g.collector.RecordFallbacks(fallbacks)
}

// updateSettleAndCrossings advances per-agent settle counters and records a
// crossing whenever an agent transitions into a container it was not inside
// on the previous frame.
func (g *Game) updateSettleAndCrossings() {
	settleFrames := int32(g.cfg.Blob.SettleFrames)
	settleSpeed := g.cfg.Blob.SettleSpeed

	for _, e := range g.entities {
		pos, vel, _, _, blob, _ := g.blobMapper.Get(e)

		if r2.Norm(vel.Vec) < settleSpeed {
			blob.SettledFor++
		} else {
			blob.SettledFor = 0
		}
		blob.Settled = blob.SettledFor >= settleFrames

		cur := g.containerAt(pos.Vec)
		prev, seen := g.lastContainer[blob.ID]
		if seen && cur != prev && cur >= 0 {
			g.collector.RecordCrossing()
		}
		g.lastContainer[blob.ID] = cur
	}
}

// containerAt returns the index of the container containing p, or -1.
func (g *Game) containerAt(p r2.Vec) int32 {
	for i, c := range g.scene.Containers {
		if c.Contains(p) {
			return int32(i)
		}
	}
	return -1
}

// flushTelemetry flushes the stats window when due and writes CSV output.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleWindow())
	perfStats := g.perfCollector.Stats()

	if g.opts.LogStats {
		g.logWorldState()
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// sampleWindow collects the population-wide values for a window flush.
func (g *Game) sampleWindow() telemetry.Sample {
	g.pressures = g.pressures[:0]
	g.speeds = g.speeds[:0]

	var population, settled, inTransit int

	query := g.blobFilter.Query()
	for query.Next() {
		pos, vel, claim, _, blob, target := query.Get()

		population++
		if blob.Settled {
			settled++
		}
		if target.Active && !target.Contains(pos.Vec) {
			inTransit++
		}
		g.pressures = append(g.pressures, claim.Pressure)
		g.speeds = append(g.speeds, r2.Norm(vel.Vec))
	}

	return telemetry.Sample{
		Population: population,
		Settled:    settled,
		InTransit:  inTransit,
		Pressures:  g.pressures,
		Speeds:     g.speeds,
	}
}
