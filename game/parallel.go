package game

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/geom"
	"github.com/anka-dev/membrane/systems"
)

// parallelThreshold is the minimum agent count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// Parallel phases. Both read the shared snapshot slice and write only their
// own intent index, so chunks never contend.
const (
	phaseForces = iota
	phaseCells
)

// forceIntent captures one agent's computed physics to apply after the
// parallel pass.
type forceIntent struct {
	Pos     r2.Vec
	Vel     r2.Vec
	Blocked int
}

// cellIntent captures one agent's tessellated cell. The polygon is an owned
// copy; BuildCell results alias worker scratch.
type cellIntent struct {
	Polygon  geom.Polygon
	Area     float64
	Fallback bool
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Neighbors []systems.Neighbor
	Tess      *systems.Tessellator
}

// workChunk is a range of snapshot indices for one worker.
type workChunk struct {
	start, end int
	phase      int
}

// parallelState holds resources for the parallel phases.
type parallelState struct {
	snapshots    []systems.BlobSnapshot
	forceIntents []forceIntent
	cellIntents  []cellIntent
	scratches    []workerScratch
	numWorkers   int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState(tessParams systems.TessellationParams) *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, systems.MaxQueryResults)
		scratches[i].Tess = systems.NewTessellator(tessParams)
	}
	return &parallelState{
		numWorkers:   numWorkers,
		scratches:    scratches,
		snapshots:    make([]systems.BlobSnapshot, 0, 256),
		forceIntents: make([]forceIntent, 0, 256),
		cellIntents:  make([]cellIntent, 0, 256),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			switch chunk.phase {
			case phaseForces:
				g.computeForceChunk(chunk.start, chunk.end, scratch)
			case phaseCells:
				g.computeCellChunk(chunk.start, chunk.end, scratch)
			}
			p.doneChan <- struct{}{}
		}
	}
}

// runPhase processes all n snapshots through the given phase, parallel when
// the population is large enough.
func (g *Game) runPhase(n, phase int) {
	if n == 0 {
		return
	}
	if n < parallelThreshold {
		scratch := &g.parallel.scratches[0]
		switch phase {
		case phaseForces:
			g.computeForceChunk(0, n, scratch)
		case phaseCells:
			g.computeCellChunk(0, n, scratch)
		}
		return
	}

	if !g.parallel.running {
		g.parallel.startWorkers(g)
	}

	numWorkers := g.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	dispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		g.parallel.workChan <- workChunk{start: start, end: end, phase: phase}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-g.parallel.doneChan
	}
}

// computeForceChunk accumulates forces, integrates, and enforces wall
// contacts for a range of agents. Everything reads the shared prior-frame
// snapshot; results land in the force intents.
func (g *Game) computeForceChunk(i0, i1 int, scratch *workerScratch) {
	walls := g.scene.Walls()
	p := &g.forceParams

	for i := i0; i < i1; i++ {
		snap := &g.parallel.snapshots[i]
		intent := &g.parallel.forceIntents[i]

		scratch.Neighbors = g.grid.QueryRadiusInto(
			scratch.Neighbors[:0],
			snap.Pos.X, snap.Pos.Y, p.RepulsionRange, int32(i),
		)

		force := systems.RepulsionForce(snap, g.parallel.snapshots, scratch.Neighbors, p)
		force = r2.Add(force, systems.WallForce(snap.Pos, walls, p))
		if seek, ok := g.seek.Seek(snap, g.tick, p); ok {
			force = r2.Add(force, seek)
		}

		pos, vel := systems.Integrate(snap.Pos, snap.Vel, force, p)
		pos, vel, blocked := systems.EnforceWallContacts(snap.Pos, pos, vel, walls, p.ContactMargin)

		intent.Pos = pos
		intent.Vel = vel
		intent.Blocked = blocked
	}
}

// computeCellChunk tessellates cells for a range of agents. Each worker owns
// a tessellator; the resulting polygon is copied into the intent because
// BuildCell reuses scratch.
func (g *Game) computeCellChunk(i0, i1 int, scratch *workerScratch) {
	walls := g.scene.Walls()
	influence := g.tessParams.InfluenceRadius()

	for i := i0; i < i1; i++ {
		snap := &g.parallel.snapshots[i]
		intent := &g.parallel.cellIntents[i]

		scratch.Neighbors = g.grid.QueryRadiusInto(
			scratch.Neighbors[:0],
			snap.Pos.X, snap.Pos.Y, influence, int32(i),
		)

		poly, fallback := scratch.Tess.BuildCell(snap, g.parallel.snapshots, scratch.Neighbors, walls)
		intent.Polygon = append(intent.Polygon[:0], poly...)
		intent.Area = math.Abs(intent.Polygon.Area())
		intent.Fallback = fallback
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
