package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/components"
)

// spawnInitialPopulation creates the starting agents inside the spawn
// container.
func (g *Game) spawnInitialPopulation() {
	cfg := g.cfg
	spawn := g.scene.Containers[g.spawnIdx]
	bounds := spawn.SpawnBounds(cfg.Blob.SpawnPadding)

	for i := 0; i < cfg.Blob.Count; i++ {
		x := bounds.Min.X() + g.rng.Float64()*(bounds.Max.X()-bounds.Min.X())
		y := bounds.Min.Y() + g.rng.Float64()*(bounds.Max.Y()-bounds.Min.Y())

		weight := cfg.Blob.DefaultWeight * (1 + (g.rng.Float64()*2-1)*cfg.Blob.WeightJitter)
		g.spawnBlob(r2.Vec{X: x, Y: y}, weight, g.spawnIdx)
	}
}

// spawnBlob creates one agent at the given position, homed to the given
// container.
func (g *Game) spawnBlob(at r2.Vec, weight float64, home int) {
	cfg := g.cfg

	id := g.nextID
	g.nextID++

	pos := components.Position{Vec: at}
	vel := components.Velocity{}
	claim := components.NewClaim(weight, cfg.Blob.Radius)
	cell := components.Cell{}
	blob := components.Blob{
		ID:      id,
		Home:    int32(home),
		ArcSign: arcSign(id),
	}
	target := g.scene.Containers[home].Target(cfg.Blob.SpawnPadding)

	entity := g.blobMapper.NewEntity(&pos, &vel, &claim, &cell, &blob, &target)
	g.entities = append(g.entities, entity)
	g.lastContainer[id] = int32(home)
}

// arcSign alternates the bow direction so half the population arcs each way.
func arcSign(id uint32) float64 {
	if id%2 == 0 {
		return 1
	}
	return -1
}

// Pour opens the one-way membrane from src into dst and re-homes every agent
// currently assigned to src. With arc navigation each agent gets a staggered
// launch tick so the stream pours rather than bursts.
func (g *Game) Pour(src, dst int) error {
	if err := g.scene.Pour(src, dst); err != nil {
		return err
	}
	g.collector.RecordPour()

	cfg := g.cfg
	target := g.scene.Containers[dst].Target(cfg.Blob.SpawnPadding)
	arc := cfg.Navigation.Mode == "arc"

	moved := 0
	for _, e := range g.entities {
		blob := g.blobMap.Get(e)
		if blob.Home != int32(src) {
			continue
		}
		blob.Home = int32(dst)
		blob.Settled = false
		blob.SettledFor = 0
		if arc {
			delay := cfg.Navigation.Arc.LaunchMean + g.rng.NormFloat64()*cfg.Navigation.Arc.LaunchStddev
			if delay < 0 {
				delay = 0
			}
			blob.LaunchTick = g.tick + int32(delay)
		}
		*g.targetMap.Get(e) = target
		moved++
	}

	slog.Info("pour",
		"from", g.scene.Containers[src].Name,
		"to", g.scene.Containers[dst].Name,
		"agents", moved,
		"tick", g.tick,
	)
	return nil
}

// Seal restores solid walls on the container, ending any pour through it.
func (g *Game) Seal(i int) error {
	if err := g.scene.Seal(i); err != nil {
		return err
	}
	slog.Info("seal", "container", g.scene.Containers[i].Name, "tick", g.tick)
	return nil
}
