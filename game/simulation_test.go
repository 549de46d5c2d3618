package game

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/anka-dev/membrane/config"
	"github.com/anka-dev/membrane/systems"
	"github.com/anka-dev/membrane/world"
)

// newTestGame initializes the global config from the given YAML and builds a
// headless game. The config stays active until the next call.
func newTestGame(t *testing.T, yaml string, seed int64) *Game {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	config.MustInit(path)

	g, err := NewGameWithOptions(Options{Seed: seed, Headless: true})
	if err != nil {
		t.Fatalf("creating game: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func newDefaultGame(t *testing.T, seed int64) *Game {
	t.Helper()
	config.MustInit("")

	g, err := NewGameWithOptions(Options{Seed: seed, Headless: true})
	if err != nil {
		t.Fatalf("creating game: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func step(g *Game, n int) {
	for i := 0; i < n; i++ {
		g.simulationStep()
	}
}

const sealedConfig = `
blob:
  count: 40
containers:
  - name: box
    x: 200
    y: 150
    width: 400
    height: 380
    spawn: true
`

func TestSealedContainerContainment(t *testing.T) {
	g := newTestGame(t, sealedConfig, 1)
	box := g.scene.Containers[0]

	step(g, 600)

	for i, e := range g.entities {
		pos := g.posMap.Get(e)
		if !box.Contains(pos.Vec) {
			t.Errorf("agent %d escaped a sealed container: at (%.1f, %.1f)", i, pos.X, pos.Y)
		}
	}
}

const openSidesConfig = `
blob:
  count: 12
containers:
  - name: left
    x: 100
    y: 160
    width: 300
    height: 300
    open: right
    spawn: true
  - name: right
    x: 700
    y: 160
    width: 300
    height: 300
    open: left
`

func TestPourThroughOpenSides(t *testing.T) {
	g := newTestGame(t, openSidesConfig, 2)

	if err := g.Pour(0, 1); err != nil {
		t.Fatalf("pour: %v", err)
	}
	step(g, 2500)

	var arrived int
	dst := g.scene.Containers[1]
	for _, e := range g.entities {
		pos := g.posMap.Get(e)
		if dst.Contains(pos.Vec) {
			arrived++
		}
	}
	if arrived < len(g.entities)/2 {
		t.Errorf("only %d of %d agents reached the destination through open sides",
			arrived, len(g.entities))
	}
}

const inwardConfig = `
blob:
  count: 16
containers:
  - name: trap
    x: 150
    y: 150
    width: 350
    height: 350
    spawn: true
    polarities:
      top: inward
      bottom: inward
      left: inward
      right: inward
  - name: lure
    x: 750
    y: 150
    width: 300
    height: 300
`

func TestInwardWallsTrapSeekingAgents(t *testing.T) {
	g := newTestGame(t, inwardConfig, 3)
	trap := g.scene.Containers[0]

	// Point every agent at the other container. The inward walls should
	// still hold them all.
	lure := g.scene.Containers[1].Target(g.cfg.Blob.SpawnPadding)
	for _, e := range g.entities {
		*g.targetMap.Get(e) = lure
	}

	step(g, 800)

	for i, e := range g.entities {
		pos := g.posMap.Get(e)
		if !trap.Contains(pos.Vec) {
			t.Errorf("agent %d escaped through an inward wall: at (%.1f, %.1f)", i, pos.X, pos.Y)
		}
	}
}

func TestPressureMatchesAreaRatio(t *testing.T) {
	g := newDefaultGame(t, 4)
	step(g, 3)

	for i, e := range g.entities {
		claim := g.claimMap.Get(e)
		if claim.CurrentArea > 0 {
			want := claim.TargetArea / claim.CurrentArea
			if math.Abs(claim.Pressure-want) > 1e-12 {
				t.Errorf("agent %d pressure %.9f, want %.9f", i, claim.Pressure, want)
			}
		} else if claim.Pressure != 1 {
			t.Errorf("agent %d has degenerate area but pressure %.9f, want 1", i, claim.Pressure)
		}
	}
}

func TestDeterministicWithFixedSeed(t *testing.T) {
	run := func() []r2.Vec {
		g := newDefaultGame(t, 7)
		step(g, 200)

		positions := make([]r2.Vec, len(g.entities))
		for i, e := range g.entities {
			positions[i] = g.posMap.Get(e).Vec
		}
		return positions
	}

	first := run()
	second := run()

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("agent %d diverged between identical runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestSettleCounter(t *testing.T) {
	g := newDefaultGame(t, 5)
	frames := g.cfg.Blob.SettleFrames

	// Velocities start at zero; each pass counts as a settled frame.
	for i := 0; i <= frames; i++ {
		g.updateSettleAndCrossings()
	}
	for i, e := range g.entities {
		if !g.blobMap.Get(e).Settled {
			t.Errorf("agent %d not settled after %d still frames", i, frames+1)
		}
	}

	// One fast frame resets the counter.
	fast := g.entities[0]
	g.velMap.Get(fast).Vec = r2.Vec{X: 5}
	g.updateSettleAndCrossings()

	blob := g.blobMap.Get(fast)
	if blob.Settled || blob.SettledFor != 0 {
		t.Errorf("fast agent still settled (settledFor=%d)", blob.SettledFor)
	}
}

func TestPourRetargetsAndFlipsPolarities(t *testing.T) {
	g := newDefaultGame(t, 6)

	if err := g.Pour(0, 1); err != nil {
		t.Fatalf("pour: %v", err)
	}

	src := g.scene.Containers[0]
	dst := g.scene.Containers[1]
	if src.Polarities[world.SideRight] != systems.PolarityOutward {
		t.Errorf("source facing wall polarity %v, want outward", src.Polarities[world.SideRight])
	}
	if dst.Polarities[world.SideLeft] != systems.PolarityInward {
		t.Errorf("destination facing wall polarity %v, want inward", dst.Polarities[world.SideLeft])
	}

	want := dst.Target(g.cfg.Blob.SpawnPadding)
	for i, e := range g.entities {
		blob := g.blobMap.Get(e)
		if blob.Home != 1 {
			t.Errorf("agent %d home %d after pour, want 1", i, blob.Home)
		}
		if blob.Settled || blob.SettledFor != 0 {
			t.Errorf("agent %d still settled after pour", i)
		}
		if g.targetMap.Get(e).Bounds != want.Bounds {
			t.Errorf("agent %d target bounds not retargeted", i)
		}
	}
}

func TestPourRejectsSameContainer(t *testing.T) {
	g := newDefaultGame(t, 8)
	if err := g.Pour(0, 0); err == nil {
		t.Error("pouring a container into itself should fail")
	}
}
