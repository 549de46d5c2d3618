// Package game wires the simulation together: the ECS world, the container
// scene, the per-frame phase pipeline and the render loop.
package game

import (
	"fmt"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/anka-dev/membrane/camera"
	"github.com/anka-dev/membrane/components"
	"github.com/anka-dev/membrane/config"
	"github.com/anka-dev/membrane/systems"
	"github.com/anka-dev/membrane/telemetry"
	"github.com/anka-dev/membrane/ui"
	"github.com/anka-dev/membrane/world"
)

// Options holds runtime configuration for game initialization.
type Options struct {
	Seed           int64
	Headless       bool
	LogStats       bool
	OutputDir      string
	StepsPerUpdate int
}

// Game holds the complete simulation state.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   *config.Config
	opts  Options

	// Entity mapper over the full agent archetype.
	blobMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Claim,
		components.Cell,
		components.Blob,
		components.Target,
	]
	blobFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Claim,
		components.Cell,
		components.Blob,
		components.Target,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	claimMap  *ecs.Map1[components.Claim]
	cellMap   *ecs.Map1[components.Cell]
	blobMap   *ecs.Map1[components.Blob]
	targetMap *ecs.Map1[components.Target]

	// Agents in spawn order. The population is fixed after spawn, so this
	// is the canonical snapshot/grid index order for the whole run.
	entities []ecs.Entity

	// Scene and per-frame wall list
	scene    *world.State
	spawnIdx int

	// Spatial index
	grid *systems.SpatialGrid

	// Physics and tessellation parameters, derived from config once
	forceParams     systems.ForceParams
	collisionParams systems.CollisionParams
	tessParams      systems.TessellationParams
	seek            systems.SeekStrategy

	// Parallel phase state
	parallel *parallelState

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager

	// Crossing detection: last container each agent was inside, by blob id.
	lastContainer map[uint32]int32

	// Scratch buffers reused across frames
	bodies    []systems.CollisionBody
	pressures []float64
	speeds    []float64

	// Rendering
	cam       *camera.Camera
	hud       *ui.HUD
	panel     *ui.ControlPanel
	inspector *ui.InspectorPanel
	perfPanel *ui.PerfPanel
	overlays  *ui.OverlayRegistry
	fan       []rl.Vector2

	// State
	tick     int32
	paused   bool
	speed    int // simulation steps per frame in graphical mode
	nextID   uint32
	selected int32 // index into entities, or -1
}

// NewGameWithOptions creates a game from the loaded config and the given
// runtime options. config.Init must have been called.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	scene, err := world.FromConfig(cfg.Containers)
	if err != nil {
		return nil, fmt.Errorf("building scene: %w", err)
	}

	ecsWorld := ecs.NewWorld()

	g := &Game{
		world: ecsWorld,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		cfg:   cfg,
		opts:  opts,
		blobMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Claim,
			components.Cell,
			components.Blob,
			components.Target,
		](ecsWorld),
		blobFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Claim,
			components.Cell,
			components.Blob,
			components.Target,
		](ecsWorld),
		posMap:    ecs.NewMap1[components.Position](ecsWorld),
		velMap:    ecs.NewMap1[components.Velocity](ecsWorld),
		claimMap:  ecs.NewMap1[components.Claim](ecsWorld),
		cellMap:   ecs.NewMap1[components.Cell](ecsWorld),
		blobMap:   ecs.NewMap1[components.Blob](ecsWorld),
		targetMap: ecs.NewMap1[components.Target](ecsWorld),

		scene:    scene,
		spawnIdx: world.SpawnIndex(cfg.Containers),

		forceParams: systems.ForceParams{
			RepulsionRange:    cfg.Physics.RepulsionRange,
			RepulsionStrength: cfg.Physics.RepulsionStrength,
			WallRange:         cfg.Physics.WallRange,
			WallPush:          cfg.Physics.WallPush,
			SeekStrength:      cfg.Physics.SeekStrength,
			ContactMargin:     cfg.Physics.ContactMargin,
			Damping:           cfg.Movement.Damping,
			MaxSpeed:          cfg.Movement.MaxSpeed,
			MaxForce:          cfg.Movement.MaxForce,
		},
		collisionParams: systems.CollisionParams{
			MinDist: cfg.Physics.MinDist,
			Push:    cfg.Physics.CollisionPush,
		},
		tessParams: systems.TessellationParams{
			BlobRadius:   cfg.Blob.Radius,
			SeedSegments: cfg.Blob.SeedSegments,
		},

		collector:     telemetry.NewCollector(int32(cfg.Telemetry.StatsWindow)),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),

		lastContainer: make(map[uint32]int32),
		speed:         1,
		selected:      -1,
	}

	g.seek = newSeekStrategy(cfg)
	g.grid = systems.NewSpatialGrid(cfg.Derived.WorldW, cfg.Derived.WorldH, cfg.Derived.GridCellSize)
	g.parallel = newParallelState(g.tessParams)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("opening output dir: %w", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if !opts.Headless {
		g.cam = camera.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32,
			float32(cfg.Derived.WorldW), float32(cfg.Derived.WorldH))
		g.hud = ui.NewHUD()
		g.panel = ui.NewControlPanel(10, 100, 210, containerNames(scene))
		g.inspector = ui.NewInspectorPanel(int32(cfg.Screen.Width)-230, 10, 220)
		g.perfPanel = ui.NewPerfPanel(int32(cfg.Screen.Width)-230, 220)
		g.overlays = ui.NewOverlayRegistry()
	}

	g.spawnInitialPopulation()
	g.scene.RebuildWalls()

	return g, nil
}

// newSeekStrategy picks the navigation variant from config.
func newSeekStrategy(cfg *config.Config) systems.SeekStrategy {
	if cfg.Navigation.Mode == "arc" {
		return systems.ArcSeek{
			Lift:    cfg.Navigation.Arc.Lift,
			Falloff: cfg.Navigation.Arc.Falloff,
		}
	}
	return systems.DirectSeek{}
}

func containerNames(s *world.State) []string {
	names := make([]string, len(s.Containers))
	for i, c := range s.Containers {
		names[i] = c.Name
	}
	return names
}

// Update runs input handling plus one or more simulation steps.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}
	for i := 0; i < g.speed; i++ {
		g.simulationStep()
	}
}

// UpdateHeadless runs simulation steps without any input or render work.
func (g *Game) UpdateHeadless() {
	steps := g.opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		g.simulationStep()
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Scene exposes the container scene for rendering and tests.
func (g *Game) Scene() *world.State {
	return g.scene
}

// Unload stops workers and closes output files.
func (g *Game) Unload() {
	g.stopParallelWorkers()
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			Logf("closing output: %v", err)
		}
	}
}
