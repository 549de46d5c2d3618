// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig      `yaml:"screen"`
	World      WorldConfig       `yaml:"world"`
	Movement   MovementConfig    `yaml:"movement"`
	Physics    PhysicsConfig     `yaml:"physics"`
	Blob       BlobConfig        `yaml:"blob"`
	Navigation NavigationConfig  `yaml:"navigation"`
	Containers []ContainerConfig `yaml:"containers"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// World can be larger than the screen; camera handles the viewport.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// MovementConfig holds per-agent kinematic limits.
type MovementConfig struct {
	MaxSpeed float64 `yaml:"max_speed"` // Velocity clamp after damping
	MaxForce float64 `yaml:"max_force"` // Accumulated force clamp per frame
	Damping  float64 `yaml:"damping"`   // Velocity retention factor per frame (0..1)
}

// PhysicsConfig holds the force model constants.
type PhysicsConfig struct {
	RepulsionRange    float64 `yaml:"repulsion_range"`    // Pairwise repulsion cutoff
	RepulsionStrength float64 `yaml:"repulsion_strength"` // Repulsion magnitude at zero distance
	WallRange         float64 `yaml:"wall_range"`         // Soft wall force sensing distance
	WallPush          float64 `yaml:"wall_push"`          // Soft wall force peak magnitude
	SeekStrength      float64 `yaml:"seek_strength"`      // Constant seek force magnitude
	ContactMargin     float64 `yaml:"contact_margin"`     // Hard wall contact distance
	MinDist           float64 `yaml:"min_dist"`           // Collision separation distance
	CollisionPush     float64 `yaml:"collision_push"`     // Velocity nudge per collision correction
}

// BlobConfig holds agent creation parameters.
type BlobConfig struct {
	Radius        float64 `yaml:"radius"`         // Nominal body radius; drives target area and tessellation
	Count         int     `yaml:"count"`          // Initial population in the spawn container
	DefaultWeight float64 `yaml:"default_weight"` // Inherent claim weight
	WeightJitter  float64 `yaml:"weight_jitter"`  // Uniform +/- jitter applied at spawn
	SpawnPadding  float64 `yaml:"spawn_padding"`  // Inset from container walls at spawn
	SettleSpeed   float64 `yaml:"settle_speed"`   // Speed below which a frame counts as settled
	SettleFrames  int     `yaml:"settle_frames"`  // Consecutive frames before Settled flips
	SeedSegments  int     `yaml:"seed_segments"`  // Vertices of the tessellation seed circle
}

// NavigationConfig selects and tunes the seek strategy.
type NavigationConfig struct {
	Mode string    `yaml:"mode"` // "demon" (direct polarity-gated seek) or "arc"
	Arc  ArcConfig `yaml:"arc"`
}

// ArcConfig holds the bowed-path strategy parameters.
type ArcConfig struct {
	Lift         float64 `yaml:"lift"`          // Max bow angle in radians at long range
	Falloff      float64 `yaml:"falloff"`       // Distance scale over which the bow straightens
	LaunchMean   float64 `yaml:"launch_mean"`   // Mean launch delay in ticks
	LaunchStddev float64 `yaml:"launch_stddev"` // Gaussian stagger of launch ticks
}

// ContainerConfig describes one container of the scene layout.
type ContainerConfig struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// Polarities maps side name (top/bottom/left/right) to polarity name
	// (solid/permeable/inward/outward). Missing sides default to solid.
	Polarities map[string]string `yaml:"polarities"`
	// Open names a side with no wall at all, or empty.
	Open string `yaml:"open"`
	// Spawn marks the container the initial population spawns into.
	Spawn bool `yaml:"spawn"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Frames per perf report
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32    float32 // Screen.Width as float32
	ScreenH32    float32 // Screen.Height as float32
	WorldW       float64 // Effective world width
	WorldH       float64 // Effective world height
	GridCellSize float64 // Spatial grid cell size, from the largest query radius
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Set installs an already-built configuration as the global one, recomputing
// derived values. Used by tooling that sweeps parameters programmatically.
func Set(cfg *Config) {
	cfg.computeDerived()
	global = cfg
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = float64(worldW)
	c.Derived.WorldH = float64(worldH)

	// Clamp misuse that would silently corrupt every later pressure
	// computation.
	if c.Blob.Radius <= 0 {
		c.Blob.Radius = 1e-3
	}
	if c.Blob.DefaultWeight <= 0 {
		c.Blob.DefaultWeight = 1e-3
	}
	if c.Movement.Damping <= 0 || c.Movement.Damping > 1 {
		c.Movement.Damping = 0.92
	}
	if c.Physics.MinDist <= 0 {
		c.Physics.MinDist = 2 * c.Blob.Radius
	}

	// The grid cell must cover the largest neighbor query: repulsion range,
	// collision distance, or the tessellation influence radius.
	cell := c.Physics.RepulsionRange
	if c.Physics.MinDist > cell {
		cell = c.Physics.MinDist
	}
	if influence := 6 * c.Blob.Radius; influence > cell {
		cell = influence
	}
	if cell <= 0 {
		cell = 50
	}
	c.Derived.GridCellSize = cell
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
