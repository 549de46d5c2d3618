// Package main provides CMA-ES optimization for simulation parameters that
// produce fast, stable pours.
package main

import (
	"github.com/anka-dev/membrane/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Hard-contact margin and blob radius are locked: changing them reshapes the
// problem rather than tuning it.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Force model
			{Name: "repulsion_strength", Path: "physics.repulsion_strength", Min: 0.5, Max: 3.0, Default: 1.5},
			{Name: "repulsion_range", Path: "physics.repulsion_range", Min: 25.0, Max: 90.0, Default: 50.0},
			{Name: "wall_push", Path: "physics.wall_push", Min: 0.5, Max: 4.0, Default: 2.0},
			{Name: "seek_strength", Path: "physics.seek_strength", Min: 0.3, Max: 1.5, Default: 0.8},
			{Name: "collision_push", Path: "physics.collision_push", Min: 0.1, Max: 1.0, Default: 0.5},
			// Kinematics
			{Name: "max_speed", Path: "movement.max_speed", Min: 2.0, Max: 8.0, Default: 4.0},
			{Name: "max_force", Path: "movement.max_force", Min: 0.5, Max: 2.0, Default: 1.0},
			{Name: "damping", Path: "movement.damping", Min: 0.85, Max: 0.97, Default: 0.92},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Physics.RepulsionStrength = clamped[0]
	cfg.Physics.RepulsionRange = clamped[1]
	cfg.Physics.WallPush = clamped[2]
	cfg.Physics.SeekStrength = clamped[3]
	cfg.Physics.CollisionPush = clamped[4]

	cfg.Movement.MaxSpeed = clamped[5]
	cfg.Movement.MaxForce = clamped[6]
	cfg.Movement.Damping = clamped[7]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Physics.RepulsionStrength,
		cfg.Physics.RepulsionRange,
		cfg.Physics.WallPush,
		cfg.Physics.SeekStrength,
		cfg.Physics.CollisionPush,
		cfg.Movement.MaxSpeed,
		cfg.Movement.MaxForce,
		cfg.Movement.Damping,
	}
}
