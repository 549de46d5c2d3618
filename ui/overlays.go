package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayCellFill       OverlayID = "cell_fill"
	OverlayCellOutlines   OverlayID = "cell_outlines"
	OverlayPressureColors OverlayID = "pressure_colors"
	OverlayWeightColors   OverlayID = "weight_colors"
	OverlayTargets        OverlayID = "targets"
	OverlayVelocity       OverlayID = "velocity"
	OverlayPerf           OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display
	Category    string      // Grouping ("visual", "debug")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlayCellFill,
		Name:        "Cell Fill",
		Description: "Fill claimed cells",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "visual",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayCellOutlines,
		Name:        "Cell Outlines",
		Description: "Outline claimed cells",
		Key:         rl.KeyC,
		KeyLabel:    "C",
		Category:    "visual",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPressureColors,
		Name:        "Pressure Colors",
		Description: "Tint agents by pressure (blue roomy, red compressed)",
		Key:         rl.KeyE,
		KeyLabel:    "E",
		Category:    "visual",
		Exclusive:   []OverlayID{OverlayWeightColors},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayWeightColors,
		Name:        "Weight Colors",
		Description: "Tint agents by claim weight",
		Key:         rl.KeyW,
		KeyLabel:    "W",
		Category:    "visual",
		Exclusive:   []OverlayID{OverlayPressureColors},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayTargets,
		Name:        "Targets",
		Description: "Show attractor points and target bounds",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "debug",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayVelocity,
		Name:        "Velocity",
		Description: "Show velocity vectors",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    "debug",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Perf Panel",
		Description: "Show phase timing breakdown",
		Key:         rl.KeyX,
		KeyLabel:    "X",
		Category:    "debug",
	})

	// Cells visible by default; that is the whole point of the view.
	r.SetEnabled(OverlayCellFill, true)
	r.SetEnabled(OverlayCellOutlines, true)
	r.SetEnabled(OverlayPressureColors, true)
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	desc, ok := r.byID[id]
	if !ok {
		return false
	}

	newState := !r.enabled[id]
	r.enabled[id] = newState

	if newState {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}

	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}
