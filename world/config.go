package world

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/anka-dev/membrane/config"
	"github.com/anka-dev/membrane/systems"
)

// ParseSide maps a config side name to a Side. Empty means no open side.
func ParseSide(name string) (Side, error) {
	switch name {
	case "":
		return SideNone, nil
	case "top":
		return SideTop, nil
	case "bottom":
		return SideBottom, nil
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	}
	return SideNone, fmt.Errorf("world: unknown side %q", name)
}

// ParsePolarity maps a config polarity name to a Polarity. Empty means solid.
func ParsePolarity(name string) (systems.Polarity, error) {
	switch name {
	case "", "solid":
		return systems.PolaritySolid, nil
	case "permeable":
		return systems.PolarityPermeable, nil
	case "inward":
		return systems.PolarityInward, nil
	case "outward":
		return systems.PolarityOutward, nil
	}
	return systems.PolaritySolid, fmt.Errorf("world: unknown polarity %q", name)
}

// FromConfig builds the world state from the configured container layout.
func FromConfig(cfgs []config.ContainerConfig) (*State, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("world: no containers configured")
	}

	containers := make([]*Container, 0, len(cfgs))
	for i, cc := range cfgs {
		if cc.Width <= 0 || cc.Height <= 0 {
			return nil, fmt.Errorf("world: container %d (%s) has non-positive size %gx%g",
				i, cc.Name, cc.Width, cc.Height)
		}
		c := NewContainer(cc.Name, orb.Bound{
			Min: orb.Point{cc.X, cc.Y},
			Max: orb.Point{cc.X + cc.Width, cc.Y + cc.Height},
		})

		open, err := ParseSide(cc.Open)
		if err != nil {
			return nil, fmt.Errorf("container %d (%s): %w", i, cc.Name, err)
		}
		c.Open = open

		for sideName, polName := range cc.Polarities {
			side, err := ParseSide(sideName)
			if err != nil || side == SideNone {
				return nil, fmt.Errorf("container %d (%s): bad polarity side %q", i, cc.Name, sideName)
			}
			pol, err := ParsePolarity(polName)
			if err != nil {
				return nil, fmt.Errorf("container %d (%s): %w", i, cc.Name, err)
			}
			c.Polarities[side] = pol
		}
		containers = append(containers, c)
	}

	return NewState(containers...), nil
}

// SpawnIndex returns the index of the container marked for the initial
// population, defaulting to the first.
func SpawnIndex(cfgs []config.ContainerConfig) int {
	for i, cc := range cfgs {
		if cc.Spawn {
			return i
		}
	}
	return 0
}
