package world

import (
	"fmt"

	"github.com/anka-dev/membrane/systems"
)

// State is the explicit world registry: every container in the scene plus
// the wall list rebuilt from them each frame. It is passed by reference
// into the frame update; nothing here is package-global.
type State struct {
	Containers []*Container

	walls []systems.Wall
}

// NewState creates a world registry over the given containers.
func NewState(containers ...*Container) *State {
	return &State{
		Containers: containers,
		walls:      make([]systems.Wall, 0, len(containers)*4),
	}
}

// RebuildWalls regenerates the global wall list from container geometry.
// Call once per frame before the update; the returned slice stays valid
// until the next rebuild. Container order is registration order, so the
// wall sequence is stable frame to frame.
func (s *State) RebuildWalls() []systems.Wall {
	s.walls = s.walls[:0]
	for _, c := range s.Containers {
		s.walls = c.AppendWalls(s.walls)
	}
	return s.walls
}

// Walls returns the wall list from the last rebuild.
func (s *State) Walls() []systems.Wall {
	return s.walls
}

// Container returns the container at index i, or an error when out of
// range. Missing-container handling lives here at the orchestration layer;
// the core systems never see container ids.
func (s *State) Container(i int) (*Container, error) {
	if i < 0 || i >= len(s.Containers) {
		return nil, fmt.Errorf("world: no container %d (have %d)", i, len(s.Containers))
	}
	return s.Containers[i], nil
}

// Pour opens a one-way membrane from the src container into dst: the src
// wall facing dst flips outward (agents can leave, none re-enter) and the
// dst wall facing src flips inward (agents can enter, none escape). The
// walls between the pair become a Maxwell's Demon that only passes agents
// in the pour direction. Takes effect on the next RebuildWalls.
func (s *State) Pour(src, dst int) error {
	if src == dst {
		return fmt.Errorf("world: pour needs two distinct containers, got %d", src)
	}
	from, err := s.Container(src)
	if err != nil {
		return err
	}
	to, err := s.Container(dst)
	if err != nil {
		return err
	}

	from.Polarities[from.FacingSide(to)] = systems.PolarityOutward
	to.Polarities[to.FacingSide(from)] = systems.PolarityInward
	return nil
}

// Seal restores every wall of the container to solid, ending any pour
// involving it.
func (s *State) Seal(i int) error {
	c, err := s.Container(i)
	if err != nil {
		return err
	}
	for side := range c.Polarities {
		c.Polarities[side] = systems.PolaritySolid
	}
	return nil
}
