// Package telemetry tracks per-window simulation statistics, boundary
// events, and frame timing.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	// EventCrossing marks an agent passing a container boundary.
	EventCrossing EventType = iota
	// EventWallBlock marks a hard-contact correction against a wall.
	EventWallBlock
	// EventFallback marks a degenerate tessellation replaced by the
	// substitute polygon.
	EventFallback
	// EventPour marks a pour gesture between two containers.
	EventPour
	// EventSettled marks an agent crossing the settled threshold.
	EventSettled
)

// Event represents a single telemetry event.
type Event struct {
	Type    EventType
	Tick    int32
	AgentID uint32

	// FromContainer/ToContainer apply to crossing and pour events; -1 for
	// the open world.
	FromContainer int32
	ToContainer   int32
}

// NewCrossingEvent creates a boundary crossing event.
func NewCrossingEvent(tick int32, agentID uint32, from, to int32) Event {
	return Event{
		Type:          EventCrossing,
		Tick:          tick,
		AgentID:       agentID,
		FromContainer: from,
		ToContainer:   to,
	}
}

// NewPourEvent creates a pour gesture event.
func NewPourEvent(tick int32, from, to int32) Event {
	return Event{
		Type:          EventPour,
		Tick:          tick,
		FromContainer: from,
		ToContainer:   to,
	}
}

// NewSettledEvent creates a settled event.
func NewSettledEvent(tick int32, agentID uint32, container int32) Event {
	return Event{
		Type:        EventSettled,
		Tick:        tick,
		AgentID:     agentID,
		ToContainer: container,
	}
}
