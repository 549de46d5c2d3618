package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	crossings      int
	wallBlocks     int
	fallbacks      int
	collisionPairs int
	pours          int
}

// NewCollector creates a stats collector flushing every windowTicks frames.
func NewCollector(windowTicks int32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordCrossing records an agent passing a container boundary.
func (c *Collector) RecordCrossing() {
	c.crossings++
}

// RecordWallBlocks records hard-contact corrections from one frame.
func (c *Collector) RecordWallBlocks(n int) {
	c.wallBlocks += n
}

// RecordFallbacks records degenerate tessellations from one frame.
func (c *Collector) RecordFallbacks(n int) {
	c.fallbacks += n
}

// RecordCollisionPairs records pairwise separation corrections from one frame.
func (c *Collector) RecordCollisionPairs(n int) {
	c.collisionPairs += n
}

// RecordPour records a pour gesture.
func (c *Collector) RecordPour() {
	c.pours++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Sample holds the population-wide values sampled at window end.
type Sample struct {
	Population int
	Settled    int
	InTransit  int
	Pressures  []float64
	Speeds     []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	pMean, pStd, p10, p50, p90 := Distribution(s.Pressures)
	vMean, _, _, _, _ := Distribution(s.Speeds)

	var settledPct float64
	if s.Population > 0 {
		settledPct = float64(s.Settled) / float64(s.Population)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Population: s.Population,
		Settled:    s.Settled,
		SettledPct: settledPct,
		InTransit:  s.InTransit,

		Crossings:      c.crossings,
		WallBlocks:     c.wallBlocks,
		Fallbacks:      c.fallbacks,
		CollisionPairs: c.collisionPairs,
		Pours:          c.pours,

		PressureMean: pMean,
		PressureStd:  pStd,
		PressureP10:  p10,
		PressureP50:  p50,
		PressureP90:  p90,

		SpeedMean: vMean,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.crossings = 0
	c.wallBlocks = 0
	c.fallbacks = 0
	c.collisionPairs = 0
	c.pours = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}
