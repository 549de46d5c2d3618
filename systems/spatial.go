package systems

import "sort"

// Neighbor holds a nearby agent with precomputed spatial data, indexed into
// the per-frame snapshot slice. Precomputing the delta and squared distance
// avoids redoing it in the force and tessellation passes.
type Neighbor struct {
	Index  int32
	DX, DY float64
	DistSq float64
}

// MaxQueryResults caps the number of neighbors returned by spatial queries
// so density spikes cannot cause unbounded work.
const MaxQueryResults = 64

// gridEntry stores a snapshot index with its position so queries need no
// component lookups.
type gridEntry struct {
	idx  int32
	x, y float64
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid over a
// bounded world. Rebuilt from the frame snapshot every tick.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]gridEntry
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]gridEntry, cols*rows)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds a snapshot index at the given position.
func (g *SpatialGrid) Insert(idx int32, x, y float64) {
	i := g.cellIndex(x, y)
	g.cells[i] = append(g.cells[i], gridEntry{idx: idx, x: x, y: y})
}

// QueryRadiusInto finds entries within radius of (x, y), excluding the
// given index, and appends them to dst (up to MaxQueryResults). Results are
// sorted by snapshot index so downstream clipping and force loops iterate
// in a deterministic order. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude int32) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)

	radiusSq := radius * radius
	start := len(dst)

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}

			for _, e := range g.cells[row*g.cols+col] {
				if e.idx == exclude {
					continue
				}
				dx := e.x - x
				dy := e.y - y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: e.idx, DX: dx, DY: dy, DistSq: distSq})
					if len(dst)-start >= MaxQueryResults {
						sortNeighbors(dst[start:])
						return dst
					}
				}
			}
		}
	}

	sortNeighbors(dst[start:])
	return dst
}

// sortNeighbors orders by snapshot index ascending.
func sortNeighbors(n []Neighbor) {
	sort.Slice(n, func(i, j int) bool { return n[i].Index < n[j].Index })
}

// cellIndex returns the flat index for a world position, clamped to the grid.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
