package systems

import (
	"math"
	"testing"
)

func TestSpatialGridQueryRadius(t *testing.T) {
	grid := NewSpatialGrid(400, 400, 50)

	grid.Insert(0, 100, 100)
	grid.Insert(1, 120, 100) // 20 away
	grid.Insert(2, 100, 160) // 60 away
	grid.Insert(3, 300, 300) // far

	got := grid.QueryRadiusInto(nil, 100, 100, 50, 0)
	if len(got) != 1 {
		t.Fatalf("got %d neighbors, want 1", len(got))
	}
	n := got[0]
	if n.Index != 1 {
		t.Errorf("index = %d, want 1", n.Index)
	}
	if n.DX != 20 || n.DY != 0 {
		t.Errorf("delta = (%v, %v), want (20, 0)", n.DX, n.DY)
	}
	if math.Abs(n.DistSq-400) > 1e-12 {
		t.Errorf("distSq = %v, want 400", n.DistSq)
	}
}

func TestSpatialGridExcludesSelf(t *testing.T) {
	grid := NewSpatialGrid(400, 400, 50)
	grid.Insert(5, 200, 200)

	if got := grid.QueryRadiusInto(nil, 200, 200, 50, 5); len(got) != 0 {
		t.Errorf("self returned as neighbor: %+v", got)
	}
}

func TestSpatialGridSortedByIndex(t *testing.T) {
	grid := NewSpatialGrid(400, 400, 50)

	// Insert out of order, spread across several cells so walk order would
	// differ from index order without the sort.
	grid.Insert(7, 130, 100)
	grid.Insert(2, 90, 110)
	grid.Insert(9, 100, 140)
	grid.Insert(4, 70, 70)

	got := grid.QueryRadiusInto(nil, 100, 100, 60, -1)
	if len(got) != 4 {
		t.Fatalf("got %d neighbors, want 4", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Index <= got[i-1].Index {
			t.Fatalf("neighbors not sorted by index: %v", got)
		}
	}
}

func TestSpatialGridOutOfBoundsClamped(t *testing.T) {
	grid := NewSpatialGrid(400, 400, 50)

	// Positions outside the world must not panic and must stay findable.
	grid.Insert(0, -30, -30)
	grid.Insert(1, 450, 450)

	if got := grid.QueryRadiusInto(nil, -25, -25, 50, -1); len(got) != 1 || got[0].Index != 0 {
		t.Errorf("clamped low entry not found: %+v", got)
	}
	if got := grid.QueryRadiusInto(nil, 445, 445, 50, -1); len(got) != 1 || got[0].Index != 1 {
		t.Errorf("clamped high entry not found: %+v", got)
	}
}

func TestSpatialGridClear(t *testing.T) {
	grid := NewSpatialGrid(400, 400, 50)
	grid.Insert(0, 100, 100)
	grid.Clear()

	if got := grid.QueryRadiusInto(nil, 100, 100, 50, -1); len(got) != 0 {
		t.Errorf("cleared grid returned %+v", got)
	}
}

func TestSpatialGridCapsResults(t *testing.T) {
	grid := NewSpatialGrid(400, 400, 50)
	for i := int32(0); i < MaxQueryResults+20; i++ {
		grid.Insert(i, 100+float64(i%8), 100+float64(i/8))
	}

	got := grid.QueryRadiusInto(nil, 100, 100, 50, -1)
	if len(got) != MaxQueryResults {
		t.Errorf("got %d neighbors, want cap %d", len(got), MaxQueryResults)
	}
}
