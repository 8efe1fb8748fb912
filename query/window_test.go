package query

import (
	"testing"

	"github.com/stormgrid/squall/grid"
)

func globalGrid() grid.Grid {
	// usize=360, vsize=181, pointsize=1 degree, origin at (90, 0), scanning
	// north-to-south row-major (v varies with latitude, u with longitude).
	return grid.Grid{
		Origin:    grid.Coord{Lat: 90, Lon: 0},
		Pointsize: grid.Coord{Lat: -1, Lon: int64(1) << 32 / 360},
		Usize:     360,
		Vsize:     181,
		Scaleu:    1,
		Scalev:    360,
		Offset:    0,
	}
}

func TestWindowGridWrap(t *testing.T) {
	g := globalGrid()
	bbox := BoundingBox{MinLat: -10, MaxLat: 10, MinLon: grid.WrapLon(-int64(1) << 32 / 360), MaxLon: grid.WrapLon(int64(1) << 32 / 360)}

	urange, _ := Window(g, bbox)
	if urange.Count != 3 {
		t.Fatalf("expected width 3, got %d", urange.Count)
	}

	got := make([]int, 3)
	for i := 0; i < 3; i++ {
		got[i] = (urange.Start + i) % g.Usize
	}
	want := []int{359, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d: got source u=%d, want %d", i, got[i], want[i])
		}
	}
}

func TestBuildHonoursWrap(t *testing.T) {
	g := globalGrid()
	source := make([]float32, g.NumPoints())
	for u := 0; u < g.Usize; u++ {
		for v := 0; v < g.Vsize; v++ {
			source[g.Index(u, v)] = float32(u)
		}
	}

	bbox := BoundingBox{MinLat: -1, MaxLat: 1, MinLon: grid.WrapLon(-int64(1) << 32 / 360), MaxLon: grid.WrapLon(int64(1) << 32 / 360)}
	urange, vrange := Window(g, bbox)
	result := Build(g, source, urange, vrange, bbox, 0, 0, 0, 0)

	if result.Width != 3 {
		t.Fatalf("expected width 3, got %d", result.Width)
	}
	row := result.Height / 2
	wantVals := []float32{359, 0, 1}
	for col := 0; col < 3; col++ {
		if got := result.At(col, row); got != wantVals[col] {
			t.Errorf("col %d: got %v, want %v", col, got, wantVals[col])
		}
	}
}

func TestWindowMinimalGrid(t *testing.T) {
	g := grid.Grid{
		Origin:    grid.Coord{Lat: 1, Lon: 0},
		Pointsize: grid.Coord{Lat: -1, Lon: int64(1) << 32 / 2},
		Usize:     2,
		Vsize:     2,
		Scaleu:    1,
		Scalev:    2,
	}
	bbox := BoundingBox{MinLat: -1, MaxLat: 2, MinLon: 0, MaxLon: int64(1) << 32}
	urange, vrange := Window(g, bbox)
	if urange.Count == 0 || vrange.Count == 0 {
		t.Fatalf("expected non-empty window on minimal grid, got urange=%v vrange=%v", urange, vrange)
	}
}
