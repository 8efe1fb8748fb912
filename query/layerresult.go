package query

import (
	"math"

	"github.com/stormgrid/squall/grid"
)

// LayerResult is a dense width x height grid of values sampled from a
// source grid over a bounding box. Cells outside any source cell carry
// NaN. Once built, a LayerResult is immutable — callers must not mutate
// Values.
type LayerResult struct {
	Values []float32
	Width  int
	Height int
	BBox   BoundingBox

	EffTime        int64
	MinRefTime     int64
	MaxRefTime     int64
	Surface1Value  float64
}

// At returns the value at (x,y) in the result grid, clamping out-of-range
// coordinates to the nearest edge.
func (r *LayerResult) At(x, y int) float32 {
	if x < 0 {
		x = 0
	}
	if x >= r.Width {
		x = r.Width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= r.Height {
		y = r.Height - 1
	}
	return r.Values[y*r.Width+x]
}

// Build copies the subgrid addressed by urange/vrange out of source (in
// scan order, per g.Index) into a new LayerResult, honoring u-axis wrap.
func Build(g grid.Grid, source []float32, urange, vrange IndexRange, bbox BoundingBox, efftime, minRef, maxRef int64, surface1value float64) *LayerResult {
	width := urange.Count
	height := vrange.Count
	values := make([]float32, width*height)
	for i := range values {
		values[i] = float32(math.NaN())
	}

	for row := 0; row < height; row++ {
		v := vrange.Start + row
		for col := 0; col < width; col++ {
			u := (urange.Start + col) % g.Usize
			idx := g.Index(u, v)
			if idx >= 0 && idx < len(source) {
				values[row*width+col] = source[idx]
			}
		}
	}

	return &LayerResult{
		Values:        values,
		Width:         width,
		Height:        height,
		BBox:          bbox,
		EffTime:       efftime,
		MinRefTime:    minRef,
		MaxRefTime:    maxRef,
		Surface1Value: surface1value,
	}
}
