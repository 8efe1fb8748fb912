// Package query projects a Layer's grid onto a bounding box, producing a
// dense LayerResult, and samples that result with bilinear interpolation.
package query

import (
	"math"

	"github.com/stormgrid/squall/grid"
)

// BoundingBox is a geographic query window: latitude in degrees, longitude
// in the grid package's wrapping integer coordinate system.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon int64
}

// IndexRange is an inclusive grid-index range along one axis, expressed
// with an explicit count rather than just min/max so wrapped ranges (where
// max < min in raw index terms) are unambiguous.
type IndexRange struct {
	Start int
	Count int
}

// lonModulus mirrors grid's wrap period; a local constant avoids exporting
// an internal from the grid package.
const lonModulus = int64(1) << 32

// Window computes the inclusive grid-index range [umin..umax]x[vmin..vmax]
// whose cell centers lie within bbox, expanded by half a cell, honoring
// longitude wrap.
func Window(g grid.Grid, bbox BoundingBox) (urange, vrange IndexRange) {
	halfLon := absInt64(g.Pointsize.Lon) / 2
	halfLat := math.Abs(g.Pointsize.Lat) / 2

	vrange = latRange(g, bbox.MinLat-halfLat, bbox.MaxLat+halfLat)

	totalLonSpan := absInt64(g.Pointsize.Lon) * int64(g.Usize)
	if totalLonSpan >= lonModulus {
		// Global coverage: every longitude is in range.
		urange = IndexRange{Start: 0, Count: g.Usize}
		return urange, vrange
	}

	direct := lonRange(g, grid.WrapLon(bbox.MinLon-halfLon), grid.WrapLon(bbox.MaxLon+halfLon))
	shifted := lonRange(g, grid.WrapLon(bbox.MinLon-halfLon+360*unitPerDegree()), grid.WrapLon(bbox.MaxLon+halfLon+360*unitPerDegree()))

	if shifted.Count > direct.Count {
		urange = shifted
	} else {
		urange = direct
	}
	return urange, vrange
}

// unitPerDegree returns the scale of one degree of longitude in the
// integer-micro-degree coordinate system (2^32 units per 360 degrees).
func unitPerDegree() int64 {
	return lonModulus / 360
}

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// latRange finds the smallest v such that Center(0,v).Lat >= minLat and the
// largest v such that Center(0,v).Lat <= maxLat, over the grid's v axis,
// independent of whether Pointsize.Lat is positive or negative.
func latRange(g grid.Grid, minLat, maxLat float64) IndexRange {
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	start := -1
	end := -1
	for v := 0; v < g.Vsize; v++ {
		lat := g.Center(0, v).Lat
		if lat >= minLat && lat <= maxLat {
			if start == -1 {
				start = v
			}
			end = v
		}
	}
	if start == -1 {
		return IndexRange{Start: 0, Count: 0}
	}
	return IndexRange{Start: start, Count: end - start + 1}
}

// lonRange finds the contiguous (wrapping) run of u indices whose center
// longitude falls within [minLon, maxLon] modulo 2^32.
func lonRange(g grid.Grid, minLon, maxLon int64) IndexRange {
	count := 0
	start := -1
	for u := 0; u < g.Usize; u++ {
		lon := g.Center(u, 0).Lon
		if inWrappedRange(lon, minLon, maxLon) {
			if start == -1 {
				start = u
			}
			count++
		}
	}
	if start == -1 {
		return IndexRange{Start: 0, Count: 0}
	}
	// A run that contains u=0 may begin at the east end of the grid and wrap
	// around; walk back to its first index.
	if start == 0 && count < g.Usize {
		for inWrappedRange(g.Center((start-1+g.Usize)%g.Usize, 0).Lon, minLon, maxLon) {
			start = (start - 1 + g.Usize) % g.Usize
		}
	}
	return IndexRange{Start: start, Count: count}
}

func inWrappedRange(x, lo, hi int64) bool {
	if lo <= hi {
		return x >= lo && x <= hi
	}
	return x >= lo || x <= hi
}
