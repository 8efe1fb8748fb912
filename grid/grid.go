// Package grid provides the grid definition model used by GRIB2 section 3
// and the query/interpolation engine built on top of it.
package grid

import "fmt"

// lonModulus is the wrap period of the integer longitude coordinate system:
// a full circle of longitude is represented as 2^32 units, so addition and
// subtraction wrap the same way unsigned 32-bit arithmetic would.
const lonModulus = int64(1) << 32

// WrapLon reduces x into [0, 2^32).
func WrapLon(x int64) int64 {
	m := x % lonModulus
	if m < 0 {
		m += lonModulus
	}
	return m
}

// Coord is a geographic point. Lat is degrees; Lon is in the wrapping
// integer-longitude coordinate system (see WrapLon).
type Coord struct {
	Lat float64
	Lon int64
}

// Grid is the equirectangular grid descriptor: origin, per-cell step size,
// dimensions, and the scan-order mapping from (u,v) grid coordinates to a
// linear storage index.
//
// Invariants (enforced by Validate, not by the zero value):
//   - Usize >= 2, Vsize >= 2
//   - Usize*Vsize == number of data points
//   - abs(Scaleu) in {1, Vsize}, abs(Scalev) in {1, Usize}
//   - {abs(Scaleu), abs(Scalev)} == {1, the other dimension}
type Grid struct {
	Origin    Coord
	Pointsize Coord // per-cell step; Pointsize.Lon may be negative
	Usize     int
	Vsize     int
	Scaleu    int
	Scalev    int
	Offset    int
}

// Validate checks the grid invariants against a declared point count.
func (g Grid) Validate(numDataPoints int) error {
	if g.Usize < 2 {
		return fmt.Errorf("grid usize %d < 2", g.Usize)
	}
	if g.Vsize < 2 {
		return fmt.Errorf("grid vsize %d < 2", g.Vsize)
	}
	if g.Usize*g.Vsize != numDataPoints {
		return fmt.Errorf("grid usize*vsize %d != declared data points %d", g.Usize*g.Vsize, numDataPoints)
	}
	au, av := abs(g.Scaleu), abs(g.Scalev)
	if au != 1 && au != g.Vsize {
		return fmt.Errorf("scaleu %d not in {1, vsize=%d}", g.Scaleu, g.Vsize)
	}
	if av != 1 && av != g.Usize {
		return fmt.Errorf("scalev %d not in {1, usize=%d}", g.Scalev, g.Usize)
	}
	if !((au == 1 && av == g.Usize) || (av == 1 && au == g.Vsize)) {
		return fmt.Errorf("{|scaleu|=%d, |scalev|=%d} is not {1, the other dimension}", au, av)
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Index maps grid coordinates (u,v) to a linear storage index, clamping
// out-of-range inputs into the valid domain first.
func (g Grid) Index(u, v int) int {
	u = clamp(u, 0, g.Usize-1)
	v = clamp(v, 0, g.Vsize-1)
	return g.Offset + u*g.Scaleu + v*g.Scalev
}

// Center returns the geographic coordinate of the center of cell (u,v),
// clamping out-of-range inputs first.
func (g Grid) Center(u, v int) Coord {
	u = clamp(u, 0, g.Usize-1)
	v = clamp(v, 0, g.Vsize-1)
	lat := g.Origin.Lat + float64(v)*g.Pointsize.Lat
	lon := WrapLon(g.Origin.Lon + int64(u)*g.Pointsize.Lon)
	return Coord{Lat: lat, Lon: lon}
}

// TransformAxes rewrites a (u-east, v-north) velocity pair expressed in
// grid-axis components into true east/north components, using the signs of
// Scaleu/Scalev to determine each axis' direction of travel.
func (g Grid) TransformAxes(ue, vn float64) (east, north float64) {
	east = ue
	north = vn
	if g.Scaleu < 0 {
		east = -east
	}
	if g.Scalev < 0 {
		north = -north
	}
	return east, north
}

// Equal compares all seven defining fields exactly.
func (g Grid) Equal(other Grid) bool {
	return g == other
}

// NumPoints returns Usize*Vsize.
func (g Grid) NumPoints() int {
	return g.Usize * g.Vsize
}

// uvForIndex inverts Index for the canonical scan orders this module
// produces (|Scaleu|==1 with v varying slower, or |Scalev|==1 with u varying
// slower), reversed when the corresponding scale is negative.
func (g Grid) uvForIndex(idx int) (u, v int) {
	rel := idx - g.Offset
	if abs(g.Scaleu) == 1 {
		u = rel % g.Usize
		if g.Scaleu < 0 {
			u = g.Usize - 1 - u
		}
		v = rel / g.Usize
		if g.Scalev < 0 {
			v = g.Vsize - 1 - v
		}
		return
	}
	v = rel % g.Vsize
	if g.Scalev < 0 {
		v = g.Vsize - 1 - v
	}
	u = rel / g.Vsize
	if g.Scaleu < 0 {
		u = g.Usize - 1 - u
	}
	return
}

// Coordinates returns the latitude and longitude (in degrees, normalized to
// [0,360)) of every cell in storage-index (scan) order.
func (g Grid) Coordinates() (lats, lons []float64) {
	n := g.NumPoints()
	lats = make([]float64, n)
	lons = make([]float64, n)
	for idx := 0; idx < n; idx++ {
		u, v := g.uvForIndex(idx)
		c := g.Center(u, v)
		lats[idx] = c.Lat
		lons[idx] = float64(c.Lon) / float64(lonModulus) * 360
	}
	return lats, lons
}

func (g Grid) String() string {
	return fmt.Sprintf("Grid{usize=%d vsize=%d origin=(%.4f,%d) pointsize=(%.6f,%d) scaleu=%d scalev=%d offset=%d}",
		g.Usize, g.Vsize, g.Origin.Lat, g.Origin.Lon, g.Pointsize.Lat, g.Pointsize.Lon, g.Scaleu, g.Scalev, g.Offset)
}
