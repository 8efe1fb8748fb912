package grid

import (
	"fmt"

	"github.com/stormgrid/squall/internal"
)

// LatLonGrid holds the raw fields of a GRIB2 Latitude/Longitude grid
// definition (Template 3.0), the equirectangular grid this module supports.
// Coordinates are stored in micro-degrees (1e-6 degree units), matching the
// wire format.
type LatLonGrid struct {
	ShapeOfEarth uint8
	Ni           uint32 // Number of points along a parallel (longitude)
	Nj           uint32 // Number of points along a meridian (latitude)
	La1          int32  // Latitude of first grid point (micro-degrees)
	Lo1          int32  // Longitude of first grid point (micro-degrees)
	ResFlags     uint8  // Resolution and component flags
	La2          int32  // Latitude of last grid point (micro-degrees)
	Lo2          int32  // Longitude of last grid point (micro-degrees)
	Di           uint32 // i direction increment (micro-degrees), 0 if not given
	Dj           uint32 // j direction increment (micro-degrees), 0 if not given
	ScanningMode uint8  // Scanning mode (Table 3.4)
}

// Resolution-and-component flags (octet 55 of template 3.0), bit numbering
// per WMO convention where bit 1 is the MSB of the octet.
const (
	resFlagDiDjGiven  = 0x20 // bit 3: i and j direction increments are given
	resFlagUVResolved = 0x08 // bit 5: u/v components resolved to east/north
)

// Scanning-mode flags (octet 72 of template 3.0).
const (
	scanFlagINegative  = 0x80 // bit 1: points scan in -i direction
	scanFlagJPositive  = 0x40 // bit 2: points scan in +j direction
	scanFlagJConsecAdj = 0x20 // bit 3: adjacent points in j are consecutive (i varies fastest when clear)
)

// ParseLatLonGrid parses a Lat/Lon grid from template 3.0 data (58 octets,
// following the 14-octet section header already consumed by the caller).
func ParseLatLonGrid(data []byte) (*LatLonGrid, error) {
	if len(data) < 58 {
		return nil, fmt.Errorf("template 3.0 requires at least 58 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	shapeOfEarth, _ := r.Uint8()
	// Scale factor/value of radius (shape 0-5 uses one, 6-9 use major/minor);
	// the core does not need the Earth radius itself, only to step past it.
	r.Skip(15)

	ni, _ := r.Uint32()
	nj, _ := r.Uint32()
	r.Skip(8) // basic angle and subdivisions

	la1, _ := r.Int32()
	lo1, _ := r.Int32()
	resFlags, _ := r.Uint8()
	la2, _ := r.Int32()
	lo2, _ := r.Int32()
	di, _ := r.Uint32()
	dj, _ := r.Uint32()
	scanningMode, _ := r.Uint8()

	return &LatLonGrid{
		ShapeOfEarth: shapeOfEarth,
		Ni:           ni,
		Nj:           nj,
		La1:          la1,
		Lo1:          lo1,
		ResFlags:     resFlags,
		La2:          la2,
		Lo2:          lo2,
		Di:           di,
		Dj:           dj,
		ScanningMode: scanningMode,
	}, nil
}

// TemplateNumber returns 0 for Lat/Lon grids.
func (g *LatLonGrid) TemplateNumber() int {
	return 0
}

// NumPoints returns the total number of grid points.
func (g *LatLonGrid) NumPoints() int {
	return int(g.Ni * g.Nj)
}

func (g *LatLonGrid) String() string {
	return fmt.Sprintf("Lat/Lon grid: %d x %d points (%.4f°, %.4f°) to (%.4f°, %.4f°)",
		g.Ni, g.Nj,
		float64(g.La1)/1e6, float64(g.Lo1)/1e6,
		float64(g.La2)/1e6, float64(g.Lo2)/1e6)
}

// ScanningFlags decodes the scanning mode flags.
func (g *LatLonGrid) ScanningFlags() (iNegative, jPositive, consecutive bool) {
	iNegative = g.ScanningMode&scanFlagINegative != 0
	jPositive = g.ScanningMode&scanFlagJPositive != 0
	consecutive = g.ScanningMode&scanFlagJConsecAdj == 0
	return
}

func normDegLon(microdeg int32) float64 {
	v := float64(microdeg) / 1e6
	for v < 0 {
		v += 360
	}
	for v >= 360 {
		v -= 360
	}
	return v
}

// wrapDeltaLon returns the per-step angular distance in degrees from a to b
// travelling in increasing-longitude direction: the eastward span taken
// modulo 360 (never negative) divided by count-1, or 0 when count <= 1.
func wrapDeltaLon(aMicro, bMicro int32, count int) float64 {
	a := normDegLon(aMicro)
	b := normDegLon(bMicro)
	d := b - a
	for d < 0 {
		d += 360
	}
	if count <= 1 {
		return 0
	}
	return d / float64(count-1)
}

// ToGrid builds the abstract equirectangular Grid this module's query and
// interpolation components operate on, fully honoring the scanning-mode and
// resolution-flag octets (rather than assuming a canonical west-to-east,
// north-to-south scan).
func (g *LatLonGrid) ToGrid() (Grid, error) {
	usize := int(g.Ni)
	vsize := int(g.Nj)
	if usize < 2 || vsize < 2 {
		return Grid{}, fmt.Errorf("grid dimensions too small: ni=%d nj=%d", usize, vsize)
	}

	iNeg, jPos, consecutive := g.ScanningFlags()
	if !consecutive {
		return Grid{}, fmt.Errorf("non-i-consecutive scanning mode (0x%02x) is not supported", g.ScanningMode)
	}

	diGiven := g.ResFlags&resFlagDiDjGiven != 0

	var lonStepMicro float64
	if diGiven && g.Di != 0 {
		lonStepMicro = float64(g.Di)
		if iNeg {
			lonStepMicro = -lonStepMicro
		}
	} else {
		// Scanning in -i runs westward from Lo1 to Lo2, so the span is the
		// eastward one from Lo2 back to Lo1.
		if iNeg {
			lonStepMicro = -wrapDeltaLon(g.Lo2, g.Lo1, usize) * 1e6
		} else {
			lonStepMicro = wrapDeltaLon(g.Lo1, g.Lo2, usize) * 1e6
		}
	}

	latStepDeg := (float64(g.La2) - float64(g.La1)) / 1e6 / float64(vsize-1)
	if diGiven && g.Dj != 0 {
		mag := float64(g.Dj) / 1e6
		if jPos {
			latStepDeg = mag
		} else {
			latStepDeg = -mag
		}
	}

	origin := Coord{
		Lat: float64(g.La1) / 1e6,
		Lon: int64(normDegLon(g.Lo1) / 360 * float64(lonModulus)),
	}
	pointsize := Coord{
		Lat: latStepDeg,
		Lon: int64(lonStepMicro / 1e6 / 360 * float64(lonModulus)),
	}

	// Scanning order: i (u) varies fastest by default (consecutive), so
	// scaleu=1, scalev=usize; if the file declares j varying fastest instead
	// this module rejects it above (non-consecutive), matching the spec's
	// invariant that {|scaleu|,|scalev|} = {1, the other dimension}.
	grd := Grid{
		Origin:    origin,
		Pointsize: pointsize,
		Usize:     usize,
		Vsize:     vsize,
		Scaleu:    1,
		Scalev:    usize,
		Offset:    0,
	}
	return grd, nil
}
