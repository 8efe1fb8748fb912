package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stormgrid/squall/cache"
	"github.com/stormgrid/squall/collab"
	"github.com/stormgrid/squall/grid"
	"github.com/stormgrid/squall/product"
	"github.com/stormgrid/squall/registry"
	"github.com/stormgrid/squall/tables"
)

// constRepresentation decodes to a grid of a single constant value,
// regardless of its packed input, so tests can assert on exactly the value
// the extractor should read back.
type constRepresentation struct {
	value    float32
	numPoints int
}

func (c *constRepresentation) TemplateNumber() int   { return 0 }
func (c *constRepresentation) NumDataValues() uint32 { return uint32(c.numPoints) }
func (c *constRepresentation) BitsPerValue() uint8   { return 32 }
func (c *constRepresentation) String() string        { return "const" }
func (c *constRepresentation) Decode(packed []byte, bitmap []bool) ([]float32, error) {
	out := make([]float32, c.numPoints)
	for i := range out {
		out[i] = c.value
	}
	return out, nil
}

// straightFlightPlan is a two-waypoint plan flown in a straight line at a
// constant altitude over a fixed duration.
type straightFlightPlan struct {
	from, to   grid.Coord
	altitude   float64
	departure  int64
	durationS  int64
}

func (p *straightFlightPlan) Waypoints() []collab.Waypoint {
	return []collab.Waypoint{
		{Coord: p.from, Altitude: p.altitude, PlannedFlightTime: p.departure},
		{Coord: p.to, Altitude: p.altitude, PlannedFlightTime: p.departure + p.durationS},
	}
}

func (p *straightFlightPlan) DepartureTime() int64 { return p.departure }

func (p *straightFlightPlan) LegBoundingBox(i int) (minLat, maxLat float64, minLon, maxLon int64) {
	return p.from.Lat, p.to.Lat, p.from.Lon, p.to.Lon
}

// alwaysDaySun reports every point as broad daylight, sidestepping real
// solar geometry.
type alwaysDaySun struct{}

func (alwaysDaySun) Times(year, month, day int, point grid.Coord) (float64, float64, float64, float64, bool) {
	return 6, 18, 5.5, 18.5, false
}

func (alwaysDaySun) Phase(year, month, day int, hourOfDay float64, point grid.Coord) collab.DayPhase {
	return collab.PhaseDay
}

// flatDEM reports zero elevation everywhere.
type flatDEM struct{}

func (flatDEM) Elevation(lat float64, lon int64) float64 { return 0 }
func (flatDEM) RouteProfile(lat0 float64, lon0 int64, lat1 float64, lon1 int64, n int) []float64 {
	out := make([]float64, n)
	return out
}

func testGrid() grid.Grid {
	return grid.Grid{
		Origin:    grid.Coord{Lat: -10, Lon: 0},
		Pointsize: grid.Coord{Lat: 1, Lon: int64(1) << 32 / 360},
		Usize:     20,
		Vsize:     20,
		Scaleu:    1,
		Scalev:    20,
	}
}

func newConstLayer(t *testing.T, dir string, discipline, category, number uint8, surface1Type uint8, surface1Value float64, effTime, refTime int64, value float32) *registry.Layer {
	t.Helper()
	g := testGrid()
	n := g.NumPoints()

	filename := filepath.Join(dir, tables.LookupParameter(discipline, category, number).ID()+".bin")
	if err := os.WriteFile(filename, make([]byte, n), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return &registry.Layer{
		Parameter:      tables.LookupParameter(discipline, category, number),
		Grid:           g,
		RefTime:        refTime,
		EffTime:        effTime,
		Surface1:       product.Surface{Type: surface1Type, Value: surface1Value},
		Representation: &constRepresentation{value: value, numPoints: n},
		Source:         registry.PayloadLocator{Filename: filename, Offset: 0, Length: int64(n)},
	}
}

func buildRegistry(layers ...*registry.Layer) *registry.Registry {
	reg := registry.New()
	for _, l := range layers {
		if err := reg.AddLayer(l); err != nil {
			panic(err)
		}
	}
	return reg
}

func TestExtractProducesOnePointPerLeg(t *testing.T) {
	const efftime = int64(1700000000)
	dir := t.TempDir()

	layers := []*registry.Layer{
		newConstLayer(t, dir, 0, 0, 0, 1, 0, efftime, efftime, 15.0),  // temperature, surface
		newConstLayer(t, dir, 0, 2, 2, 1, 0, efftime, efftime, 3.0),   // u-wind, surface
		newConstLayer(t, dir, 0, 2, 3, 1, 0, efftime, efftime, -1.0),  // v-wind, surface
		newConstLayer(t, dir, 0, 1, 1, 1, 0, efftime, efftime, 50.0),  // relative humidity, surface
		newConstLayer(t, dir, 0, 7, 0, 1, 0, efftime, efftime, 2.0),   // lifted index
		newConstLayer(t, dir, 0, 7, 6, 1, 0, efftime, efftime, 100.0), // CAPE
		newConstLayer(t, dir, 0, 7, 7, 1, 0, efftime, efftime, 10.0),  // CIN
	}
	reg := buildRegistry(layers...)

	store := cache.NewStore()
	defer store.Close()

	plan := &straightFlightPlan{
		from:      grid.Coord{Lat: 0, Lon: 0},
		to:        grid.Coord{Lat: 2, Lon: int64(2) << 32 / 360},
		altitude:  3000,
		departure: efftime,
		durationS: 3600,
	}

	extractor := NewExtractor(reg, store, plan, alwaysDaySun{}, flatDEM{}, tables.StandardAtmosphere{})

	profile, err := extractor.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(profile.Points) == 0 {
		t.Fatal("expected at least one sampled point")
	}

	first := profile.Points[0]
	if first.WaypointIndex != 0 {
		t.Errorf("first point WaypointIndex = %d, want 0", first.WaypointIndex)
	}
	if first.Flags&FlagDay == 0 {
		t.Errorf("expected FlagDay set, got flags=%v", first.Flags)
	}

	last := profile.Points[len(profile.Points)-1]
	if last.CumulativeDistanceNM <= 0 {
		t.Errorf("expected positive cumulative distance by the last point, got %v", last.CumulativeDistanceNM)
	}

	if profile.MinEffTime > profile.MaxEffTime {
		t.Errorf("MinEffTime %d > MaxEffTime %d", profile.MinEffTime, profile.MaxEffTime)
	}
}

func TestExtractRejectsTooFewWaypoints(t *testing.T) {
	reg := registry.New()
	store := cache.NewStore()
	defer store.Close()

	plan := &singleWaypointPlan{}
	extractor := NewExtractor(reg, store, plan, alwaysDaySun{}, flatDEM{}, tables.StandardAtmosphere{})

	if _, err := extractor.Extract(); err == nil {
		t.Fatal("expected error for a flight plan with fewer than 2 waypoints")
	}
}

type singleWaypointPlan struct{}

func (singleWaypointPlan) Waypoints() []collab.Waypoint {
	return []collab.Waypoint{{Coord: grid.Coord{Lat: 0, Lon: 0}}}
}
func (singleWaypointPlan) DepartureTime() int64 { return 0 }
func (singleWaypointPlan) LegBoundingBox(i int) (float64, float64, int64, int64) {
	return 0, 0, 0, 0
}

func TestScalarAtReturnsNaNWithoutCandidates(t *testing.T) {
	reg := registry.New()
	store := cache.NewStore()
	defer store.Close()

	extractor := NewExtractor(reg, store, &straightFlightPlan{}, alwaysDaySun{}, flatDEM{}, tables.StandardAtmosphere{})
	got := extractor.scalarAt(paramTemperature, 0, 0, 0)
	if got == got {
		t.Errorf("expected NaN for a parameter with no registered layers, got %v", got)
	}
}
