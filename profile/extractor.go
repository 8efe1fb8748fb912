// Package profile samples interpolated weather fields along a flight-plan
// route, producing a sequence of WeatherProfilePoints.
package profile

import (
	"fmt"
	"math"
	"time"

	"github.com/stormgrid/squall/cache"
	"github.com/stormgrid/squall/collab"
	"github.com/stormgrid/squall/grid"
	"github.com/stormgrid/squall/interp"
	"github.com/stormgrid/squall/query"
	"github.com/stormgrid/squall/registry"
	"github.com/stormgrid/squall/tables"
)

// Parameter identities for the fields the extractor samples, WMO Table 4.2
// (discipline.category.number).
const (
	paramTemperature  = "0.0.0"
	paramUWind        = "0.2.2"
	paramVWind        = "0.2.3"
	paramRelHumidity  = "0.1.1"
	paramLiftedIndex  = "0.7.0"
	paramCAPE         = "0.7.6"
	paramCIN          = "0.7.7"
)

const (
	earthRadiusNM    = 3440.065
	windShearSampleNM = 50.0
)

// Surface is one pressure level's sampled fields at a profile point.
type Surface struct {
	UWind, VWind        float64
	TempC                float64
	RelHumidity          float64
	HorizontalWindShear  float64
	VerticalWindShear    float64
}

// Flags is a bitmask of categorical conditions at a profile point.
type Flags uint32

const (
	FlagDay Flags = 1 << iota
	FlagDusk
	FlagNight
	FlagDawn
	FlagRain
	FlagFreezingRain
	FlagIcePellets
	FlagSnow
)

// WeatherProfilePoint is one sampled point along a flight-plan route.
type WeatherProfilePoint struct {
	WaypointIndex        int
	LegLocalDistanceNM   float64
	CumulativeDistanceNM float64
	Point                grid.Coord
	EffTime              int64
	AltitudeM            float64

	IsothermAltitudeM    float64
	TropopauseAltitudeM  float64
	BoundaryLayerHeightM float64

	CloudCoverBoundary, CloudCoverLow, CloudCoverMid, CloudCoverHigh, CloudCoverConvective float64

	PrecipTotalMM, PrecipRateMMH, ConvectivePrecipRateMMH float64

	LiftedIndex, CAPE, CIN float64

	Flags Flags

	Levels [27]Surface
}

// WeatherProfile is the accumulated result of sampling a whole flight plan.
type WeatherProfile struct {
	Points []WeatherProfilePoint

	MinEffTime, MaxEffTime int64
	MinRefTime, MaxRefTime int64
}

// parameterSeries is the active interpolator cached for one parameter
// (optionally at one pressure level), and the time window it remains valid
// for before a fresh registry search is needed.
type parameterSeries struct {
	fit               *interp.LayerInterpolateResult
	window            query.BoundingBox
	minEff, maxEff    int64
}

// Extractor samples interpolated fields along a FlightPlan's route.
type Extractor struct {
	Registry *registry.Registry
	Cache    *cache.Store
	Plan     collab.FlightPlan
	Sun      collab.SunTwilight
	DEM      collab.DEM
	Atmo     collab.IcaoAtmosphere

	series map[string]*parameterSeries
}

// NewExtractor constructs an Extractor over the given collaborators.
func NewExtractor(reg *registry.Registry, store *cache.Store, plan collab.FlightPlan, sun collab.SunTwilight, dem collab.DEM, atmo collab.IcaoAtmosphere) *Extractor {
	return &Extractor{
		Registry: reg,
		Cache:    store,
		Plan:     plan,
		Sun:      sun,
		DEM:      dem,
		Atmo:     atmo,
		series:   make(map[string]*parameterSeries),
	}
}

// seriesKey identifies a cached interpolator series by parameter id and the
// fixed surface1 it's keyed against (zero value for surface fields).
func seriesKey(parameterID string, surface1Type uint8, surface1Value float64) string {
	return fmt.Sprintf("%s@%d:%g", parameterID, surface1Type, surface1Value)
}

// resolve returns the active interpolator for parameterID/surface at
// effTime/surface1Value, refitting against the registry if no cached fit
// covers effTime.
func (e *Extractor) resolve(parameterID string, surface1Type uint8, surface1Value, pointLat float64, pointLon int64, effTime int64) (*interp.LayerInterpolateResult, int, int, error) {
	key := seriesKey(parameterID, surface1Type, surface1Value)
	active := e.series[key]
	if active != nil && effTime >= active.minEff && effTime <= active.maxEff {
		return fitCoords(active.fit, active.window, pointLat, pointLon)
	}

	candidates := e.Registry.Nearest(parameterID, registry.Key{Surface2Type: 0, Surface2Value: 0}, effTime, surface1Value)
	if len(candidates) == 0 {
		return nil, 0, 0, errNoData
	}

	bbox := query.BoundingBox{MinLat: pointLat - 1, MaxLat: pointLat + 1, MinLon: pointLon - lonDelta, MaxLon: pointLon + lonDelta}

	samples := make([]interp.Sample, 0, len(candidates))
	var window query.BoundingBox
	for i, l := range candidates {
		urange, vrange := query.Window(l.Grid, bbox)
		decoded, err := e.Cache.Load(l)
		if err != nil {
			continue
		}
		result := query.Build(l.Grid, decoded, urange, vrange, bbox, l.EffTime, l.RefTime, l.RefTime, l.Surface1.Value)
		if i == 0 {
			window = result.BBox
		}
		samples = append(samples, interp.Sample{Result: result, EffTime: l.EffTime, Surface1Value: l.Surface1.Value, RefTime: l.RefTime})
	}
	if len(samples) == 0 {
		return nil, 0, 0, errNoData
	}

	fit, err := interp.Fit(samples)
	if err != nil {
		return nil, 0, 0, err
	}

	e.series[key] = &parameterSeries{fit: fit, window: window, minEff: fit.MinEffTime, maxEff: fit.MaxEffTime}
	return fitCoords(fit, window, pointLat, pointLon)
}

const lonDelta = int64(1) << 32 / 360 // 1 degree, in the grid package's integer coordinate units

var errNoData = fmt.Errorf("profile: no layer candidates for requested parameter")

// fitCoords maps a geographic point to fractional pixel coordinates within
// window and returns the matching fit plus the pixel (x,y) to evaluate.
func fitCoords(fit *interp.LayerInterpolateResult, window query.BoundingBox, lat float64, lon int64) (*interp.LayerInterpolateResult, int, int, error) {
	if fit.Width == 0 || fit.Height == 0 {
		return nil, 0, 0, errNoData
	}
	latSpan := window.MaxLat - window.MinLat
	lonSpan := float64(window.MaxLon - window.MinLon)
	if latSpan == 0 || lonSpan == 0 {
		return fit, 0, 0, nil
	}
	fy := (lat - window.MinLat) / latSpan * float64(fit.Height-1)
	fx := float64(lon-window.MinLon) / lonSpan * float64(fit.Width-1)
	x := clampIdx(int(math.Round(fx)), fit.Width)
	y := clampIdx(int(math.Round(fy)), fit.Height)
	return fit, x, y, nil
}

func clampIdx(x, n int) int {
	if x < 0 {
		return 0
	}
	if x >= n {
		return n - 1
	}
	return x
}

// scalarAt evaluates a single-surface field (no pressure level) at a point
// and time, returning NaN if no candidate layer covers it.
func (e *Extractor) scalarAt(parameterID string, lat float64, lon int64, effTime int64) float64 {
	fit, x, y, err := e.resolve(parameterID, 0, 0, lat, lon, effTime)
	if err != nil {
		return math.NaN()
	}
	return fit.Eval(x, y, effTime, 0)
}

// levelAt evaluates temperature, winds, and relative humidity at one
// isobaric level (hPa), at a point and time.
func (e *Extractor) levelAt(pressureHPa, lat float64, lon int64, effTime int64) Surface {
	const surfaceTypeIsobaric = 100
	pressurePa := pressureHPa * 100

	fitT, xT, yT, errT := e.resolve(paramTemperature, surfaceTypeIsobaric, pressurePa, lat, lon, effTime)
	fitU, xU, yU, errU := e.resolve(paramUWind, surfaceTypeIsobaric, pressurePa, lat, lon, effTime)
	fitV, xV, yV, errV := e.resolve(paramVWind, surfaceTypeIsobaric, pressurePa, lat, lon, effTime)
	fitH, xH, yH, errH := e.resolve(paramRelHumidity, surfaceTypeIsobaric, pressurePa, lat, lon, effTime)

	s := Surface{TempC: math.NaN(), UWind: math.NaN(), VWind: math.NaN(), RelHumidity: math.NaN()}
	if errT == nil {
		s.TempC = fitT.Eval(xT, yT, effTime, pressurePa)
	}
	if errU == nil {
		s.UWind = fitU.Eval(xU, yU, effTime, pressurePa)
	}
	if errV == nil {
		s.VWind = fitV.Eval(xV, yV, effTime, pressurePa)
	}
	if errH == nil {
		s.RelHumidity = fitH.Eval(xH, yH, effTime, pressurePa)
	}
	return s
}

// horizontalShear derives the horizontal wind-shear magnitude at a level by
// sampling the wind 4 directions (N/E/S/W) at windShearSampleNM and taking
// the max vector difference across opposing pairs, divided by the sample
// span.
func (e *Extractor) horizontalShear(pressureHPa, lat float64, lon int64, effTime int64) float64 {
	north := e.levelAt(pressureHPa, lat+nmToDegreesLat(windShearSampleNM), lon, effTime)
	south := e.levelAt(pressureHPa, lat-nmToDegreesLat(windShearSampleNM), lon, effTime)
	east := e.levelAt(pressureHPa, lat, lon+nmToLonUnits(windShearSampleNM, lat), effTime)
	west := e.levelAt(pressureHPa, lat, lon-nmToLonUnits(windShearSampleNM, lat), effTime)

	nsShear := math.Hypot(north.UWind-south.UWind, north.VWind-south.VWind)
	ewShear := math.Hypot(east.UWind-west.UWind, east.VWind-west.VWind)
	span := 2 * windShearSampleNM * 1852 // meters
	return math.Max(nsShear, ewShear) / span
}

func nmToDegreesLat(nm float64) float64 {
	return nm / 60.0
}

func nmToLonUnits(nm, lat float64) int64 {
	degreesLon := nm / 60.0 / math.Cos(lat*math.Pi/180.0)
	return int64(degreesLon / 360.0 * float64(int64(1)<<32))
}

// Extract steps through every leg of the flight plan, sampling interpolated
// fields at each step, and accumulates the result into a WeatherProfile.
func (e *Extractor) Extract() (*WeatherProfile, error) {
	waypoints := e.Plan.Waypoints()
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("profile: flight plan needs at least 2 waypoints, got %d", len(waypoints))
	}

	profile := &WeatherProfile{MinRefTime: math.MaxInt64, MinEffTime: math.MaxInt64}
	cumulativeNM := 0.0

	for leg := 0; leg < len(waypoints)-1; leg++ {
		from, to := waypoints[leg], waypoints[leg+1]
		legDistanceNM := greatCircleNM(from.Coord, to.Coord)
		legTimeS := float64(to.PlannedFlightTime - from.PlannedFlightTime)

		step := 1.0 / 600.0
		if legDistanceNM > 0 {
			step = math.Max(0.001, math.Min(1.0/legDistanceNM, safeDiv(600.0, legTimeS)))
		}

		for t := 0.0; t <= 1.0; t += step {
			point := lerpCoord(from.Coord, to.Coord, t)
			altitude := from.Altitude + t*(to.Altitude-from.Altitude)
			effTime := from.PlannedFlightTime + int64(t*legTimeS)
			legLocalNM := t * legDistanceNM

			point2 := WeatherProfilePoint{
				WaypointIndex:        leg,
				LegLocalDistanceNM:   legLocalNM,
				CumulativeDistanceNM: cumulativeNM + legLocalNM,
				Point:                point,
				EffTime:              effTime,
				AltitudeM:            altitude,
			}

			point2.Flags = e.dayPhaseFlags(point, effTime)
			point2.LiftedIndex = e.scalarAt(paramLiftedIndex, point.Lat, point.Lon, effTime)
			point2.CAPE = e.scalarAt(paramCAPE, point.Lat, point.Lon, effTime)
			point2.CIN = e.scalarAt(paramCIN, point.Lat, point.Lon, effTime)

			for i, hpa := range tables.IsobaricLevels {
				if hpa < 0 {
					continue
				}
				s := e.levelAt(float64(hpa), point.Lat, point.Lon, effTime)
				s.HorizontalWindShear = e.horizontalShear(float64(hpa), point.Lat, point.Lon, effTime)
				point2.Levels[i] = s
			}
			for i := 1; i < len(tables.IsobaricLevels)-1; i++ {
				if tables.IsobaricLevels[i] < 0 {
					continue
				}
				point2.Levels[i].VerticalWindShear = verticalShear(point2.Levels, i)
			}

			profile.Points = append(profile.Points, point2)
			if effTime < profile.MinEffTime {
				profile.MinEffTime = effTime
			}
			if effTime > profile.MaxEffTime {
				profile.MaxEffTime = effTime
			}
		}

		cumulativeNM += legDistanceNM
	}

	return profile, nil
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return a / b
}

// verticalShear derives shear by finite difference between the level above
// and below index i in the 27-level table.
func verticalShear(levels [27]Surface, i int) float64 {
	if i <= 0 || i >= len(levels)-1 {
		return math.NaN()
	}
	above, below := levels[i-1], levels[i+1]
	return math.Hypot(above.UWind-below.UWind, above.VWind-below.VWind)
}

func greatCircleNM(a, b grid.Coord) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dlat := lat2 - lat1
	dlon := (float64(b.Lon-a.Lon) / float64(int64(1)<<32)) * 2 * math.Pi
	h := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return 2 * earthRadiusNM * math.Asin(math.Min(1, math.Sqrt(h)))
}

func lerpCoord(a, b grid.Coord, t float64) grid.Coord {
	lat := a.Lat + t*(b.Lat-a.Lat)
	lon := grid.WrapLon(a.Lon + int64(t*float64(b.Lon-a.Lon)))
	return grid.Coord{Lat: lat, Lon: lon}
}

// dayPhaseFlags classifies a point in time/space into day/dusk/night/dawn,
// consulting the Sun collaborator for the local date.
func (e *Extractor) dayPhaseFlags(point grid.Coord, effTime int64) Flags {
	tm := time.Unix(effTime, 0).UTC()
	hour := float64(tm.Hour()) + float64(tm.Minute())/60.0
	phase := e.Sun.Phase(tm.Year(), int(tm.Month()), tm.Day(), hour, point)

	switch phase {
	case collab.PhaseDawn:
		return FlagDawn
	case collab.PhaseDusk:
		return FlagDusk
	case collab.PhaseNight, collab.PhasePolarNight:
		return FlagNight
	default:
		return FlagDay
	}
}
