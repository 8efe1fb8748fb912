// Package collab defines the collaborator interfaces the profile extractor
// and stability derivation consume: flight plans, terrain elevation, solar
// geometry, and standard-atmosphere conversions. The core package depends
// only on these interfaces so callers can supply their own flight-planning,
// DEM, and astronomy implementations.
package collab

import "github.com/stormgrid/squall/grid"

// Waypoint is one point along a flight plan route.
type Waypoint struct {
	Coord           grid.Coord
	Altitude        float64 // meters
	PlannedFlightTime int64 // Unix seconds at which the aircraft reaches this waypoint
}

// FlightPlan is an ordered sequence of waypoints with a departure time.
// Implementations report leg bounding boxes so the profile extractor can
// restrict its grid queries to the relevant window.
type FlightPlan interface {
	// Waypoints returns the route's waypoints in flight order.
	Waypoints() []Waypoint

	// DepartureTime is the planned departure, Unix seconds.
	DepartureTime() int64

	// LegBoundingBox returns the geographic extent of the leg between
	// waypoints[i] and waypoints[i+1].
	LegBoundingBox(i int) (minLat, maxLat float64, minLon, maxLon int64)
}

// NoData is the elevation sentinel a DEM returns for points it has no data
// for (e.g. open ocean in a land-only dataset, or outside coverage).
const NoData = -32768.0

// DEM is a digital elevation model: point elevation lookup plus a
// route-profile sampler used for terrain-clearance checks along a leg.
type DEM interface {
	// Elevation returns the terrain height in meters at (lat, lon), or
	// NoData if the point isn't covered.
	Elevation(lat float64, lon int64) float64

	// RouteProfile samples elevation at n evenly spaced points between
	// (lat0,lon0) and (lat1,lon1) inclusive.
	RouteProfile(lat0 float64, lon0 int64, lat1 float64, lon1 int64, n int) []float64
}

// DayPhase classifies where a point in time falls relative to sunrise,
// sunset, and civil twilight.
type DayPhase int

const (
	PhaseNight DayPhase = iota
	PhaseDawn
	PhaseDay
	PhaseDusk
	PhasePolarDay
	PhasePolarNight
)

// SunTwilight computes sunrise/sunset/twilight hours (local solar time, in
// fractional hours) for a given date and point, or signals polar day/night.
type SunTwilight interface {
	// Times returns sunrise, sunset, morning twilight, and evening
	// twilight as fractional hours (0-24). polar is true when the point
	// is in continuous day or night on this date; in that case check
	// Phase separately rather than the hour values.
	Times(year, month, day int, point grid.Coord) (sunriseH, sunsetH, twilightMorningH, twilightEveningH float64, polar bool)

	// Phase classifies a specific time of day for a point, combining
	// Times' outputs with the clock hour.
	Phase(year, month, day int, hourOfDay float64, point grid.Coord) DayPhase
}

// StandardGravity is ICAO standard atmosphere's sea-level gravitational
// acceleration, m/s^2.
const StandardGravity = 9.80665

// CelsiusToKelvinOffset converts degrees Celsius to Kelvin by addition.
const CelsiusToKelvinOffset = 273.15

// IcaoAtmosphere converts between geopotential altitude and pressure using
// the ICAO standard atmosphere model (ISA).
type IcaoAtmosphere interface {
	// AltitudeToPressure converts a geopotential altitude in meters to
	// pressure in Pascals.
	AltitudeToPressure(altitudeMeters float64) float64

	// PressureToAltitude converts a pressure in Pascals to geopotential
	// altitude in meters.
	PressureToAltitude(pressurePa float64) float64
}
