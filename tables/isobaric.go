package tables

import "math"

// IsobaricLevels is the 27 canonical vertical sampling levels, in hPa, that
// weather profiles are built from. -1 denotes "surface / height above
// ground" rather than a fixed pressure.
var IsobaricLevels = [27]int{
	-1, 1000, 975, 950, 925, 900, 850, 800, 750, 700,
	650, 600, 550, 500, 450, 400, 350, 300, 250, 200,
	150, 100, 70, 50, 30, 20, 10,
}

// ICAO standard atmosphere constants (ISA), troposphere layer (0-11000m).
const (
	isaSeaLevelPressurePa = 101325.0
	isaSeaLevelTempK      = 288.15
	isaLapseRateKPerM     = 0.0065
	isaGasConstant        = 287.05287
	isaGravity            = 9.80665
)

// StandardAtmosphere implements an ICAO standard atmosphere altitude <->
// pressure conversion, valid within the troposphere (below 11 km).
type StandardAtmosphere struct{}

// AltitudeToPressure converts geopotential altitude in meters to pressure
// in Pascals using the ISA troposphere lapse-rate formula.
func (StandardAtmosphere) AltitudeToPressure(altitudeMeters float64) float64 {
	exponent := isaGravity / (isaGasConstant * isaLapseRateKPerM)
	base := 1.0 - (isaLapseRateKPerM*altitudeMeters)/isaSeaLevelTempK
	return isaSeaLevelPressurePa * math.Pow(base, exponent)
}

// PressureToAltitude converts pressure in Pascals to geopotential altitude
// in meters, inverting AltitudeToPressure.
func (StandardAtmosphere) PressureToAltitude(pressurePa float64) float64 {
	exponent := isaGravity / (isaGasConstant * isaLapseRateKPerM)
	ratio := pressurePa / isaSeaLevelPressurePa
	return (isaSeaLevelTempK / isaLapseRateKPerM) * (1.0 - math.Pow(ratio, 1.0/exponent))
}

// IsobaricAltitudesFeet returns the ICAO standard atmosphere altitude, in
// feet, for each of the 27 canonical isobaric levels. The surface sentinel
// level (-1 hPa) maps to 0 ft; callers substitute the actual terrain or
// height-above-ground altitude for that entry.
func IsobaricAltitudesFeet(atmo StandardAtmosphere) [27]float64 {
	var out [27]float64
	for i, hpa := range IsobaricLevels {
		if hpa < 0 {
			out[i] = 0
			continue
		}
		meters := atmo.PressureToAltitude(float64(hpa) * 100.0)
		out[i] = meters * 3.280839895
	}
	return out
}
