// Package stability derives atmospheric instability indices (LCL, Lifted
// Index, CAPE, CIN) from a vertical sounding of pressure/temperature/dewpoint
// samples.
package stability

import (
	"fmt"
	"math"
	"sort"

	"github.com/stormgrid/squall/collab"
)

// Sample is one level of a sounding.
type Sample struct {
	PressureHPa float64
	TempC       float64
	DewpointC   float64
}

// Result collects the derived stability indices. Valid is false when any
// input was NaN; in that case the numeric fields carry no meaning. A
// sounding of fewer than two levels is reported by Derive as an error.
type Result struct {
	LCLPressureHPa float64
	LiftedIndex    float64
	CAPE           float64 // J/kg
	CIN            float64 // J/kg, reported as a non-negative magnitude
	LFCPressureHPa float64
	ELPressureHPa  float64
	Valid          bool
}

const (
	liftedIndexPressureHPa = 500.0
	lclBisectLowHPa        = 10.0
	lclBisectHighHPa       = 1023.0
	lclBisectIterations    = 12
	integrationSteps       = 60
)

// Derive takes an ordered sounding, the first (lowest-altitude) sample
// being the parcel source, and produces LCL, Lifted Index, CAPE, and CIN
// using the first-source parcel ascent. atmo supplies the pressure<->
// altitude conversion (ICAO standard atmosphere unless the caller has a
// more precise local model).
func Derive(samples []Sample, atmo collab.IcaoAtmosphere) (*Result, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("stability: need at least 2 sounding levels, got %d", len(samples))
	}
	for _, s := range samples {
		if math.IsNaN(s.PressureHPa) || math.IsNaN(s.TempC) || math.IsNaN(s.DewpointC) {
			return &Result{}, nil
		}
	}

	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PressureHPa > sorted[j].PressureHPa })

	source := samples[0]
	p0, t0, td0 := source.PressureHPa, source.TempC, source.DewpointC

	w0 := saturationMixingRatio(td0, p0)
	theta0K := potentialTemperatureK(t0, p0)

	lcl := solveLCL(theta0K, w0, p0)
	tLCL := dryAdiabatTemp(theta0K, lcl)

	parcelT := func(p float64) float64 {
		if p >= lcl {
			return dryAdiabatTemp(theta0K, p)
		}
		return moistAdiabatTemp(tLCL, lcl, p)
	}
	ambientT, ambientAvailable := ambientTemperatureFn(sorted)
	if !ambientAvailable {
		return &Result{}, nil
	}

	liftedIndex := ambientT(liftedIndexPressureHPa) - parcelT(liftedIndexPressureHPa)

	cape, cin, lfc, el := integrateBuoyancy(lcl, sorted[len(sorted)-1].PressureHPa, parcelT, ambientT, atmo)

	return &Result{
		LCLPressureHPa: lcl,
		LiftedIndex:    liftedIndex,
		CAPE:           cape,
		CIN:            cin,
		LFCPressureHPa: lfc,
		ELPressureHPa:  el,
		Valid:          true,
	}, nil
}

// saturationVaporPressureHPa is Bolton's (1980) approximation, valid for
// typical tropospheric temperatures.
func saturationVaporPressureHPa(tC float64) float64 {
	return 6.112 * math.Exp(17.67*tC/(tC+243.5))
}

// saturationMixingRatio returns the saturation mixing ratio (kg/kg) at
// temperature tC and pressure pHPa.
func saturationMixingRatio(tC, pHPa float64) float64 {
	es := saturationVaporPressureHPa(tC)
	return 0.622 * es / (pHPa - es)
}

// dewPointForMixingRatio inverts saturationVaporPressureHPa to find the
// temperature at which the saturation mixing ratio equals w at pressure p.
func dewPointForMixingRatio(w, pHPa float64) float64 {
	es := w * pHPa / (w + 0.622)
	l := math.Log(es / 6.112)
	return 243.5 * l / (17.67 - l)
}

const poissonExponent = 0.2854 // Rd/cpd for dry air

// potentialTemperatureK returns the dry potential temperature in Kelvin.
func potentialTemperatureK(tC, pHPa float64) float64 {
	return (tC + 273.15) * math.Pow(1000.0/pHPa, poissonExponent)
}

// dryAdiabatTemp returns the temperature (Celsius) at pHPa along the dry
// adiabat with potential temperature thetaK.
func dryAdiabatTemp(thetaK, pHPa float64) float64 {
	return thetaK*math.Pow(pHPa/1000.0, poissonExponent) - 273.15
}

// moistAdiabatTemp integrates the saturated adiabatic lapse rate from
// (tStartC, pStartHPa) to pTargetHPa. There is no closed form for the
// pseudoadiabat, so this steps in log-pressure using the standard
// saturated-adiabatic lapse rate.
func moistAdiabatTemp(tStartC, pStartHPa, pTargetHPa float64) float64 {
	const (
		rd  = 287.05 // J/(kg K), dry air gas constant
		cpd = 1005.7 // J/(kg K), dry air specific heat
		lv  = 2.501e6
		eps = 0.622
	)

	steps := integrationSteps
	logStart := math.Log(pStartHPa)
	logTarget := math.Log(pTargetHPa)
	dlog := (logTarget - logStart) / float64(steps)

	t := tStartC + 273.15
	logp := logStart
	for i := 0; i < steps; i++ {
		p := math.Exp(logp)
		ws := saturationMixingRatio(t-273.15, p)
		numerator := rd*t + lv*ws
		denominator := p * (cpd + (lv*lv*ws*eps)/(rd*t*t))
		dTdlogp := p * numerator / denominator
		t += dTdlogp * dlog
		logp += dlog
	}
	return t - 273.15
}

// solveLCL bisects for the pressure at which the dry adiabat from the
// parcel source crosses the temperature implied by holding its mixing
// ratio constant, between lclBisectLowHPa and lclBisectHighHPa.
func solveLCL(thetaK, w0, p0 float64) float64 {
	diff := func(p float64) float64 {
		return dryAdiabatTemp(thetaK, p) - dewPointForMixingRatio(w0, p)
	}

	lo, hi := lclBisectLowHPa, lclBisectHighHPa
	// diff(hi) should be >= 0 (parcel source is usually unsaturated) and
	// diff(lo) <= 0; if the sounding is already saturated at the source,
	// the source pressure itself is the LCL.
	if diff(hi) <= 0 {
		return p0
	}
	if diff(lo) >= 0 {
		return lo
	}

	for i := 0; i < lclBisectIterations; i++ {
		mid := (lo + hi) / 2
		if diff(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo + hi) / 2
}

// ambientTemperatureFn builds a piecewise-linear ambient temperature
// lookup over the sounding, sorted by decreasing pressure. Returns false
// if the sounding has fewer than two samples.
func ambientTemperatureFn(sorted []Sample) (func(pHPa float64) float64, bool) {
	if len(sorted) < 2 {
		return nil, false
	}
	return func(pHPa float64) float64 {
		if pHPa >= sorted[0].PressureHPa {
			return sorted[0].TempC
		}
		if pHPa <= sorted[len(sorted)-1].PressureHPa {
			return sorted[len(sorted)-1].TempC
		}
		for i := 0; i < len(sorted)-1; i++ {
			hi, lo := sorted[i], sorted[i+1]
			if pHPa <= hi.PressureHPa && pHPa >= lo.PressureHPa {
				frac := (hi.PressureHPa - pHPa) / (hi.PressureHPa - lo.PressureHPa)
				return hi.TempC + frac*(lo.TempC-hi.TempC)
			}
		}
		return math.NaN()
	}, true
}

// integrateBuoyancy scans upward from the LCL to topPressureHPa, integrating
// g*(Tp-Ta)/Ta*dz using the ICAO atmosphere's pressure-to-altitude mapping.
// The first negative-area run contributes to CIN; the first subsequent
// positive-area run contributes to CAPE, with LFC/EL at its bounds.
func integrateBuoyancy(lclHPa, topHPa float64, parcelT, ambientT func(float64) float64, atmo collab.IcaoAtmosphere) (cape, cin, lfcHPa, elHPa float64) {
	if topHPa >= lclHPa {
		return 0, 0, lclHPa, lclHPa
	}

	steps := integrationSteps
	logLCL := math.Log(lclHPa)
	logTop := math.Log(topHPa)
	dlog := (logTop - logLCL) / float64(steps)

	prevP := lclHPa
	prevAlt := atmo.PressureToAltitude(lclHPa * 100)
	prevTp := parcelT(lclHPa)
	prevTa := ambientT(lclHPa)

	inCAPE := false
	capeStarted := false

	for i := 1; i <= steps; i++ {
		p := math.Exp(logLCL + dlog*float64(i))
		alt := atmo.PressureToAltitude(p * 100)
		tp := parcelT(p)
		ta := ambientT(p)

		dz := alt - prevAlt
		avgBuoyancy := 0.5 * ((prevTp-prevTa)/(prevTa+273.15) + (tp-ta)/(ta+273.15))
		work := collab.StandardGravity * avgBuoyancy * dz

		if work < 0 {
			if capeStarted {
				// The first positive run has ended; later runs are not counted.
				inCAPE = false
			} else {
				cin += -work
			}
		} else if work > 0 && (inCAPE || !capeStarted) {
			cape += work
			if !capeStarted {
				lfcHPa = prevP
				inCAPE = true
				capeStarted = true
			}
			elHPa = p
		}

		prevP, prevAlt, prevTp, prevTa = p, alt, tp, ta
	}

	if !capeStarted {
		lfcHPa = topHPa
		elHPa = topHPa
	}
	return cape, cin, lfcHPa, elHPa
}
