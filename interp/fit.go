// Package interp fits and evaluates per-pixel bilinear polynomials over a
// small set of LayerResults straddling a query's effective time and
// surface1 value.
package interp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/stormgrid/squall/internal/errs"
	"github.com/stormgrid/squall/query"
)

// LinInterp is the 4-term bilinear polynomial p0 + p1*tn + p2*sn + p3*tn*sn,
// where tn and sn are normalized indices into a (time, surface-value)
// rectangle. NaN in any coefficient marks the pixel invalid.
type LinInterp struct {
	P0, P1, P2, P3 float64
}

// Eval substitutes normalized coordinates (tn, sn) into the polynomial.
// Returns NaN if any coefficient is NaN.
func (p LinInterp) Eval(tn, sn float64) float64 {
	if math.IsNaN(p.P0) || math.IsNaN(p.P1) || math.IsNaN(p.P2) || math.IsNaN(p.P3) {
		return math.NaN()
	}
	return p.P0 + p.P1*tn + p.P2*sn + p.P3*tn*sn
}

// LayerInterpolateResult is a width x height grid of LinInterp polynomials
// plus the (time, surface) envelope they were fit over.
type LayerInterpolateResult struct {
	Coeffs []LinInterp
	Width  int
	Height int
	BBox   query.BoundingBox

	MinEffTime, MaxEffTime int64
	MinRefTime, MaxRefTime int64
	MinSurface1, MaxSurface1 float64

	// InvDT and InvDS are 1/(max-min) for time and surface respectively,
	// precomputed so evaluation at a query point is a multiply, not a
	// divide. Zero when the corresponding axis didn't vary (single value).
	InvDT, InvDS float64
}

// Sample is one materialized layer going into a fit: its dense grid plus
// the (efftime, surface1value, reftime) it was produced at.
type Sample struct {
	Result        *query.LayerResult
	EffTime       int64
	Surface1Value float64
	RefTime       int64
}

// Fit builds a LayerInterpolateResult from up to four samples. All samples
// must share the same bbox and dimensions (materialize each through
// query.Build against a common window before calling Fit). When only time
// or only surface varies across the samples, the design collapses to two
// columns (1, tn) or (1, sn); with fewer than four samples the interaction
// column is dropped entirely.
func Fit(samples []Sample) (*LayerInterpolateResult, error) {
	if len(samples) == 0 {
		return nil, &errs.QueryOutOfBoundsError{Message: "no layer covers the requested time/surface/location"}
	}
	width, height := samples[0].Result.Width, samples[0].Result.Height
	for _, s := range samples[1:] {
		if s.Result.Width != width || s.Result.Height != height {
			return nil, fmt.Errorf("interp: sample dimensions mismatch (%dx%d vs %dx%d)",
				s.Result.Width, s.Result.Height, width, height)
		}
	}

	minEff, maxEff := samples[0].EffTime, samples[0].EffTime
	minSurf, maxSurf := samples[0].Surface1Value, samples[0].Surface1Value
	minRef, maxRef := samples[0].RefTime, samples[0].RefTime
	for _, s := range samples[1:] {
		if s.EffTime < minEff {
			minEff = s.EffTime
		}
		if s.EffTime > maxEff {
			maxEff = s.EffTime
		}
		if s.Surface1Value < minSurf {
			minSurf = s.Surface1Value
		}
		if s.Surface1Value > maxSurf {
			maxSurf = s.Surface1Value
		}
		if s.RefTime < minRef {
			minRef = s.RefTime
		}
		if s.RefTime > maxRef {
			maxRef = s.RefTime
		}
	}

	dt := float64(maxEff - minEff)
	ds := maxSurf - minSurf
	timeVaries := dt > 0
	surfVaries := ds > 0

	cols := designColumns(timeVaries, surfVaries, len(samples))

	design := mat.NewDense(len(samples), len(cols), nil)
	for i, s := range samples {
		tn := 0.0
		if timeVaries {
			tn = float64(s.EffTime-minEff) / dt
		}
		sn := 0.0
		if surfVaries {
			sn = (s.Surface1Value - minSurf) / ds
		}
		for j, c := range cols {
			design.Set(i, j, c.eval(tn, sn))
		}
	}

	var ata mat.SymDense
	ata.SymOuterK(1, design.T())

	var chol mat.Cholesky
	psd := chol.Factorize(&ata)

	result := &LayerInterpolateResult{
		Coeffs:       make([]LinInterp, width*height),
		Width:        width,
		Height:       height,
		BBox:         samples[0].Result.BBox,
		MinEffTime:   minEff,
		MaxEffTime:   maxEff,
		MinRefTime:   minRef,
		MaxRefTime:   maxRef,
		MinSurface1:  minSurf,
		MaxSurface1:  maxSurf,
	}
	if timeVaries {
		result.InvDT = 1.0 / dt
	}
	if surfVaries {
		result.InvDS = 1.0 / ds
	}

	b := mat.NewVecDense(len(samples), nil)
	atb := mat.NewVecDense(len(cols), nil)
	x := mat.NewVecDense(len(cols), nil)

	for pixel := 0; pixel < width*height; pixel++ {
		anyNaN := false
		for i, s := range samples {
			v := float64(s.Result.Values[pixel])
			if math.IsNaN(v) {
				anyNaN = true
			}
			b.SetVec(i, v)
		}
		if anyNaN {
			result.Coeffs[pixel] = LinInterp{P0: math.NaN(), P1: math.NaN(), P2: math.NaN(), P3: math.NaN()}
			continue
		}

		atb.MulVec(design.T(), b)

		solved := false
		if psd {
			if err := chol.SolveVecTo(x, atb); err == nil {
				solved = true
			}
		}
		if !solved {
			if err := x.SolveVec(design, b); err != nil {
				result.Coeffs[pixel] = LinInterp{P0: math.NaN(), P1: math.NaN(), P2: math.NaN(), P3: math.NaN()}
				continue
			}
		}

		result.Coeffs[pixel] = coeffsFromSolution(cols, x)
	}

	return result, nil
}

// column describes one term of the design matrix: its evaluation function
// and which LinInterp slot it contributes to.
type column struct {
	slot int
	eval func(tn, sn float64) float64
}

func designColumns(timeVaries, surfVaries bool, numSamples int) []column {
	cols := []column{{slot: 0, eval: func(tn, sn float64) float64 { return 1 }}}
	if timeVaries {
		cols = append(cols, column{slot: 1, eval: func(tn, sn float64) float64 { return tn }})
	}
	if surfVaries {
		cols = append(cols, column{slot: 2, eval: func(tn, sn float64) float64 { return sn }})
	}
	if timeVaries && surfVaries && numSamples >= 4 {
		cols = append(cols, column{slot: 3, eval: func(tn, sn float64) float64 { return tn * sn }})
	}
	return cols
}

func coeffsFromSolution(cols []column, x *mat.VecDense) LinInterp {
	var p LinInterp
	for j, c := range cols {
		v := x.AtVec(j)
		switch c.slot {
		case 0:
			p.P0 = v
		case 1:
			p.P1 = v
		case 2:
			p.P2 = v
		case 3:
			p.P3 = v
		}
	}
	return p
}

// Eval evaluates the polynomial at (effTime, surface1value), clamping into
// the fit's envelope before normalizing.
func (r *LayerInterpolateResult) Eval(x, y int, effTime int64, surface1value float64) float64 {
	tn := 0.0
	if r.InvDT != 0 {
		clamped := clampInt64(effTime, r.MinEffTime, r.MaxEffTime)
		tn = float64(clamped-r.MinEffTime) * r.InvDT
	}
	sn := 0.0
	if r.InvDS != 0 {
		clamped := clampFloat(surface1value, r.MinSurface1, r.MaxSurface1)
		sn = (clamped - r.MinSurface1) * r.InvDS
	}
	idx := y*r.Width + x
	if idx < 0 || idx >= len(r.Coeffs) {
		return math.NaN()
	}
	return r.Coeffs[idx].Eval(tn, sn)
}

func clampInt64(x, lo, hi int64) int64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
