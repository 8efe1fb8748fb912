package query

import "math"

// Sample performs bilinear point-sampling of r at fractional grid
// coordinates (fx, fy), where fx in [0, width-1] and fy in [0, height-1].
// It locates the containing cell, fetches its 2x2 neighbourhood, repairs a
// single NaN neighbour by copying from its in-quadrant partner when the
// dominant fractional weight favors that side, and returns the bilinear
// combination. If a required corner remains NaN after repair, returns NaN.
func (r *LayerResult) Sample(fx, fy float64) float32 {
	if r.Width == 0 || r.Height == 0 {
		return float32(math.NaN())
	}

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := x0 + 1
	y1 := y0 + 1
	if x1 >= r.Width {
		x1 = r.Width - 1
	}
	if y1 >= r.Height {
		y1 = r.Height - 1
	}
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x0 >= r.Width {
		x0 = r.Width - 1
	}
	if y0 >= r.Height {
		y0 = r.Height - 1
	}

	v00 := r.At(x0, y0)
	v10 := r.At(x1, y0)
	v01 := r.At(x0, y1)
	v11 := r.At(x1, y1)

	// Repair a single NaN corner by copying its in-quadrant partner along
	// the axis where the fractional weight leans toward that partner.
	v00, v10, v01, v11 = repairCorner(v00, v10, v01, v11, tx, ty)

	if isNaN32(v00) || isNaN32(v10) || isNaN32(v01) || isNaN32(v11) {
		return float32(math.NaN())
	}

	top := float64(v00)*(1-tx) + float64(v10)*tx
	bottom := float64(v01)*(1-tx) + float64(v11)*tx
	return float32(top*(1-ty) + bottom*ty)
}

func isNaN32(v float32) bool {
	return v != v
}

// repairCorner copies a valid neighbour over a single missing corner, when
// the dominant fractional weight (tx or ty) favors the side the missing
// corner shares with a present partner. Applied independently per axis so
// at most one corner is repaired per call site, matching the single-NaN
// repair the point-sampler relies on.
func repairCorner(v00, v10, v01, v11 float32, tx, ty float64) (float32, float32, float32, float32) {
	corners := [4]*float32{&v00, &v10, &v01, &v11}
	missing := -1
	count := 0
	for i, c := range corners {
		if isNaN32(*c) {
			missing = i
			count++
		}
	}
	if count != 1 {
		return v00, v10, v01, v11
	}

	switch missing {
	case 0: // v00 missing: repair from v10 (if tx dominant) or v01 (if ty dominant)
		if tx >= ty && !isNaN32(v10) {
			v00 = v10
		} else if !isNaN32(v01) {
			v00 = v01
		}
	case 1: // v10 missing
		if tx < ty && !isNaN32(v11) {
			v10 = v11
		} else if !isNaN32(v00) {
			v10 = v00
		}
	case 2: // v01 missing
		if ty < tx && !isNaN32(v11) {
			v01 = v11
		} else if !isNaN32(v00) {
			v01 = v00
		}
	case 3: // v11 missing
		if tx >= ty && !isNaN32(v01) {
			v11 = v01
		} else if !isNaN32(v10) {
			v11 = v10
		}
	}
	return v00, v10, v01, v11
}
