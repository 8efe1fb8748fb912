package data

import (
	"fmt"
	"math"

	"github.com/stormgrid/squall/internal"
)

// Template53 represents Data Representation Template 5.3: Complex Packing
// with Spatial Differencing.
//
// This template is used for efficient compression of gridded meteorological
// data by applying spatial differencing (first or second order) to reduce
// dynamic range, dividing the result into groups, and packing each group
// with only the bits its range needs. Commonly used by regional forecast
// models like HRRR and NAM.
type Template53 struct {
	ReferenceValue            float32
	BinaryScaleFactor         int16
	DecimalScaleFactor        int16
	NumBitsPerValue           uint8
	OriginalFieldType         uint8
	GroupSplittingMethod      uint8
	MissingValueManagement    uint8
	PrimaryMissingValueRaw    uint32
	SecondaryMissingValueRaw  uint32
	NumberOfGroups            uint32
	ReferenceGroupWidth       uint8
	NumBitsGroupWidth         uint8
	ReferenceGroupLength      uint32
	GroupLengthIncrement      uint8
	TrueLengthLastGroup       uint32
	NumBitsGroupLength        uint8
	SpatialDiffOrder          uint8
	NumOctetsExtraDescriptors uint8
	NumberOfDataValues        uint32
}

// ParseTemplate53 parses Data Representation Template 5.3 (at least 38 bytes).
func ParseTemplate53(numDataValues uint32, data []byte) (*Template53, error) {
	if len(data) < 38 {
		return nil, fmt.Errorf("template 5.3 requires at least 38 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	groupSplittingMethod, _ := r.Uint8()
	missingValueManagement, _ := r.Uint8()
	primaryMissingRaw, _ := r.Uint32()
	secondaryMissingRaw, _ := r.Uint32()
	numberOfGroups, _ := r.Uint32()
	referenceGroupWidth, _ := r.Uint8()
	numBitsGroupWidth, _ := r.Uint8()
	referenceGroupLength, _ := r.Uint32()
	groupLengthIncrement, _ := r.Uint8()
	trueLengthLastGroup, _ := r.Uint32()
	numBitsGroupLength, _ := r.Uint8()
	spatialDiffOrder, _ := r.Uint8()
	numOctetsExtraDescriptors, _ := r.Uint8()

	return &Template53{
		ReferenceValue:            referenceValue,
		BinaryScaleFactor:         binaryScaleFactor,
		DecimalScaleFactor:        decimalScaleFactor,
		NumBitsPerValue:           bitsPerValue,
		OriginalFieldType:         originalFieldType,
		GroupSplittingMethod:      groupSplittingMethod,
		MissingValueManagement:    missingValueManagement,
		PrimaryMissingValueRaw:    primaryMissingRaw,
		SecondaryMissingValueRaw:  secondaryMissingRaw,
		NumberOfGroups:            numberOfGroups,
		ReferenceGroupWidth:       referenceGroupWidth,
		NumBitsGroupWidth:         numBitsGroupWidth,
		ReferenceGroupLength:      referenceGroupLength,
		GroupLengthIncrement:      groupLengthIncrement,
		TrueLengthLastGroup:       trueLengthLastGroup,
		NumBitsGroupLength:        numBitsGroupLength,
		SpatialDiffOrder:          spatialDiffOrder,
		NumOctetsExtraDescriptors: numOctetsExtraDescriptors,
		NumberOfDataValues:        numDataValues,
	}, nil
}

// TemplateNumber returns 3 for Template 5.3.
func (t *Template53) TemplateNumber() int { return 3 }

// NumDataValues returns the number of data values.
func (t *Template53) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per value.
func (t *Template53) BitsPerValue() uint8 { return t.NumBitsPerValue }

// cell is a decoded integer cell tagged with its missing-value status.
type cell struct {
	value   int32
	missing missingKind
}

// Decode unpacks data using complex packing with spatial differencing.
func (t *Template53) Decode(packedData []byte, bitmap []bool) ([]float32, error) {
	if len(packedData) == 0 {
		return nil, fmt.Errorf("no packed data to decode")
	}

	br := internal.NewBitReader(packedData)

	ndata := t.NumberOfDataValues

	var firstVals []int32
	var minVal int32
	if t.SpatialDiffOrder == 1 || t.SpatialDiffOrder == 2 {
		if t.NumOctetsExtraDescriptors == 0 {
			return nil, fmt.Errorf("spatial differencing order %d requires NumOctetsExtraDescriptors > 0, got 0",
				t.SpatialDiffOrder)
		}

		numFirstVals := int(t.SpatialDiffOrder)
		firstVals = make([]int32, numFirstVals)
		numOctets := int(t.NumOctetsExtraDescriptors)

		for i := 0; i < numFirstVals; i++ {
			val, err := br.ReadBytes(numOctets)
			if err != nil {
				return nil, fmt.Errorf("failed to read first value %d: %w", i, err)
			}
			firstVals[i] = int32(val)
		}

		// The global minimum is sign-magnitude (high bit of the first octet
		// is the sign), not two's complement.
		val, err := br.ReadSignedBytesSignMagnitude(numOctets)
		if err != nil {
			return nil, fmt.Errorf("failed to read min_val: %w", err)
		}
		minVal = int32(val)
	}

	headers, err := readGroupHeaders(br, t.NumberOfGroups, t.NumBitsPerValue,
		t.NumBitsGroupWidth, t.ReferenceGroupWidth,
		t.NumBitsGroupLength, t.ReferenceGroupLength, t.GroupLengthIncrement, t.TrueLengthLastGroup)
	if err != nil {
		return nil, err
	}

	numUnpackedVals := int(ndata) - len(firstVals)
	if numUnpackedVals < 0 {
		numUnpackedVals = 0
	}
	unpacked := make([]cell, numUnpackedVals)

	idx := 0
	for gi, h := range headers {
		for j := uint32(0); j < h.length && idx < numUnpackedVals; j++ {
			var raw int32
			if h.width == 0 {
				raw = 0
			} else {
				v, err := br.ReadBits(int(h.width))
				if err != nil {
					return nil, fmt.Errorf("failed to read value in group %d: %w", gi, err)
				}
				raw = int32(v)
			}
			postRef := h.ref + raw
			kind := classifyMissing(t.MissingValueManagement, raw, h.width, postRef,
				t.PrimaryMissingValueRaw, t.SecondaryMissingValueRaw)
			unpacked[idx] = cell{value: postRef, missing: kind}
			idx++
		}
	}

	allVals := make([]cell, len(firstVals)+len(unpacked))
	for i, v := range firstVals {
		allVals[i] = cell{value: v, missing: missingNone}
	}
	copy(allVals[len(firstVals):], unpacked)

	var finalVals []cell
	switch t.SpatialDiffOrder {
	case 1:
		finalVals = reverseSpatialDiff1(allVals, minVal)
	case 2:
		finalVals = reverseSpatialDiff2(allVals, minVal)
	default:
		finalVals = allVals
	}

	return t.applyScalingAll(finalVals, bitmap)
}

// reverseSpatialDiff1 reverses first-order spatial differencing:
// d[i] = d[i-1] + g[i] + gmin, skipping missing cells (they stay marked).
func reverseSpatialDiff1(diffVals []cell, gmin int32) []cell {
	if len(diffVals) == 0 {
		return diffVals
	}
	vals := make([]cell, len(diffVals))
	vals[0] = diffVals[0]
	for i := 1; i < len(diffVals); i++ {
		if diffVals[i].missing != missingNone {
			vals[i] = diffVals[i]
			continue
		}
		vals[i] = cell{value: vals[i-1].value + diffVals[i].value + gmin}
	}
	return vals
}

// reverseSpatialDiff2 reverses second-order spatial differencing:
// d[i] = 2*d[i-1] - d[i-2] + g[i] + gmin.
func reverseSpatialDiff2(diffVals []cell, gmin int32) []cell {
	if len(diffVals) < 2 {
		return diffVals
	}
	vals := make([]cell, len(diffVals))
	vals[0] = diffVals[0]
	vals[1] = diffVals[1]
	for i := 2; i < len(diffVals); i++ {
		if diffVals[i].missing != missingNone {
			vals[i] = diffVals[i]
			continue
		}
		vals[i] = cell{value: diffVals[i].value + 2*vals[i-1].value - vals[i-2].value + gmin}
	}
	return vals
}

func (t *Template53) applyScalingAll(cells []cell, bitmap []bool) ([]float32, error) {
	scaled := make([]float32, len(cells))
	for i, c := range cells {
		switch c.missing {
		case missingPrimary:
			scaled[i] = missingFloatValue(t.PrimaryMissingValueRaw, t.OriginalFieldType)
		case missingSecondary:
			scaled[i] = missingFloatValue(t.SecondaryMissingValueRaw, t.OriginalFieldType)
		default:
			scaled[i] = t.applyScaling(c.value)
		}
	}

	if bitmap == nil {
		return scaled, nil
	}

	if len(scaled) > len(bitmap) {
		return nil, fmt.Errorf("more decoded values (%d) than bitmap entries (%d)", len(scaled), len(bitmap))
	}

	out := make([]float32, len(bitmap))
	idx := 0
	for i := range bitmap {
		if bitmap[i] {
			if idx >= len(scaled) {
				return nil, fmt.Errorf("bitmap indicates more valid points than decoded values available")
			}
			out[i] = scaled[idx]
			idx++
		} else {
			out[i] = float32(math.NaN())
		}
	}
	if idx != len(scaled) {
		return nil, fmt.Errorf("bitmap mismatch: used %d decoded values, have %d", idx, len(scaled))
	}
	return out, nil
}

// applyScaling applies value = (R + X*2^E) * 10^(-D).
func (t *Template53) applyScaling(packedValue int32) float32 {
	value := float64(t.ReferenceValue)
	if packedValue != 0 {
		value += float64(packedValue) * math.Pow(2.0, float64(t.BinaryScaleFactor))
	}
	if t.DecimalScaleFactor != 0 {
		value *= math.Pow(10.0, -float64(t.DecimalScaleFactor))
	}
	return float32(value)
}

func (t *Template53) String() string {
	return fmt.Sprintf("Template 5.3: Complex Packing (Spatial Diff Order %d), %d values, %d groups, R=%g, E=%d, D=%d",
		t.SpatialDiffOrder, t.NumberOfDataValues, t.NumberOfGroups, t.ReferenceValue,
		t.BinaryScaleFactor, t.DecimalScaleFactor)
}
