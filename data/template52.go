package data

import (
	"fmt"
	"math"

	"github.com/stormgrid/squall/internal"
)

// Template52 represents Data Representation Template 5.2: Complex Packing
// (no spatial differencing).
//
// Values are grouped by similar magnitude; each group is packed relative to
// its own reference value using only the bits its range needs, trading a
// small group-header overhead for much better compression than simple
// packing on fields with localized structure.
type Template52 struct {
	ReferenceValue           float32
	BinaryScaleFactor        int16
	DecimalScaleFactor       int16
	NumBitsPerValue          uint8
	OriginalFieldType        uint8
	GroupSplittingMethod     uint8
	MissingValueManagement   uint8
	PrimaryMissingValueRaw   uint32
	SecondaryMissingValueRaw uint32
	NumberOfGroups           uint32
	ReferenceGroupWidth      uint8
	NumBitsGroupWidth        uint8
	ReferenceGroupLength     uint32
	GroupLengthIncrement     uint8
	TrueLengthLastGroup      uint32
	NumBitsGroupLength       uint8
	NumberOfDataValues       uint32
}

// ParseTemplate52 parses Data Representation Template 5.2 (at least 36 bytes).
func ParseTemplate52(numDataValues uint32, data []byte) (*Template52, error) {
	if len(data) < 36 {
		return nil, fmt.Errorf("template 5.2 requires at least 36 bytes, got %d", len(data))
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

	return &Template52{
		ReferenceValue:           referenceValue,
		BinaryScaleFactor:        binaryScaleFactor,
		DecimalScaleFactor:       decimalScaleFactor,
		NumBitsPerValue:          bitsPerValue,
		OriginalFieldType:        originalFieldType,
		GroupSplittingMethod:     groupSplittingMethod,
		MissingValueManagement:   missingValueManagement,
		PrimaryMissingValueRaw:   primaryMissingRaw,
		SecondaryMissingValueRaw: secondaryMissingRaw,
		NumberOfGroups:           numberOfGroups,
		ReferenceGroupWidth:      referenceGroupWidth,
		NumBitsGroupWidth:        numBitsGroupWidth,
		ReferenceGroupLength:     referenceGroupLength,
		GroupLengthIncrement:     groupLengthIncrement,
		TrueLengthLastGroup:      trueLengthLastGroup,
		NumBitsGroupLength:       numBitsGroupLength,
		NumberOfDataValues:       numDataValues,
	}, nil
}

// TemplateNumber returns 2 for Template 5.2.
func (t *Template52) TemplateNumber() int { return 2 }

// NumDataValues returns the number of data values.
func (t *Template52) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per value.
func (t *Template52) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode unpacks data using complex packing without spatial differencing.
func (t *Template52) Decode(packedData []byte, bitmap []bool) ([]float32, error) {
	if len(packedData) == 0 {
		return nil, fmt.Errorf("no packed data to decode")
	}

	br := internal.NewBitReader(packedData)

	ndata := t.NumberOfDataValues

	headers, err := readGroupHeaders(br, t.NumberOfGroups, t.NumBitsPerValue,
		t.NumBitsGroupWidth, t.ReferenceGroupWidth,
		t.NumBitsGroupLength, t.ReferenceGroupLength, t.GroupLengthIncrement, t.TrueLengthLastGroup)
	if err != nil {
		return nil, err
	}

	cells := make([]cell, ndata)
	idx := 0
	for gi, h := range headers {
		for j := uint32(0); j < h.length && idx < int(ndata); j++ {
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
			cells[idx] = cell{value: postRef, missing: kind}
			idx++
		}
	}

	return t.applyScalingAll(cells, bitmap)
}

func (t *Template52) applyScalingAll(cells []cell, bitmap []bool) ([]float32, error) {
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
func (t *Template52) applyScaling(packedValue int32) float32 {
	value := float64(t.ReferenceValue)
	if packedValue != 0 {
		value += float64(packedValue) * math.Pow(2.0, float64(t.BinaryScaleFactor))
	}
	if t.DecimalScaleFactor != 0 {
		value *= math.Pow(10.0, -float64(t.DecimalScaleFactor))
	}
	return float32(value)
}

func (t *Template52) String() string {
	return fmt.Sprintf("Template 5.2: Complex Packing, %d values, %d groups, R=%g, E=%d, D=%d",
		t.NumberOfDataValues, t.NumberOfGroups, t.ReferenceValue,
		t.BinaryScaleFactor, t.DecimalScaleFactor)
}
