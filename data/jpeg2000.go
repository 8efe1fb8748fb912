package data

import (
	"fmt"
	"math"

	"github.com/stormgrid/squall/internal"
	"github.com/stormgrid/squall/internal/errs"
)

// Jpeg2000Decoder decodes a JPEG-2000 codestream into a single signed-integer
// component. Implementations are supplied by the caller; no pure-Go
// JPEG-2000 codec is wired into this module, so callers integrating template
// 5.40 data must provide one (e.g. a cgo binding to OpenJPEG).
type Jpeg2000Decoder interface {
	// Decode decodes codestream into one component of signed samples, along
	// with its pixel dimensions. The sample count must equal width*height.
	Decode(codestream []byte) (samples []int32, width, height int, err error)
}

// Template540 represents Data Representation Template 5.40: JPEG-2000
// Code Stream Format.
//
// Values are compressed with a JPEG-2000 codestream; after decompression the
// same reference/binary-scale/decimal-scale formula as simple packing
// applies to each decoded sample.
type Template540 struct {
	ReferenceValue         float32
	BinaryScaleFactor      int16
	DecimalScaleFactor     int16
	NumBitsPerValue        uint8
	OriginalFieldType      uint8
	TypeOfCompression      uint8
	TargetCompressionRatio uint8
	NumberOfDataValues     uint32

	Decoder Jpeg2000Decoder
}

// ParseTemplate540 parses Data Representation Template 5.40 (at least 12
// bytes). The decoder used to unpack the codestream must be supplied
// separately via WithDecoder, since no codec is built into this package.
func ParseTemplate540(numDataValues uint32, data []byte) (*Template540, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("template 5.40 requires at least 12 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()
	typeOfCompression, _ := r.Uint8()
	targetCompressionRatio, _ := r.Uint8()

	return &Template540{
		ReferenceValue:         referenceValue,
		BinaryScaleFactor:      binaryScaleFactor,
		DecimalScaleFactor:     decimalScaleFactor,
		NumBitsPerValue:        bitsPerValue,
		OriginalFieldType:      originalFieldType,
		TypeOfCompression:      typeOfCompression,
		TargetCompressionRatio: targetCompressionRatio,
		NumberOfDataValues:     numDataValues,
	}, nil
}

// WithDecoder attaches the JPEG-2000 codec used to unpack the codestream and
// returns the receiver for chaining.
func (t *Template540) WithDecoder(dec Jpeg2000Decoder) *Template540 {
	t.Decoder = dec
	return t
}

// TemplateNumber returns 40 for Template 5.40.
func (t *Template540) TemplateNumber() int { return 40 }

// NumDataValues returns the number of data values.
func (t *Template540) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per value.
func (t *Template540) BitsPerValue() uint8 { return t.NumBitsPerValue }

// Decode feeds packedData to the configured Jpeg2000Decoder, then applies
// bitmap and scaling to the resulting component.
func (t *Template540) Decode(packedData []byte, bitmap []bool) ([]float32, error) {
	if t.Decoder == nil {
		return nil, fmt.Errorf("template 5.40: no JPEG-2000 decoder configured")
	}
	if len(packedData) == 0 {
		count := t.NumberOfDataValues
		if bitmap != nil {
			count = uint32(len(bitmap))
		}
		values := make([]float32, count)
		ref := t.applyScaling(0)
		for i := range values {
			if bitmap != nil && !bitmap[i] {
				values[i] = float32(math.NaN())
			} else {
				values[i] = ref
			}
		}
		return values, nil
	}

	samples, width, height, err := t.Decoder.Decode(packedData)
	if err != nil {
		return nil, &errs.DecodeFailureError{Template: t.TemplateNumber(), Message: fmt.Sprintf("jpeg2000 decode failed: %v", err)}
	}
	if width <= 0 || height <= 0 || len(samples) == 0 {
		return nil, &errs.DecodeFailureError{
			Template: t.TemplateNumber(),
			Message: fmt.Sprintf("jpeg2000 decode returned %d samples (%dx%d), expected a populated component",
				len(samples), width, height),
		}
	}
	if uint32(len(samples)) != t.NumberOfDataValues && bitmap == nil {
		return nil, &errs.DecodeFailureError{
			Template: t.TemplateNumber(),
			Message:  fmt.Sprintf("jpeg2000 decode returned %d samples, expected %d", len(samples), t.NumberOfDataValues),
		}
	}

	scaled := make([]float32, len(samples))
	for i, s := range samples {
		scaled[i] = t.applyScaling(s)
	}

	if bitmap == nil {
		return scaled, nil
	}

	if len(scaled) > len(bitmap) {
		return nil, &errs.DecodeFailureError{
			Template: t.TemplateNumber(),
			Message:  fmt.Sprintf("more decoded samples (%d) than bitmap entries (%d)", len(scaled), len(bitmap)),
		}
	}

	out := make([]float32, len(bitmap))
	idx := 0
	for i := range bitmap {
		if bitmap[i] {
			if idx >= len(scaled) {
				return nil, &errs.DecodeFailureError{Template: t.TemplateNumber(), Message: "bitmap indicates more valid points than decoded samples available"}
			}
			out[i] = scaled[idx]
			idx++
		} else {
			out[i] = float32(math.NaN())
		}
	}
	if idx != len(scaled) {
		return nil, &errs.DecodeFailureError{
			Template: t.TemplateNumber(),
			Message:  fmt.Sprintf("bitmap mismatch: used %d decoded samples, have %d", idx, len(scaled)),
		}
	}
	return out, nil
}

// applyScaling applies value = (R + X*2^E) * 10^(-D).
func (t *Template540) applyScaling(packedValue int32) float32 {
	value := float64(t.ReferenceValue)
	if packedValue != 0 {
		value += float64(packedValue) * math.Pow(2.0, float64(t.BinaryScaleFactor))
	}
	if t.DecimalScaleFactor != 0 {
		value *= math.Pow(10.0, -float64(t.DecimalScaleFactor))
	}
	return float32(value)
}

func (t *Template540) String() string {
	return fmt.Sprintf("Template 5.40: JPEG-2000, %d values, R=%g, E=%d, D=%d, compression type %d",
		t.NumberOfDataValues, t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor, t.TypeOfCompression)
}
