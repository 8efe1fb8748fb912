package data

import (
	"fmt"
	"math"

	"github.com/stormgrid/squall/internal"
)

// groupHeader describes one decoded group: its reference value, bit width,
// and cell count, shared by complex packing (repr 2) and complex packing
// with spatial differencing (repr 3).
type groupHeader struct {
	ref    int32
	width  uint8
	length uint32
}

// readGroupHeaders reads the three group-descriptor arrays that precede
// group data in templates 5.2 and 5.3: ngroups group-reference values
// (nbitsPerValue bits each), ngroups group-widths (nbitsGroupWidth bits
// each, biased by refGroupWidth), and ngroups group-lengths
// (nbitsGroupLength bits each, scaled by lengthIncrement, biased by
// refGroupLength; the last group's length is replaced by
// trueLengthLastGroup). The bit reader is byte-aligned after each array.
func readGroupHeaders(br *internal.BitReader, ngroups uint32, nbitsPerValue uint8,
	nbitsGroupWidth uint8, refGroupWidth uint8,
	nbitsGroupLength uint8, refGroupLength uint32, lengthIncrement uint8, trueLengthLastGroup uint32,
) ([]groupHeader, error) {
	refs := make([]int32, ngroups)
	for i := uint32(0); i < ngroups; i++ {
		v, err := br.ReadBits(int(nbitsPerValue))
		if err != nil {
			return nil, fmt.Errorf("group reference %d: %w", i, err)
		}
		refs[i] = int32(v)
	}
	br.Align()

	widths := make([]uint8, ngroups)
	if nbitsGroupWidth > 0 {
		for i := uint32(0); i < ngroups; i++ {
			v, err := br.ReadBits(int(nbitsGroupWidth))
			if err != nil {
				return nil, fmt.Errorf("group width %d: %w", i, err)
			}
			widths[i] = uint8(v) + refGroupWidth
		}
	} else {
		for i := range widths {
			widths[i] = refGroupWidth
		}
	}
	br.Align()

	lengths := make([]uint32, ngroups)
	if nbitsGroupLength > 0 {
		for i := uint32(0); i < ngroups; i++ {
			v, err := br.ReadBits(int(nbitsGroupLength))
			if err != nil {
				return nil, fmt.Errorf("group length %d: %w", i, err)
			}
			lengths[i] = refGroupLength + uint32(v)*uint32(lengthIncrement)
		}
	} else {
		for i := range lengths {
			lengths[i] = refGroupLength
		}
	}
	if ngroups > 0 {
		lengths[ngroups-1] = trueLengthLastGroup
	}
	br.Align()

	headers := make([]groupHeader, ngroups)
	for i := range headers {
		headers[i] = groupHeader{ref: refs[i], width: widths[i], length: lengths[i]}
	}
	return headers, nil
}

// missingKind classifies a decoded integer cell against the group-local and
// global missing-value sentinels of Table 5.5, per the precedence recorded
// in design notes: group-local sentinel checked first, then global; mode 2
// treats primary and secondary identically at the group-local level.
type missingKind int

const (
	missingNone missingKind = iota
	missingPrimary
	missingSecondary
)

// classifyMissing inspects the raw (pre-reference) group value x and width,
// then the post-reference value against the global sentinels.
func classifyMissing(mode uint8, x int32, width uint8, postRef int32, primaryRaw, secondaryRaw uint32) missingKind {
	if mode == 0 {
		return missingNone
	}
	if width > 0 && uint32(x) == uint32(1)<<width-1 {
		return missingPrimary
	}
	if mode == 2 && width > 1 && uint32(x) == uint32(1)<<width-2 {
		return missingSecondary
	}
	if uint32(postRef) == primaryRaw {
		return missingPrimary
	}
	if mode == 2 && uint32(postRef) == secondaryRaw {
		return missingSecondary
	}
	return missingNone
}

// missingFloatValue renders a raw 32-bit missing-value substitute as a
// float32: bit-cast when fieldValueType==0 marks IEEE floats (zero-extending
// narrower representations before the cast, per design notes), otherwise
// treated as a plain integer magnitude.
func missingFloatValue(raw uint32, fieldValueType uint8) float32 {
	if fieldValueType == 0 {
		return math.Float32frombits(raw)
	}
	return float32(raw)
}
