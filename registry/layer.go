// Package registry indexes decoded GRIB2 layer descriptors by parameter,
// surface, and time, and resolves nearest-neighbor candidates for
// interpolation queries.
package registry

import (
	"fmt"

	"github.com/stormgrid/squall/data"
	"github.com/stormgrid/squall/grid"
	"github.com/stormgrid/squall/product"
	"github.com/stormgrid/squall/tables"
)

// PayloadLocator points at the encoded Section 7 payload for a layer inside
// its source file, so the cache can read it lazily rather than the parser
// keeping the bytes resident.
type PayloadLocator struct {
	Filename string
	Offset   int64
	Length   int64
}

// BitmapLocator points at the optional Section 6 bitmap for a layer.
type BitmapLocator struct {
	Offset  int64
	Length  int64
	Present bool
}

// Layer is an immutable metadata record for one decoded GRIB2 field. A Layer
// owns no decoded data; loading and caching the dense grid is the cache
// package's job. Once constructed by NewLayer, a Layer's fields are never
// mutated, so it is safe to share a *Layer across goroutines without
// additional synchronization.
type Layer struct {
	Parameter *tables.Parameter
	Grid      grid.Grid

	RefTime int64 // issue/model-run time, Unix seconds
	EffTime int64 // valid time, Unix seconds

	CenterID          uint16
	SubcenterID       uint16
	ProductionStatus  uint8
	DataType          uint8
	GeneratingProcess uint8

	Surface1 product.Surface
	Surface2 product.Surface

	DataRepresentationCode uint16
	Representation         data.Representation

	Source  PayloadLocator
	Bitmap  BitmapLocator
}

// Key is the tuple Layers are ordered and deduplicated by:
// (parameter, surface1-type, surface1-value, surface2-type, surface2-value,
// efftime, reftime).
type Key struct {
	ParameterID   string
	Surface1Type  uint8
	Surface1Value float64
	Surface2Type  uint8
	Surface2Value float64
	EffTime       int64
	RefTime       int64
}

// Key returns this layer's ordering/dedup key.
func (l *Layer) Key() Key {
	return Key{
		ParameterID:   l.Parameter.ID(),
		Surface1Type:  l.Surface1.Type,
		Surface1Value: l.Surface1.Value,
		Surface2Type:  l.Surface2.Type,
		Surface2Value: l.Surface2.Value,
		EffTime:       l.EffTime,
		RefTime:       l.RefTime,
	}
}

// SameSeries reports whether two keys agree on every component except
// RefTime — used by RemoveObsoleteLayers to find same-field entries that
// differ only by which model run produced them.
func (k Key) SameSeries(other Key) bool {
	return k.ParameterID == other.ParameterID &&
		k.Surface1Type == other.Surface1Type &&
		k.Surface1Value == other.Surface1Value &&
		k.Surface2Type == other.Surface2Type &&
		k.Surface2Value == other.Surface2Value &&
		k.EffTime == other.EffTime
}

// Less defines the strict total order used by the Registry: lexicographic
// over (ParameterID, Surface1Type, Surface1Value, Surface2Type,
// Surface2Value, EffTime, RefTime).
func (k Key) Less(other Key) bool {
	if k.ParameterID != other.ParameterID {
		return k.ParameterID < other.ParameterID
	}
	if k.Surface1Type != other.Surface1Type {
		return k.Surface1Type < other.Surface1Type
	}
	if k.Surface1Value != other.Surface1Value {
		return k.Surface1Value < other.Surface1Value
	}
	if k.Surface2Type != other.Surface2Type {
		return k.Surface2Type < other.Surface2Type
	}
	if k.Surface2Value != other.Surface2Value {
		return k.Surface2Value < other.Surface2Value
	}
	if k.EffTime != other.EffTime {
		return k.EffTime < other.EffTime
	}
	return k.RefTime < other.RefTime
}

func (l *Layer) String() string {
	return fmt.Sprintf("%s @ %s efftime=%d reftime=%d",
		l.Parameter.Abbreviation, l.Surface1, l.EffTime, l.RefTime)
}
