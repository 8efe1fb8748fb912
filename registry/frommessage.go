package registry

import (
	"fmt"
	"os"

	squall "github.com/stormgrid/squall"
	"github.com/stormgrid/squall/product"
	"github.com/stormgrid/squall/tables"
)

// surfacedProduct is the subset of product.Product implemented by every
// product definition template this package knows how to index: the two
// fixed-surface descriptors and the forecast time fields needed to compute
// a layer's valid time. product.Template40 and product.Template48 both
// satisfy it; a template added later that doesn't breaks the type switch in
// NewLayerFromMessage with a clear UnsupportedTemplateError instead of a
// silent zero-value surface.
type surfacedProduct interface {
	product.Product
	firstSurface() product.Surface
	secondSurface() product.Surface
	forecastSeconds() (int64, bool)
	forecastProcess() uint8
}

type template40Adapter struct{ *product.Template40 }

func (a template40Adapter) firstSurface() product.Surface {
	return product.Surface{Type: a.FirstSurfaceType, Value: a.FirstSurfaceValueScaled()}
}
func (a template40Adapter) secondSurface() product.Surface {
	return product.Surface{Type: a.SecondSurfaceType, Value: a.SecondSurfaceValueScaled()}
}
func (a template40Adapter) forecastSeconds() (int64, bool) {
	return tables.ForecastSeconds(a.TimeRangeUnit, a.ForecastTime)
}
func (a template40Adapter) forecastProcess() uint8 { return a.ForecastProcess }

type template48Adapter struct{ *product.Template48 }

func (a template48Adapter) firstSurface() product.Surface {
	return product.Surface{Type: a.FirstSurfaceType, Value: a.FirstSurfaceValueScaled()}
}
func (a template48Adapter) secondSurface() product.Surface {
	return product.Surface{Type: a.SecondSurfaceType, Value: a.SecondSurfaceValueScaled()}
}
func (a template48Adapter) forecastSeconds() (int64, bool) {
	return tables.ForecastSeconds(a.TimeRangeUnit, a.ForecastTime)
}
func (a template48Adapter) forecastProcess() uint8 { return a.ForecastProcess }

func adaptProduct(p product.Product) (surfacedProduct, error) {
	switch t := p.(type) {
	case *product.Template40:
		return template40Adapter{t}, nil
	case *product.Template48:
		return template48Adapter{t}, nil
	default:
		return nil, &squall.UnsupportedTemplateError{Section: 4, TemplateNumber: p.TemplateNumber()}
	}
}

// NewLayerFromMessage builds a Layer descriptor from a fully parsed message,
// locating its Section 7 payload (and optional Section 6 bitmap) at
// absolute byte offsets within filename. fileOffset is the offset, within
// filename, where this message's Section 0 begins (the Start field of the
// squall.MessageBoundary that produced msg).
func NewLayerFromMessage(msg *squall.Message, filename string, fileOffset int) (*Layer, error) {
	switch {
	case msg.Section0 == nil:
		return nil, fmt.Errorf("registry: message has no Section 0")
	case msg.Section1 == nil:
		return nil, fmt.Errorf("registry: message has no Section 1")
	case msg.Section3 == nil:
		return nil, fmt.Errorf("registry: message has no Section 3")
	case msg.Section4 == nil || msg.Section4.Product == nil:
		return nil, fmt.Errorf("registry: message has no Section 4 product definition")
	case msg.Section5 == nil:
		return nil, fmt.Errorf("registry: message has no Section 5")
	case msg.Section7 == nil:
		return nil, fmt.Errorf("registry: message has no Section 7")
	}

	prod, err := adaptProduct(msg.Section4.Product)
	if err != nil {
		return nil, err
	}

	parameter := tables.LookupParameter(msg.Section0.Discipline, prod.GetParameterCategory(), prod.GetParameterNumber())

	refTime := msg.Section1.ReferenceTime.Unix()
	effTime := refTime
	if seconds, ok := prod.forecastSeconds(); ok {
		effTime = refTime + seconds
	}

	source := PayloadLocator{
		Filename: filename,
		Offset:   int64(fileOffset + msg.Section7Offset + 5),
		Length:   int64(msg.Section7.Length) - 5,
	}

	var bitmap BitmapLocator
	if msg.Section6 != nil && msg.Section6.HasBitmap() {
		bitmap = BitmapLocator{
			Offset:  int64(fileOffset + msg.Section6Offset),
			Length:  int64(msg.Section6.Length),
			Present: true,
		}
	}

	return &Layer{
		Parameter:              parameter,
		Grid:                   msg.Section3.Grid,
		RefTime:                refTime,
		EffTime:                effTime,
		CenterID:               msg.Section1.OriginatingCenter,
		SubcenterID:            msg.Section1.OriginatingSubcenter,
		ProductionStatus:       msg.Section1.ProductionStatus,
		DataType:               msg.Section1.TypeOfData,
		GeneratingProcess:      prod.forecastProcess(),
		Surface1:               prod.firstSurface(),
		Surface2:               prod.secondSurface(),
		DataRepresentationCode: msg.Section5.DataRepresentationTemplate,
		Representation:         msg.Section5.Representation,
		Source:                 source,
		Bitmap:                 bitmap,
	}, nil
}

// LoadLayersFromFile scans filename for GRIB2 messages and builds a Layer
// descriptor for each one, resolving every locator against filename's
// absolute byte offsets so a cache.Store can mmap the file and read each
// layer's payload lazily. The returned layers are not yet registered; pass
// them to a Registry's AddLayer to index them.
func LoadLayersFromFile(filename string) ([]*Layer, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("registry: reading %s: %w", filename, err)
	}

	boundaries, err := squall.FindMessages(raw)
	if err != nil {
		return nil, fmt.Errorf("registry: scanning %s: %w", filename, err)
	}

	var previousBitmap []bool
	layers := make([]*Layer, 0, len(boundaries))
	for _, b := range boundaries {
		end := b.Start + int(b.Length)
		if end > len(raw) {
			return nil, fmt.Errorf("registry: message %d in %s overruns the file", b.Index, filename)
		}

		msg, err := squall.ParseMessageWithPreviousBitmap(raw[b.Start:end], previousBitmap)
		if err != nil {
			return nil, fmt.Errorf("registry: parsing message %d in %s: %w", b.Index, filename, err)
		}
		if msg.Section6 != nil {
			previousBitmap = msg.Section6.Bitmap
		}

		layer, err := NewLayerFromMessage(msg, filename, b.Start)
		if err != nil {
			return nil, fmt.Errorf("registry: building layer for message %d in %s: %w", b.Index, filename, err)
		}
		layers = append(layers, layer)
	}
	return layers, nil
}
