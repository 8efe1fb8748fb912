// Package product provides product definition types and parsers for GRIB2.
package product

import (
	"fmt"

	"github.com/stormgrid/squall/tables"
)

// signMagnitude8 decodes an octet using the GRIB2 sign-magnitude convention:
// the high bit is the sign, the low 7 bits are the magnitude. Used for the
// scale factor octets of fixed-surface fields in Table 4.5.
func signMagnitude8(raw uint8) int {
	magnitude := int(raw &^ 0x80)
	if raw&0x80 != 0 {
		return -magnitude
	}
	return magnitude
}

// Surface identifies a fixed surface (Table 4.5) by type and scaled value,
// e.g. {Type: 100, Value: 85000} for the 850 hPa isobaric surface.
type Surface struct {
	Type  uint8
	Value float64
}

// String renders the surface using its Table 4.5 name and unit, e.g.
// "850 Pa Isobaric" or "Surface" for surfaces with no associated value.
func (s Surface) String() string {
	name := tables.GetLevelName(int(s.Type))
	if unit := tables.GetLevelUnit(int(s.Type)); unit != "" {
		return fmt.Sprintf("%g %s %s", s.Value, unit, name)
	}
	return name
}

// Product represents a GRIB2 product definition.
// Different product templates implement this interface.
type Product interface {
	// TemplateNumber returns the product definition template number (Table 4.0).
	TemplateNumber() int

	// GetParameterCategory returns the parameter category code (Table 4.1).
	GetParameterCategory() uint8

	// GetParameterNumber returns the parameter number code (Table 4.2).
	GetParameterNumber() uint8

	// String returns a human-readable description of the product.
	String() string
}
