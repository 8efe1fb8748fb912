package tables

import "fmt"

// Parameter identifies a GRIB2 field by its discipline/category/number triple
// (WMO Code Table 4.2) and carries the display metadata looked up from the
// static tables: a short abbreviation, a human display name, and a unit.
type Parameter struct {
	Discipline  uint8
	Category    uint8
	Number      uint8
	Abbreviation string
	DisplayName  string
	Unit         string
}

// ID returns the dotted triple used as this parameter's canonical identity,
// e.g. "0.0.0" for temperature.
func (p *Parameter) ID() string {
	return fmt.Sprintf("%d.%d.%d", p.Discipline, p.Category, p.Number)
}

func (p *Parameter) String() string {
	if p.Unit != "" {
		return fmt.Sprintf("%s (%s)", p.DisplayName, p.Unit)
	}
	return p.DisplayName
}

// LookupParameter builds the Parameter for a parameter triple. Unknown
// triples still return a Parameter, with a generated display name. Each
// call allocates a new Parameter: two lookups of the same triple are equal
// field by field and by ID(), but are not the same pointer. The tables
// consulted are process-wide immutable data (§6.2); the static entries
// backing GetParameterName/GetParameterUnit never mutate after init.
func LookupParameter(discipline, category, number uint8) *Parameter {
	name := GetParameterName(int(discipline), int(category), int(number))
	unit := GetParameterUnit(int(discipline), int(category), int(number))
	return &Parameter{
		Discipline:   discipline,
		Category:     category,
		Number:       number,
		Abbreviation: abbreviate(name),
		DisplayName:  name,
		Unit:         unit,
	}
}

// abbreviate derives a short code from a display name by taking the initials
// of its words, used when no explicit abbreviation is tabulated.
func abbreviate(name string) string {
	var out []byte
	wordStart := true
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == ' ' || c == '/' || c == '-':
			wordStart = true
		case wordStart && c >= 'A' && c <= 'Z':
			out = append(out, c)
			wordStart = false
		case wordStart:
			wordStart = false
		}
	}
	if len(out) == 0 {
		return name
	}
	return string(out)
}
