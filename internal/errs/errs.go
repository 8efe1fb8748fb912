// Package errs holds the typed error kinds returned across squall's parsing
// and serving paths. It lives under internal/ so every package that needs to
// construct one of these (section parsers, data representation decoders, the
// registry/cache layer) can import it without creating a cycle back through
// the root package.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError represents an error during GRIB2 parsing.
// It includes context about where in the file the error occurred.
type ParseError struct {
	Section    int    // Which section (0-7), or -1 if file-level
	Offset     int    // Byte offset in file where error occurred
	Message    string // Description of the error
	Underlying error  // Wrapped error, if any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Section == -1 {
		if e.Underlying != nil {
			return fmt.Sprintf("at offset %d: %s: %v", e.Offset, e.Message, e.Underlying)
		}
		return fmt.Sprintf("at offset %d: %s", e.Offset, e.Message)
	}

	if e.Underlying != nil {
		return fmt.Sprintf("section %d at offset %d: %s: %v",
			e.Section, e.Offset, e.Message, e.Underlying)
	}
	return fmt.Sprintf("section %d at offset %d: %s",
		e.Section, e.Offset, e.Message)
}

// Unwrap returns the underlying error, if any.
// This allows errors.Is and errors.As to work correctly.
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// WrapParse builds a ParseError and attaches a stack trace to the underlying
// cause via pkg/errors, so a %+v format on a returned error prints the call
// stack that first observed the failure.
func WrapParse(section, offset int, message string, cause error) *ParseError {
	var underlying error
	if cause != nil {
		underlying = errors.WithStack(cause)
	}
	return &ParseError{Section: section, Offset: offset, Message: message, Underlying: underlying}
}

// UnsupportedTemplateError indicates a template number that isn't implemented.
type UnsupportedTemplateError struct {
	Section        int // Which section (3=grid, 4=product, 5=data)
	TemplateNumber int // The unsupported template number
}

// Error implements the error interface.
func (e *UnsupportedTemplateError) Error() string {
	sectionName := "unknown"
	switch e.Section {
	case 3:
		sectionName = "grid definition"
	case 4:
		sectionName = "product definition"
	case 5:
		sectionName = "data representation"
	}

	return fmt.Sprintf("unsupported %s template %d in section %d",
		sectionName, e.TemplateNumber, e.Section)
}

// InvalidFormatError indicates that the data is not a valid GRIB2 file.
type InvalidFormatError struct {
	Message string // Description of what's invalid
	Offset  int    // Byte offset where the invalid data was found
}

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid GRIB2 format at offset %d: %s", e.Offset, e.Message)
}

// TruncatedInputError indicates that a read stopped short of the bytes it
// was declared or expected to cover: a message's declared length extends
// past the end of the buffer it was read from, or a ReadAt against a cached
// file came back with fewer bytes than the locator promised.
type TruncatedInputError struct {
	Offset   int
	Declared uint64
	Have     int
}

// Error implements the error interface.
func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("truncated GRIB2 input at offset %d: declared length %d, have %d bytes",
		e.Offset, e.Declared, e.Have)
}

// DecodeFailureError indicates that a data representation decoder could
// not recover values from a section 7 payload (bad group width, corrupt
// codestream, inconsistent header fields).
type DecodeFailureError struct {
	Template int
	Message  string
}

// Error implements the error interface.
func (e *DecodeFailureError) Error() string {
	return fmt.Sprintf("data representation template %d decode failed: %s", e.Template, e.Message)
}

// QueryOutOfBoundsError indicates that a query referenced a coordinate,
// time, or surface value outside any layer the registry holds.
type QueryOutOfBoundsError struct {
	Message string
}

// Error implements the error interface.
func (e *QueryOutOfBoundsError) Error() string {
	return fmt.Sprintf("query out of bounds: %s", e.Message)
}
