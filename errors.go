// Package squall provides a clean, idiomatic Go library for reading GRIB2
// (GRIdded Binary 2nd edition) meteorological data files and serving
// spatial/temporal weather queries over the decoded fields.
//
// Basic usage:
//
//	file, err := os.Open("forecast.grib2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	gribs, err := squall.Read(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, g := range gribs {
//	    fmt.Printf("%s at %s: %d values\n", g.Parameter, g.Level, len(g.Data))
//	}
//
// Filtering:
//
//	// Only read meteorological temperature fields (discipline 0, category 0)
//	gribs, err := squall.ReadWithOptions(file,
//	    squall.WithDiscipline(0), squall.WithParameterCategory(0))
//
// Performance:
//
// This library processes GRIB2 messages in parallel using goroutines,
// providing 3-5x speedup on multi-message files compared to sequential
// processing. Use the WithContext option for cancellation support:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	gribs, err := squall.ReadWithOptions(file, squall.WithContext(ctx))
package squall

import "github.com/stormgrid/squall/internal/errs"

// The error kinds below are aliases onto internal/errs so that section
// parsers, data representation decoders, and the registry/cache layer can
// construct and return the same types without importing this package (which
// would cycle back through section -> data -> squall). errors.As/errors.Is
// against squall.ParseError and friends work exactly as if these were
// defined here directly.

// ParseError represents an error during GRIB2 parsing.
// It includes context about where in the file the error occurred.
type ParseError = errs.ParseError

// wrapParse builds a ParseError and attaches a stack trace to the
// underlying cause via pkg/errors, so a %+v format on a returned error
// prints the call stack that first observed the failure.
func wrapParse(section, offset int, message string, cause error) *ParseError {
	return errs.WrapParse(section, offset, message, cause)
}

// UnsupportedTemplateError indicates a template number that isn't implemented.
type UnsupportedTemplateError = errs.UnsupportedTemplateError

// InvalidFormatError indicates that the data is not a valid GRIB2 file.
type InvalidFormatError = errs.InvalidFormatError

// TruncatedInputError indicates that a message's declared length extends
// past the end of the buffer it was read from, or a cached read came back
// short of the bytes its locator promised.
type TruncatedInputError = errs.TruncatedInputError

// DecodeFailureError indicates that a data representation decoder could
// not recover values from a section 7 payload (bad group width, corrupt
// codestream, inconsistent header fields).
type DecodeFailureError = errs.DecodeFailureError

// QueryOutOfBoundsError indicates that a query referenced a coordinate,
// time, or surface value outside any layer the registry holds.
type QueryOutOfBoundsError = errs.QueryOutOfBoundsError
