// Package apperr defines the typed error domain shared by the ingestion
// layer, the analysis engine, and the web layer.
//
// Only two kinds are fatal to a request: KindDataUnavailable (no matching
// table in the archive) and KindSchemaMismatch (required columns absent).
// The remaining kinds describe degradations that are handled internally
// with defaults or row skips and surface in results, not as errors.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers that need to branch on failure mode
// without string matching.
type Kind int

const (
	KindUnknown Kind = iota

	// KindDataUnavailable means no table matched the requested category and
	// technology tag. Fatal to the request.
	KindDataUnavailable

	// KindSchemaMismatch means a table resolved but required columns
	// (latitude/longitude for design tables) could not be mapped. Fatal.
	KindSchemaMismatch

	// KindDecodeFailure means no encoding in the priority list produced a
	// readable header line. The sniffer substitutes its conservative
	// default layout, so this kind only ever annotates degradations.
	KindDecodeFailure

	// KindMalformedRow means a row's numeric fields failed to parse. Rows
	// are skipped individually; the run continues.
	KindMalformedRow

	// KindConfigLookupMiss means the parameter resolver found no matching
	// configuration row. A default tilt is substituted; never fatal.
	KindConfigLookupMiss

	// KindValidation means the caller's input was rejected before any work
	// ran.
	KindValidation
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindDataUnavailable:  "data_unavailable",
	KindSchemaMismatch:   "schema_mismatch",
	KindDecodeFailure:    "decode_failure",
	KindMalformedRow:     "malformed_row",
	KindConfigLookupMiss: "config_lookup_miss",
	KindValidation:       "validation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error carries a kind, the operation that failed, and a message naming the
// missing resource or column. It wraps the underlying cause when one exists.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error with no underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and operation context to an underlying error.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf extracts the kind from err, walking the wrap chain. Errors outside
// this package report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Status maps an error to the HTTP status the web layer responds with.
func Status(err error) int {
	switch KindOf(err) {
	case KindDataUnavailable:
		return http.StatusNotFound
	case KindSchemaMismatch:
		return http.StatusUnprocessableEntity
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
