// Package starerr defines the error taxonomy shared by every Starlane
// component: parse failures, registry misses, access denials, exchange
// timeouts, protocol violations and internal panics. Each kind wraps a
// sentinel so callers can branch with errors.Is, and carries enough
// context to synthesize a wire status code (see pkg/wave.StatusFor).
package starerr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Wrap these with fmt.Errorf("...: %w", ErrNotFound) or
// use the constructors below, which do the wrapping for you.
var (
	ErrParse       = errors.New("parse error")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrTimeout     = errors.New("timeout")
	ErrProtocol    = errors.New("protocol error")
	ErrInternal    = errors.New("internal error")
	ErrConflict    = errors.New("conflict")
	ErrRateLimited = errors.New("rate limited")
)

// Span locates a parse failure in source text.
type Span struct {
	Offset int
	Line   int
	Column int
	Label  string
}

func (s Span) String() string {
	return fmt.Sprintf("%s at line %d, column %d (offset %d)", s.Label, s.Line, s.Column, s.Offset)
}

// ParseErrs collects one or more structured parse failures for a single
// input. It is always non-empty when returned as an error.
type ParseErrs struct {
	Input string
	Spans []Span
}

func (e *ParseErrs) Error() string {
	if len(e.Spans) == 0 {
		return fmt.Sprintf("parse error: %q", e.Input)
	}
	msg := fmt.Sprintf("parse error in %q: %s", e.Input, e.Spans[0])
	for _, s := range e.Spans[1:] {
		msg += "; " + s.String()
	}
	return msg
}

func (e *ParseErrs) Unwrap() error { return ErrParse }

// NewParse builds a single-span ParseErrs.
func NewParse(input, label string, offset, line, column int) *ParseErrs {
	return &ParseErrs{
		Input: input,
		Spans: []Span{{Offset: offset, Line: line, Column: column, Label: label}},
	}
}

// NotFound wraps ErrNotFound with the thing that was missing.
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

// Forbidden wraps ErrForbidden with a human reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrForbidden)
}

// Timeout wraps ErrTimeout with the thing that expired.
func Timeout(what string) error {
	return fmt.Errorf("%s: %w", what, ErrTimeout)
}

// Protocol wraps ErrProtocol with a description of the violation.
func Protocol(what string) error {
	return fmt.Errorf("%s: %w", what, ErrProtocol)
}

// Internal wraps ErrInternal, typically a recovered panic.
func Internal(what string) error {
	return fmt.Errorf("%s: %w", what, ErrInternal)
}

// Conflict wraps ErrConflict, typically a registry assignment race.
func Conflict(what string) error {
	return fmt.Errorf("%s: %w", what, ErrConflict)
}

// RateLimited wraps ErrRateLimited with the key that tripped its limiter.
func RateLimited(who string) error {
	return fmt.Errorf("%s: %w", who, ErrRateLimited)
}

// Status maps an error to the HTTP-style status code carried on the wire
// (spec §6 "Errors on the wire"). Unrecognized errors map to 500.
func Status(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrParse):
		return 400
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrTimeout):
		return 408
	case errors.Is(err, ErrConflict):
		return 409
	case errors.Is(err, ErrRateLimited):
		return 429
	case errors.Is(err, ErrProtocol):
		return 500
	case errors.Is(err, ErrInternal):
		return 500
	default:
		return 500
	}
}
