package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange marks a numeric observation outside its accepted range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrUnknownCategory marks a land cover or soil type outside the closed set.
	ErrUnknownCategory = errors.New("unknown category")
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field string
	Value any
	Bound string // human-readable accepted range, empty for categories
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Bound != "" {
		return fmt.Sprintf("%s: %v: %v (accepted %s)", e.Field, e.Err, e.Value, e.Bound)
	}
	return fmt.Sprintf("%s: %v: %q", e.Field, e.Err, fmt.Sprint(e.Value))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors flattens a (possibly joined) error into its field errors.
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, ValidationErrors(e)...)
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		out = append(out, ve)
	}
	return out
}

// IsValidation reports whether err rejects the request itself rather than
// signalling an inference failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrOutOfRange) || errors.Is(err, ErrUnknownCategory)
}
