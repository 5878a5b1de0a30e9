// Package evidence validates raw submissions and aligns them with an assessment definition.
package evidence

import (
	"errors"
	"fmt"
)

// ShapeError is returned when a submission does not have the shape the definition requires:
// wrong number of responses, misaligned question ids, missing values or mismatched value kinds.
type ShapeError struct {
	Message  string
	Expected string
	Got      string
	// Index is the offending response position, or -1 when the whole submission is at fault.
	Index int
}

func (e *ShapeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("shape error at response %d: %s (expected %s, got %s)", e.Index, e.Message, e.Expected, e.Got)
	}
	return fmt.Sprintf("shape error: %s (expected %s, got %s)", e.Message, e.Expected, e.Got)
}

// RangeError is returned when a well-shaped value falls outside what its item allows.
type RangeError struct {
	Message string
	ItemID  string
	// Index is the offending response position, or -1 for telemetry values.
	Index int
}

func (e *RangeError) Error() string {
	if e.ItemID != "" {
		return fmt.Sprintf("range error on item %s (response %d): %s", e.ItemID, e.Index, e.Message)
	}
	return fmt.Sprintf("range error: %s", e.Message)
}

// IsRejection reports whether err means the submission could not be scored at all,
// as opposed to being scored with validity flags.
func IsRejection(err error) bool {
	var shapeErr *ShapeError
	var rangeErr *RangeError
	return errors.As(err, &shapeErr) || errors.As(err, &rangeErr)
}

// Kind returns a short machine-readable name for rejection errors, or "" for other errors.
func Kind(err error) string {
	var shapeErr *ShapeError
	var rangeErr *RangeError
	switch {
	case errors.As(err, &shapeErr):
		return "shape"
	case errors.As(err, &rangeErr):
		return "range"
	default:
		return ""
	}
}
