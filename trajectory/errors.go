package trajectory

import (
	"fmt"
)

// ParseError is returned for a malformed detection or record row.
// A single ParseError aborts the whole read.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %s: can't parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EmptyClassError is returned by the interpolator when a class has no resolved points.
// The engine omits such classes from the output instead of failing.
type EmptyClassError struct {
	ClassID int
}

func (e *EmptyClassError) Error() string {
	return fmt.Sprintf("class %d has no resolved points", e.ClassID)
}

// NoActiveSelectionError is returned when a reprocess request names no class.
type NoActiveSelectionError struct{}

func (e *NoActiveSelectionError) Error() string {
	return "no class selected for reprocessing"
}

// TrackNotFoundError is returned when there is no stored output of the class to splice into.
type TrackNotFoundError struct {
	ClassID int
}

func (e *TrackNotFoundError) Error() string {
	return fmt.Sprintf("no stored track found for class %d", e.ClassID)
}
