package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput means the input could not be used at all: empty file,
	// unreadable CSV or a header missing required columns.
	ErrMalformedInput = errors.New("ingest: malformed input")
	// ErrEmptyResult means the input parsed but produced no valid rows.
	ErrEmptyResult = errors.New("ingest: no valid rows")
)

// ErrorKind classifies why a single row was rejected.
type ErrorKind string

const (
	KindMissingField  ErrorKind = "missing_field"
	KindInvalidNumber ErrorKind = "invalid_number"
	KindDuplicateName ErrorKind = "duplicate_name"
)

// FieldError reports a cell-level problem that invalidates one row.
// Column carries the model field name (name, type, flowrate, pressure,
// temperature), Value the offending raw cell for invalid numbers.
type FieldError struct {
	Kind   ErrorKind `json:"kind"`
	Column string    `json:"column"`
	Value  string    `json:"value,omitempty"`
}

func (e *FieldError) Error() string {
	switch e.Kind {
	case KindInvalidNumber:
		return fmt.Sprintf("invalid number in %s: %q", e.Column, e.Value)
	case KindDuplicateName:
		return fmt.Sprintf("duplicate equipment name %q", e.Value)
	default:
		return fmt.Sprintf("missing %s", e.Column)
	}
}

// SkippedRow pairs a 1-based data row index with the reason it was rejected.
type SkippedRow struct {
	Row    int         `json:"row"`
	Reason *FieldError `json:"reason"`
}

// BuildError is returned when an upload cannot produce a dataset. It keeps
// the per-row rejections and warnings gathered before the build gave up so
// callers can report them.
type BuildError struct {
	Err      error
	Detail   string
	Skipped  []SkippedRow
	Warnings []string
}

func (e *BuildError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
