package seeder

import (
	"errors"
	"fmt"
)

// Kind classifies what went wrong during a seeding run
type Kind string

const (
	// KindIngest covers malformed input files, schema mismatches and
	// duplicate natural keys in the raw datasets
	KindIngest Kind = "ingest_error"

	// KindParse covers malformed nested JSON inside a tabular cell
	KindParse Kind = "parse_error"

	// KindConsistency covers name lookups that were expected to resolve
	// but did not (director, genre)
	KindConsistency Kind = "consistency_error"

	// KindRandomization covers invalid rating synthesis bounds
	KindRandomization Kind = "randomization_error"
)

// Error is a seeding failure tagged with the pipeline stage it occurred
// in and the kind of failure. The whole run aborts on the first Error;
// there is no per-row skip-and-continue.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Stage, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Stage, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewIngestError creates an ingest failure for the given stage
func NewIngestError(stage Stage, message string, cause error) *Error {
	return &Error{Kind: KindIngest, Stage: stage, Message: message, Cause: cause}
}

// NewParseError creates a nested-JSON parse failure for the given stage
func NewParseError(stage Stage, message string, cause error) *Error {
	return &Error{Kind: KindParse, Stage: stage, Message: message, Cause: cause}
}

// NewConsistencyError creates a reference-resolution failure for the given stage
func NewConsistencyError(stage Stage, message string) *Error {
	return &Error{Kind: KindConsistency, Stage: stage, Message: message}
}

// NewRandomizationError creates a rating-bounds failure
func NewRandomizationError(message string) *Error {
	return &Error{Kind: KindRandomization, Stage: StageSynthesizingRatings, Message: message}
}

// KindOf returns the failure kind of err, or "" when err is not a
// seeding error
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// StageOf returns the pipeline stage err occurred in, or "" when err is
// not a seeding error
func StageOf(err error) Stage {
	var se *Error
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
