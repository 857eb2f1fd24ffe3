package coerce

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/dtengine/internal/canon"
	"github.com/roach88/dtengine/internal/dtype"
)

// CoercionError reports a container or value that could not be coerced
// to a target type. It is the parser-level error of the engine: Report
// lists the failing elements when they are known.
type CoercionError struct {
	// Target is the type coerced to.
	Target dtype.Type

	// Report lists the failing elements. It is nil for scalar coercion.
	Report *FailureReport

	// Err is the underlying cause.
	Err error
}

func (e *CoercionError) Error() string {
	if e.Report == nil {
		if e.Err != nil {
			return fmt.Sprintf("could not coerce to %s: %v", e.Target, e.Err)
		}
		return fmt.Sprintf("could not coerce to %s", e.Target)
	}
	return fmt.Sprintf("could not coerce to %s: %s", e.Target, e.Report)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// IsCoercionError returns true if err is a CoercionError.
// Uses errors.As to handle wrapped errors.
func IsCoercionError(err error) bool {
	var ce *CoercionError
	return errors.As(err, &ce)
}

// FailureCases returns the failure report carried by err, if any.
func FailureCases(err error) (*FailureReport, bool) {
	var ce *CoercionError
	if errors.As(err, &ce) && ce.Report != nil {
		return ce.Report, true
	}
	return nil, false
}

// RowFailure is a row rejected by a row model.
type RowFailure struct {
	// Index is the row's position in the input container.
	Index int

	// Fields maps each failing field to its original value.
	Fields map[string]any

	// Errors holds the model's messages, one per failing field.
	Errors []dtype.FieldError
}

// ValidationError reports rows rejected by a record type's row model.
type ValidationError struct {
	Model string
	Rows  []RowFailure
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d row(s) failed validation against %s", len(e.Rows), e.Model)
	for _, row := range e.Rows {
		fmt.Fprintf(&b, "; row %d: %s", row.Index, formatFieldErrors(row.Errors))
	}
	return b.String()
}

// Fields returns the failing fields of every row, keyed by row index then
// field name.
func (e *ValidationError) Fields() map[int]map[string]any {
	m := make(map[int]map[string]any, len(e.Rows))
	for _, row := range e.Rows {
		m[row.Index] = row.Fields
	}
	return m
}

// IsValidationError returns true if err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func formatFieldErrors(errs []dtype.FieldError) string {
	sorted := append([]dtype.FieldError(nil), errs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return canon.CompareKeys(sorted[i].Field, sorted[j].Field) < 0
	})
	parts := make([]string, len(sorted))
	for i, fe := range sorted {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, ", ")
}
