package coerce

import (
	"fmt"
	"strings"

	"github.com/roach88/dtengine/internal/canon"
	"github.com/roach88/dtengine/internal/dtype"
)

// FailureCase is one element that could not be converted.
type FailureCase struct {
	// Index is the element's position in the input container.
	Index int

	// Value is the original, unconverted element.
	Value any
}

// FailureReport lists the failing elements of a coercion in index order.
type FailureReport struct {
	Target dtype.Type
	Cases  []FailureCase
}

// Len returns the number of failing elements.
func (r *FailureReport) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Cases)
}

// Indices returns the failing indices in ascending order.
func (r *FailureReport) Indices() []int {
	idx := make([]int, r.Len())
	if r == nil {
		return idx
	}
	for i, fc := range r.Cases {
		idx[i] = fc.Index
	}
	return idx
}

// Map returns the failing elements keyed by index.
func (r *FailureReport) Map() map[int]any {
	m := make(map[int]any, r.Len())
	if r == nil {
		return m
	}
	for _, fc := range r.Cases {
		m[fc.Index] = fc.Value
	}
	return m
}

// Fingerprint returns a content identity of the report: the target type
// and every failing index with its canonical value.
func (r *FailureReport) Fingerprint() (string, error) {
	cases := make([]any, r.Len())
	for i, fc := range r.Cases {
		cases[i] = map[string]any{"index": fc.Index, "value": canon.Render(fc.Value)}
	}
	return canon.Fingerprint(canon.DomainReport, map[string]any{
		"target": r.Target.String(),
		"cases":  cases,
	})
}

// String summarizes the report, listing at most ten cases.
func (r *FailureReport) String() string {
	const shown = 10
	var b strings.Builder
	fmt.Fprintf(&b, "%d failure case(s) for %s:", r.Len(), r.Target)
	for i, fc := range r.Cases {
		if i == shown {
			fmt.Fprintf(&b, " ... and %d more", r.Len()-shown)
			break
		}
		fmt.Fprintf(&b, " [%d]=%s", fc.Index, canon.Render(fc.Value))
	}
	return b.String()
}
