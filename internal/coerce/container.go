package coerce

import "github.com/roach88/dtengine/internal/dtype"

// Container is a sequence of values that can be cast in bulk.
type Container interface {
	// Len returns the number of elements.
	Len() int

	// At returns the element at index i.
	At(i int) any

	// IsNull reports whether the element at index i is missing.
	IsNull(i int) bool

	// Cast converts every element to t. It is the bulk primitive that
	// Coerce builds on.
	Cast(t dtype.Type) (Container, error)

	// FromValues returns a container of the same backend holding vals.
	FromValues(vals []any) Container
}

// Values returns the elements of c.
func Values(c Container) []any {
	vals := make([]any, c.Len())
	for i := range vals {
		vals[i] = c.At(i)
	}
	return vals
}
