// Package column provides an in-memory container of values that supports
// the coercion engine's container capabilities.
package column

import (
	"github.com/roach88/dtengine/internal/coerce"
	"github.com/roach88/dtengine/internal/convert"
	"github.com/roach88/dtengine/internal/dtype"
)

// Column is an immutable named sequence of values.
type Column struct {
	name   string
	values []any
}

var _ coerce.Container = (*Column)(nil)

// New returns a column holding a copy of values.
func New(name string, values []any) *Column {
	return &Column{name: name, values: append([]any(nil), values...)}
}

// Of returns an unnamed column of the given values.
func Of(values ...any) *Column {
	return New("", values)
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Len returns the number of values.
func (c *Column) Len() int { return len(c.values) }

// At returns the value at index i.
func (c *Column) At(i int) any { return c.values[i] }

// IsNull reports whether the value at index i is missing.
func (c *Column) IsNull(i int) bool { return convert.IsNull(c.values[i]) }

// Values returns a copy of the column's values.
func (c *Column) Values() []any {
	return append([]any(nil), c.values...)
}

// Cast converts every value to t. Categorical casts turn values outside
// the declared categories into nulls; any other unconvertible value fails
// the whole cast.
func (c *Column) Cast(t dtype.Type) (coerce.Container, error) {
	out, err := convert.Slice(t, c.values)
	if err != nil {
		return nil, err
	}
	return &Column{name: c.name, values: out}, nil
}

// FromValues returns a column with the same name holding vals.
func (c *Column) FromValues(vals []any) coerce.Container {
	return New(c.name, vals)
}

// NullCount returns the number of missing values.
func (c *Column) NullCount() int {
	n := 0
	for i := range c.values {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}
