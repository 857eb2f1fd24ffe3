package coerce

import (
	"fmt"
	"time"

	"github.com/roach88/dtengine/internal/convert"
	"github.com/roach88/dtengine/internal/dtype"
)

// DataType coerces containers and values to one canonical type.
//
// DataType is sealed: the engine builds one per kind through
// Engine.DataType.
type DataType interface {
	// Type returns the canonical type coerced to.
	Type() dtype.Type

	// Coerce casts every element of c. It fails on the first element that
	// cannot be converted and does not track which elements failed.
	Coerce(c Container) (Container, error)

	// CoerceValue converts a single value.
	CoerceValue(v any) (any, error)

	// TryCoerce is Coerce with diagnosis: on failure it reports every
	// failing element in a *CoercionError. A *CoercionError returned by
	// Coerce itself is passed through unchanged.
	TryCoerce(c Container) (Container, error)

	// Check reports whether t is compatible with this type.
	Check(t dtype.Type) bool

	// CheckValues reports, per element, whether the value already
	// satisfies the type's value-level constraints. Types without such
	// constraints accept every element.
	CheckValues(c Container) []bool

	// element converts one value exactly as Coerce would convert it
	// inside a container.
	element(v any) (any, error)
}

func newDataType(e *Engine, t dtype.Type) DataType {
	b := base{t: t, policy: NullPolicyFor(t.Kind()), eng: e}
	switch t.Kind() {
	case dtype.KindBool:
		return &boolType{scalarType{b}}
	case dtype.KindDecimal:
		return &decimalType{scalarType{b}}
	case dtype.KindCategory:
		return &categoryType{scalarType{b}, convert.NewCategorySet(t)}
	case dtype.KindDate:
		return &dateType{scalarType{b}}
	case dtype.KindRecord:
		return &recordType{base: b, model: t.Model()}
	}
	return &scalarType{b}
}

type base struct {
	t      dtype.Type
	policy NullPolicy
	eng    *Engine
}

func (b *base) Type() dtype.Type { return b.t }

func (b *base) Check(t dtype.Type) bool { return b.t == t }

// cast is the bulk conversion shared by every scalar kind.
func (b *base) cast(c Container) (Container, error) {
	out, err := c.Cast(b.t)
	if err != nil {
		return nil, fmt.Errorf("cast to %s: %w", b.t, err)
	}
	if out.Len() != c.Len() {
		return nil, fmt.Errorf("cast to %s: container returned %d elements for %d", b.t, out.Len(), c.Len())
	}
	if b.policy == HardFailure {
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) && out.IsNull(i) {
				return nil, fmt.Errorf("cast to %s: element %d (%v) became null", b.t, i, c.At(i))
			}
		}
	}
	return out, nil
}

// castElement converts one value with the semantics of cast.
func (b *base) castElement(v any) (any, error) {
	out, err := convert.To(b.t, v)
	if err != nil {
		return nil, err
	}
	if b.policy == HardFailure && out == nil && !convert.IsNull(v) {
		return nil, &convert.Error{Value: v, Target: b.t.String(), Reason: "value became null"}
	}
	return out, nil
}

// scalarType coerces through the container's bulk cast.
type scalarType struct {
	base
}

func (d *scalarType) Coerce(c Container) (Container, error) {
	return d.cast(c)
}

func (d *scalarType) CoerceValue(v any) (any, error) {
	out, err := d.castElement(v)
	if err != nil {
		return nil, &CoercionError{Target: d.t, Err: err}
	}
	return out, nil
}

func (d *scalarType) TryCoerce(c Container) (Container, error) {
	return d.eng.tryCoerce(d, c)
}

func (d *scalarType) CheckValues(c Container) []bool {
	ok := make([]bool, c.Len())
	for i := range ok {
		ok[i] = true
	}
	return ok
}

func (d *scalarType) element(v any) (any, error) {
	return d.castElement(v)
}

// boolType only accepts boolean-like scalars in CoerceValue; bulk casts
// also parse boolean strings.
type boolType struct {
	scalarType
}

func (d *boolType) CoerceValue(v any) (any, error) {
	if convert.IsNull(v) {
		return nil, nil
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case float32:
		return floatBool(d.t, v, float64(x))
	case float64:
		return floatBool(d.t, v, x)
	case string:
		return nil, &CoercionError{Target: d.t, Err: &convert.Error{Value: v, Target: d.t.String(), Reason: "strings are not boolean-like"}}
	}
	b, err := convert.ToBool(v)
	if err != nil {
		return nil, &CoercionError{Target: d.t, Err: err}
	}
	return b, nil
}

func floatBool(t dtype.Type, v any, f float64) (any, error) {
	switch f {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return nil, &CoercionError{Target: t, Err: &convert.Error{Value: v, Target: t.String(), Reason: "only true, false, 1 and 0 are boolean"}}
}

// decimalType checks precision and scale per value.
type decimalType struct {
	scalarType
}

func (d *decimalType) CheckValues(c Container) []bool {
	ok := make([]bool, c.Len())
	for i := range ok {
		if c.IsNull(i) {
			ok[i] = true
			continue
		}
		dec, err := convert.ParseDecimal(c.At(i))
		ok[i] = err == nil && convert.FitsDecimal(dec, d.t)
	}
	return ok
}

// categoryType rejects values outside the declared categories.
type categoryType struct {
	scalarType
	cats convert.CategorySet
}

func (d *categoryType) CoerceValue(v any) (any, error) {
	if convert.IsNull(v) {
		return nil, nil
	}
	label, ok := convert.ToCategory(v, d.cats)
	if !ok {
		return nil, &CoercionError{Target: d.t, Err: &convert.Error{Value: v, Target: d.t.String(), Reason: "not a declared category"}}
	}
	return label, nil
}

// Check accepts any categorical type when categories are inferred.
func (d *categoryType) Check(t dtype.Type) bool {
	if t.Kind() != dtype.KindCategory {
		return false
	}
	if !d.t.HasCategories() {
		return d.t.Ordered() == t.Ordered()
	}
	return d.t == t
}

// dateType checks that values are calendar dates.
type dateType struct {
	scalarType
}

func (d *dateType) CheckValues(c Container) []bool {
	ok := make([]bool, c.Len())
	for i := range ok {
		if c.IsNull(i) {
			ok[i] = true
			continue
		}
		ts, isTime := c.At(i).(time.Time)
		ok[i] = isTime && convert.IsDate(ts)
	}
	return ok
}
