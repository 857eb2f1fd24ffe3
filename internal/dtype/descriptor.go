package dtype

import (
	"fmt"
	"reflect"
)

// FromParametrized derives a Type from the runtime attributes of a
// parametrized descriptor value. r resolves nested descriptors.
type FromParametrized func(r *Registry, v any) (Type, error)

// CategoricalDtype describes a categorical type by its attributes.
type CategoricalDtype struct {
	Categories []string
	Ordered    bool
}

// DatetimeTZDtype describes a timezone-aware timestamp type.
type DatetimeTZDtype struct {
	Unit TimeUnit
	TZ   string
}

// PeriodDtype describes a period type.
type PeriodDtype struct {
	Freq string
}

// IntervalDtype describes an interval type. Subtype is any descriptor of
// a numeric or datetime type.
type IntervalDtype struct {
	Subtype any
	Closed  string
}

// DecimalDtype describes a fixed-point decimal type.
type DecimalDtype struct {
	Precision int
	Scale     int
	Rounding  string
}

func categoricalFromParametrized(_ *Registry, v any) (Type, error) {
	d := v.(CategoricalDtype)
	return NewCategory(d.Categories, d.Ordered)
}

func datetimeTZFromParametrized(_ *Registry, v any) (Type, error) {
	d := v.(DatetimeTZDtype)
	if d.TZ == "" {
		return Type{}, fmt.Errorf("a timezone is required")
	}
	return NewDatetime(d.Unit, d.TZ)
}

func periodFromParametrized(_ *Registry, v any) (Type, error) {
	return NewPeriod(v.(PeriodDtype).Freq)
}

func intervalFromParametrized(r *Registry, v any) (Type, error) {
	d := v.(IntervalDtype)
	if d.Subtype == nil {
		return Type{}, fmt.Errorf("an interval subtype is required")
	}
	sub, err := r.Resolve(d.Subtype)
	if err != nil {
		return Type{}, err
	}
	return NewInterval(sub, d.Closed)
}

func decimalFromParametrized(_ *Registry, v any) (Type, error) {
	d := v.(DecimalDtype)
	return NewDecimalWithRounding(d.Precision, d.Scale, d.Rounding)
}

// builtinParametrized lists the parametrized descriptor structs and their
// hooks registered by InitializeRegistry.
var builtinParametrized = []struct {
	class reflect.Type
	hook  FromParametrized
}{
	{GoType[CategoricalDtype](), categoricalFromParametrized},
	{GoType[DatetimeTZDtype](), datetimeTZFromParametrized},
	{GoType[PeriodDtype](), periodFromParametrized},
	{GoType[IntervalDtype](), intervalFromParametrized},
	{GoType[DecimalDtype](), decimalFromParametrized},
}
