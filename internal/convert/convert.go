package convert

import (
	"fmt"

	"github.com/roach88/dtengine/internal/dtype"
)

// To converts a single value to the representation of t. Null inputs
// convert to nil. Category values that are not declared members also
// convert to nil, mirroring a bulk categorical cast.
func To(t dtype.Type, v any) (any, error) {
	return newCaster(t).cast(v)
}

// Slice converts every element of vals to t. It stops at the first
// element that cannot be converted.
func Slice(t dtype.Type, vals []any) ([]any, error) {
	c := newCaster(t)
	out := make([]any, len(vals))
	for i, v := range vals {
		converted, err := c.cast(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = converted
	}
	return out, nil
}

// caster holds per-type state reused across elements.
type caster struct {
	t    dtype.Type
	cats CategorySet
}

func newCaster(t dtype.Type) caster {
	c := caster{t: t}
	if t.Kind() == dtype.KindCategory {
		c.cats = NewCategorySet(t)
	}
	return c
}

func (c caster) cast(v any) (any, error) {
	t := c.t
	switch t.Kind() {
	case dtype.KindObject:
		return v, nil
	case dtype.KindString:
		if IsNull(v) {
			return nil, nil
		}
		return ToString(v), nil
	case dtype.KindCategory:
		if IsNull(v) {
			return nil, nil
		}
		label, ok := ToCategory(v, c.cats)
		if !ok {
			return nil, nil
		}
		return label, nil
	case dtype.KindRecord:
		return nil, fail(v, t, "record values are validated by their row model")
	case dtype.KindInvalid:
		return nil, fail(v, t, "invalid target type")
	}

	if nullish(v) {
		return nil, nil
	}

	switch t.Kind() {
	case dtype.KindBool:
		return ToBool(v)
	case dtype.KindInt:
		i, err := ToInt(v, t.BitWidth())
		if err != nil {
			return nil, err
		}
		return narrowInt(i, t.BitWidth()), nil
	case dtype.KindUint:
		u, err := ToUint(v, t.BitWidth())
		if err != nil {
			return nil, err
		}
		return narrowUint(u, t.BitWidth()), nil
	case dtype.KindFloat:
		f, err := ToFloat(v, t.BitWidth())
		if err != nil {
			return nil, err
		}
		if t.BitWidth() == 32 {
			return float32(f), nil
		}
		return f, nil
	case dtype.KindComplex:
		z, err := ToComplex(v, t.BitWidth())
		if err != nil {
			return nil, err
		}
		if t.BitWidth() == 64 {
			return complex64(z), nil
		}
		return z, nil
	case dtype.KindDecimal:
		return ToDecimal(v, t)
	case dtype.KindDatetime:
		return ToDatetime(v, t)
	case dtype.KindDate:
		return ToDate(v)
	case dtype.KindTimedelta:
		return ToTimedelta(v)
	case dtype.KindPeriod:
		return ToPeriod(v, t)
	case dtype.KindInterval:
		return ToInterval(v, t)
	case dtype.KindUUID:
		return ToUUID(v)
	}
	return nil, fail(v, t, "unsupported target kind")
}

func narrowInt(i int64, bits int) any {
	switch bits {
	case 8:
		return int8(i)
	case 16:
		return int16(i)
	case 32:
		return int32(i)
	}
	return i
}

func narrowUint(u uint64, bits int) any {
	switch bits {
	case 8:
		return uint8(u)
	case 16:
		return uint16(u)
	case 32:
		return uint32(u)
	}
	return u
}
