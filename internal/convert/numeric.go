package convert

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/roach88/dtengine/internal/dtype"
)

// ToBool converts bools, the integers 0 and 1, and the strings accepted by
// strconv.ParseBool.
func ToBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fail(v, dtype.Bool, "not a boolean literal")
		}
		return b, nil
	}
	if i, ok := exactInt(v); ok {
		switch i {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	}
	return false, fail(v, dtype.Bool, "only true, false, 1 and 0 are boolean")
}

// ToInt converts v to a signed integer of the given width, returned as an
// int64. Floats and decimals must be integral; strings must be base-10
// integer literals.
func ToInt(v any, bits int) (int64, error) {
	target := sized(dtype.KindInt, bits)
	var i int64
	switch x := v.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, bits)
		if err != nil {
			return 0, failWith(v, target, unwrapNumError(err))
		}
		return n, nil
	case json.Number:
		if n, err := ToInt(string(x), bits); err == nil {
			return n, nil
		}
		// JSON writes integral floats as 3.0 or 1e3.
		if f, err := x.Float64(); err == nil {
			if n, err := ToInt(f, bits); err == nil {
				return n, nil
			}
		}
		return 0, fail(v, target, "not an integral number")
	case uint:
		return uintToInt(v, uint64(x), bits, target)
	case uint64:
		return uintToInt(v, x, bits, target)
	case uintptr:
		return uintToInt(v, uint64(x), bits, target)
	case float32, float64:
		f := toFloat64(x)
		if math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fail(v, target, "not an integral value")
		}
		if f < -math.Ldexp(1, bits-1) || f >= math.Ldexp(1, bits-1) {
			return 0, fail(v, target, "out of range")
		}
		return int64(f), nil
	case *apd.Decimal:
		return decimalToInt(v, x, bits, target)
	case apd.Decimal:
		return decimalToInt(v, &x, bits, target)
	default:
		n, ok := exactInt(v)
		if !ok {
			return 0, fail(v, target, "not a number")
		}
		i = n
	}
	if bits < 64 && (i < -(1<<(bits-1)) || i > (1<<(bits-1))-1) {
		return 0, fail(v, target, "out of range")
	}
	return i, nil
}

// ToUint converts v to an unsigned integer of the given width.
func ToUint(v any, bits int) (uint64, error) {
	target := sized(dtype.KindUint, bits)
	var u uint64
	switch x := v.(type) {
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(x), 10, bits)
		if err != nil {
			return 0, failWith(v, target, unwrapNumError(err))
		}
		return n, nil
	case json.Number:
		if n, err := ToUint(string(x), bits); err == nil {
			return n, nil
		}
		if f, err := x.Float64(); err == nil {
			if n, err := ToUint(f, bits); err == nil {
				return n, nil
			}
		}
		return 0, fail(v, target, "not a non-negative integral number")
	case uint:
		u = uint64(x)
	case uint64:
		u = x
	case uintptr:
		u = uint64(x)
	case float32, float64:
		f := toFloat64(x)
		if math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fail(v, target, "not an integral value")
		}
		if f < 0 || f >= math.Ldexp(1, bits) {
			return 0, fail(v, target, "out of range")
		}
		return uint64(f), nil
	case *apd.Decimal, apd.Decimal:
		i, err := ToInt(v, 64)
		if err != nil {
			return 0, fail(v, target, "not an integral value in range")
		}
		return ToUint(i, bits)
	default:
		n, ok := exactInt(v)
		if !ok {
			return 0, fail(v, target, "not a number")
		}
		if n < 0 {
			return 0, fail(v, target, "negative value")
		}
		u = uint64(n)
	}
	if bits < 64 && u > (1<<bits)-1 {
		return 0, fail(v, target, "out of range")
	}
	return u, nil
}

// ToFloat converts v to a float of the given width, returned as a float64.
// Values beyond the range of a 32-bit float fail rather than overflow to
// infinity.
func ToFloat(v any, bits int) (float64, error) {
	target := sized(dtype.KindFloat, bits)
	var f float64
	switch x := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), bits)
		if err != nil {
			return 0, failWith(v, target, unwrapNumError(err))
		}
		return parsed, nil
	case json.Number:
		return ToFloat(string(x), bits)
	case float32:
		f = float64(x)
	case float64:
		f = x
	case bool:
		if x {
			f = 1
		}
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case uintptr:
		f = float64(x)
	case *apd.Decimal:
		parsed, err := x.Float64()
		if err != nil {
			return 0, failWith(v, target, err)
		}
		f = parsed
	case apd.Decimal:
		return ToFloat(&x, bits)
	default:
		n, ok := exactInt(v)
		if !ok {
			return 0, fail(v, target, "not a number")
		}
		f = float64(n)
	}
	if bits == 32 && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return 0, fail(v, target, "out of range")
	}
	return f, nil
}

// ToComplex converts real numbers and complex literals to a complex of the
// given width.
func ToComplex(v any, bits int) (complex128, error) {
	target := sized(dtype.KindComplex, bits)
	switch x := v.(type) {
	case complex64:
		return complex128(x), nil
	case complex128:
		return x, nil
	case string:
		c, err := strconv.ParseComplex(strings.TrimSpace(x), bits)
		if err != nil {
			return 0, failWith(v, target, unwrapNumError(err))
		}
		return c, nil
	}
	f, err := ToFloat(v, 64)
	if err != nil {
		return 0, fail(v, target, "not a number")
	}
	return complex(f, 0), nil
}

// exactInt returns the value of a signed integer or bool.
func exactInt(v any) (int64, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}

func uintToInt(v any, u uint64, bits int, target dtype.Type) (int64, error) {
	if u > uint64(1)<<(bits-1)-1 {
		return 0, fail(v, target, "out of range")
	}
	return int64(u), nil
}

func decimalToInt(v any, d *apd.Decimal, bits int, target dtype.Type) (int64, error) {
	if d.Form != apd.Finite {
		return 0, fail(v, target, "not a finite value")
	}
	var integ, frac apd.Decimal
	d.Modf(&integ, &frac)
	if !frac.IsZero() {
		return 0, fail(v, target, "not an integral value")
	}
	i, err := integ.Int64()
	if err != nil {
		return 0, failWith(v, target, err)
	}
	return ToInt(i, bits)
}

func toFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}

// sized returns the canonical type used in error messages.
func sized(kind dtype.Kind, bits int) dtype.Type {
	t, err := dtype.Sized(kind, bits)
	if err != nil {
		panic(fmt.Sprintf("convert: %v", err))
	}
	return t
}

// unwrapNumError drops the strconv function name from parse errors.
func unwrapNumError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
