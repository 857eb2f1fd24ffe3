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

// ToDecimal converts v to a decimal that fits t's precision and scale.
// With a rounding mode the value is first quantized to the scale;
// otherwise a value with more fractional digits than the scale fails.
func ToDecimal(v any, t dtype.Type) (*apd.Decimal, error) {
	d, err := parseDecimal(v, t)
	if err != nil {
		return nil, err
	}
	if d.Form != apd.Finite {
		return nil, fail(v, t, "not a finite value")
	}

	if t.Rounding() != "" && t.HasScale() {
		intDigits, _ := DecimalDigits(d)
		ctx := apd.BaseContext.WithPrecision(uint32(intDigits + t.Scale() + 1))
		ctx.Rounding = apd.Rounder(t.Rounding())
		quantized := new(apd.Decimal)
		if _, err := ctx.Quantize(quantized, d, int32(-t.Scale())); err != nil {
			return nil, failWith(v, t, err)
		}
		d = quantized
	}

	if err := checkDigits(v, d, t); err != nil {
		return nil, err
	}
	return d, nil
}

// DecimalDigits returns the number of digits left and right of the decimal
// point. Trailing fractional zeros count; a lone leading zero does not.
func DecimalDigits(d *apd.Decimal) (integer, fraction int) {
	s := strings.TrimPrefix(d.Text('f'), "-")
	intPart, fracPart, _ := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	return len(intPart), len(fracPart)
}

// FitsDecimal reports whether d fits t without rounding.
func FitsDecimal(d *apd.Decimal, t dtype.Type) bool {
	return d.Form == apd.Finite && checkDigits(d, d, t) == nil
}

func checkDigits(v any, d *apd.Decimal, t dtype.Type) error {
	intDigits, fracDigits := DecimalDigits(d)
	if !t.HasScale() {
		if intDigits+fracDigits > t.Precision() {
			return fail(v, t, fmt.Sprintf("%d digits exceed precision %d", intDigits+fracDigits, t.Precision()))
		}
		return nil
	}
	if fracDigits > t.Scale() {
		return fail(v, t, fmt.Sprintf("%d fractional digits exceed scale %d", fracDigits, t.Scale()))
	}
	if maxInt := t.Precision() - t.Scale(); intDigits > maxInt {
		return fail(v, t, fmt.Sprintf("%d integer digits exceed the %d allowed", intDigits, maxInt))
	}
	return nil
}

func parseDecimal(v any, t dtype.Type) (*apd.Decimal, error) {
	switch x := v.(type) {
	case *apd.Decimal:
		return new(apd.Decimal).Set(x), nil
	case apd.Decimal:
		return new(apd.Decimal).Set(&x), nil
	case string:
		d, _, err := apd.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil, failWith(v, t, err)
		}
		return d, nil
	case json.Number:
		return parseDecimal(string(x), t)
	case float32:
		// Shortest representation of the float32, not of its float64
		// widening.
		return parseDecimal(strconv.FormatFloat(float64(x), 'g', -1, 32), t)
	case float64:
		if math.IsInf(x, 0) {
			return nil, fail(v, t, "not a finite value")
		}
		d, err := new(apd.Decimal).SetFloat64(x)
		if err != nil {
			return nil, failWith(v, t, err)
		}
		return d, nil
	case uint:
		return parseDecimal(strconv.FormatUint(uint64(x), 10), t)
	case uint64:
		return parseDecimal(strconv.FormatUint(x, 10), t)
	}
	if i, ok := exactInt(v); ok {
		return apd.New(i, 0), nil
	}
	return nil, fail(v, t, "not a number")
}

// ParseDecimal converts v to a decimal without checking precision or
// scale.
func ParseDecimal(v any) (*apd.Decimal, error) {
	return parseDecimal(v, dtype.Decimal)
}
