package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	dec, err := NewDecimal(5, 2)
	require.NoError(t, err)
	rounded, err := NewDecimalWithRounding(10, 4, "half_up")
	require.NoError(t, err)
	cat, err := NewCategory([]string{"a", "b"}, true)
	require.NoError(t, err)
	tz, err := NewDatetime(UnitMillisecond, "UTC")
	require.NoError(t, err)
	period, err := NewPeriod("month")
	require.NoError(t, err)
	interval, err := NewInterval(Float64, ClosedBoth)
	require.NoError(t, err)

	tests := []struct {
		typ      Type
		expected string
	}{
		{Bool, "bool"},
		{Int64, "int64"},
		{Uint8, "uint8"},
		{Float32, "float32"},
		{Complex128, "complex128"},
		{Decimal, "decimal(28)"},
		{dec, "decimal(5,2)"},
		{rounded, "decimal(10,4,half_up)"},
		{String, "string"},
		{Object, "object"},
		{Category, "category"},
		{cat, `category["a","b"] ordered`},
		{Datetime, "datetime64[ns]"},
		{tz, "datetime64[ms, UTC]"},
		{Date, "date"},
		{Timedelta, "timedelta64[ns]"},
		{period, "period[M]"},
		{interval, "interval[float64, both]"},
		{UUID, "uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.typ.String())
		})
	}
}

func TestTypeEquality(t *testing.T) {
	a, err := NewCategory([]string{"a", "b"}, false)
	require.NoError(t, err)
	b, err := NewCategory([]string{"a", "b"}, false)
	require.NoError(t, err)
	c, err := NewCategory([]string{"b", "a"}, false)
	require.NoError(t, err)
	d, err := NewCategory([]string{"a", "b"}, true)
	require.NoError(t, err)

	assert.True(t, a == b, "same parameters must be equal")
	assert.False(t, a == c, "category order is a parameter")
	assert.False(t, a == d, "ordering flag is a parameter")
	assert.NotEqual(t, Int32, Int64)

	sized, err := Sized(KindInt, 32)
	require.NoError(t, err)
	assert.Equal(t, Int32, sized)
}

func TestConstructorValidation(t *testing.T) {
	_, err := Sized(KindInt, 12)
	assert.Error(t, err)
	_, err = Sized(KindString, 8)
	assert.Error(t, err)
	_, err = NewDecimal(0, 0)
	assert.Error(t, err)
	_, err = NewDecimal(3, 5)
	assert.Error(t, err)
	_, err = NewDecimalWithRounding(5, 2, "sideways")
	assert.Error(t, err)
	_, err = NewDecimalWithRounding(5, -1, "half_up")
	assert.Error(t, err)
	_, err = NewCategory([]string{"a", "a"}, false)
	assert.Error(t, err)
	_, err = NewDatetime("weeks", "")
	assert.Error(t, err)
	_, err = NewDatetime(UnitNanosecond, "Mars/Olympus_Mons")
	assert.Error(t, err)
	_, err = NewPeriod("fortnight")
	assert.Error(t, err)
	_, err = NewInterval(String, "")
	assert.Error(t, err)
	_, err = NewInterval(Int64, "sideways")
	assert.Error(t, err)
	_, err = NewRecord(nil)
	assert.Error(t, err)
}

func TestTypeAccessors(t *testing.T) {
	cat, err := NewCategory([]string{"low", "high"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "high"}, cat.Categories())
	assert.True(t, cat.HasCategory("low"))
	assert.False(t, cat.HasCategory("mid"))
	assert.True(t, cat.Ordered())
	assert.Nil(t, Category.Categories())

	interval, err := NewInterval(Int32, "")
	require.NoError(t, err)
	assert.Equal(t, Int32, interval.Subtype())
	assert.Equal(t, ClosedRight, interval.Closed())

	dec, err := NewDecimal(5, 2)
	require.NoError(t, err)
	assert.True(t, dec.HasScale())
	assert.False(t, Decimal.HasScale())

	assert.Equal(t, 64, Int64.BitWidth())
	assert.True(t, Float32.IsNumeric())
	assert.False(t, String.IsNumeric())
	assert.False(t, Type{}.IsValid())
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Int64.Fingerprint(), Int64.Fingerprint())
	assert.NotEqual(t, Int64.Fingerprint(), Int32.Fingerprint())
	assert.Len(t, Int64.Fingerprint(), 64)
}
