package dtype

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEquivalentDescriptors(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name        string
		expected    Type
		descriptors []any
	}{
		{"bool", Bool, []any{"bool", "boolean", GoType[bool](), Bool}},
		{"int64", Int64, []any{"int64", "Int64", "int", "integer", GoType[int64](), GoType[int](), Int64}},
		{"int32", Int32, []any{"int32", "Int32", "intc", "i4", GoType[int32]()}},
		{"uint64", Uint64, []any{"uint64", "uint", GoType[uint](), GoType[uintptr]()}},
		{"float64", Float64, []any{"float64", "float", "floating", "mixed-integer-float", "double", GoType[float64]()}},
		{"float32", Float32, []any{"float32", "single", "f4", GoType[float32]()}},
		{"complex128", Complex128, []any{"complex", "complex128", GoType[complex128]()}},
		{"decimal", Decimal, []any{"decimal", GoType[apd.Decimal](), GoType[*apd.Decimal]()}},
		{"string", String, []any{"str", "string", GoType[string](), GoType[[]rune]()}},
		{"object", Object, []any{"object", "O", "bytes", "mixed", GoType[[]byte](), GoType[any]()}},
		{"category", Category, []any{"category", "categorical", GoType[CategoricalDtype]()}},
		{"datetime", Datetime, []any{"datetime", "datetime64", "datetime64[ns]", "M8[ns]", GoType[time.Time]()}},
		{"date", Date, []any{"date"}},
		{"timedelta", Timedelta, []any{"timedelta", "timedelta64[ns]", "m8[ns]", GoType[time.Duration]()}},
		{"uuid", UUID, []any{"uuid", GoType[uuid.UUID]()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, d := range tt.descriptors {
				got, err := r.Resolve(d)
				require.NoError(t, err, "descriptor %v", d)
				assert.Equal(t, tt.expected, got, "descriptor %v", d)
			}
		})
	}
}

func TestResolveEndToEndInt64(t *testing.T) {
	r := newTestRegistry(t)

	fromAlias := r.MustResolve("int64")
	fromGo := r.MustResolve(GoType[int64]())
	fromCanonical := r.MustResolve(Int64)

	assert.Equal(t, fromAlias, fromGo)
	assert.Equal(t, fromGo, fromCanonical)
	assert.Equal(t, Int64, fromAlias)
}

func TestResolvePlatformIntegersAreFixedWidth(t *testing.T) {
	r := newTestRegistry(t)

	type celsius float32
	type count int

	assert.Equal(t, Int64, r.MustResolve(reflect.TypeOf(0)))
	assert.Equal(t, Uint64, r.MustResolve(reflect.TypeOf(uint(0))))
	assert.Equal(t, Float32, r.MustResolve(GoType[celsius]()))
	assert.Equal(t, Int64, r.MustResolve(GoType[count]()))
	assert.Equal(t, Int64, r.MustResolve("intp"))
	assert.Equal(t, Int64, r.MustResolve("longlong"))
	assert.Equal(t, Uint32, r.MustResolve("uintc"))
	assert.Equal(t, Int64, r.MustResolve(GoType[*int64]()))
}

func TestResolveCaseAndWhitespace(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, Int64, r.MustResolve("  INT64 "))
	assert.Equal(t, Float64, r.MustResolve("Double"))
	assert.Equal(t, Bool, r.MustResolve("BOOLEAN"))
}

func TestResolveParametrizedStrings(t *testing.T) {
	r := newTestRegistry(t)

	dec, _ := NewDecimal(5, 2)
	rounded, _ := NewDecimalWithRounding(8, 3, "half_even")
	tz, _ := NewDatetime(UnitNanosecond, "America/New_York")
	sec, _ := NewDatetime(UnitSecond, "")
	period, _ := NewPeriod("Q")
	interval, _ := NewInterval(Int64, ClosedLeft)
	cat, _ := NewCategory([]string{"a", "b"}, false)
	ordered, _ := NewCategory(nil, true)

	tests := []struct {
		descriptor string
		expected   Type
	}{
		{"decimal(5,2)", dec},
		{"Decimal( 5 , 2 )", dec},
		{"decimal(8,3,half_even)", rounded},
		{"datetime64[ns, America/New_York]", tz},
		{"datetime[s]", sec},
		{"period[Q]", period},
		{"interval[int64, left]", interval},
		{"interval[i8, left]", interval},
		{`category["a","b"]`, cat},
		{"category ordered", ordered},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			got, err := r.Resolve(tt.descriptor)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveParametrizedValues(t *testing.T) {
	r := newTestRegistry(t)

	cat, err := r.Resolve(CategoricalDtype{Categories: []string{"x", "y"}, Ordered: true})
	require.NoError(t, err)
	assert.Equal(t, KindCategory, cat.Kind())
	assert.Equal(t, []string{"x", "y"}, cat.Categories())
	assert.True(t, cat.Ordered())

	tz, err := r.Resolve(DatetimeTZDtype{Unit: UnitMicrosecond, TZ: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, "datetime64[us, UTC]", tz.String())

	ptr, err := r.Resolve(&PeriodDtype{Freq: "D"})
	require.NoError(t, err)
	assert.Equal(t, "period[D]", ptr.String())

	interval, err := r.Resolve(IntervalDtype{Subtype: GoType[float32]()})
	require.NoError(t, err)
	assert.Equal(t, "interval[float32, right]", interval.String())

	dec, err := r.Resolve(DecimalDtype{Precision: 12, Scale: 4})
	require.NoError(t, err)
	assert.Equal(t, "decimal(12,4)", dec.String())
}

func TestResolveParametrizedClass(t *testing.T) {
	r := newTestRegistry(t)

	// The categorical class is registered as an equivalent of the
	// unparametrized category type.
	cat, err := r.Resolve(GoType[CategoricalDtype]())
	require.NoError(t, err)
	assert.Equal(t, Category, cat)

	// Period has no sensible zero value.
	_, err = r.Resolve(GoType[PeriodDtype]())
	require.Error(t, err)
	assert.True(t, IsUnresolved(err))
	assert.Contains(t, err.Error(), "cannot be instantiated")

	_, err = r.Resolve(GoType[DatetimeTZDtype]())
	assert.True(t, IsUnresolved(err))
}

func TestResolveUnregisteredCanonicalType(t *testing.T) {
	r := newTestRegistry(t)

	cat, err := NewCategory([]string{"only"}, false)
	require.NoError(t, err)
	got, err := r.Resolve(cat)
	require.NoError(t, err)
	assert.Equal(t, cat, got)
}

func TestResolveUnresolved(t *testing.T) {
	r := newTestRegistry(t)

	type opaque struct{ A int }

	for _, d := range []any{nil, "no-such-type", "decimal(x)", "period[fortnight]", GoType[opaque](), 42, Type{}} {
		_, err := r.Resolve(d)
		require.Error(t, err, "descriptor %v", d)
		var ue *UnresolvedTypeError
		assert.True(t, errors.As(err, &ue), "descriptor %v: %v", d, err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Int64, "bigint"))
	require.NoError(t, r.Register(Int64, "bigint"), "same binding is a no-op")

	err := r.Register(Int32, "bigint")
	require.Error(t, err)
	var de *DuplicateRegistrationError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, Int64, de.Existing)
	assert.Equal(t, Int32, de.Requested)
	assert.True(t, IsDuplicateRegistration(err))

	// A conflicting batch registers nothing.
	_, err = r.Resolve("int32")
	assert.True(t, IsUnresolved(err))
	assert.NotContains(t, r.Equivalents(Int32), "bigint")
}

func TestRegisterConflictLeavesRegistryUntouched(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Int64, "bigint"))

	err := r.Register(Float64, "real", "bigint")
	require.Error(t, err)

	_, err = r.Resolve("real")
	assert.Error(t, err, "first alias of a rejected batch must not be bound")
}

func TestRegisterNonComparableDescriptor(t *testing.T) {
	r := NewRegistry()
	err := r.Register(Category, CategoricalDtype{Categories: []string{"a"}})
	assert.Error(t, err)
}

func TestSealedRegistryRejectsRegistration(t *testing.T) {
	r := newTestRegistry(t)
	assert.True(t, r.Sealed())
	assert.ErrorIs(t, r.Register(Int64, "bigint"), ErrRegistrySealed)
	assert.ErrorIs(t, r.RegisterParametrized(GoType[struct{}](), categoricalFromParametrized), ErrRegistrySealed)
}

func TestConcurrentRegistrationFirstWriterWins(t *testing.T) {
	r := NewRegistry()
	candidates := []Type{Int8, Int16, Int32, Int64, Float32, Float64, String, Bool}

	var wg sync.WaitGroup
	errs := make([]error, len(candidates))
	for i, typ := range candidates {
		wg.Add(1)
		go func(i int, typ Type) {
			defer wg.Done()
			errs[i] = r.Register(typ, "contested")
		}(i, typ)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.True(t, IsDuplicateRegistration(err))
	}
	assert.Equal(t, 1, winners, "exactly one writer may claim the descriptor")

	r.Seal()
	got := r.MustResolve("contested")
	assert.Contains(t, candidates, got)
}

func TestConcurrentReadsAfterSeal(t *testing.T) {
	r := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.Equal(t, Int64, r.MustResolve("int64"))
				assert.Equal(t, Float32, r.MustResolve(GoType[float32]()))
			}
		}()
	}
	wg.Wait()
}

func TestEntriesAndEquivalents(t *testing.T) {
	r := newTestRegistry(t)

	entries := r.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, Bool, entries[0].Type)

	eq := r.Equivalents(Int64)
	assert.Contains(t, eq, "int64")
	assert.Contains(t, eq, "integer")
	assert.Contains(t, eq, GoType[int]())
	assert.NotContains(t, eq, any(Int64))
}
