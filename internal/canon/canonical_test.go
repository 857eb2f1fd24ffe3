package canon

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"null", nil, "null"},
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int64", int64(-100), "-100"},
		{"max uint64", uint64(math.MaxUint64), "18446744073709551615"},
		{"bool", true, "true"},
		{"float integral", 4.0, "4"},
		{"float fraction", 123.45, "123.45"},
		{"float tiny", 1e-7, "1e-7"},
		{"float huge", 1e21, "1e+21"},
		{"float32", float32(0.5), "0.5"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"b", "a"}, `["b","a"]`},
		{"typed slice", []int{1, 2, 3}, "[1,2,3]"},
		{"simple object", map[string]any{"a": 1}, `{"a":1}`},
		{"duration", 90 * time.Second, `"1m30s"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": 1,
		"alpha": 2,
		"beta":  map[string]any{"b": 1, "a": 2},
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"a":2,"b":1},"zebra":1}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+E000 sorts before U+10000 in UTF-8 but after it in UTF-16.
	obj := map[string]any{
		"\uE000":     1,
		"\U00010000": 2,
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalNoHTMLEscape(t *testing.T) {
	result, err := Marshal("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalLineSeparatorsUnescaped(t *testing.T) {
	result, err := Marshal("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))
}

func TestMarshalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9.
	result, err := Marshal("e\u0301")
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalTextMarshaler(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	result, err := Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`, string(result))
}

func TestMarshalRejectsNonFinite(t *testing.T) {
	_, err := Marshal(math.NaN())
	assert.Error(t, err)
	_, err = Marshal(math.Inf(1))
	assert.Error(t, err)
}

func TestRenderFallsBack(t *testing.T) {
	assert.Equal(t, `"x"`, Render("x"))
	assert.Equal(t, `"NaN"`, Render(math.NaN()))
	assert.Equal(t, `"{1 2}"`, Render(struct{ A, B int }{1, 2}))
}

func TestFingerprintStable(t *testing.T) {
	a := MustFingerprint(DomainType, map[string]any{"kind": "int", "bits": 64})
	b := MustFingerprint(DomainType, map[string]any{"bits": 64, "kind": "int"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c := MustFingerprint(DomainReport, map[string]any{"kind": "int", "bits": 64})
	assert.NotEqual(t, a, c, "domains must separate identical payloads")
}
