package canon

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces RFC 8785 canonical JSON for v.
//
// Supported values: nil, strings, booleans, every Go integer and float kind
// (finite floats only), slices and arrays, maps with string keys,
// time.Time (RFC 3339 with nanoseconds), time.Duration, and any value
// implementing encoding.TextMarshaler or fmt.Stringer (encoded as strings).
func Marshal(v any) ([]byte, error) {
	return marshal(v)
}

// Render returns the canonical JSON of v, or a JSON string of its %v
// rendering when v has no canonical form. Never fails; used for display
// and persistence of arbitrary offending values.
func Render(v any) string {
	b, err := marshal(v)
	if err != nil {
		s, _ := marshalString(fmt.Sprintf("%v", v))
		return string(s)
	}
	return string(b)
}

func marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case string:
		return marshalString(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int8:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int16:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int32:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case uint:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case uint8:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case uint16:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case uint32:
		return []byte(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return []byte(strconv.FormatUint(val, 10)), nil
	case float32:
		return marshalFloat(float64(val))
	case float64:
		return marshalFloat(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return marshalFloat(f)
	case time.Time:
		return marshalString(val.Format(time.RFC3339Nano))
	case time.Duration:
		return marshalString(val.String())
	case []any:
		return marshalArray(val)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalArray(arr)
	case map[string]any:
		return marshalObject(val)
	case encoding.TextMarshaler:
		text, err := val.MarshalText()
		if err != nil {
			return nil, err
		}
		return marshalString(string(text))
	case fmt.Stringer:
		return marshalString(val.String())
	}

	// Slices, arrays and string-keyed maps of other element types.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		arr := make([]any, rv.Len())
		for i := range arr {
			arr[i] = rv.Index(i).Interface()
		}
		return marshalArray(arr)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type for canonical JSON: %s", rv.Type().Key())
		}
		obj := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[iter.Key().String()] = iter.Value().Interface()
		}
		return marshalObject(obj)
	case reflect.Pointer:
		if rv.IsNil() {
			return []byte("null"), nil
		}
		return marshal(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
}

// marshalFloat formats f the way ES6 Number.prototype.toString does.
func marshalFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number has no canonical form: %v", f)
	}
	if f == 0 {
		return []byte("0"), nil
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go pads the exponent to two digits ("1e-07"); ES6 does not.
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return []byte(mantissa + "e" + sign + digits), nil
}

// marshalString produces a canonical JSON string with NFC normalization.
// Only control characters, backslash and quote are escaped.
func marshalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	// encoding/json escapes U+2028 and U+2029 for JavaScript; RFC 8785 does not.
	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators turns \u2028 and \u2029 escapes back into literal
// characters, leaving \\u2028 (an escaped backslash followed by text) alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if i+6 <= len(data) && bytes.HasPrefix(data[i:], []byte(`\u202`)) && (data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range SortedKeys(obj) {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SortedKeys returns the keys of m in RFC 8785 order (UTF-16 code units).
// Go's native string order compares UTF-8 bytes, which differs for
// characters outside the Basic Multilingual Plane.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// CompareKeys compares a and b by UTF-16 code units.
func CompareKeys(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
