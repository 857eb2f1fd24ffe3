package dtype

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// platformAliases maps platform-dependent and single-character type codes
// to fixed-width names, so resolution does not depend on the architecture
// the aliases were written for.
var platformAliases = map[string]string{
	"byte":      "int8",
	"short":     "int16",
	"intc":      "int32",
	"int_":      "int64",
	"intp":      "int64",
	"long":      "int64",
	"longlong":  "int64",
	"ubyte":     "uint8",
	"ushort":    "uint16",
	"uintc":     "uint32",
	"uintp":     "uint64",
	"ulong":     "uint64",
	"ulonglong": "uint64",
	"half":      "float32",
	"single":    "float32",
	"double":    "float64",
	"float_":    "float64",
	"csingle":   "complex64",
	"cdouble":   "complex128",
	"complex_":  "complex128",
	"bool_":     "bool",
	"?":         "bool",
	"b1":        "bool",
	"i1":        "int8",
	"i2":        "int16",
	"i4":        "int32",
	"i8":        "int64",
	"u1":        "uint8",
	"u2":        "uint16",
	"u4":        "uint32",
	"u8":        "uint64",
	"f4":        "float32",
	"f8":        "float64",
	"c8":        "complex64",
	"c16":       "complex128",
	"str_":      "string",
	"unicode":   "string",
}

// resolveAlias is the native fallback for strings: case folding, platform
// alias normalization, then parametrized string syntax.
func (r *Registry) resolveAlias(s string) (Type, error) {
	trimmed := strings.TrimSpace(s)
	// Casers are stateful; one per call.
	folded := cases.Fold().String(trimmed)

	candidates := []string{trimmed, folded}
	if alias, ok := platformAliases[folded]; ok {
		candidates = append(candidates, alias)
	}
	for _, c := range candidates {
		if t, found := r.lookup(descKey{alias: c}); found {
			return t, nil
		}
	}

	t, matched, err := r.parseParametrized(trimmed)
	if err != nil {
		return Type{}, &UnresolvedTypeError{Descriptor: s, Reason: err.Error()}
	}
	if matched {
		return t, nil
	}
	return Type{}, &UnresolvedTypeError{Descriptor: s, Reason: "unknown type alias"}
}

// resolveGoType is the native fallback for Go types. Platform-sized
// integers always resolve to 64 bits regardless of GOARCH, and named types
// resolve through their underlying kind.
func (r *Registry) resolveGoType(rt reflect.Type) (Type, error) {
	var t Type
	switch rt.Kind() {
	case reflect.Bool:
		t = Bool
	case reflect.Int, reflect.Int64:
		t = Int64
	case reflect.Int8:
		t = Int8
	case reflect.Int16:
		t = Int16
	case reflect.Int32:
		t = Int32
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		t = Uint64
	case reflect.Uint8:
		t = Uint8
	case reflect.Uint16:
		t = Uint16
	case reflect.Uint32:
		t = Uint32
	case reflect.Float32:
		t = Float32
	case reflect.Float64:
		t = Float64
	case reflect.Complex64:
		t = Complex64
	case reflect.Complex128:
		t = Complex128
	case reflect.String:
		t = String
	case reflect.Interface:
		t = Object
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			t = Object
		}
	case reflect.Pointer:
		return r.Resolve(rt.Elem())
	}
	if !t.IsValid() {
		return Type{}, &UnresolvedTypeError{Descriptor: rt, Reason: fmt.Sprintf("no canonical type for Go kind %s", rt.Kind())}
	}
	// Prefer the registered binding so alias packs and overrides apply.
	if registered, found := r.lookup(descKey{alias: t.String()}); found {
		return registered, nil
	}
	return t, nil
}

// parseParametrized parses the parametrized string syntax produced by
// Type.String. matched is false when s uses none of the known forms.
func (r *Registry) parseParametrized(s string) (Type, bool, error) {
	if body, ok := cutBrackets(s, "decimal", "(", ")"); ok {
		t, err := parseDecimal(body)
		return t, true, err
	}
	if body, ok := cutBrackets(s, "datetime64", "[", "]"); ok {
		t, err := parseDatetime(body)
		return t, true, err
	}
	if body, ok := cutBrackets(s, "datetime", "[", "]"); ok {
		t, err := parseDatetime(body)
		return t, true, err
	}
	if body, ok := cutBrackets(s, "timedelta64", "[", "]"); ok {
		if strings.TrimSpace(body) != string(UnitNanosecond) {
			return Type{}, true, fmt.Errorf("timedelta unit must be ns, got %q", body)
		}
		return Timedelta, true, nil
	}
	if body, ok := cutBrackets(s, "period", "[", "]"); ok {
		t, err := NewPeriod(body)
		return t, true, err
	}
	if body, ok := cutBrackets(s, "interval", "[", "]"); ok {
		t, err := r.parseInterval(body)
		return t, true, err
	}
	if rest, ok := cutPrefixFold(s, "category"); ok {
		t, err := parseCategory(rest)
		return t, true, err
	}
	return Type{}, false, nil
}

func parseDecimal(body string) (Type, error) {
	parts := splitArgs(body)
	if len(parts) == 0 || len(parts) > 3 {
		return Type{}, fmt.Errorf("decimal takes (precision[,scale[,rounding]]), got %q", body)
	}
	precision, err := strconv.Atoi(parts[0])
	if err != nil {
		return Type{}, fmt.Errorf("invalid decimal precision %q", parts[0])
	}
	scale := -1
	if len(parts) > 1 {
		if scale, err = strconv.Atoi(parts[1]); err != nil {
			return Type{}, fmt.Errorf("invalid decimal scale %q", parts[1])
		}
	}
	rounding := ""
	if len(parts) > 2 {
		rounding = parts[2]
	}
	return NewDecimalWithRounding(precision, scale, rounding)
}

func parseDatetime(body string) (Type, error) {
	parts := splitArgs(body)
	switch len(parts) {
	case 1:
		return NewDatetime(TimeUnit(strings.ToLower(parts[0])), "")
	case 2:
		return NewDatetime(TimeUnit(strings.ToLower(parts[0])), parts[1])
	}
	return Type{}, fmt.Errorf("datetime takes [unit[, tz]], got %q", body)
}

func (r *Registry) parseInterval(body string) (Type, error) {
	parts := splitArgs(body)
	if len(parts) == 0 || len(parts) > 2 {
		return Type{}, fmt.Errorf("interval takes [subtype[, closed]], got %q", body)
	}
	sub, err := r.Resolve(parts[0])
	if err != nil {
		return Type{}, err
	}
	closed := ""
	if len(parts) == 2 {
		closed = strings.ToLower(parts[1])
	}
	return NewInterval(sub, closed)
}

// parseCategory parses the remainder after "category": an optional JSON
// array of categories followed by an optional "ordered" marker.
func parseCategory(rest string) (Type, error) {
	rest = strings.TrimSpace(rest)
	ordered := false
	if head, ok := cutSuffixFold(rest, "ordered"); ok {
		ordered = true
		rest = strings.TrimSpace(head)
	}
	if rest == "" {
		return NewCategory(nil, ordered)
	}
	if !strings.HasPrefix(rest, "[") {
		return Type{}, fmt.Errorf("category takes a JSON array of categories, got %q", rest)
	}
	var cats []string
	if err := json.Unmarshal([]byte(rest), &cats); err != nil {
		return Type{}, fmt.Errorf("invalid category list %q: %w", rest, err)
	}
	if cats == nil {
		cats = []string{}
	}
	return NewCategory(cats, ordered)
}

// cutBrackets returns the body of name<open>body<close>, matching name
// case-insensitively.
func cutBrackets(s, name, open, close string) (string, bool) {
	rest, ok := cutPrefixFold(s, name)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, open) || !strings.HasSuffix(rest, close) {
		return "", false
	}
	return rest[len(open) : len(rest)-len(close)], true
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

func cutSuffixFold(s, suffix string) (string, bool) {
	if len(s) < len(suffix) || !strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return "", false
	}
	return s[:len(s)-len(suffix)], true
}

func splitArgs(body string) []string {
	if strings.TrimSpace(body) == "" {
		return nil
	}
	parts := strings.Split(body, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
