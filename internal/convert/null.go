package convert

import (
	"math"
	"reflect"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// nullTokens are strings that denote a missing value for numeric and
// temporal kinds.
var nullTokens = map[string]bool{
	"nan":  true,
	"nat":  true,
	"<na>": true,
	"none": true,
	"null": true,
}

// IsNull reports whether v is a missing value: nil, a nil pointer, a NaN
// float or a NaN decimal.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case *apd.Decimal:
		return x == nil || x.Form == apd.NaN || x.Form == apd.NaNSignaling
	case apd.Decimal:
		return x.Form == apd.NaN || x.Form == apd.NaNSignaling
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// IsNullToken reports whether s spells a missing value.
func IsNullToken(s string) bool {
	return nullTokens[strings.ToLower(strings.TrimSpace(s))]
}

// nullish reports whether v converts to nil for kinds that honor null
// tokens.
func nullish(v any) bool {
	if IsNull(v) {
		return true
	}
	s, ok := v.(string)
	return ok && IsNullToken(s)
}
