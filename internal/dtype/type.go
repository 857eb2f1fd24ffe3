package dtype

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/roach88/dtengine/internal/canon"
)

// DefaultDecimalPrecision matches the default context precision of
// arbitrary-precision decimal arithmetic.
const DefaultDecimalPrecision = 28

// TimeUnit is the resolution of datetime values.
type TimeUnit string

const (
	UnitSecond      TimeUnit = "s"
	UnitMillisecond TimeUnit = "ms"
	UnitMicrosecond TimeUnit = "us"
	UnitNanosecond  TimeUnit = "ns"
)

// Duration returns the length of one unit.
func (u TimeUnit) Duration() time.Duration {
	switch u {
	case UnitSecond:
		return time.Second
	case UnitMillisecond:
		return time.Millisecond
	case UnitMicrosecond:
		return time.Microsecond
	default:
		return time.Nanosecond
	}
}

func (u TimeUnit) valid() bool {
	switch u {
	case UnitSecond, UnitMillisecond, UnitMicrosecond, UnitNanosecond:
		return true
	}
	return false
}

// Interval closure sides.
const (
	ClosedRight   = "right"
	ClosedLeft    = "left"
	ClosedBoth    = "both"
	ClosedNeither = "neither"
)

// Type is a canonical semantic type. It is immutable and comparable: two
// Types are equal iff their kind and every parameter match, so == and map
// keys work. Construct Types with the package variables and constructors;
// the zero Type is invalid.
type Type struct {
	kind Kind
	bits uint16

	// decimal
	precision int
	scale     int // -1: unconstrained
	rounding  apd.Rounder

	// datetime
	unit TimeUnit
	tz   string

	// period
	freq string

	// category: canonical JSON array, "" when unspecified
	categories string
	ordered    bool

	// interval
	sub     Kind
	subBits uint16
	closed  string

	// record
	model RowModel
}

var (
	Bool       = Type{kind: KindBool}
	Int8       = Type{kind: KindInt, bits: 8}
	Int16      = Type{kind: KindInt, bits: 16}
	Int32      = Type{kind: KindInt, bits: 32}
	Int64      = Type{kind: KindInt, bits: 64}
	Uint8      = Type{kind: KindUint, bits: 8}
	Uint16     = Type{kind: KindUint, bits: 16}
	Uint32     = Type{kind: KindUint, bits: 32}
	Uint64     = Type{kind: KindUint, bits: 64}
	Float32    = Type{kind: KindFloat, bits: 32}
	Float64    = Type{kind: KindFloat, bits: 64}
	Complex64  = Type{kind: KindComplex, bits: 64}
	Complex128 = Type{kind: KindComplex, bits: 128}
	String     = Type{kind: KindString}
	Object     = Type{kind: KindObject}
	Date       = Type{kind: KindDate}
	Timedelta  = Type{kind: KindTimedelta, unit: UnitNanosecond}
	UUID       = Type{kind: KindUUID}

	// Datetime is a timezone-naive nanosecond timestamp.
	Datetime = Type{kind: KindDatetime, unit: UnitNanosecond}

	// Decimal has the default precision and an unconstrained scale.
	Decimal = Type{kind: KindDecimal, precision: DefaultDecimalPrecision, scale: -1}

	// Category infers its categories from the data.
	Category = Type{kind: KindCategory}
)

// Sized returns the type of the given sized kind and bit width.
func Sized(kind Kind, bits int) (Type, error) {
	if !kind.sized() {
		return Type{}, fmt.Errorf("kind %s has no bit width", kind)
	}
	if bits < 0 || bits > 128 || !kind.acceptsWidth(uint16(bits)) {
		return Type{}, fmt.Errorf("invalid bit width %d for %s (valid: %v)", bits, kind, validWidths[kind])
	}
	return Type{kind: kind, bits: uint16(bits)}, nil
}

var knownRoundings = map[apd.Rounder]bool{
	apd.RoundDown:     true,
	apd.RoundHalfUp:   true,
	apd.RoundHalfEven: true,
	apd.RoundCeiling:  true,
	apd.RoundFloor:    true,
	apd.RoundHalfDown: true,
	apd.RoundUp:       true,
	apd.Round05Up:     true,
}

// NewDecimal returns a decimal type. A negative scale leaves the scale
// unconstrained. Values with more fractional digits than scale fail
// coercion.
func NewDecimal(precision, scale int) (Type, error) {
	return NewDecimalWithRounding(precision, scale, "")
}

// NewDecimalWithRounding returns a decimal type that rounds values to scale
// with the given rounding mode (e.g. "half_even", "half_up", "down")
// before checking precision.
func NewDecimalWithRounding(precision, scale int, rounding string) (Type, error) {
	if precision <= 0 {
		return Type{}, fmt.Errorf("decimal precision must be positive, got %d", precision)
	}
	if scale < 0 {
		scale = -1
	}
	if scale > precision {
		return Type{}, fmt.Errorf("decimal scale %d exceeds precision %d", scale, precision)
	}
	r := apd.Rounder(strings.ToLower(rounding))
	if r != "" {
		if scale < 0 {
			return Type{}, fmt.Errorf("decimal rounding %q requires a scale", rounding)
		}
		if !knownRoundings[r] {
			return Type{}, fmt.Errorf("unknown decimal rounding mode %q", rounding)
		}
	}
	return Type{kind: KindDecimal, precision: precision, scale: scale, rounding: r}, nil
}

// NewCategory returns a categorical type with a fixed, ordered list of
// distinct categories. A nil list infers categories from the data.
func NewCategory(categories []string, ordered bool) (Type, error) {
	t := Type{kind: KindCategory, ordered: ordered}
	if categories == nil {
		return t, nil
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c] {
			return Type{}, fmt.Errorf("categories must be unique, %q repeats", c)
		}
		seen[c] = true
	}
	encoded, err := canon.Marshal(categories)
	if err != nil {
		return Type{}, fmt.Errorf("encode categories: %w", err)
	}
	t.categories = string(encoded)
	return t, nil
}

// NewDatetime returns a timestamp type. An empty tz is timezone-naive.
func NewDatetime(unit TimeUnit, tz string) (Type, error) {
	if unit == "" {
		unit = UnitNanosecond
	}
	if !unit.valid() {
		return Type{}, fmt.Errorf("invalid datetime unit %q", unit)
	}
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return Type{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}
	return Type{kind: KindDatetime, unit: unit, tz: tz}, nil
}

var periodFreqs = map[string]string{
	"y": "Y", "a": "Y", "year": "Y",
	"q": "Q", "quarter": "Q",
	"m": "M", "month": "M",
	"w": "W", "week": "W",
	"d": "D", "day": "D",
	"h": "h", "hour": "h",
	"t": "min", "min": "min", "minute": "min",
	"s": "s", "second": "s",
}

// NewPeriod returns a period type with the given frequency alias
// (Y, Q, M, W, D, h, min, s and their long forms).
func NewPeriod(freq string) (Type, error) {
	f, ok := periodFreqs[strings.ToLower(strings.TrimSpace(freq))]
	if !ok {
		return Type{}, fmt.Errorf("invalid period frequency %q", freq)
	}
	return Type{kind: KindPeriod, freq: f}, nil
}

// NewInterval returns an interval type over a numeric or datetime subtype.
// An empty closed defaults to ClosedRight.
func NewInterval(subtype Type, closed string) (Type, error) {
	if !subtype.kind.IsNumeric() && subtype.kind != KindDatetime {
		return Type{}, fmt.Errorf("interval subtype must be numeric or datetime, got %s", subtype)
	}
	if subtype.kind == KindDatetime && subtype != Datetime {
		return Type{}, fmt.Errorf("interval datetime subtype must be %s, got %s", Datetime, subtype)
	}
	switch closed {
	case "":
		closed = ClosedRight
	case ClosedRight, ClosedLeft, ClosedBoth, ClosedNeither:
	default:
		return Type{}, fmt.Errorf("invalid interval closed side %q", closed)
	}
	return Type{kind: KindInterval, sub: subtype.kind, subBits: subtype.bits, closed: closed}, nil
}

// NewRecord returns a record type whose rows are validated by model.
// The model must be comparable (use a pointer).
func NewRecord(model RowModel) (Type, error) {
	if model == nil {
		return Type{}, fmt.Errorf("record type requires a row model")
	}
	return Type{kind: KindRecord, model: model}, nil
}

func (t Type) Kind() Kind { return t.kind }
func (t Type) BitWidth() int { return int(t.bits) }
func (t Type) Precision() int { return t.precision }
func (t Type) Scale() int { return t.scale }
func (t Type) Unit() TimeUnit { return t.unit }
func (t Type) TZ() string { return t.tz }
func (t Type) Freq() string { return t.freq }
func (t Type) Ordered() bool { return t.ordered }
func (t Type) Closed() string { return t.closed }
func (t Type) Model() RowModel { return t.model }
func (t Type) IsValid() bool { return t.kind != KindInvalid }
func (t Type) Rounding() string { return string(t.rounding) }
func (t Type) HasScale() bool { return t.kind == KindDecimal && t.scale >= 0 }
func (t Type) IsNumeric() bool { return t.kind.IsNumeric() }
func (t Type) HasCategories() bool { return t.categories != "" }

// Categories returns the declared categories, or nil when they are
// inferred from the data.
func (t Type) Categories() []string {
	if t.categories == "" {
		return nil
	}
	var cats []string
	// Encoded by NewCategory; cannot fail.
	_ = json.Unmarshal([]byte(t.categories), &cats)
	return cats
}

// HasCategory reports whether c is a declared category.
func (t Type) HasCategory(c string) bool {
	return slices.Contains(t.Categories(), c)
}

// Subtype returns the element type of an interval.
func (t Type) Subtype() Type {
	if t.kind != KindInterval {
		return Type{}
	}
	if t.sub == KindDatetime {
		return Datetime
	}
	return Type{kind: t.sub, bits: t.subBits}
}

// String returns the canonical descriptor. For every kind but record it
// resolves back to t.
func (t Type) String() string {
	switch t.kind {
	case KindInt, KindUint, KindFloat, KindComplex:
		return t.kind.String() + strconv.Itoa(int(t.bits))
	case KindDecimal:
		switch {
		case t.scale < 0:
			return fmt.Sprintf("decimal(%d)", t.precision)
		case t.rounding != "":
			return fmt.Sprintf("decimal(%d,%d,%s)", t.precision, t.scale, t.rounding)
		default:
			return fmt.Sprintf("decimal(%d,%d)", t.precision, t.scale)
		}
	case KindCategory:
		s := "category" + t.categories
		if t.ordered {
			s += " ordered"
		}
		return s
	case KindDatetime:
		if t.tz == "" {
			return fmt.Sprintf("datetime64[%s]", t.unit)
		}
		return fmt.Sprintf("datetime64[%s, %s]", t.unit, t.tz)
	case KindTimedelta:
		return fmt.Sprintf("timedelta64[%s]", t.unit)
	case KindPeriod:
		return fmt.Sprintf("period[%s]", t.freq)
	case KindInterval:
		return fmt.Sprintf("interval[%s, %s]", t.Subtype(), t.closed)
	case KindRecord:
		return fmt.Sprintf("record[%s]", t.model.Name())
	default:
		return t.kind.String()
	}
}

// Descriptor returns a descriptor that resolves back to t: the canonical
// string for every kind except record, whose models are not addressable
// by name unless registered.
func (t Type) Descriptor() any {
	if t.kind == KindRecord {
		return t
	}
	return t.String()
}

// Fingerprint returns a stable content identity for t.
func (t Type) Fingerprint() string {
	return canon.MustFingerprint(canon.DomainType, t.String())
}

// GoType returns the reflect.Type of T, for use as a native descriptor.
func GoType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
