package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/dtengine/internal/dtype"
)

// Interval is a range between two endpoints of the interval's subtype.
type Interval struct {
	Left   any
	Right  any
	Closed string
}

func (iv Interval) String() string {
	open, close := "(", ")"
	if iv.Closed == dtype.ClosedLeft || iv.Closed == dtype.ClosedBoth {
		open = "["
	}
	if iv.Closed == dtype.ClosedRight || iv.Closed == dtype.ClosedBoth {
		close = "]"
	}
	return fmt.Sprintf("%s%s, %s%s", open, formatEndpoint(iv.Left), formatEndpoint(iv.Right), close)
}

// MarshalText renders the interval in its string form.
func (iv Interval) MarshalText() ([]byte, error) {
	return []byte(iv.String()), nil
}

// ToInterval converts an Interval, a two-element slice or an interval
// string such as "(0, 5]" to an interval of type t. Endpoints are
// converted to t's subtype; a side closed differently from t fails.
func ToInterval(v any, t dtype.Type) (Interval, error) {
	var left, right any
	closed := t.Closed()
	switch x := v.(type) {
	case Interval:
		left, right, closed = x.Left, x.Right, x.Closed
	case []any:
		if len(x) != 2 {
			return Interval{}, fail(v, t, "an interval needs exactly two endpoints")
		}
		left, right = x[0], x[1]
	case [2]any:
		left, right = x[0], x[1]
	case string:
		var err error
		left, right, closed, err = parseInterval(strings.TrimSpace(x))
		if err != nil {
			return Interval{}, failWith(v, t, err)
		}
	default:
		return Interval{}, fail(v, t, "not an interval")
	}

	if closed != t.Closed() {
		return Interval{}, fail(v, t, fmt.Sprintf("interval is closed %s, type is closed %s", closed, t.Closed()))
	}
	sub := t.Subtype()
	l, err := To(sub, left)
	if err != nil || l == nil {
		return Interval{}, fail(v, t, "invalid left endpoint")
	}
	r, err := To(sub, right)
	if err != nil || r == nil {
		return Interval{}, fail(v, t, "invalid right endpoint")
	}
	if endpointAfter(l, r) {
		return Interval{}, fail(v, t, "left endpoint exceeds right endpoint")
	}
	return Interval{Left: l, Right: r, Closed: closed}, nil
}

func parseInterval(s string) (left, right any, closed string, err error) {
	if len(s) < 2 {
		return nil, nil, "", fmt.Errorf("malformed interval %q", s)
	}
	open, close := s[0], s[len(s)-1]
	if (open != '(' && open != '[') || (close != ')' && close != ']') {
		return nil, nil, "", fmt.Errorf("interval %q must be bracketed", s)
	}
	l, r, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return nil, nil, "", fmt.Errorf("interval %q needs two endpoints", s)
	}
	switch {
	case open == '[' && close == ']':
		closed = dtype.ClosedBoth
	case open == '[':
		closed = dtype.ClosedLeft
	case close == ']':
		closed = dtype.ClosedRight
	default:
		closed = dtype.ClosedNeither
	}
	return strings.TrimSpace(l), strings.TrimSpace(r), closed, nil
}

func endpointAfter(l, r any) bool {
	if lt, ok := l.(time.Time); ok {
		return lt.After(r.(time.Time))
	}
	lf, lerr := ToFloat(l, 64)
	rf, rerr := ToFloat(r, 64)
	return lerr == nil && rerr == nil && lf > rf
}

func formatEndpoint(v any) string {
	if ts, ok := v.(time.Time); ok {
		return ts.Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}
