package convert

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/dtengine/internal/dtype"
)

// zonedLayouts carry an offset; naiveLayouts are interpreted in the target
// zone, or UTC for naive targets.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02 15:04:05.999999999 -0700 MST",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02",
	}
)

// ToDatetime converts v to a timestamp of type t.
//
// Integers are offsets from the Unix epoch in t's unit. Naive inputs are
// localized into t's zone; zoned inputs are converted to it. Naive targets
// hold UTC wall time. The result is truncated to t's unit.
func ToDatetime(v any, t dtype.Type) (time.Time, error) {
	loc, err := LoadLocation(t.TZ())
	if err != nil {
		return time.Time{}, failWith(v, t, err)
	}
	unit := t.Unit().Duration()

	var ts time.Time
	switch x := v.(type) {
	case time.Time:
		ts = x.In(loc)
	case string:
		ts, err = parseTime(strings.TrimSpace(x), loc)
		if err != nil {
			return time.Time{}, failWith(v, t, err)
		}
	case json.Number:
		return ToDatetime(string(x), t)
	case bool:
		return time.Time{}, fail(v, t, "not a timestamp")
	default:
		n, ok := exactInt(v)
		if !ok {
			f, ferr := ToFloat(v, 64)
			if ferr != nil {
				return time.Time{}, fail(v, t, "not a timestamp")
			}
			ns := f * float64(unit)
			// float64(math.MaxInt64) rounds up to 2^63, itself out of range.
			if math.IsNaN(ns) || ns >= math.MaxInt64 || ns < math.MinInt64 {
				return time.Time{}, fail(v, t, "out of range")
			}
			ts = time.Unix(0, int64(ns)).In(loc)
			break
		}
		if n > math.MaxInt64/int64(unit) || n < math.MinInt64/int64(unit) {
			return time.Time{}, fail(v, t, "out of range")
		}
		ts = time.Unix(0, n*int64(unit)).In(loc)
	}
	return ts.Truncate(unit), nil
}

// ToDate converts v to a calendar date, represented as midnight UTC.
// Timestamps and strings with an offset keep their wall-clock date.
func ToDate(v any) (time.Time, error) {
	var ts time.Time
	var err error
	switch x := v.(type) {
	case time.Time:
		ts = x
	case string:
		ts, err = parseTime(strings.TrimSpace(x), nil)
	case json.Number:
		return ToDate(string(x))
	default:
		ts, err = ToDatetime(v, dtype.Datetime)
	}
	if err != nil {
		return time.Time{}, fail(v, dtype.Date, "not a date")
	}
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// IsDate reports whether ts is a date value: midnight UTC.
func IsDate(ts time.Time) bool {
	return ts.Location() == time.UTC && ts.Equal(ts.Truncate(24*time.Hour))
}

// ToTimedelta converts durations, integer nanoseconds and duration strings
// ("1h30m", "250ms") to a time.Duration.
func ToTimedelta(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(x))
		if err != nil {
			if n, nerr := strconv.ParseInt(strings.TrimSpace(x), 10, 64); nerr == nil {
				return time.Duration(n), nil
			}
			return 0, failWith(v, dtype.Timedelta, err)
		}
		return d, nil
	case json.Number:
		return ToTimedelta(string(x))
	}
	n, err := ToInt(v, 64)
	if err != nil {
		return 0, fail(v, dtype.Timedelta, "not a duration")
	}
	return time.Duration(n), nil
}

// parseTime parses s, converting zoned values to loc and reading naive
// values in it. A nil loc keeps the parsed offset and reads naive values
// as UTC.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			if loc == nil {
				return ts, nil
			}
			return ts.In(loc), nil
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	var firstErr error
	for _, layout := range naiveLayouts {
		ts, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
