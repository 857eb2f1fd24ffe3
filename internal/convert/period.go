package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/dtengine/internal/dtype"
)

// Period is a span of time identified by its start and frequency.
type Period struct {
	// Start is the first instant of the span, in UTC wall time.
	Start time.Time

	// Freq is a normalized frequency: Y, Q, M, W, D, h, min or s.
	Freq string
}

// End returns the first instant after the span.
func (p Period) End() time.Time {
	switch p.Freq {
	case "Y":
		return p.Start.AddDate(1, 0, 0)
	case "Q":
		return p.Start.AddDate(0, 3, 0)
	case "M":
		return p.Start.AddDate(0, 1, 0)
	case "W":
		return p.Start.AddDate(0, 0, 7)
	case "D":
		return p.Start.AddDate(0, 0, 1)
	case "h":
		return p.Start.Add(time.Hour)
	case "min":
		return p.Start.Add(time.Minute)
	}
	return p.Start.Add(time.Second)
}

// Contains reports whether ts falls within the span.
func (p Period) Contains(ts time.Time) bool {
	return !ts.Before(p.Start) && ts.Before(p.End())
}

func (p Period) String() string {
	s := p.Start
	switch p.Freq {
	case "Y":
		return s.Format("2006")
	case "Q":
		return fmt.Sprintf("%dQ%d", s.Year(), (int(s.Month())-1)/3+1)
	case "M":
		return s.Format("2006-01")
	case "W":
		return s.Format("2006-01-02") + "/" + s.AddDate(0, 0, 6).Format("2006-01-02")
	case "D":
		return s.Format("2006-01-02")
	case "h", "min":
		return s.Format("2006-01-02 15:04")
	}
	return s.Format("2006-01-02 15:04:05")
}

// MarshalText renders the period in its string form.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ToPeriod converts timestamps, period strings ("2024Q1", "2024-03",
// "2024-03-04/2024-03-10") and periods of another frequency to a period
// of t's frequency.
func ToPeriod(v any, t dtype.Type) (Period, error) {
	var ts time.Time
	switch x := v.(type) {
	case Period:
		ts = x.Start
	case time.Time:
		y, m, d := x.Date()
		ts = time.Date(y, m, d, x.Hour(), x.Minute(), x.Second(), 0, time.UTC)
	case string:
		parsed, err := parsePeriodStart(strings.TrimSpace(x))
		if err != nil {
			return Period{}, failWith(v, t, err)
		}
		ts = parsed
	default:
		return Period{}, fail(v, t, "not a period")
	}
	return Period{Start: floorPeriod(ts, t.Freq()), Freq: t.Freq()}, nil
}

func floorPeriod(ts time.Time, freq string) time.Time {
	y, m, d := ts.Date()
	switch freq {
	case "Y":
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case "Q":
		return time.Date(y, m-(m-1)%3, 1, 0, 0, 0, 0, time.UTC)
	case "M":
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case "W":
		// Weeks start on Monday.
		offset := (int(ts.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
	case "D":
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case "h":
		return ts.Truncate(time.Hour)
	case "min":
		return ts.Truncate(time.Minute)
	}
	return ts.Truncate(time.Second)
}

func parsePeriodStart(s string) (time.Time, error) {
	if head, _, ok := strings.Cut(s, "/"); ok {
		s = head
	}
	if year, quarter, ok := strings.Cut(strings.ToUpper(s), "Q"); ok && len(year) == 4 {
		y, yerr := strconv.Atoi(year)
		q, qerr := strconv.Atoi(quarter)
		if yerr != nil || qerr != nil || q < 1 || q > 4 {
			return time.Time{}, fmt.Errorf("invalid quarter %q", s)
		}
		return time.Date(y, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range []string{"2006", "2006-01"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	ts, err := parseTime(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return floorPeriod(ts, "s"), nil
}
