package dbtime

import (
	"fmt"
	"strings"
	"time"
)

// Tod is a time of day, HH:MM.
type Tod struct{ time.Time }

// ParseTod parses "HH:MM" (a trailing ":SS" is tolerated).
func ParseTod(s string) (Tod, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	tt, err := time.Parse("15:04:05", s)
	if err != nil {
		return Tod{}, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return Tod{Time: tt}, nil
}

func (t Tod) String() string { return t.Format("15:04") }

// On places the time of day on the calendar date of day, in day's location.
func (t Tod) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

// Span returns end-start, or fallback when either side is unparsable or
// the range is not positive.
func Span(start, end string, fallback time.Duration) time.Duration {
	s, err1 := ParseTod(start)
	e, err2 := ParseTod(end)
	if err1 != nil || err2 != nil {
		return fallback
	}
	d := e.Sub(s.Time)
	if d <= 0 {
		return fallback
	}
	return d
}
