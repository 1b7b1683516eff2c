package dbtime

import (
	"time"

	"github.com/teambition/rrule-go"
)

var rruleDays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// LessonDates lists the calendar days in [from, to] that fall on one of
// the given weekday names.
func LessonDates(days []string, from, to time.Time) ([]time.Time, error) {
	byDay := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		if wd, ok := ParseWeekday(d); ok {
			byDay = append(byDay, rruleDays[wd])
		}
	}
	if len(byDay) == 0 || to.Before(from) {
		return []time.Time{}, nil
	}
	loc := CenterLocation()
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byDay,
		Dtstart:   start,
		Until:     end,
	})
	if err != nil {
		return nil, err
	}
	return r.All(), nil
}

// MonthSeries lists YYYY-MM for every month from the month of from up to
// and including the month of to.
func MonthSeries(from, to time.Time) ([]string, error) {
	loc := CenterLocation()
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, loc)
	if end.Before(start) {
		return []string{}, nil
	}
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.MONTHLY,
		Dtstart: start,
		Until:   end,
	})
	if err != nil {
		return nil, err
	}
	months := r.All()
	out := make([]string, 0, len(months))
	for _, m := range months {
		out = append(out, m.Format(MonthLayout))
	}
	return out, nil
}
