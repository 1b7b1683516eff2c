package dbtime

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var centerLoc atomic.Pointer[time.Location]

func init() {
	SetCenterOffset(5)
}

// SetCenterOffset fixes the center timezone to UTC+hours. Called once on boot.
func SetCenterOffset(hours int) {
	centerLoc.Store(time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600))
}

func CenterLocation() *time.Location {
	return centerLoc.Load()
}

func NowInCenter() time.Time {
	return time.Now().In(CenterLocation())
}

// ToCenterTime converts a stored instant into the center timezone.
func ToCenterTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(CenterLocation())
}

// ParseDate parses YYYY-MM-DD in the center timezone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), CenterLocation())
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
	}
	return t, nil
}

// ParseMonth validates YYYY-MM with month 01..12.
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[4] != '-' {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid monthFor format, expected YYYY-MM")
	}
	t, err := time.ParseInLocation(MonthLayout, s, CenterLocation())
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid monthFor format, expected YYYY-MM")
	}
	return t, nil
}

func FormatDate(t time.Time) string  { return t.In(CenterLocation()).Format(DateLayout) }
func FormatMonth(t time.Time) string { return t.In(CenterLocation()).Format(MonthLayout) }

// CurrentMonth returns the center's current YYYY-MM.
func CurrentMonth() string { return FormatMonth(NowInCenter()) }

// MonthBounds returns [first instant, last instant] of year/month in the center zone.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, CenterLocation())
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var uzbekWeekdays = map[time.Weekday]string{
	time.Monday:    "Dushanba",
	time.Tuesday:   "Seshanba",
	time.Wednesday: "Chorshanba",
	time.Thursday:  "Payshanba",
	time.Friday:    "Juma",
	time.Saturday:  "Shanba",
	time.Sunday:    "Yakshanba",
}

// ParseWeekday accepts English weekday names in any case.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// WeekdayName is the canonical stored spelling, e.g. "Monday".
func WeekdayName(d time.Weekday) string { return d.String() }

func UzbekWeekday(name string) string {
	if d, ok := ParseWeekday(name); ok {
		return uzbekWeekdays[d]
	}
	return name
}

// HasWeekday reports whether t falls on one of days.
func HasWeekday(days []string, t time.Time) bool {
	wd := t.In(CenterLocation()).Weekday()
	for _, d := range days {
		if x, ok := ParseWeekday(d); ok && x == wd {
			return true
		}
	}
	return false
}
