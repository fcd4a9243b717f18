package common

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is how dates are shown and stored (dd/mm/yyyy).
const DateLayout = "02/01/2006"

var ErrInvalidDate = errors.New("invalid date")

var weekdaysPT = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

// ParseDate accepts d/m/yyyy with '/', '-' or '.' as separators and returns
// midnight of that day in loc. Impossible dates such as 29/02/2025 fail.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("-", "/", ".", "/").Replace(s)
	if strings.Count(s, "/") != 2 {
		return time.Time{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2/1/2006", s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayName is the Portuguese weekday of the calendar date, independent of
// the process locale.
func WeekdayName(t time.Time) string {
	return weekdaysPT[t.Weekday()]
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsBeforeDay reports whether date falls on a calendar day before now's.
func IsBeforeDay(date, now time.Time) bool {
	return StartOfDay(date).Before(StartOfDay(now.In(date.Location())))
}

// ParseClock validates HH:MM (or HHhMM) and returns it normalized as HH:MM.
func ParseClock(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Replace(s, "h", ":", 1)
	if strings.HasSuffix(s, ":") {
		s += "00"
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", errors.New("invalid time")
	}
	return t.Format("15:04"), nil
}
