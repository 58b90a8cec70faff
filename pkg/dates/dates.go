// Package dates provides fail-soft calendar helpers.
//
// Every caller in the system treats malformed date input as "unknown",
// never as a crash: badges, sort order and urgency classification all rely
// on these helpers returning a stable zero answer instead of an error.
package dates

import (
	"strings"
	"time"
)

// DateOnly is the canonical calendar-date layout used at the storage and
// wire boundaries.
const DateOnly = "2006-01-02"

var parseLayouts = []string{
	time.RFC3339,
	DateOnly,
	"2006-01-02T15:04:05",
}

// Parse interprets an ISO date or timestamp string. The boolean is false
// when the input cannot be understood.
func Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format renders the value using the given layout, or "" when the value
// cannot be parsed. It never returns an error.
func Format(value, layout string) string {
	t, ok := Parse(value)
	if !ok {
		return ""
	}
	if layout == "" {
		layout = DateOnly
	}
	return t.Format(layout)
}

// DaysBetween returns the absolute whole-day distance between two dates.
// Malformed input on either side yields 0.
func DaysBetween(a, b string) int {
	ta, ok := Parse(a)
	if !ok {
		return 0
	}
	tb, ok := Parse(b)
	if !ok {
		return 0
	}
	days := int(truncateDay(tb).Sub(truncateDay(ta)).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// IsPast reports whether the date lies strictly before today. Malformed
// input fails soft to false ("no urgency").
func IsPast(value string) bool {
	t, ok := Parse(value)
	if !ok {
		return false
	}
	return truncateDay(t).Before(truncateDay(time.Now()))
}

// IsWithinDays reports whether the date falls between today and n days from
// now, inclusive. Malformed input fails soft to false.
func IsWithinDays(value string, n int) bool {
	t, ok := Parse(value)
	if !ok || n < 0 {
		return false
	}
	day := truncateDay(t)
	today := truncateDay(time.Now())
	return !day.Before(today) && !day.After(today.AddDate(0, 0, n))
}

// ValidRange reports whether end is on or after start. Either side failing
// to parse invalidates the range.
func ValidRange(start, end string) bool {
	ts, ok := Parse(start)
	if !ok {
		return false
	}
	te, ok := Parse(end)
	if !ok {
		return false
	}
	return !truncateDay(te).Before(truncateDay(ts))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
