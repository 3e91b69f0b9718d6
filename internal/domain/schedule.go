package domain

import (
	"regexp"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

// ParseDate accepts only YYYY-MM-DD strings naming a real calendar day.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if !datePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValidClock reports whether s is a zero padded 24h HH:MM time.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// Overlaps compares half-open [start, end) intervals. Valid clock strings are
// fixed width, so lexical order is chronological order.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
