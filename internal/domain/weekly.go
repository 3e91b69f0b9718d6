package domain

import (
	"errors"
	"time"
)

const MaxSeriesLength = 26

// WeeklyDates returns count dates starting at start, interval weeks apart.
func WeeklyDates(start string, count, interval int) ([]string, error) {
	if count < 1 || count > MaxSeriesLength {
		return nil, errors.New("weeks must be between 1 and 26")
	}
	if interval == 0 {
		interval = 1
	}
	if interval < 1 {
		return nil, errors.New("interval must be positive")
	}
	first, ok := ParseDate(start, time.UTC)
	if !ok {
		return nil, errors.New("invalid start date")
	}

	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, first.AddDate(0, 0, 7*interval*i).Format(DateLayout))
	}
	return out, nil
}
