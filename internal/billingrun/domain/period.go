package domain

import (
	"strings"
	"time"
)

// periodLayout is the calendar-month billing period format.
const periodLayout = "2006-01"

// ParsePeriod expands a "YYYY-MM" period into its half-open UTC interval:
// the first instant of the month through the first instant of the next.
func ParsePeriod(period string) (time.Time, time.Time, error) {
	parsed, err := time.Parse(periodLayout, strings.TrimSpace(period))
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}

	start := time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return start, end, nil
}
