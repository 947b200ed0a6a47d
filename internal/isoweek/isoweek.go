// Package isoweek formats and parses ISO-8601 week keys such as "2026-W01".
package isoweek

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key returns the week key for t. The year is the ISO year, which differs
// from the calendar year for days at either end of December/January.
func Key(t time.Time) string {
	year, week := t.ISOWeek()
	return Format(year, week)
}

// Format returns a week key like "2026-W01".
func Format(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WeeksIn returns the number of ISO weeks in an ISO year (52 or 53).
func WeeksIn(year int) int {
	// December 28th always falls in the last week of its ISO year.
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// Parse parses "2026-W01" (the W is case-insensitive, the week may be one digit).
func Parse(key string) (year, week int, err error) {
	parts := strings.SplitN(strings.ToUpper(strings.TrimSpace(key)), "-W", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid week key format: %q", key)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, 0, fmt.Errorf("invalid year in week key %q", key)
	}

	week, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week in week key %q: %w", key, err)
	}
	if week < 1 || week > WeeksIn(year) {
		return 0, 0, fmt.Errorf("week %d out of range for %d (1-%d)", week, year, WeeksIn(year))
	}

	return year, week, nil
}

// Monday returns the first day of the given ISO week.
func Monday(year, week int) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(week-1)*7)
}
