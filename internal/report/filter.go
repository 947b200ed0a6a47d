package report

import (
	"fmt"
	"time"

	"github.com/boda-dev/boda/internal/isoweek"
	"github.com/boda-dev/boda/internal/model"
)

type scope int

const (
	scopeAll scope = iota
	scopeDate
	scopeWeek
	scopeMonth
)

// Filter selects the entries a report covers. At most one period is active.
type Filter struct {
	scope scope
	date  time.Time
	year  int
	week  int
	month time.Month
}

// All covers every entry.
func All() Filter {
	return Filter{}
}

// OnDate covers a single calendar day.
func OnDate(d time.Time) Filter {
	return Filter{scope: scopeDate, date: model.Day(d)}
}

// InWeek covers an ISO week. year is the ISO year, not the calendar year of
// the entry, so 2024-12-31 falls in InWeek(2025, 1) and a week never loses
// the days that straddle New Year.
func InWeek(year, week int) Filter {
	return Filter{scope: scopeWeek, year: year, week: week}
}

// InMonth covers a calendar month.
func InMonth(year int, month time.Month) Filter {
	return Filter{scope: scopeMonth, year: year, month: month}
}

// Match reports whether an entry dated d is covered.
func (f Filter) Match(d time.Time) bool {
	switch f.scope {
	case scopeDate:
		return model.Day(d).Equal(f.date)
	case scopeWeek:
		y, w := d.ISOWeek()
		return y == f.year && w == f.week
	case scopeMonth:
		return d.Year() == f.year && d.Month() == f.month
	default:
		return true
	}
}

// Period describes the filter for report headings; empty for All.
func (f Filter) Period() string {
	switch f.scope {
	case scopeDate:
		return "on " + f.date.Format("2006-01-02")
	case scopeWeek:
		monday := isoweek.Monday(f.year, f.week)
		return fmt.Sprintf("for week %s (%s to %s)", isoweek.Format(f.year, f.week),
			monday.Format("2006-01-02"), monday.AddDate(0, 0, 6).Format("2006-01-02"))
	case scopeMonth:
		return fmt.Sprintf("for %04d-%02d", f.year, int(f.month))
	default:
		return ""
	}
}
