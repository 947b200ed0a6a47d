// Package report aggregates ledger entries over a period and renders the
// result.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/boda-dev/boda/internal/isoweek"
	"github.com/boda-dev/boda/internal/model"
)

// Source is the read side of the ledger.
type Source interface {
	Entries(kind model.Kind) []model.Entry
	Categories(kind model.Kind) []string
}

// Totals is the sum of one kind of entry, overall and per category (or per
// platform for income).
type Totals struct {
	Total      decimal.Decimal
	ByCategory map[string]decimal.Decimal
	// Names lists ByCategory keys: listed categories first, then any others
	// in the order they were seen.
	Names []string
}

func newTotals(names []string) *Totals {
	t := &Totals{ByCategory: make(map[string]decimal.Decimal, len(names))}
	for _, n := range names {
		t.ByCategory[n] = decimal.Zero
	}
	t.Names = append(t.Names, names...)
	return t
}

func (t *Totals) add(category string, amount decimal.Decimal) {
	t.Total = t.Total.Add(amount)
	prev, ok := t.ByCategory[category]
	if !ok {
		t.Names = append(t.Names, category)
	}
	t.ByCategory[category] = prev.Add(amount)
}

// Summary holds income, expense and savings totals for one scope.
type Summary struct {
	Income   *Totals
	Expenses *Totals
	Savings  *Totals
}

func (s *Summary) totals(kind model.Kind) *Totals {
	switch kind {
	case model.KindIncome:
		return s.Income
	case model.KindExpense:
		return s.Expenses
	default:
		return s.Savings
	}
}

// Net is income minus expenses, minus savings unless the savings switch is
// on.
func (s *Summary) Net(savingsSwitch bool) decimal.Decimal {
	b := s.Income.Total.Sub(s.Expenses.Total)
	if !savingsSwitch {
		b = b.Sub(s.Savings.Total)
	}
	return b
}

// Report is the aggregate of the entries a Filter selects.
type Report struct {
	Summary
	// Daily is keyed YYYY-MM-DD, Weekly by ISO week key.
	Daily  map[string]*Summary
	Weekly map[string]*Summary

	SavingsSwitch bool
	Balance       decimal.Decimal
	// Unallocated is the positive balance counted as savings when the
	// savings switch is on; zero otherwise.
	Unallocated     decimal.Decimal
	ReportedSavings decimal.Decimal

	// Cash and MPesa are the net flows through each payment channel.
	Cash  decimal.Decimal
	MPesa decimal.Decimal
}

// Compute aggregates src over f. It reads src only.
func Compute(src Source, f Filter, settings model.Settings) *Report {
	names := map[model.Kind][]string{}
	for _, k := range model.Kinds {
		names[k] = src.Categories(k)
	}
	newSummary := func() *Summary {
		return &Summary{
			Income:   newTotals(names[model.KindIncome]),
			Expenses: newTotals(names[model.KindExpense]),
			Savings:  newTotals(names[model.KindSavings]),
		}
	}

	r := &Report{
		Summary:       *newSummary(),
		Daily:         make(map[string]*Summary),
		Weekly:        make(map[string]*Summary),
		SavingsSwitch: settings.SavingsSwitch,
	}

	for _, kind := range model.Kinds {
		for _, e := range src.Entries(kind) {
			if !f.Match(e.Date) {
				continue
			}
			r.totals(kind).add(e.Category, e.Amount)

			dayKey := e.Date.Format("2006-01-02")
			if r.Daily[dayKey] == nil {
				r.Daily[dayKey] = newSummary()
			}
			r.Daily[dayKey].totals(kind).add(e.Category, e.Amount)

			weekKey := isoweek.Key(e.Date)
			if r.Weekly[weekKey] == nil {
				r.Weekly[weekKey] = newSummary()
			}
			r.Weekly[weekKey].totals(kind).add(e.Category, e.Amount)

			signed := e.Amount
			if kind != model.KindIncome {
				signed = signed.Neg()
			}
			if e.IsChannel() {
				r.MPesa = r.MPesa.Add(signed)
			} else {
				r.Cash = r.Cash.Add(signed)
			}
		}
	}

	r.Balance = r.Net(settings.SavingsSwitch)
	r.ReportedSavings = r.Savings.Total
	if settings.SavingsSwitch {
		if r.Balance.IsPositive() {
			r.Unallocated = r.Balance
		}
		r.ReportedSavings = r.ReportedSavings.Add(r.Unallocated)
	}
	return r
}

// DailyKeys returns the day keys in ascending order.
func (r *Report) DailyKeys() []string {
	return sortedKeys(r.Daily)
}

// WeeklyKeys returns the week keys in ascending order.
func (r *Report) WeeklyKeys() []string {
	return sortedKeys(r.Weekly)
}

func sortedKeys(m map[string]*Summary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
