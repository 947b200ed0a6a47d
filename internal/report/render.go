package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

var (
	heading  = color.New(color.Bold)
	positive = color.New(color.FgGreen)
	negative = color.New(color.FgRed)
	section  = color.New(color.FgCyan, color.Bold)
)

// Render writes r as text. period is appended to the headline, e.g.
// Filter.Period().
func Render(w io.Writer, r *Report, period string) error {
	p := &printer{w: w}

	p.headline(r, period)
	p.printf("Income: %s KES\n", money(r.Income.Total))
	p.printf("Expenses: %s KES\n", money(r.Expenses.Total))
	p.printf("Savings: %s KES\n", money(r.ReportedSavings))
	if r.SavingsSwitch {
		p.printf("  saved: %s KES, unallocated: %s KES\n", money(r.Savings.Total), money(r.Unallocated))
	}
	p.printf("Channels: Cash %s KES, M-Pesa %s KES\n", money(r.Cash), money(r.MPesa))

	p.breakdown("Income Breakdown", r.Income, "")
	p.breakdown("Expense Breakdown", r.Expenses, "")
	p.breakdown("Savings Breakdown", r.Savings, "")

	if len(r.Daily) > 0 {
		p.section("Daily Breakdown")
		for _, key := range r.DailyKeys() {
			p.bucket(key, r.Daily[key], r.SavingsSwitch)
		}
	}
	if len(r.Weekly) > 0 {
		p.section("Weekly Breakdown (Monday-Sunday, ISO Week)")
		for _, key := range r.WeeklyKeys() {
			p.bucket(key, r.Weekly[key], r.SavingsSwitch)
		}
	}
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) colorf(c *color.Color, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = c.Fprintf(p.w, format, args...)
}

func (p *printer) headline(r *Report, period string) {
	p.printf("\n")
	p.colorf(heading, "Balance: ")
	c := positive
	if r.Balance.IsNegative() {
		c = negative
	}
	p.colorf(c, "%s KES", money(r.Balance))
	if period != "" {
		p.printf(" %s", period)
	}
	p.printf("\n")
}

func (p *printer) section(title string) {
	p.printf("\n")
	p.colorf(section, "%s:\n", title)
}

// breakdown lists the non-zero categories of t. Nothing is printed when t is
// all zero.
func (p *printer) breakdown(title string, t *Totals, indent string) {
	if t.Total.IsZero() {
		return
	}
	if indent == "" {
		p.section(title)
	} else {
		p.printf("%s%s:\n", indent, title)
	}
	for _, name := range t.Names {
		if amt := t.ByCategory[name]; !amt.IsZero() {
			p.printf("%s%s: %s KES\n", indent+"  ", name, money(amt))
		}
	}
}

func (p *printer) bucket(key string, s *Summary, savingsSwitch bool) {
	p.colorf(heading, "%s", key)
	p.printf(": Balance %s KES (Income %s, Expense %s, Savings %s)\n",
		money(s.Net(savingsSwitch)), money(s.Income.Total), money(s.Expenses.Total), money(s.Savings.Total))
	p.breakdown("Income", s.Income, "  ")
	p.breakdown("Expenses", s.Expenses, "  ")
	p.breakdown("Savings", s.Savings, "  ")
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
