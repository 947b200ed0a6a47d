package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/boda-dev/boda/internal/auditlog"
	"github.com/boda-dev/boda/internal/ledger"
	"github.com/boda-dev/boda/internal/model"
	"github.com/boda-dev/boda/internal/validate"
)

func newEntryCommand(e *env, kind model.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Record and review %s entries", kind),
	}
	cmd.AddCommand(
		newEntryAddCommand(e, kind),
		newEntryListCommand(e, kind),
		newEntryDeleteCommand(e, kind),
	)
	return cmd
}

type entryFlags struct {
	date     string
	amount   string
	notes    string
	mode     string
	code     string
	category string
}

func newEntryAddCommand(e *env, kind model.Kind) *cobra.Command {
	var f entryFlags

	categoryFlag := "category"
	if kind == model.KindIncome {
		categoryFlag = "platform"
	}

	cmd := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Add a %s entry; prints nothing on success", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app) error {
				var added model.Entry
				err := a.update(func(d *ledger.Document) error {
					entry, err := f.entry(kind, d, a.today(), a.cfg.Categories.StrictPrefix)
					if err != nil {
						return err
					}
					if err := d.AddEntry(entry, a.today()); err != nil {
						return err
					}
					added = entry
					return nil
				})
				if err != nil {
					return err
				}
				a.audit.Recordf(auditlog.ActionAddEntry, "%s %s", kind, describeEntry(added))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&f.date, "date", "", "YYYY-MM-DD, MM-DD or DD (default today)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount in KES (required)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-text notes")
	cmd.Flags().StringVar(&f.mode, "mode", "cash", "payment mode: cash or mpesa")
	cmd.Flags().StringVar(&f.code, "code", "", "M-Pesa transaction code (M-Pesa only)")
	cmd.Flags().StringVar(&f.category, categoryFlag, "", categoryFlag+" name, prefix or number (required)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired(categoryFlag)

	return cmd
}

// entry builds an Entry from the flags, reporting every bad flag at once.
func (f entryFlags) entry(kind model.Kind, d *ledger.Document, today time.Time, strict bool) (model.Entry, error) {
	var errs []error
	e := model.Entry{Kind: kind, Notes: strings.TrimSpace(f.notes), Date: today}

	if f.date != "" {
		date, err := validate.ParseDate(f.date, today)
		errs = append(errs, err)
		e.Date = date
	}

	amount, err := validate.Amount(f.amount)
	errs = append(errs, err)
	e.Amount = amount

	mode, err := validate.PaymentMode(f.mode)
	errs = append(errs, err)
	e.Mode = mode
	if err == nil {
		code, err := validate.TransactionCode(mode, f.code)
		errs = append(errs, err)
		e.TransactionCode = code
	}

	if kind == model.KindIncome {
		p, err := validate.Platform(f.category)
		errs = append(errs, err)
		e.Category = string(p)
	} else {
		resolve := validate.Category
		if strict {
			resolve = validate.CategoryStrict
		}
		c, err := resolve(f.category, d.Categories(kind))
		errs = append(errs, err)
		e.Category = c
	}

	return e, errors.Join(errs...)
}

func newEntryListCommand(e *env, kind model.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s entries", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.run(cmd, func(a *app) error {
				doc, err := a.store.Load()
				if err != nil {
					return err
				}
				entries := doc.Entries(kind)
				if len(entries) == 0 {
					printf(cmd, "No %s entries.\n", kind)
					return nil
				}
				for i, entry := range entries {
					printf(cmd, "%d. %s\n", i+1, describeEntry(entry))
				}
				return nil
			})
		},
	}
}

func newEntryDeleteCommand(e *env, kind model.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number>",
		Short: fmt.Sprintf("Delete a %s entry by its list number", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.run(cmd, func(a *app) error {
				var removed model.Entry
				err := a.update(func(d *ledger.Document) error {
					i, err := validate.Index(args[0], len(d.Entries(kind)))
					if err != nil {
						return err
					}
					removed, err = d.RemoveEntry(kind, i)
					return err
				})
				if err != nil {
					return err
				}
				a.audit.Recordf(auditlog.ActionDeleteEntry, "%s %s", kind, describeEntry(removed))
				printf(cmd, "Deleted %s: %s\n", kind, describeEntry(removed))
				return nil
			})
		},
	}
}

// describeEntry renders an entry on one line, e.g.
// "2026-10-15 Fuel 300.00 KES (M-Pesa QA12BC34DE) shell karen".
func describeEntry(e model.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s KES (%s", e.Date.Format("2006-01-02"), e.Category, money(e.Amount), e.Mode)
	if e.TransactionCode != "" {
		fmt.Fprintf(&b, " %s", e.TransactionCode)
	}
	b.WriteString(")")
	if e.Notes != "" {
		fmt.Fprintf(&b, " %s", e.Notes)
	}
	return b.String()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
