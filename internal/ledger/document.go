// Package ledger holds the ledger document: income, expense and savings
// entries, the expense and savings category lists, and the ledger settings.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boda-dev/boda/internal/model"
	"github.com/boda-dev/boda/internal/validate"
)

// Document is the whole ledger. It is read, modified in memory and written
// back in one piece.
type Document struct {
	entries    map[model.Kind][]model.Entry
	categories map[model.Kind][]string
	settings   model.Settings
}

// NewDocument returns an empty ledger with the default category lists.
func NewDocument() *Document {
	return &Document{
		entries: make(map[model.Kind][]model.Entry, len(model.Kinds)),
		categories: map[model.Kind][]string{
			model.KindExpense: DefaultExpenseCategories(),
			model.KindSavings: DefaultSavingsCategories(),
		},
	}
}

// Settings returns the ledger settings.
func (d *Document) Settings() model.Settings {
	return d.settings
}

// SetSavingsSwitch turns the savings switch on or off.
func (d *Document) SetSavingsSwitch(on bool) {
	d.settings.SavingsSwitch = on
}

// SetIdentity records the owner of the M-Pesa line. The phone is normalized;
// an empty phone clears it.
func (d *Document) SetIdentity(name, phone string) error {
	id := model.Identity{Name: strings.TrimSpace(name)}
	if strings.TrimSpace(phone) != "" {
		p, err := validate.Phone(phone)
		if err != nil {
			return err
		}
		id.Phone = p
	}
	d.settings.Identity = id
	return nil
}

// Entries returns a copy of the entries of one kind in insertion order.
func (d *Document) Entries(kind model.Kind) []model.Entry {
	src := d.entries[kind]
	out := make([]model.Entry, len(src))
	copy(out, src)
	return out
}

// AddEntry validates e against the ledger invariants and appends it. All
// violations are reported together; each is a *ValidationError.
func (d *Document) AddEntry(e model.Entry, today time.Time) error {
	if err := d.checkEntry(e, today); err != nil {
		return err
	}
	e.Date = model.Day(e.Date)
	d.entries[e.Kind] = append(d.entries[e.Kind], e)
	return nil
}

func (d *Document) checkEntry(e model.Entry, today time.Time) error {
	if !knownKind(e.Kind) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}

	var errs []error
	fail := func(field string, err error) {
		errs = append(errs, &ValidationError{Field: field, Err: err})
	}

	switch {
	case e.Date.IsZero():
		fail("date", validate.ErrInvalidDate)
	case model.Day(e.Date).After(model.Day(today)):
		fail("date", fmt.Errorf("%w: %s", validate.ErrFutureDate, e.Date.Format("2006-01-02")))
	}

	if !e.Amount.IsPositive() {
		fail("amount", fmt.Errorf("%w: %s", validate.ErrInvalidAmount, e.Amount))
	}

	if e.Mode != model.ModeCash && e.Mode != model.ModeMPesa {
		fail("payment_mode", fmt.Errorf("%w: %q", validate.ErrInvalidPaymentMode, e.Mode))
	} else if code, err := validate.TransactionCode(e.Mode, e.TransactionCode); err != nil {
		fail("transaction_code", err)
	} else if code != e.TransactionCode {
		fail("transaction_code", fmt.Errorf("%w: %q is not normalized", validate.ErrInvalidTransactionCode, e.TransactionCode))
	} else if code != "" && d.HasTransactionCode(code) {
		fail("transaction_code", fmt.Errorf("%w: %s", ErrDuplicateTransactionCode, code))
	}

	if e.Kind == model.KindIncome {
		if !validate.IsPlatform(e.Category) {
			fail("platform", fmt.Errorf("%w: %q", validate.ErrInvalidPlatform, e.Category))
		}
	} else if indexOf(d.categories[e.Kind], e.Category) < 0 {
		fail("category", fmt.Errorf("%w: %q", validate.ErrInvalidCategory, e.Category))
	}

	return errors.Join(errs...)
}

// RemoveEntry deletes the entry at a 0-based index and returns it.
func (d *Document) RemoveEntry(kind model.Kind, index int) (model.Entry, error) {
	if !knownKind(kind) {
		return model.Entry{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	list := d.entries[kind]
	if index < 0 || index >= len(list) {
		return model.Entry{}, fmt.Errorf("%w: %d (1-%d)", validate.ErrInvalidIndex, index+1, len(list))
	}
	removed := list[index]
	d.entries[kind] = append(list[:index:index], list[index+1:]...)
	return removed, nil
}

// HasTransactionCode reports whether any entry carries code.
func (d *Document) HasTransactionCode(code string) bool {
	if code == "" {
		return false
	}
	for _, kind := range model.Kinds {
		for _, e := range d.entries[kind] {
			if e.TransactionCode == code {
				return true
			}
		}
	}
	return false
}

func knownKind(k model.Kind) bool {
	for _, kind := range model.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
