package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boda-dev/boda/internal/model"
)

const dateLayout = "2006-01-02"

// documentRecord is the on-disk layout. Pointer fields tell a missing key
// apart from an empty one so older files pick up defaults on load.
type documentRecord struct {
	Income            *[]entryRecord  `json:"income"`
	Expenses          *[]entryRecord  `json:"expenses"`
	Savings           *[]entryRecord  `json:"savings"`
	ExpenseCategories *[]string       `json:"expense_categories"`
	SavingsCategories *[]string       `json:"savings_categories"`
	SavingsSwitch     *bool           `json:"savings_switch"`
	ChannelIdentity   *identityRecord `json:"channel_identity"`
}

type entryRecord struct {
	Date            string `json:"date"`
	Platform        string `json:"platform,omitempty"`
	Category        string `json:"category,omitempty"`
	Amount          amount `json:"amount"`
	Notes           string `json:"notes"`
	PaymentMode     string `json:"payment_mode"`
	TransactionCode string `json:"transaction_code"`
}

type identityRecord struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// amount writes a decimal as a bare JSON number.
type amount struct {
	decimal.Decimal
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// Marshal encodes the document with every top-level key present.
func Marshal(d *Document) ([]byte, error) {
	rec := documentRecord{
		Income:            ptr(marshalEntries(d.entries[model.KindIncome])),
		Expenses:          ptr(marshalEntries(d.entries[model.KindExpense])),
		Savings:           ptr(marshalEntries(d.entries[model.KindSavings])),
		ExpenseCategories: ptr(nonNil(d.categories[model.KindExpense])),
		SavingsCategories: ptr(nonNil(d.categories[model.KindSavings])),
		SavingsSwitch:     ptr(d.settings.SavingsSwitch),
		ChannelIdentity: &identityRecord{
			Name:  d.settings.Identity.Name,
			Phone: d.settings.Identity.Phone,
		},
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshaling ledger: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a ledger file. Missing top-level keys take their
// defaults and entries without a payment mode load as cash.
func Unmarshal(data []byte) (*Document, error) {
	var rec documentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing ledger: %w", err)
	}

	d := NewDocument()
	for _, c := range []struct {
		kind model.Kind
		recs *[]entryRecord
	}{
		{model.KindIncome, rec.Income},
		{model.KindExpense, rec.Expenses},
		{model.KindSavings, rec.Savings},
	} {
		if c.recs == nil {
			continue
		}
		entries, err := unmarshalEntries(c.kind, *c.recs)
		if err != nil {
			return nil, err
		}
		d.entries[c.kind] = entries
	}

	if rec.ExpenseCategories != nil {
		d.categories[model.KindExpense] = *rec.ExpenseCategories
	}
	if rec.SavingsCategories != nil {
		d.categories[model.KindSavings] = *rec.SavingsCategories
	}
	if rec.SavingsSwitch != nil {
		d.settings.SavingsSwitch = *rec.SavingsSwitch
	}
	if rec.ChannelIdentity != nil {
		d.settings.Identity = model.Identity{
			Name:  rec.ChannelIdentity.Name,
			Phone: rec.ChannelIdentity.Phone,
		}
	}
	return d, nil
}

func marshalEntries(entries []model.Entry) []entryRecord {
	out := make([]entryRecord, 0, len(entries))
	for _, e := range entries {
		r := entryRecord{
			Date:            e.Date.Format(dateLayout),
			Amount:          amount{e.Amount},
			Notes:           e.Notes,
			PaymentMode:     string(e.Mode),
			TransactionCode: e.TransactionCode,
		}
		if e.Kind == model.KindIncome {
			r.Platform = e.Category
		} else {
			r.Category = e.Category
		}
		out = append(out, r)
	}
	return out
}

func unmarshalEntries(kind model.Kind, recs []entryRecord) ([]model.Entry, error) {
	out := make([]model.Entry, 0, len(recs))
	for i, r := range recs {
		date, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("%s entry %d: parsing date %q: %w", kind, i+1, r.Date, err)
		}
		mode := model.PaymentMode(r.PaymentMode)
		if mode == "" {
			mode = model.ModeCash
		}
		category := r.Category
		if kind == model.KindIncome {
			category = r.Platform
		}
		out = append(out, model.Entry{
			Kind:            kind,
			Date:            date,
			Amount:          r.Amount.Decimal,
			Notes:           r.Notes,
			Mode:            mode,
			TransactionCode: r.TransactionCode,
			Category:        category,
		})
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func ptr[T any](v T) *T {
	return &v
}
