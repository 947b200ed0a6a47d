package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which ledger collection an entry belongs to.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindSavings Kind = "savings"
)

// Kinds lists the ledger collections in report order.
var Kinds = []Kind{KindIncome, KindExpense, KindSavings}

// PaymentMode is how money moved: cash in hand or through the M-Pesa channel.
type PaymentMode string

const (
	ModeCash  PaymentMode = "Cash"
	ModeMPesa PaymentMode = "M-Pesa"
)

// Platform is the fixed set of income sources.
type Platform string

const (
	PlatformUber      Platform = "Uber"
	PlatformBolt      Platform = "Bolt"
	PlatformLittlecab Platform = "Littlecab"
	PlatformOffline   Platform = "Offline"
)

// Platforms lists every income platform in display order.
var Platforms = []Platform{PlatformUber, PlatformBolt, PlatformLittlecab, PlatformOffline}

// Entry is one income, expense or savings record.
type Entry struct {
	Kind            Kind
	Date            time.Time
	Amount          decimal.Decimal
	Notes           string
	Mode            PaymentMode
	TransactionCode string // only set when Mode is ModeMPesa
	Category        string // platform for income, category otherwise
}

// IsChannel reports whether the entry moved money through M-Pesa.
func (e Entry) IsChannel() bool {
	return e.Mode == ModeMPesa
}

// Day truncates t to a calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
