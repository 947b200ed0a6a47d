package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TemplateName identifies which notification layout produced a transaction.
type TemplateName string

const (
	TemplateReceived TemplateName = "received"
	TemplateSent     TemplateName = "sent"
	TemplateMerchant TemplateName = "merchant"
	TemplatePaybill  TemplateName = "paybill"
)

// ParsedTransaction is a transaction extracted from one M-Pesa notification.
// It lives for a single reconciliation pass and is never persisted as-is.
type ParsedTransaction struct {
	Kind              Kind // KindIncome or KindExpense
	Template          TemplateName
	TransactionCode   string
	Amount            decimal.Decimal
	CounterpartyName  string
	CounterpartyPhone string // "+254..." or empty
	Reference         string // non-phone account reference, verbatim
	OccurredAt        time.Time
	PostBalance       decimal.Decimal
	Raw               string
}

// Date returns the calendar date of the transaction.
func (t ParsedTransaction) Date() time.Time {
	return Day(t.OccurredAt)
}

// Contact is one sighting of a counterparty in the contacts log.
type Contact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Category string `json:"category,omitempty"`
}
