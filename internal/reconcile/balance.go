// Package reconcile checks parsed M-Pesa transactions against the ledger's
// running channel balance and routes them into the ledger.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/boda-dev/boda/internal/model"
)

// ErrBalanceMismatch is matched by every *MismatchError.
var ErrBalanceMismatch = errors.New("balance mismatch")

// DefaultTolerance is the absolute difference allowed between the computed
// and the claimed post-transaction balance.
var DefaultTolerance = decimal.NewFromInt(10)

// MismatchError reports a transaction whose claimed balance is off.
type MismatchError struct {
	Code     string
	Expected decimal.Decimal
	Claimed  decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s expected balance %s, message claims %s",
		ErrBalanceMismatch, e.Code, e.Expected.StringFixed(2), e.Claimed.StringFixed(2))
}

func (e *MismatchError) Is(target error) bool { return target == ErrBalanceMismatch }

// EntrySource is the read side of the ledger.
type EntrySource interface {
	Entries(kind model.Kind) []model.Entry
}

// ChannelBalance recomputes the M-Pesa balance from every M-Pesa entry:
// income adds, expenses and savings subtract.
func ChannelBalance(src EntrySource) decimal.Decimal {
	total := decimal.Zero
	for _, kind := range model.Kinds {
		for _, e := range src.Entries(kind) {
			if !e.IsChannel() {
				continue
			}
			if kind == model.KindIncome {
				total = total.Add(e.Amount)
			} else {
				total = total.Sub(e.Amount)
			}
		}
	}
	return total
}

// Expected returns the balance after txn is applied to current.
func Expected(current decimal.Decimal, txn model.ParsedTransaction) decimal.Decimal {
	if txn.Kind == model.KindIncome {
		return current.Add(txn.Amount)
	}
	return current.Sub(txn.Amount)
}

// Verify checks txn against current using DefaultTolerance.
func Verify(current decimal.Decimal, txn model.ParsedTransaction) error {
	return VerifyWithin(current, txn, DefaultTolerance)
}

// VerifyWithin passes iff |expected - claimed| <= tolerance.
func VerifyWithin(current decimal.Decimal, txn model.ParsedTransaction, tolerance decimal.Decimal) error {
	expected := Expected(current, txn)
	if expected.Sub(txn.PostBalance).Abs().GreaterThan(tolerance) {
		return &MismatchError{Code: txn.TransactionCode, Expected: expected, Claimed: txn.PostBalance}
	}
	return nil
}
