package reconcile

import (
	"context"

	"github.com/boda-dev/boda/internal/model"
)

// Action is what the operator chose for an uncategorized transaction.
type Action string

const (
	ActionExpense Action = "expense"
	ActionSavings Action = "savings"
	ActionSkip    Action = "skip"
)

// Decision routes one uncategorized transaction.
type Decision struct {
	Action   Action
	Category string
}

// AsExpense books the transaction as an expense in category.
func AsExpense(category string) Decision {
	return Decision{Action: ActionExpense, Category: category}
}

// AsSavings books the transaction as savings in category.
func AsSavings(category string) Decision {
	return Decision{Action: ActionSavings, Category: category}
}

// Skip leaves the transaction out of the ledger.
func Skip() Decision {
	return Decision{Action: ActionSkip}
}

// Question is what a Decider is asked about an uncategorized transaction.
type Question struct {
	Transaction       model.ParsedTransaction
	ExpenseCategories []string
	SavingsCategories []string
	// Suggested is the category last recorded for the same phone, if any.
	Suggested string
}

// Decider resolves transactions the rules could not categorize. Run blocks
// on it, one transaction at a time.
type Decider interface {
	Decide(ctx context.Context, q Question) (Decision, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, q Question) (Decision, error)

func (f DeciderFunc) Decide(ctx context.Context, q Question) (Decision, error) {
	return f(ctx, q)
}
