package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/boda-dev/boda/internal/categorize"
	"github.com/boda-dev/boda/internal/message"
	"github.com/boda-dev/boda/internal/model"
)

// Status is what happened to one line of a batch.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusUnparseable Status = "unparseable"
	StatusDuplicate   Status = "duplicate"
	StatusRejected    Status = "rejected"
	StatusSkipped     Status = "skipped"
	StatusInvalid     Status = "invalid"
)

// Outcome records the handling of one line.
type Outcome struct {
	Line        int // 1-based position in the batch
	Raw         string
	Status      Status
	Transaction model.ParsedTransaction
	Entry       model.Entry // set when Status is StatusApplied
	Err         error
}

// Result is the outcome of a whole batch. The ledger passed to Run already
// holds the applied entries; Contacts still need to be stored.
type Result struct {
	BatchID  string
	Outcomes []Outcome
	Contacts []model.Contact
}

// Count returns how many lines ended with status.
func (r *Result) Count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Ledger is the part of the ledger document a batch reads and extends.
type Ledger interface {
	EntrySource
	Categories(kind model.Kind) []string
	HasTransactionCode(code string) bool
	AddEntry(e model.Entry, today time.Time) error
}

// Processor verifies and routes batches of M-Pesa messages.
type Processor struct {
	parser    *message.Parser
	rules     *categorize.Engine
	decider   Decider
	tolerance decimal.Decimal
	suggest   func(phone string) string
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithTolerance overrides DefaultTolerance.
func WithTolerance(t decimal.Decimal) Option {
	return func(p *Processor) { p.tolerance = t }
}

// WithSuggestions supplies the last known category for a phone number.
func WithSuggestions(fn func(phone string) string) Option {
	return func(p *Processor) { p.suggest = fn }
}

// WithClock sets the clock used as "today" for entry validation.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// NewProcessor creates a Processor.
func NewProcessor(parser *message.Parser, rules *categorize.Engine, decider Decider, opts ...Option) *Processor {
	p := &Processor{
		parser:    parser,
		rules:     rules,
		decider:   decider,
		tolerance: DefaultTolerance,
		suggest:   func(string) string { return "" },
		now:       time.Now,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run handles lines in order, applying each accepted transaction to l before
// the next line is verified. A failing line never stops the batch; only a
// cancelled context or a Decider error does, and the partial result is
// returned with that error.
func (p *Processor) Run(ctx context.Context, l Ledger, lines []string) (*Result, error) {
	res := &Result{BatchID: uuid.NewString()}
	log := p.logger.With("batch", res.BatchID)
	seen := make(map[string]string)

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		out := Outcome{Line: i + 1, Raw: line}
		contact, err := p.process(ctx, l, &out, seen)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", out.Line, err)
		}
		if contact != nil {
			res.Contacts = append(res.Contacts, *contact)
			if contact.Category != "" {
				seen[contact.Phone] = contact.Category
			}
		}
		res.Outcomes = append(res.Outcomes, out)

		attrs := []any{"line", out.Line, "status", out.Status}
		if out.Transaction.TransactionCode != "" {
			attrs = append(attrs, "code", out.Transaction.TransactionCode)
		}
		switch out.Status {
		case StatusApplied:
			log.Info("transaction applied", append(attrs, "kind", out.Entry.Kind, "category", out.Entry.Category)...)
		case StatusSkipped:
			log.Info("transaction skipped", attrs...)
		default:
			log.Warn("transaction not applied", append(attrs, "error", out.Err)...)
		}
	}
	return res, nil
}

func (p *Processor) process(ctx context.Context, l Ledger, out *Outcome, seen map[string]string) (*model.Contact, error) {
	txn, err := p.parser.Parse(out.Raw)
	if err != nil {
		out.Status, out.Err = StatusUnparseable, err
		return nil, nil
	}
	out.Transaction = txn

	if l.HasTransactionCode(txn.TransactionCode) {
		out.Status = StatusDuplicate
		out.Err = fmt.Errorf("transaction %s already recorded", txn.TransactionCode)
		return nil, nil
	}

	var contact *model.Contact
	if txn.CounterpartyPhone != "" {
		contact = &model.Contact{
			Name:  txn.CounterpartyName,
			Phone: txn.CounterpartyPhone,
			Date:  txn.OccurredAt.Format("2006-01-02"),
			Time:  txn.OccurredAt.Format("15:04"),
		}
	}

	if err := VerifyWithin(ChannelBalance(l), txn, p.tolerance); err != nil {
		out.Status, out.Err = StatusRejected, err
		return contact, nil
	}

	entry, ok, err := p.route(ctx, l, txn, seen)
	if err != nil {
		return nil, err
	}
	if !ok {
		out.Status = StatusSkipped
		return contact, nil
	}

	if err := l.AddEntry(entry, p.now()); err != nil {
		out.Status, out.Err = StatusInvalid, err
		return contact, nil
	}
	out.Status, out.Entry = StatusApplied, entry
	if contact != nil && entry.Kind != model.KindIncome {
		contact.Category = entry.Category
	}
	return contact, nil
}

// route builds the ledger entry for txn. ok is false when the operator
// skipped it.
func (p *Processor) route(ctx context.Context, l Ledger, txn model.ParsedTransaction, seen map[string]string) (model.Entry, bool, error) {
	entry := model.Entry{
		Date:            txn.Date(),
		Amount:          txn.Amount,
		Notes:           notes(txn),
		Mode:            model.ModeMPesa,
		TransactionCode: txn.TransactionCode,
	}

	if txn.Kind == model.KindIncome {
		entry.Kind = model.KindIncome
		entry.Category = string(p.rules.Platform(txn.CounterpartyName))
		return entry, true, nil
	}

	expenses := l.Categories(model.KindExpense)
	if category, ok := p.rules.ExpenseCategory(txn.CounterpartyName, expenses); ok {
		entry.Kind = model.KindExpense
		entry.Category = category
		return entry, true, nil
	}

	q := Question{
		Transaction:       txn,
		ExpenseCategories: expenses,
		SavingsCategories: l.Categories(model.KindSavings),
	}
	if txn.CounterpartyPhone != "" {
		q.Suggested = seen[txn.CounterpartyPhone]
		if q.Suggested == "" {
			q.Suggested = p.suggest(txn.CounterpartyPhone)
		}
	}

	d, err := p.decider.Decide(ctx, q)
	if err != nil {
		return model.Entry{}, false, fmt.Errorf("deciding %s: %w", txn.TransactionCode, err)
	}
	switch d.Action {
	case ActionExpense:
		entry.Kind = model.KindExpense
	case ActionSavings:
		entry.Kind = model.KindSavings
	case ActionSkip:
		return model.Entry{}, false, nil
	default:
		return model.Entry{}, false, fmt.Errorf("deciding %s: unknown action %q", txn.TransactionCode, d.Action)
	}
	entry.Category = d.Category
	return entry, true, nil
}

func notes(txn model.ParsedTransaction) string {
	if txn.Reference != "" {
		return txn.CounterpartyName + " (" + txn.Reference + ")"
	}
	return txn.CounterpartyName
}
