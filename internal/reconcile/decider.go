package reconcile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/boda-dev/boda/internal/validate"
)

// ErrNoInput is returned by PromptDecider when the input ends mid-question.
var ErrNoInput = errors.New("no operator input")

// PromptDecider asks the operator about each uncategorized transaction.
type PromptDecider struct {
	in  *bufio.Reader
	out io.Writer
	// Strict rejects category prefixes shared by several categories.
	Strict bool
}

// NewPromptDecider reads answers from in and writes questions to out.
func NewPromptDecider(in io.Reader, out io.Writer) *PromptDecider {
	return &PromptDecider{in: bufio.NewReader(in), out: out}
}

// Decide asks for expense, savings or skip, then for a category. Enter
// accepts the suggested category when there is one.
func (d *PromptDecider) Decide(ctx context.Context, q Question) (Decision, error) {
	d.summary(q)

	defAction, defCategory := d.defaults(q)
	for {
		hint := "[e]xpense, [s]avings or [x] skip"
		if defAction != "" {
			hint += fmt.Sprintf(" (enter for %s %s)", defAction, defCategory)
		}
		answer, err := d.ask(ctx, hint)
		if err != nil {
			return Decision{}, err
		}

		switch strings.ToLower(answer) {
		case "":
			if defAction == "" {
				continue
			}
			return Decision{Action: defAction, Category: defCategory}, nil
		case "e", "expense":
			if len(q.ExpenseCategories) == 0 {
				color.New(color.FgRed).Fprintln(d.out, "  no expense categories")
				continue
			}
			return d.pickCategory(ctx, ActionExpense, q.ExpenseCategories)
		case "s", "savings":
			if len(q.SavingsCategories) == 0 {
				color.New(color.FgRed).Fprintln(d.out, "  no savings categories")
				continue
			}
			return d.pickCategory(ctx, ActionSavings, q.SavingsCategories)
		case "x", "skip":
			return Skip(), nil
		default:
			color.New(color.FgRed).Fprintf(d.out, "  unknown choice %q\n", answer)
		}
	}
}

func (d *PromptDecider) summary(q Question) {
	t := q.Transaction
	fmt.Fprintln(d.out)
	color.New(color.BgBlue, color.FgWhite).Fprintf(d.out, " %s ", t.TransactionCode)
	color.New(color.BgYellow, color.FgBlack).Fprintf(d.out, " %s ", t.OccurredAt.Format("2006-01-02 15:04"))
	color.New(color.BgWhite, color.FgBlack).Fprintf(d.out, " %-30s ", t.CounterpartyName)
	color.New(color.BgRed, color.FgWhite).Fprintf(d.out, " %10s KES ", t.Amount.StringFixed(2))
	fmt.Fprintln(d.out)
	if t.CounterpartyPhone != "" || t.Reference != "" {
		fmt.Fprintf(d.out, "  %s%s\n", t.CounterpartyPhone, t.Reference)
	}
	if q.Suggested != "" {
		color.New(color.FgGreen).Fprintf(d.out, "  last used: %s\n", q.Suggested)
	}
}

func (d *PromptDecider) defaults(q Question) (Action, string) {
	if q.Suggested == "" {
		return "", ""
	}
	for _, c := range q.ExpenseCategories {
		if c == q.Suggested {
			return ActionExpense, c
		}
	}
	for _, c := range q.SavingsCategories {
		if c == q.Suggested {
			return ActionSavings, c
		}
	}
	return "", ""
}

// pickCategory asks for one of categories. An empty answer or x backs out
// and skips the transaction.
func (d *PromptDecider) pickCategory(ctx context.Context, action Action, categories []string) (Decision, error) {
	for i, c := range categories {
		fmt.Fprintf(d.out, "  %d. %s\n", i+1, c)
	}
	resolve := validate.Category
	if d.Strict {
		resolve = validate.CategoryStrict
	}
	for {
		answer, err := d.ask(ctx, string(action)+" category (enter or x to skip)")
		if err != nil {
			return Decision{}, err
		}
		if answer == "" || strings.EqualFold(answer, "x") {
			return Skip(), nil
		}
		category, err := resolve(answer, categories)
		if err != nil {
			color.New(color.FgRed).Fprintf(d.out, "  %v\n", err)
			continue
		}
		return Decision{Action: action, Category: category}, nil
	}
}

func (d *PromptDecider) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	color.New(color.Bold).Fprintf(d.out, "%s: ", prompt)
	line, err := d.in.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		if line == "" {
			return "", ErrNoInput
		}
	default:
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Policy is how an import treats transactions nobody can categorize.
type Policy string

const (
	PolicyPrompt Policy = "prompt"
	PolicySkip   Policy = "skip"
	PolicyQueue  Policy = "queue"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyPrompt, PolicySkip, PolicyQueue:
		return p, nil
	default:
		return "", fmt.Errorf("unknown policy %q (want prompt, skip or queue)", s)
	}
}

// PolicyDecider skips every question without asking. With PolicyQueue it
// also appends the raw message to a review file for a later import.
type PolicyDecider struct {
	Policy    Policy
	QueuePath string
}

// Decide implements Decider.
func (d PolicyDecider) Decide(_ context.Context, q Question) (Decision, error) {
	if d.Policy != PolicyQueue {
		return Skip(), nil
	}
	if err := os.MkdirAll(filepath.Dir(d.QueuePath), 0o755); err != nil {
		return Decision{}, fmt.Errorf("creating review dir: %w", err)
	}
	f, err := os.OpenFile(d.QueuePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return Decision{}, fmt.Errorf("opening review file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, q.Transaction.Raw); err != nil {
		return Decision{}, fmt.Errorf("queueing %s: %w", q.Transaction.TransactionCode, err)
	}
	return Skip(), nil
}
