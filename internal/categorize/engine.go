// Package categorize assigns categories to parsed M-Pesa transactions from a
// YAML keyword table.
package categorize

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/boda-dev/boda/internal/model"
	"github.com/boda-dev/boda/internal/validate"
)

//go:embed rules.yaml
var embeddedRules []byte

// Rule maps a counterparty substring to a category (expense rules) or an
// income platform (income rules).
type Rule struct {
	Name     string     `yaml:"name"`
	Pattern  string     `yaml:"pattern"`
	Kind     model.Kind `yaml:"kind"`
	Category string     `yaml:"category"`
}

// RuleSet is the top-level YAML structure.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Engine evaluates rules in file order.
type Engine struct {
	rules []Rule
}

// MatchResult is the rule that matched a counterparty.
type MatchResult struct {
	Category string
	RuleName string
}

// NewEngine parses and validates YAML rules.
func NewEngine(data []byte) (*Engine, error) {
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}

	for i, r := range set.Rules {
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("rule %d (%s): pattern cannot be empty", i, r.Name)
		}
		if strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %d (%s): category cannot be empty", i, r.Name)
		}
		switch r.Kind {
		case model.KindExpense:
		case model.KindIncome:
			if !validate.IsPlatform(r.Category) {
				return nil, fmt.Errorf("rule %d (%s): unknown platform %q", i, r.Name, r.Category)
			}
		default:
			return nil, fmt.Errorf("rule %d (%s): kind must be expense or income, got %q", i, r.Name, r.Kind)
		}
	}

	return &Engine{rules: set.Rules}, nil
}

// LoadEmbedded loads the built-in rules.
func LoadEmbedded() (*Engine, error) {
	e, err := NewEngine(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("loading embedded rules: %w", err)
	}
	return e, nil
}

// LoadFromFile loads rules from path.
func LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	e, err := NewEngine(data)
	if err != nil {
		return nil, fmt.Errorf("loading rules from %q: %w", path, err)
	}
	return e, nil
}

// Load returns the rules at path, or the built-in rules when path is empty.
func Load(path string) (*Engine, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFromFile(path)
}

// Match returns the first rule of the given kind whose pattern occurs in
// counterparty, case-insensitively.
func (e *Engine) Match(kind model.Kind, counterparty string) (*MatchResult, bool) {
	name := strings.ToLower(strings.TrimSpace(counterparty))
	if name == "" {
		return nil, false
	}
	for _, r := range e.rules {
		if r.Kind != kind {
			continue
		}
		if strings.Contains(name, strings.ToLower(strings.TrimSpace(r.Pattern))) {
			return &MatchResult{Category: r.Category, RuleName: r.Name}, true
		}
	}
	return nil, false
}

// Platform infers the income platform of a sender, defaulting to Offline.
func (e *Engine) Platform(counterparty string) model.Platform {
	if m, ok := e.Match(model.KindIncome, counterparty); ok {
		return model.Platform(m.Category)
	}
	return model.PlatformOffline
}

// ExpenseCategory returns the category for an expense counterparty. The
// matched category must be one of categories; the list's spelling is returned.
func (e *Engine) ExpenseCategory(counterparty string, categories []string) (string, bool) {
	m, ok := e.Match(model.KindExpense, counterparty)
	if !ok {
		return "", false
	}
	for _, c := range categories {
		if strings.EqualFold(c, m.Category) {
			return c, true
		}
	}
	return "", false
}

// Rules returns a copy of the rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
