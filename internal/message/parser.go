// Package message extracts transactions from M-Pesa notification text.
package message

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boda-dev/boda/internal/model"
	"github.com/boda-dev/boda/internal/validate"
)

// ErrUnparseable is returned when no template matches a line.
var ErrUnparseable = errors.New("unparseable message")

const (
	head    = `^(?P<code>[A-Z0-9]{10})\s+Confirmed\.?\s*`
	amount  = `Ksh\s?(?P<amount>\d+(?:,\d{3})*\.\d{2})`
	tail    = `\s+on\s+(?P<date>\d{1,2}/\d{1,2}/\d{2})\s+at\s+(?P<time>\d{1,2}:\d{2}\s?[AP]M)\.?\s*New\s+(?:M-PESA\s+)?balance\s+is\s+Ksh\s?(?P<balance>\d+(?:,\d{3})*\.\d{2})`
	phoneRe = `(?:\+?254|0)\d{9}`

	dateLayout = "2/1/06 3:04 PM"
)

// Template is one known notification layout.
type Template struct {
	Name    model.TemplateName
	Kind    model.Kind
	pattern *regexp.Regexp
	// exclude rejects a match whose counterparty matches, keeping templates
	// that share a verb mutually exclusive.
	exclude *regexp.Regexp
}

// NewTemplate compiles a template. The expression must define the named
// groups code, amount, party, date, time and balance; ref is optional.
func NewTemplate(name model.TemplateName, kind model.Kind, expr string) Template {
	return Template{Name: name, Kind: kind, pattern: regexp.MustCompile(expr)}
}

// DefaultTemplates returns the four M-Pesa layouts in matching order.
func DefaultTemplates() []Template {
	sent := NewTemplate(model.TemplateSent, model.KindExpense,
		head+amount+`\s+sent\s+to\s+(?P<party>.+?)\s+(?P<ref>`+phoneRe+`)`+tail)
	sent.exclude = regexp.MustCompile(`(?i)\bfor\s+account\b`)

	return []Template{
		NewTemplate(model.TemplateReceived, model.KindIncome,
			head+`You\s+have\s+received\s+`+amount+`\s+from\s+(?P<party>.+?)`+tail),
		sent,
		NewTemplate(model.TemplateMerchant, model.KindExpense,
			head+amount+`\s+paid\s+to\s+(?P<party>.+?)\.?`+tail),
		NewTemplate(model.TemplatePaybill, model.KindExpense,
			head+amount+`\s+sent\s+to\s+(?P<party>.+?)\s+for\s+account\s+(?P<ref>\S+?)`+tail),
	}
}

// Parser tries templates in registration order and uses the first match.
type Parser struct {
	templates []Template
	names     map[model.TemplateName]bool
}

// NewParser creates a parser with the default templates registered.
func NewParser() *Parser {
	p := &Parser{names: make(map[model.TemplateName]bool)}
	for _, t := range DefaultTemplates() {
		p.Register(t)
	}
	return p
}

// Register appends a template. Panics on a duplicate name.
func (p *Parser) Register(t Template) {
	if p.names[t.Name] {
		panic("duplicate message template: " + string(t.Name))
	}
	p.names[t.Name] = true
	p.templates = append(p.templates, t)
}

// Templates returns the registered templates in matching order.
func (p *Parser) Templates() []Template {
	out := make([]Template, len(p.templates))
	copy(out, p.templates)
	return out
}

// Parse converts one notification into a ParsedTransaction.
func (p *Parser) Parse(line string) (model.ParsedTransaction, error) {
	line = strings.Join(strings.Fields(line), " ")
	for _, t := range p.templates {
		fields, ok := t.match(line)
		if !ok {
			continue
		}
		txn, err := t.build(fields, line)
		if err != nil {
			return model.ParsedTransaction{}, fmt.Errorf("%w: %s: %v", ErrUnparseable, t.Name, err)
		}
		return txn, nil
	}
	return model.ParsedTransaction{}, ErrUnparseable
}

func (t Template) match(line string) (map[string]string, bool) {
	m := t.pattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	fields := make(map[string]string, len(m))
	for i, name := range t.pattern.SubexpNames() {
		if name != "" {
			fields[name] = strings.TrimSpace(m[i])
		}
	}
	if t.exclude != nil && t.exclude.MatchString(fields["party"]) {
		return nil, false
	}
	return fields, true
}

func (t Template) build(fields map[string]string, line string) (model.ParsedTransaction, error) {
	amt, err := parseMoney(fields["amount"])
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("parsing amount: %w", err)
	}
	balance, err := parseMoney(fields["balance"])
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("parsing balance: %w", err)
	}

	clock := strings.ToUpper(strings.ReplaceAll(fields["time"], " ", ""))
	clock = clock[:len(clock)-2] + " " + clock[len(clock)-2:]
	at, err := time.Parse(dateLayout, fields["date"]+" "+clock)
	if err != nil {
		return model.ParsedTransaction{}, fmt.Errorf("parsing date %q: %w", fields["date"]+" "+fields["time"], err)
	}

	name, ref := fields["party"], fields["ref"]
	if ref == "" {
		name, ref = splitReference(name)
	}
	name = strings.TrimRight(name, ". ")

	txn := model.ParsedTransaction{
		Kind:             t.Kind,
		Template:         t.Name,
		TransactionCode:  fields["code"],
		Amount:           amt,
		CounterpartyName: name,
		OccurredAt:       at,
		PostBalance:      balance,
		Raw:              line,
	}
	if phone, err := validate.Phone(ref); err == nil {
		txn.CounterpartyPhone = phone
	} else {
		txn.Reference = ref
	}
	return txn, nil
}

// splitReference separates a trailing phone number or account number from
// a counterparty such as "JOHN DOE 0712345678" or "EQUITY BULK 300600".
func splitReference(party string) (name, ref string) {
	i := strings.LastIndexByte(party, ' ')
	if i < 0 {
		return party, ""
	}
	last := party[i+1:]
	if !strings.ContainsAny(last, "0123456789") || strings.IndexFunc(last, isLetter) >= 0 {
		return party, ""
	}
	return strings.TrimSpace(party[:i]), last
}

func isLetter(r rune) bool {
	return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
}

func parseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}
