package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boda-dev/boda/internal/model"
)

const dateFormat = "2006-1-2"

var (
	fullDatePattern  = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)
	monthDayPattern  = regexp.MustCompile(`^\d{1,2}-\d{1,2}$`)
	dayOnlyPattern   = regexp.MustCompile(`^\d{1,2}$`)
	phoneDigits      = regexp.MustCompile(`^(?:\+?254|0)([17]\d{8})$`)
	transactionCodes = regexp.MustCompile(`^[A-Z0-9]{10}$`)
)

// ParseDate accepts YYYY-MM-DD, MM-DD (year of today) or DD (year and month
// of today). Dates after today fail with ErrFutureDate.
func ParseDate(text string, today time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	today = model.Day(today)

	var full string
	switch {
	case fullDatePattern.MatchString(text):
		full = text
	case monthDayPattern.MatchString(text):
		full = fmt.Sprintf("%d-%s", today.Year(), text)
	case dayOnlyPattern.MatchString(text):
		full = fmt.Sprintf("%d-%d-%s", today.Year(), int(today.Month()), text)
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}

	parsed, err := time.Parse(dateFormat, full)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
	}
	if parsed.After(today) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrFutureDate, parsed.Format("2006-01-02"))
	}
	return parsed, nil
}

// Amount parses a strictly positive decimal amount.
func Amount(text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	return amount, nil
}

// Category resolves text against categories as a 1-based index, or else as a
// case-insensitive exact name or prefix. The first category in list order
// that matches wins; shared prefixes are not detected.
func Category(text string, categories []string) (string, error) {
	return resolveCategory(text, categories, false)
}

// CategoryStrict is Category, except that a prefix shared by more than one
// category fails with ErrAmbiguousCategory. An exact name always wins.
func CategoryStrict(text string, categories []string) (string, error) {
	return resolveCategory(text, categories, true)
}

func resolveCategory(text string, categories []string, strict bool) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return "", categoryError(text, categories)
	}

	if n, err := strconv.Atoi(needle); err == nil {
		if n < 1 || n > len(categories) {
			return "", categoryError(text, categories)
		}
		return categories[n-1], nil
	}

	var matches []string
	for _, c := range categories {
		lower := strings.ToLower(c)
		if lower == needle {
			return c, nil
		}
		if strings.HasPrefix(lower, needle) {
			if !strict {
				return c, nil
			}
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", categoryError(text, categories)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %s", ErrAmbiguousCategory, text, strings.Join(matches, ", "))
	}
}

func categoryError(text string, categories []string) error {
	return fmt.Errorf("%w %q: use a number (1-%d) or a name prefix of: %s",
		ErrInvalidCategory, text, len(categories), strings.Join(categories, ", "))
}

var platformAliases = map[string]model.Platform{
	"1": model.PlatformUber, "u": model.PlatformUber, "uber": model.PlatformUber,
	"2": model.PlatformBolt, "b": model.PlatformBolt, "bolt": model.PlatformBolt,
	"3": model.PlatformLittlecab, "l": model.PlatformLittlecab, "littlecab": model.PlatformLittlecab,
	"4": model.PlatformOffline, "o": model.PlatformOffline, "offline": model.PlatformOffline,
}

// Platform resolves a platform shortcut or name.
func Platform(text string) (model.Platform, error) {
	if p, ok := platformAliases[strings.ToLower(strings.TrimSpace(text))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPlatform, text)
}

// IsPlatform reports whether name is exactly one of the income platforms.
func IsPlatform(name string) bool {
	for _, p := range model.Platforms {
		if string(p) == name {
			return true
		}
	}
	return false
}

var modeAliases = map[string]model.PaymentMode{
	"1": model.ModeCash, "c": model.ModeCash, "cash": model.ModeCash,
	"2": model.ModeMPesa, "m": model.ModeMPesa, "mpesa": model.ModeMPesa, "m-pesa": model.ModeMPesa,
}

// PaymentMode resolves a payment mode shortcut or name.
func PaymentMode(text string) (model.PaymentMode, error) {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(text))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMode, text)
}

// Phone normalizes a Kenyan mobile number to +254XXXXXXXXX.
func Phone(text string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(text))
	m := phoneDigits.FindStringSubmatch(cleaned)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, text)
	}
	return "+254" + m[1], nil
}

// TransactionCode checks the code against the payment mode: M-Pesa entries
// need a 10 character provider code, cash entries must not carry one.
func TransactionCode(mode model.PaymentMode, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if mode != model.ModeMPesa {
		if code != "" {
			return "", fmt.Errorf("%w: cash entries cannot carry a code", ErrInvalidTransactionCode)
		}
		return "", nil
	}
	if !transactionCodes.MatchString(code) {
		return "", fmt.Errorf("%w: %q must be 10 letters or digits", ErrInvalidTransactionCode, code)
	}
	return code, nil
}

// Index parses a 1-based position into a list of n items and returns the
// 0-based index.
func Index(text string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("%w: %q (1-%d)", ErrInvalidIndex, text, n)
	}
	return i - 1, nil
}
