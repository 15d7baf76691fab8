package money

import (
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents an exact monetary value: a decimal amount paired with an
// ISO-4217 currency code. All arithmetic is deterministic decimal arithmetic;
// floats never enter the picture.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates a Money value from a decimal amount and a currency code.
func New(amount decimal.Decimal, currencyCode string) (Money, error) {
	if err := validateCurrency(currencyCode); err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: currencyCode}, nil
}

// NewFromString parses a decimal string into a Money value.
// Non-numeric input (including "NaN" and "Inf") is rejected by the parser.
func NewFromString(amount string, currencyCode string) (Money, error) {
	if err := validateCurrency(currencyCode); err != nil {
		return Money{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{amount: d, currency: currencyCode}, nil
}

// Zero returns a zero value in the given currency.
func Zero(currencyCode string) Money {
	return Money{amount: decimal.Zero, currency: currencyCode}
}

func validateCurrency(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("currency code must be a 3-letter ISO code, got %q", code)
	}
	return nil
}

// MinorUnits returns the number of decimal places for a currency code,
// sourced from the go-money currency table. Unknown codes fall back to 2.
func MinorUnits(currencyCode string) int32 {
	cur := gomoney.GetCurrency(currencyCode)
	if cur == nil {
		return 2
	}
	return int32(cur.Fraction)
}

// Amount returns the underlying decimal value.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the ISO currency code.
func (m Money) Currency() string { return m.currency }

// Round returns the value rounded half-to-even at the currency's minor unit.
func (m Money) Round() Money {
	return Money{amount: m.amount.RoundBank(MinorUnits(m.currency)), currency: m.currency}
}

// Add returns m + n. The currencies must match.
func (m Money) Add(n Money) (Money, error) {
	if err := m.assertSameCurrency(n); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(n.amount), currency: m.currency}, nil
}

// Sub returns m - n. The currencies must match.
func (m Money) Sub(n Money) (Money, error) {
	if err := m.assertSameCurrency(n); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(n.amount), currency: m.currency}, nil
}

// MulRate multiplies the amount by an exchange rate expressed in the target
// currency, returning the exact (unrounded) converted value. Callers round
// via Round once all conversion arithmetic is done.
func (m Money) MulRate(rate decimal.Decimal, targetCurrency string) (Money, error) {
	if err := validateCurrency(targetCurrency); err != nil {
		return Money{}, err
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return Money{}, fmt.Errorf("exchange rate must be positive, got %s", rate.String())
	}
	return Money{amount: m.amount.Mul(rate), currency: targetCurrency}, nil
}

// Neg returns the negated value.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

func (m Money) assertSameCurrency(n Money) error {
	if m.currency != n.currency {
		return fmt.Errorf("currency mismatch: %s vs %s", m.currency, n.currency)
	}
	return nil
}

// Equal reports whether two values have the same currency and equal amounts.
func (m Money) Equal(n Money) bool {
	return m.currency == n.currency && m.amount.Equal(n.amount)
}

// Cmp compares same-currency amounts: -1 if m < n, 0 if equal, +1 if m > n.
func (m Money) Cmp(n Money) (int, error) {
	if err := m.assertSameCurrency(n); err != nil {
		return 0, err
	}
	return m.amount.Cmp(n.amount), nil
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// String renders the rounded amount with its currency code, e.g. "1234.50 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.RoundBank(MinorUnits(m.currency)).StringFixed(MinorUnits(m.currency)), m.currency)
}
