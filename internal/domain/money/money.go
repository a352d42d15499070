package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is given.
const DefaultCurrency = "USD"

var (
	ErrValidation       = errors.New("money: validation failed")
	ErrNegativeAmount   = fmt.Errorf("%w: amount must be zero or greater", ErrValidation)
	ErrInvalidCurrency  = fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	ErrCurrencyMismatch = fmt.Errorf("%w: currency mismatch", ErrValidation)
	ErrNegativeScalar   = fmt.Errorf("%w: multiplier must be zero or greater", ErrValidation)
)

// Money is an immutable non-negative amount in a single currency.
// The zero value is not valid; use New, USD or Zero.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func New(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	cur, err := normalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: cur}, nil
}

// USD is shorthand for New(amount, "USD").
func USD(amount decimal.Decimal) (Money, error) {
	return New(amount, DefaultCurrency)
}

// MustNew is like New but panics on invalid input. Intended for fixtures and constants.
func MustNew(amount, currency string) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	m, err := New(d, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func Zero(currency string) (Money, error) {
	return New(decimal.Zero, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

func (m Money) Multiply(scalar decimal.Decimal) (Money, error) {
	if scalar.IsNegative() {
		return Money{}, ErrNegativeScalar
	}
	return Money{amount: m.amount.Mul(scalar), currency: m.currency}, nil
}

// Equal compares by value, so 1.0 USD equals 1 USD.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Compare returns -1, 0 or 1. Amounts in different currencies are not comparable.
func (m Money) Compare(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

func normalizeCurrency(currency string) (string, error) {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if len(cur) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range cur {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return cur, nil
}
