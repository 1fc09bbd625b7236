// Package core provides money parsing and handling utilities.
//
// Amounts are kept as signed integer cents; decimal strings are parsed
// and formatted with shopspring/decimal so no float rounding leaks into
// stored values.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

type Money struct {
	Cents int64
}

func Cents(c int64) Money {
	return Money{Cents: c}
}

// ParseMoney converts a signed decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half away from zero on the third decimal place.
//
//	ParseMoney("12.345") -> 1235 cents
//	ParseMoney("-7,5")   -> -750 cents
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsInteger() || cents.Abs().GreaterThan(decimal.NewFromInt(MaxAmountCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// MaxAmountCents bounds any single amount to 12 digits (9999999999.99).
// Running sums of bounded amounts stay far inside int64, so SQLite never
// promotes a balance column to REAL.
const MaxAmountCents = 999_999_999_999

// ParseDecimalToCents converts a strictly positive decimal string to cents.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	m, err := ParseMoney(s)
	if err != nil {
		return 0, err
	}
	if m.Cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// Validate requires a strictly positive amount (targets, planned budgets).
func (m Money) Validate() error {
	if m.Cents <= 0 || !m.InRange() {
		return ErrInvalidAmount
	}
	return nil
}

// InRange reports whether |m| does not exceed MaxAmountCents.
func (m Money) InRange() bool {
	return m.Cents >= -MaxAmountCents && m.Cents <= MaxAmountCents
}

func (m Money) IsZero() bool { return m.Cents == 0 }

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return m.Neg()
	}
	return m
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with two decimals, e.g. "-12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// PercentOf returns m / total * 100, or 0 when total is not positive.
func (m Money) PercentOf(total Money) float64 {
	if total.Cents <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(total.Cents)).Mul(hundred)
	return pct.InexactFloat64()
}

// MarshalText lets Money travel as a decimal string in JSON payloads.
func (m Money) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalText(b []byte) error {
	parsed, err := ParseMoney(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
