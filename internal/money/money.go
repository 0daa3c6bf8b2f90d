// Package money provides the fixed-point decimal type used for every
// monetary value in the system.  Amounts are backed by an arbitrary
// precision decimal so that pricing arithmetic is exact; binary
// floating point never appears in the pricing path.  Rounding to
// currency precision (two decimal places, half-up) happens only at
// persistence and serialization boundaries.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyScale is the number of decimal places used when a Money value
// crosses a persistence or display boundary.
const CurrencyScale = 2

// Money is an exact decimal amount.  The zero value is 0.
type Money struct {
	d decimal.Decimal
}

// Zero returns a Money of value 0.
func Zero() Money { return Money{} }

// FromString parses a decimal string such as "45.50" into a Money.
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return Money{d: d}, nil
}

// MustFromString is FromString but panics on malformed input.  It is
// intended for constants and tests.
func MustFromString(s string) Money {
	m, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromInt returns a Money holding the given whole amount.
func FromInt(n int64) Money { return Money{d: decimal.NewFromInt(n)} }

// FromDecimal wraps an existing decimal value.
func FromDecimal(d decimal.Decimal) Money { return Money{d: d} }

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// MulInt returns m × n, typically quantity times unit price.
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

// PercentOf returns m × (pct/100) without any intermediate rounding.
// pct is itself a Money so percentages stay in exact decimal form.
func (m Money) PercentOf(pct Money) Money {
	return Money{d: m.d.Mul(pct.d).Div(decimal.NewFromInt(100))}
}

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.d.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.d.IsNegative() }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// RoundCurrency rounds to CurrencyScale decimal places using half-up
// rounding (halves round away from zero).  This is the single rounding
// rule used across the codebase.
func (m Money) RoundCurrency() Money {
	return Money{d: m.d.Round(CurrencyScale)}
}

// String renders the exact amount without forcing a scale.
func (m Money) String() string { return m.d.String() }

// StringFixed renders the amount rounded to currency precision, e.g.
// "51.92".  Used for API responses and persisted columns.
func (m Money) StringFixed() string {
	return m.d.Round(CurrencyScale).StringFixed(CurrencyScale)
}

// MarshalJSON serializes the amount as a JSON string at currency
// precision so clients never receive binary floats.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("money: unmarshal %s: %w", b, err)
	}
	m.d = d
	return nil
}

// Value implements driver.Valuer.  Amounts are stored in DECIMAL
// columns as strings rounded to currency precision.
func (m Money) Value() (driver.Value, error) {
	return m.StringFixed(), nil
}

// Scan implements sql.Scanner for DECIMAL columns, which the MySQL
// driver returns as []byte or string.
func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		m.d = decimal.Decimal{}
		return nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("money: scan %q: %w", v, err)
		}
		m.d = d
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("money: scan %q: %w", v, err)
		}
		m.d = d
		return nil
	case int64:
		m.d = decimal.NewFromInt(v)
		return nil
	case float64:
		// DECIMAL columns normally arrive as []byte; floats can still
		// show up from expressions like SUM() over some drivers.
		m.d = decimal.NewFromFloat(v)
		return nil
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
}
