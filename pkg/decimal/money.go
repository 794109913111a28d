package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	monthsPerYear   = decimal.NewFromInt(12)
	manwonPerEok    = decimal.NewFromInt(10_000)      // 1억원 = 10,000만원
	manwonPerJo     = decimal.NewFromInt(100_000_000) // 1조원 = 100,000,000만원
	defaultJoPlaces = int32(1)
)

// Money is an amount in 만원 (10,000 won), the unit every ledger figure uses.
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// NewMoneyFromString creates a new Money instance from a string
func NewMoneyFromString(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// FromTrillionWon converts an amount in 조원 to 만원.
func FromTrillionWon(jo float64) Money {
	return Money{decimal.NewFromFloat(jo).Mul(manwonPerJo)}
}

// Round rounds to whole 만원.
func (m Money) Round() Money {
	return Money{m.Decimal.Round(0)}
}

// Annual converts a monthly amount to annual
func (m Money) Annual() Money {
	return Money{m.Decimal.Mul(monthsPerYear)}
}

// Monthly converts an annual amount to monthly
func (m Money) Monthly() Money {
	return Money{m.Decimal.Div(monthsPerYear)}
}

// ApplyRate returns the share of the amount given by rate, e.g. a contribution.
func (m Money) ApplyRate(rate decimal.Decimal) Money {
	return Money{m.Decimal.Mul(rate)}
}

// Add adds another Money amount
func (m Money) Add(other Money) Money {
	return Money{m.Decimal.Add(other.Decimal)}
}

// Sub subtracts another Money amount
func (m Money) Sub(other Money) Money {
	return Money{m.Decimal.Sub(other.Decimal)}
}

// Mul multiplies by a decimal factor
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{m.Decimal.Mul(factor)}
}

// Div divides by a decimal factor. Division by zero yields zero.
func (m Money) Div(factor decimal.Decimal) Money {
	if factor.IsZero() {
		return Zero()
	}
	return Money{m.Decimal.Div(factor)}
}

// GreaterThan checks if this amount is greater than another
func (m Money) GreaterThan(other Money) bool {
	return m.Decimal.GreaterThan(other.Decimal)
}

// LessThan checks if this amount is less than another
func (m Money) LessThan(other Money) bool {
	return m.Decimal.LessThan(other.Decimal)
}

// Equal checks if this amount equals another
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// Min returns the minimum of two Money amounts
func Min(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the maximum of two Money amounts
func Max(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Zero returns a zero Money amount
func Zero() Money {
	return Money{decimal.Zero}
}

// Trillions converts to 조원.
func (m Money) Trillions() decimal.Decimal {
	return m.Decimal.Div(manwonPerJo)
}

// HundredMillions converts to 억원.
func (m Money) HundredMillions() decimal.Decimal {
	return m.Decimal.Div(manwonPerEok)
}

// String returns whole 만원 without grouping.
func (m Money) String() string {
	return m.Decimal.StringFixed(0)
}

// Format renders whole 만원 with thousands separators, e.g. "1,234만원".
func (m Money) Format() string {
	return GroupDigits(m.Decimal.StringFixed(0)) + "만원"
}

// FormatTrillion renders the amount in 조원 with one decimal, e.g. "1,823.0조원".
func (m Money) FormatTrillion() string {
	return GroupDigits(m.Trillions().StringFixed(defaultJoPlaces)) + "조원"
}

// GroupDigits inserts thousands separators into a plain decimal string.
func GroupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
