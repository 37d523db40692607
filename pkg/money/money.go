// Package money provides the fixed-point rounding rules used for payroll amounts.
package money

import (
	"github.com/shopspring/decimal"
)

var (
	cent = decimal.New(1, -2)
	five = decimal.NewFromInt(5)
)

// Zero is the zero amount.
var Zero = decimal.Zero

// RoundTwoPlaceUsingThirdDigit rounds to two decimal places by looking only at
// the third decimal digit. Digits past the third are dropped first, then a
// third digit of 5 or more moves the amount one cent away from zero.
//
//	0.025 -> 0.03, 0.015 -> 0.02, -0.015 -> -0.02, -0.0249 -> -0.02
func RoundTwoPlaceUsingThirdDigit(d decimal.Decimal) decimal.Decimal {
	three := d.Truncate(3)
	two := three.Truncate(2)
	third := three.Sub(two).Shift(3).Abs()

	if third.LessThan(five) {
		return two
	}
	if d.IsNegative() {
		return two.Sub(cent)
	}
	return two.Add(cent)
}

// TruncateTwoPlace drops everything past the second decimal place, toward zero.
func TruncateTwoPlace(d decimal.Decimal) decimal.Decimal {
	return d.Truncate(2)
}

// Format renders an amount with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Parse parses a decimal string such as "12.34".
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustParse is like Parse but panics on malformed input. Use it for constants only.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
