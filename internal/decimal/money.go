package decimal

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// Hundred is decimal 100, used for percentage math
var Hundred = decimal.NewFromInt(100)

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// FromFloat creates decimal from float
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// FromString parses decimal from string
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round2 rounds to 2 fractional digits, half away from zero.
// Every monetary formula boundary rounds through here; changing the
// rounding order changes cent-level results.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent computes amount * (rate/100), rounded to 2 places
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(rate).Div(Hundred))
}

// Sum sums a slice of decimals without rounding
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// Equal2 compares two amounts at 2 fractional digits
func Equal2(a, b decimal.Decimal) bool {
	return Round2(a).Equal(Round2(b))
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}
