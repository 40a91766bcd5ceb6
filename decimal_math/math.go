// Package decimal_math holds decimal helpers for display-side calculations. Quotes
// never go through here; they use the fixed point math in bonding_curve/math.
package decimal_math

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("argument out of domain")
)

// Pow10 returns 10^n exactly.
func Pow10(n int32) decimal.Decimal {
	return decimal.New(1, n)
}
