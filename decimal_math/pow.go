package decimal_math

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// guard digits carried through ln and exp before the final rounding
const guard = 8

// Pow returns base^exponent to scale digits. Integer exponents are exact before
// rounding; fractional ones go through exp(exponent * ln(base)) and need base > 0.
func Pow(base, exponent decimal.Decimal, scale int32) (decimal.Decimal, error) {
	if exponent.IsInteger() {
		if base.IsZero() && !exponent.IsPositive() {
			return decimal.Zero, fmt.Errorf("0^%s: %w", exponent, ErrDomain)
		}
		if exponent.IsNegative() {
			return decimal.NewFromInt(1).DivRound(base.Pow(exponent.Neg()), scale), nil
		}
		return base.Pow(exponent).Round(scale), nil
	}
	if base.IsZero() && exponent.IsPositive() {
		return decimal.Zero, nil
	}
	if !base.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s^%s: %w", base, exponent, ErrDomain)
	}

	ln, err := Ln(base, scale+guard)
	if err != nil {
		return decimal.Zero, err
	}
	out, err := Exp(ln.Mul(exponent).Round(scale+guard), scale+guard)
	if err != nil {
		return decimal.Zero, err
	}
	return out.Round(scale), nil
}
