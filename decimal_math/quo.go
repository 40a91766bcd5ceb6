package decimal_math

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Quo is the truncated integer quotient of the integer parts of x and y.
func Quo(x, y decimal.Decimal) (decimal.Decimal, error) {
	if y.Truncate(0).IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return decimal.NewFromBigInt(new(big.Int).Quo(x.BigInt(), y.BigInt()), 0), nil
}

// Lerp returns a + (b-a)*t/total rounded to scale digits.
func Lerp(a, b, t, total decimal.Decimal, scale int32) (decimal.Decimal, error) {
	if total.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.Add(b.Sub(a).Mul(t).DivRound(total, scale+2)).Round(scale), nil
}
