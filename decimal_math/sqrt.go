package decimal_math

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Sqrt computes the square root of x with a big.Float of prec bits.
func Sqrt(x decimal.Decimal, prec uint) (decimal.Decimal, error) {
	if x.IsNegative() {
		return decimal.Zero, fmt.Errorf("sqrt(%s): %w", x, ErrDomain)
	}
	return decimal.NewFromString(
		new(big.Float).SetPrec(prec).Sqrt(
			x.BigFloat().SetPrec(prec),
		).Text('f', -1),
	)
}
