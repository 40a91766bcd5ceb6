package math

import (
	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
)

// MulDiv returns x*y/denominator using a 512-bit intermediate product.
func MulDiv(x, y, denominator *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrDivisionByZero
	}
	if x.IsZero() || y.IsZero() {
		return new(uint256.Int), nil
	}
	q, overflow := new(uint256.Int).MulDivOverflow(x, y, denominator)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	if rounding == bc.RoundingUp && !new(uint256.Int).MulMod(x, y, denominator).IsZero() {
		return Add(q, uint256.NewInt(1))
	}
	return q, nil
}

// MulQ multiplies two Q128 numbers.
func MulQ(x, y *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	return MulDiv(x, y, bc.OneQ128, rounding)
}

// DivQ returns num/den as a Q128 number.
func DivQ(num, den *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	return MulDiv(num, bc.OneQ128, den, rounding)
}

// FromQ drops the fractional part of a Q128 number.
func FromQ(x *uint256.Int, rounding bc.Rounding) *uint256.Int {
	return Shr(x, bc.Resolution, rounding)
}
