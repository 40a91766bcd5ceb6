package math

import (
	"errors"

	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
)

var (
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	ErrDivisionByZero     = errors.New("division by zero")
)

func Add(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

// Sub fails rather than wrapping when b > a.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func Mul(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func Div(a, b *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrDivisionByZero
	}
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(a, b, r)
	if rounding == bc.RoundingUp && !r.IsZero() {
		return Add(q, uint256.NewInt(1))
	}
	return q, nil
}

func Shl(a *uint256.Int, n uint) (*uint256.Int, error) {
	if a.IsZero() {
		return new(uint256.Int), nil
	}
	if uint(a.BitLen())+n > 256 {
		return nil, ErrArithmeticOverflow
	}
	return new(uint256.Int).Lsh(a, n), nil
}

// Shr divides by 2^n.
func Shr(a *uint256.Int, n uint, rounding bc.Rounding) *uint256.Int {
	z := new(uint256.Int).Rsh(a, n)
	if rounding == bc.RoundingUp && !new(uint256.Int).Lsh(z, n).Eq(a) {
		z.AddUint64(z, 1)
	}
	return z
}

// PowInt computes x^n exactly.
func PowInt(x *uint256.Int, n uint) (*uint256.Int, error) {
	result := uint256.NewInt(1)
	base := x.Clone()
	for n > 0 {
		var err error
		if n&1 == 1 {
			if result, err = Mul(result, base); err != nil {
				return nil, err
			}
		}
		n >>= 1
		if n > 0 {
			if base, err = Mul(base, base); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func ToUint64(x *uint256.Int) (uint64, error) {
	v, overflow := x.Uint64WithOverflow()
	if overflow {
		return 0, ErrArithmeticOverflow
	}
	return v, nil
}
