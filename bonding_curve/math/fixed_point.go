package math

import (
	"errors"

	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
)

// Exp and Ln return one-sided bounds: RoundingDown never exceeds the exact value and
// RoundingUp is never below it. Callers pick the side that favours the pool.

var ErrLnDomain = errors.New("ln: argument must be at least one")

const maxSeriesTerms = 256

var (
	ln2Down *uint256.Int
	ln2Up   *uint256.Int

	// half of OneQ128, the bound for the reduced exp argument
	expReduceBound = new(uint256.Int).Rsh(bc.OneQ128, 1)
	// exponents above this overflow a Q128 result
	expMaxArg = new(uint256.Int).Lsh(uint256.NewInt(88), bc.Resolution)
)

func init() {
	var err error
	if ln2Down, err = lnRatio(uint256.NewInt(2), uint256.NewInt(1), bc.RoundingDown); err != nil {
		panic(err)
	}
	if ln2Up, err = lnRatio(uint256.NewInt(2), uint256.NewInt(1), bc.RoundingUp); err != nil {
		panic(err)
	}
}

// Ln2 returns a bound on ln(2) in Q128.
func Ln2(rounding bc.Rounding) *uint256.Int {
	if rounding == bc.RoundingUp {
		return ln2Up.Clone()
	}
	return ln2Down.Clone()
}

// Exp computes e^x for a non-negative Q128 argument.
//
// The argument is halved until it is at most 1/2, the Taylor series is summed with
// directed rounding and the result is squared back up.
func Exp(x *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	if x.IsZero() {
		return bc.OneQ128.Clone(), nil
	}
	if x.Gt(expMaxArg) {
		return nil, ErrArithmeticOverflow
	}

	var halvings uint
	y := x.Clone()
	for y.Gt(expReduceBound) {
		halvings++
		y = Shr(x, halvings, rounding)
	}

	sum := bc.OneQ128.Clone()
	term := bc.OneQ128.Clone()
	var err error
	for k := uint64(1); k <= maxSeriesTerms; k++ {
		if term, err = MulQ(term, y, rounding); err != nil {
			return nil, err
		}
		if term, err = Div(term, uint256.NewInt(k), rounding); err != nil {
			return nil, err
		}
		if sum, err = Add(sum, term); err != nil {
			return nil, err
		}
		if rounding == bc.RoundingDown && term.IsZero() {
			break
		}
		if rounding == bc.RoundingUp && term.LtUint64(2) {
			// the tail is bounded by the last term since y <= 1/2
			if sum, err = Add(sum, uint256.NewInt(2)); err != nil {
				return nil, err
			}
			break
		}
	}

	for i := uint(0); i < halvings; i++ {
		if sum, err = MulQ(sum, sum, rounding); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// ExpNeg computes e^-x as the reciprocal of e^x in Q128.
func ExpNeg(x *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	if x.Gt(expMaxArg) {
		// e^-88 < 3 * 2^-128
		if rounding == bc.RoundingUp {
			return uint256.NewInt(3), nil
		}
		return new(uint256.Int), nil
	}
	e, err := Exp(x, rounding.Opposite())
	if err != nil {
		return nil, err
	}
	return DivQ(bc.OneQ128, e, rounding)
}

// Ln computes ln(y) for a Q128 argument y >= 1.
func Ln(y *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	if y.Lt(bc.OneQ128) {
		return nil, ErrLnDomain
	}
	if y.BitLen() > 255 {
		return nil, ErrArithmeticOverflow
	}

	// y = 2^j * m with m in [1, 2)
	j := uint(y.BitLen() - 1 - bc.Resolution)
	den := new(uint256.Int).Lsh(bc.OneQ128, j)

	frac, err := lnRatio(y, den, rounding)
	if err != nil {
		return nil, err
	}
	if j == 0 {
		return frac, nil
	}
	whole, err := Mul(Ln2(rounding), uint256.NewInt(uint64(j)))
	if err != nil {
		return nil, err
	}
	return Add(whole, frac)
}

// LnRatio computes ln(num/den) for num >= den > 0.
func LnRatio(num, den *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	if den.IsZero() {
		return nil, ErrDivisionByZero
	}
	if num.Lt(den) {
		return nil, ErrLnDomain
	}
	ratio, err := DivQ(num, den, rounding)
	if err != nil {
		return nil, err
	}
	return Ln(ratio, rounding)
}

// lnRatio sums ln(num/den) = 2*atanh((num-den)/(num+den)) for den <= num < 2*den.
func lnRatio(num, den *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	diff, err := Sub(num, den)
	if err != nil {
		return nil, err
	}
	if diff.IsZero() {
		return new(uint256.Int), nil
	}
	total, err := Add(num, den)
	if err != nil {
		return nil, err
	}
	t, err := MulDiv(diff, bc.OneQ128, total, rounding)
	if err != nil {
		return nil, err
	}
	t2, err := MulQ(t, t, rounding)
	if err != nil {
		return nil, err
	}

	sum := t.Clone()
	power := t.Clone()
	for k := uint64(1); k <= maxSeriesTerms; k++ {
		if power, err = MulQ(power, t2, rounding); err != nil {
			return nil, err
		}
		term, err := Div(power, uint256.NewInt(2*k+1), rounding)
		if err != nil {
			return nil, err
		}
		if sum, err = Add(sum, term); err != nil {
			return nil, err
		}
		if rounding == bc.RoundingDown && term.IsZero() {
			break
		}
		if rounding == bc.RoundingUp && term.LtUint64(2) {
			// t^2 < 1/9 so the tail is below the last term
			if sum, err = Add(sum, uint256.NewInt(2)); err != nil {
				return nil, err
			}
			break
		}
	}
	return Shl(sum, 1)
}
