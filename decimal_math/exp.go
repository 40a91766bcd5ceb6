package decimal_math

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// Exp returns e^x to scale digits.
func Exp(x decimal.Decimal, scale int32) (decimal.Decimal, error) {
	out, err := x.ExpTaylor(scale)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exp(%s): %w", x, err)
	}
	return out, nil
}

// Ln returns the natural logarithm of x to scale digits. x must be positive.
func Ln(x decimal.Decimal, scale int32) (decimal.Decimal, error) {
	if !x.IsPositive() {
		return decimal.Zero, fmt.Errorf("ln(%s): %w", x, ErrDomain)
	}
	work := scale + guard

	// x = m * 2^k with m in [1, 2)
	k := int64(0)
	m := x
	for m.GreaterThanOrEqual(two) {
		m = m.DivRound(two, work)
		k++
	}
	for m.LessThan(one) {
		m = m.Mul(two)
		k--
	}

	out := atanhSeries(m.Sub(one).DivRound(m.Add(one), work), work)
	if k != 0 {
		ln2 := atanhSeries(one.DivRound(decimal.NewFromInt(3), work), work)
		out = out.Add(ln2.Mul(decimal.NewFromInt(k)))
	}
	return out.Round(scale), nil
}

// atanhSeries returns 2*atanh(z) = ln((1+z)/(1-z)) for |z| < 1/3.
func atanhSeries(z decimal.Decimal, scale int32) decimal.Decimal {
	eps := decimal.New(1, -scale)
	z2 := z.Mul(z).Round(scale)
	term := z
	sum := z
	for n := int64(3); ; n += 2 {
		term = term.Mul(z2).Round(scale)
		step := term.DivRound(decimal.NewFromInt(n), scale)
		if step.Abs().LessThan(eps) {
			break
		}
		sum = sum.Add(step)
	}
	return sum.Mul(two)
}
