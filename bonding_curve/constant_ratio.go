package bonding_curve

import (
	"errors"

	"github.com/dmitro3/fairlaunch-go/bonding_curve/math"
	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
)

// Constant reserve ratio curve with R = reserve balance, S = reserve token units and
// F = reserveRatio/100:
//
//	spot         = R / (S*F)
//	buyCost(a)   = R * ((1 + a/S)^(1/F) - 1)
//	sellValue(a) = R * (1 - (1 - a/S)^(1/F))
//
// While R or S is zero the configured initial price applies, see reservesEmpty.

// integerExponent returns 100/ratio when the ratio divides 100.
func integerExponent(ratio uint8) (uint, bool) {
	if bc.MaxReserveRatio%uint(ratio) != 0 {
		return 0, false
	}
	return bc.MaxReserveRatio / uint(ratio), true
}

func constantRatioSpotPrice(cfg *CurveConfig, snap ReserveSnapshot) (Price, error) {
	if snap.reservesEmpty() {
		return cfg.InitialPrice(), nil
	}
	num, err := math.Mul(uint256.NewInt(snap.ReserveBalance), uint256.NewInt(bc.MaxReserveRatio))
	if err != nil {
		return Price{}, err
	}
	den, err := math.Mul(uint256.NewInt(snap.ReserveTokenUnits), uint256.NewInt(uint64(cfg.ReserveRatio())))
	if err != nil {
		return Price{}, err
	}
	wad, err := math.MulDiv(num, bc.Wad, den, bc.RoundingDown)
	if err != nil {
		return Price{}, err
	}
	return NewPrice(wad), nil
}

func constantRatioBuyCost(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	a := uint256.NewInt(amount)
	if snap.reservesEmpty() {
		return math.MulDiv(a, cfg.InitialPrice().Wad(), bc.Wad, bc.RoundingUp)
	}
	r := uint256.NewInt(snap.ReserveBalance)
	s := uint256.NewInt(snap.ReserveTokenUnits)
	next, err := math.Add(s, a)
	if err != nil {
		return nil, err
	}

	if n, ok := integerExponent(cfg.ReserveRatio()); ok {
		cost, err := exactPowerDelta(r, next, s, n, bc.RoundingUp)
		if !errors.Is(err, math.ErrArithmeticOverflow) {
			return cost, err
		}
	}

	// upper bound on (next/s)^(1/F)
	lnRatio, err := math.LnRatio(next, s, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	exponent, err := scaleByInverseRatio(lnRatio, cfg.ReserveRatio(), bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	growth, err := math.Exp(exponent, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	return math.MulDiv(r, new(uint256.Int).Sub(growth, bc.OneQ128), bc.OneQ128, bc.RoundingUp)
}

func constantRatioSellProceeds(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	if amount > snap.ReserveTokenUnits {
		return nil, quoteError("sellProceeds", ErrInsufficientReserve, "amount %d exceeds reserve token units %d", amount, snap.ReserveTokenUnits)
	}
	r := uint256.NewInt(snap.ReserveBalance)
	if r.IsZero() {
		return new(uint256.Int), nil
	}
	if amount == snap.ReserveTokenUnits {
		return r, nil
	}
	s := uint256.NewInt(snap.ReserveTokenUnits)
	remaining := uint256.NewInt(snap.ReserveTokenUnits - amount)

	if n, ok := integerExponent(cfg.ReserveRatio()); ok {
		proceeds, err := exactSellProceeds(r, s, remaining, n)
		if !errors.Is(err, math.ErrArithmeticOverflow) {
			return proceeds, err
		}
	}

	// upper bound on (remaining/s)^(1/F) = e^(-ln(s/remaining)/F)
	lnRatio, err := math.LnRatio(s, remaining, bc.RoundingDown)
	if err != nil {
		return nil, err
	}
	exponent, err := scaleByInverseRatio(lnRatio, cfg.ReserveRatio(), bc.RoundingDown)
	if err != nil {
		return nil, err
	}
	left, err := math.ExpNeg(exponent, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	if !left.Lt(bc.OneQ128) {
		return new(uint256.Int), nil
	}
	return math.MulDiv(r, new(uint256.Int).Sub(bc.OneQ128, left), bc.OneQ128, bc.RoundingDown)
}

// exactPowerDelta returns r*(hi^n - lo^n)/lo^n.
func exactPowerDelta(r, hi, lo *uint256.Int, n uint, rounding bc.Rounding) (*uint256.Int, error) {
	hiN, err := math.PowInt(hi, n)
	if err != nil {
		return nil, err
	}
	loN, err := math.PowInt(lo, n)
	if err != nil {
		return nil, err
	}
	delta, err := math.Sub(hiN, loN)
	if err != nil {
		return nil, err
	}
	return math.MulDiv(r, delta, loN, rounding)
}

// exactSellProceeds returns r*(s^n - rem^n)/s^n rounded down.
func exactSellProceeds(r, s, remaining *uint256.Int, n uint) (*uint256.Int, error) {
	sN, err := math.PowInt(s, n)
	if err != nil {
		return nil, err
	}
	remN, err := math.PowInt(remaining, n)
	if err != nil {
		return nil, err
	}
	return math.MulDiv(r, new(uint256.Int).Sub(sN, remN), sN, bc.RoundingDown)
}

// scaleByInverseRatio multiplies x by 100/ratio.
func scaleByInverseRatio(x *uint256.Int, ratio uint8, rounding bc.Rounding) (*uint256.Int, error) {
	scaled, err := math.Mul(x, uint256.NewInt(bc.MaxReserveRatio))
	if err != nil {
		return nil, err
	}
	return math.Div(scaled, uint256.NewInt(uint64(ratio)), rounding)
}
