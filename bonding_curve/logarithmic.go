package bonding_curve

import (
	"github.com/dmitro3/fairlaunch-go/bonding_curve/math"
	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
)

// Logarithmic curve over the circulating supply s:
//
//	p(s)       = p0 + m*ln(1 + s/h)
//	buyCost(a) = p0*a + m*(G(s+a) - G(s)),  G(x) = (h+x)*ln(1+x/h) - x
//
// h and m are fixed by NewCurveConfig.

// logIntegral returns G(x) in Q128 token units. A lower bound is clamped at zero.
func logIntegral(cfg *CurveConfig, x uint64, rounding bc.Rounding) (*uint256.Int, error) {
	if x == 0 {
		return new(uint256.Int), nil
	}
	h := cfg.logHorizon
	hx, err := math.Add(h, uint256.NewInt(x))
	if err != nil {
		return nil, err
	}
	ln, err := math.LnRatio(hx, h, rounding)
	if err != nil {
		return nil, err
	}
	area, err := math.Mul(hx, ln)
	if err != nil {
		return nil, err
	}
	xq := new(uint256.Int).Lsh(uint256.NewInt(x), bc.Resolution)
	if area.Lt(xq) {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Sub(area, xq), nil
}

// logarithmicValue returns p0*a + m*dG in Q128 lamports.
func logarithmicValue(cfg *CurveConfig, amount uint64, dG *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	flat, err := math.Mul(uint256.NewInt(amount), cfg.InitialPrice().Wad())
	if err != nil {
		return nil, err
	}
	base, err := math.MulDiv(flat, bc.OneQ128, bc.Wad, rounding)
	if err != nil {
		return nil, err
	}
	curve, err := math.MulDiv(cfg.logSlope, dG, bc.Wad, rounding)
	if err != nil {
		return nil, err
	}
	return math.Add(base, curve)
}

func logarithmicSpotPrice(cfg *CurveConfig, snap ReserveSnapshot) (Price, error) {
	if snap.TotalSupply == 0 {
		return cfg.InitialPrice(), nil
	}
	hx, err := math.Add(cfg.logHorizon, uint256.NewInt(snap.TotalSupply))
	if err != nil {
		return Price{}, err
	}
	ln, err := math.LnRatio(hx, cfg.logHorizon, bc.RoundingDown)
	if err != nil {
		return Price{}, err
	}
	rise, err := math.MulQ(cfg.logSlope, ln, bc.RoundingDown)
	if err != nil {
		return Price{}, err
	}
	wad, err := math.Add(cfg.InitialPrice().Wad(), rise)
	if err != nil {
		return Price{}, err
	}
	return NewPrice(wad), nil
}

func logarithmicBuyCost(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	next, ok := addU64(snap.TotalSupply, amount)
	if !ok {
		return nil, ErrArithmeticOverflow
	}
	hi, err := logIntegral(cfg, next, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	lo, err := logIntegral(cfg, snap.TotalSupply, bc.RoundingDown)
	if err != nil {
		return nil, err
	}
	dG := new(uint256.Int)
	if lo.Lt(hi) {
		dG.Sub(hi, lo)
	}
	value, err := logarithmicValue(cfg, amount, dG, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	return math.FromQ(value, bc.RoundingUp), nil
}

func logarithmicSellProceeds(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	hi, err := logIntegral(cfg, snap.TotalSupply, bc.RoundingDown)
	if err != nil {
		return nil, err
	}
	lo, err := logIntegral(cfg, snap.TotalSupply-amount, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	dG := new(uint256.Int)
	if lo.Lt(hi) {
		dG.Sub(hi, lo)
	}
	value, err := logarithmicValue(cfg, amount, dG, bc.RoundingDown)
	if err != nil {
		return nil, err
	}
	return math.FromQ(value, bc.RoundingDown), nil
}
