package bonding_curve

import (
	"github.com/dmitro3/fairlaunch-go/bonding_curve/math"
	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
)

// Exponential curve over the circulating supply s:
//
//	p(s)          = p0 * e^(k*s),  k = (p1 - p0) / targetRaise
//	buyCost(a)    = p0/k * (e^(k*(s+a)) - e^(k*s))
//	sellValue(a)  = p0/k * (e^(k*s) - e^(k*(s-a)))
//
// With this k the reserve raised at price p1 is exactly targetRaise.

// exponentialGrowth returns e^(k*x) in Q128.
func exponentialGrowth(cfg *CurveConfig, x uint64, rounding bc.Rounding) (*uint256.Int, error) {
	if x == 0 {
		return bc.OneQ128.Clone(), nil
	}
	delta := new(uint256.Int).Sub(cfg.FinalPrice().Wad(), cfg.InitialPrice().Wad())
	num, err := math.Mul(uint256.NewInt(x), delta)
	if err != nil {
		return nil, err
	}
	den, err := math.Mul(uint256.NewInt(cfg.TargetRaise()), bc.Wad)
	if err != nil {
		return nil, err
	}
	arg, err := math.MulDiv(num, bc.OneQ128, den, rounding)
	if err != nil {
		return nil, err
	}
	return math.Exp(arg, rounding)
}

// exponentialValue converts a Q128 growth difference into lamports: p0*T*diff/(p1-p0).
func exponentialValue(cfg *CurveConfig, diff *uint256.Int, rounding bc.Rounding) (*uint256.Int, error) {
	scale, err := math.Mul(cfg.InitialPrice().Wad(), uint256.NewInt(cfg.TargetRaise()))
	if err != nil {
		return nil, err
	}
	delta := new(uint256.Int).Sub(cfg.FinalPrice().Wad(), cfg.InitialPrice().Wad())
	den, err := math.Mul(delta, bc.OneQ128)
	if err != nil {
		return nil, err
	}
	return math.MulDiv(scale, diff, den, rounding)
}

func exponentialSpotPrice(cfg *CurveConfig, snap ReserveSnapshot) (Price, error) {
	growth, err := exponentialGrowth(cfg, snap.TotalSupply, bc.RoundingDown)
	if err != nil {
		return Price{}, err
	}
	wad, err := math.MulQ(cfg.InitialPrice().Wad(), growth, bc.RoundingDown)
	if err != nil {
		return Price{}, err
	}
	return NewPrice(wad), nil
}

func exponentialBuyCost(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	next, ok := addU64(snap.TotalSupply, amount)
	if !ok {
		return nil, ErrArithmeticOverflow
	}
	hi, err := exponentialGrowth(cfg, next, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	lo, err := exponentialGrowth(cfg, snap.TotalSupply, bc.RoundingDown)
	if err != nil {
		return nil, err
	}
	diff, err := math.Sub(hi, lo)
	if err != nil {
		return nil, err
	}
	return exponentialValue(cfg, diff, bc.RoundingUp)
}

func exponentialSellProceeds(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	hi, err := exponentialGrowth(cfg, snap.TotalSupply, bc.RoundingDown)
	if err != nil {
		return nil, err
	}
	lo, err := exponentialGrowth(cfg, snap.TotalSupply-amount, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	if !lo.Lt(hi) {
		return new(uint256.Int), nil
	}
	return exponentialValue(cfg, new(uint256.Int).Sub(hi, lo), bc.RoundingDown)
}
