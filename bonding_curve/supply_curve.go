package bonding_curve

import (
	"github.com/dmitro3/fairlaunch-go/bonding_curve/math"
	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
)

// Supply curves are what the launchpad program executes. They depend on the total
// supply s alone. With d = reserveRatioBps*10000 and k = reserveRatioBps/10000:
//
//	square law  buyCost(a) = ((s+a)^2 - s^2) / 2d   sellValue(a) = (s^2 - (s-a)^2) / 2d
//	quadratic   buyCost(a) = k*s*a + k*a^2/2        sellValue(a) = k*s*a - k*a^2/2
//
// The program floors every division. Buy costs here round up instead, so a square law
// cost can be one lamport above the program's and the quadratic half unit is charged.
// Square law sells floor like the program. Quadratic sells keep the half unit the
// program pays out.

func supplyDenominator(cfg *CurveConfig) *uint256.Int {
	return uint256.NewInt(uint64(cfg.ReserveRatioBps()) * bc.MaxBasisPoint)
}

func supplyK(cfg *CurveConfig) *uint256.Int {
	return uint256.NewInt(uint64(cfg.ReserveRatioBps() / bc.MaxBasisPoint))
}

// grownSupply returns s+a, failing where the program's u64 supply would overflow.
func grownSupply(snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	next, err := math.Add(uint256.NewInt(snap.TotalSupply), uint256.NewInt(amount))
	if err != nil {
		return nil, err
	}
	if next.Gt(bc.U64Max) {
		return nil, ErrArithmeticOverflow
	}
	return next, nil
}

func squareLawSpotPrice(cfg *CurveConfig, snap ReserveSnapshot) (Price, error) {
	wad, err := math.MulDiv(uint256.NewInt(snap.TotalSupply), bc.Wad, supplyDenominator(cfg), bc.RoundingDown)
	if err != nil {
		return Price{}, err
	}
	return NewPrice(wad), nil
}

// squaresDelta returns hi^2 - lo^2.
func squaresDelta(hi, lo *uint256.Int) (*uint256.Int, error) {
	hi2, err := math.Mul(hi, hi)
	if err != nil {
		return nil, err
	}
	lo2, err := math.Mul(lo, lo)
	if err != nil {
		return nil, err
	}
	return math.Sub(hi2, lo2)
}

func squareLawBuyCost(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	next, err := grownSupply(snap, amount)
	if err != nil {
		return nil, err
	}
	delta, err := squaresDelta(next, uint256.NewInt(snap.TotalSupply))
	if err != nil {
		return nil, err
	}
	return math.Div(delta, new(uint256.Int).Lsh(supplyDenominator(cfg), 1), bc.RoundingUp)
}

func squareLawSellProceeds(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	delta, err := squaresDelta(uint256.NewInt(snap.TotalSupply), uint256.NewInt(snap.TotalSupply-amount))
	if err != nil {
		return nil, err
	}
	return math.Div(delta, new(uint256.Int).Lsh(supplyDenominator(cfg), 1), bc.RoundingDown)
}

func quadraticSpotPrice(cfg *CurveConfig, snap ReserveSnapshot) (Price, error) {
	perUnit, err := math.Mul(supplyK(cfg), uint256.NewInt(snap.TotalSupply))
	if err != nil {
		return Price{}, err
	}
	wad, err := math.Mul(perUnit, bc.Wad)
	if err != nil {
		return Price{}, err
	}
	return NewPrice(wad), nil
}

// quadraticTerms returns k*s*a and k*a^2/2 rounded as asked.
func quadraticTerms(cfg *CurveConfig, snap ReserveSnapshot, amount uint64, rounding bc.Rounding) (*uint256.Int, *uint256.Int, error) {
	k, a := supplyK(cfg), uint256.NewInt(amount)
	ka, err := math.Mul(k, a)
	if err != nil {
		return nil, nil, err
	}
	linear, err := math.Mul(ka, uint256.NewInt(snap.TotalSupply))
	if err != nil {
		return nil, nil, err
	}
	kaa, err := math.Mul(ka, a)
	if err != nil {
		return nil, nil, err
	}
	half, err := math.Div(kaa, uint256.NewInt(2), rounding)
	if err != nil {
		return nil, nil, err
	}
	return linear, half, nil
}

func quadraticBuyCost(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	if _, err := grownSupply(snap, amount); err != nil {
		return nil, err
	}
	linear, half, err := quadraticTerms(cfg, snap, amount, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	return math.Add(linear, half)
}

func quadraticSellProceeds(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (*uint256.Int, error) {
	linear, half, err := quadraticTerms(cfg, snap, amount, bc.RoundingUp)
	if err != nil {
		return nil, err
	}
	return math.Sub(linear, half)
}
