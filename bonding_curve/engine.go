package bonding_curve

import (
	"errors"

	"github.com/dmitro3/fairlaunch-go/bonding_curve/math"
	"github.com/holiman/uint256"
)

// SpotPrice returns the marginal price of the next token base unit.
func SpotPrice(cfg *CurveConfig, snap ReserveSnapshot) (Price, error) {
	if cfg == nil {
		return Price{}, quoteError("spotPrice", ErrInvalidCurveConfig, "nil config")
	}
	var (
		price Price
		err   error
	)
	switch cfg.Kind() {
	case CurveKindLinear:
		price, err = constantRatioSpotPrice(cfg, snap)
	case CurveKindExponential:
		price, err = exponentialSpotPrice(cfg, snap)
	case CurveKindLogarithmic:
		price, err = logarithmicSpotPrice(cfg, snap)
	case CurveKindSquareLaw:
		price, err = squareLawSpotPrice(cfg, snap)
	case CurveKindQuadratic:
		price, err = quadraticSpotPrice(cfg, snap)
	default:
		err = ErrUnknownCurveKind
	}
	if err != nil {
		return Price{}, quoteError("spotPrice", err, "%s curve, supply %d", cfg.Kind(), snap.TotalSupply)
	}
	return price, nil
}

// BuyCost returns the lamports needed to mint amount token base units, rounded up.
func BuyCost(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (uint64, error) {
	if cfg == nil {
		return 0, quoteError("buyCost", ErrInvalidCurveConfig, "nil config")
	}
	if amount == 0 {
		return 0, nil
	}
	cost, err := buyCost(cfg, snap, amount)
	if err != nil {
		return 0, quoteError("buyCost", err, "amount %d", amount)
	}
	return cost, nil
}

func buyCost(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, nil
	}
	var (
		cost *uint256.Int
		err  error
	)
	switch cfg.Kind() {
	case CurveKindLinear:
		cost, err = constantRatioBuyCost(cfg, snap, amount)
	case CurveKindExponential:
		cost, err = exponentialBuyCost(cfg, snap, amount)
	case CurveKindLogarithmic:
		cost, err = logarithmicBuyCost(cfg, snap, amount)
	case CurveKindSquareLaw:
		cost, err = squareLawBuyCost(cfg, snap, amount)
	case CurveKindQuadratic:
		cost, err = quadraticBuyCost(cfg, snap, amount)
	default:
		err = ErrUnknownCurveKind
	}
	if err != nil {
		return 0, err
	}
	return math.ToUint64(cost)
}

// SellProceeds returns the lamports released by burning amount token base units,
// rounded down. It never exceeds the snapshot's reserve balance.
func SellProceeds(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (uint64, error) {
	if cfg == nil {
		return 0, quoteError("sellProceeds", ErrInvalidCurveConfig, "nil config")
	}
	if amount == 0 {
		return 0, nil
	}
	proceeds, err := sellProceeds(cfg, snap, amount)
	if err != nil {
		return 0, quoteError("sellProceeds", err, "amount %d", amount)
	}
	return proceeds, nil
}

func sellProceeds(cfg *CurveConfig, snap ReserveSnapshot, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, nil
	}
	if amount > snap.TotalSupply {
		return 0, quoteError("sellProceeds", ErrInsufficientReserve, "amount %d exceeds total supply %d", amount, snap.TotalSupply)
	}
	var (
		proceeds *uint256.Int
		err      error
	)
	switch cfg.Kind() {
	case CurveKindLinear:
		proceeds, err = constantRatioSellProceeds(cfg, snap, amount)
	case CurveKindExponential:
		proceeds, err = exponentialSellProceeds(cfg, snap, amount)
	case CurveKindLogarithmic:
		proceeds, err = logarithmicSellProceeds(cfg, snap, amount)
	case CurveKindSquareLaw:
		proceeds, err = squareLawSellProceeds(cfg, snap, amount)
	case CurveKindQuadratic:
		proceeds, err = quadraticSellProceeds(cfg, snap, amount)
	default:
		err = ErrUnknownCurveKind
	}
	if err != nil {
		return 0, err
	}
	if proceeds.GtUint64(snap.ReserveBalance) {
		return 0, quoteError("sellProceeds", ErrInsufficientReserve, "proceeds %s exceed reserve balance %d", proceeds.Dec(), snap.ReserveBalance)
	}
	return proceeds.Uint64(), nil
}

// BuyAmountForCost returns the largest token amount whose BuyCost does not exceed
// reserveCost.
func BuyAmountForCost(cfg *CurveConfig, snap ReserveSnapshot, reserveCost uint64) (uint64, error) {
	if cfg == nil {
		return 0, quoteError("buyAmountForCost", ErrInvalidCurveConfig, "nil config")
	}
	affordable := func(amount uint64) (bool, error) {
		cost, err := buyCost(cfg, snap, amount)
		if errors.Is(err, ErrArithmeticOverflow) {
			// the cost is beyond any uint64 budget
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return cost <= reserveCost, nil
	}

	if reserveCost == 0 {
		return 0, nil
	}
	if _, err := buyCost(cfg, snap, 1); err != nil {
		return 0, quoteError("buyAmountForCost", err, "cost %d", reserveCost)
	}

	// grow an upper bound, then bisect
	lo, hi := uint64(0), uint64(1)
	for {
		ok, err := affordable(hi)
		if err != nil {
			return 0, quoteError("buyAmountForCost", err, "cost %d", reserveCost)
		}
		if !ok {
			break
		}
		lo = hi
		if hi == ^uint64(0) {
			return hi, nil
		}
		if hi > ^uint64(0)/2 {
			hi = ^uint64(0)
		} else {
			hi *= 2
		}
	}
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		ok, err := affordable(mid)
		if err != nil {
			return 0, quoteError("buyAmountForCost", err, "cost %d", reserveCost)
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// SellAmountForProceeds returns the smallest token amount whose SellProceeds reaches
// reserveProceeds.
func SellAmountForProceeds(cfg *CurveConfig, snap ReserveSnapshot, reserveProceeds uint64) (uint64, error) {
	if cfg == nil {
		return 0, quoteError("sellAmountForProceeds", ErrInvalidCurveConfig, "nil config")
	}
	if reserveProceeds == 0 {
		return 0, nil
	}
	if reserveProceeds > snap.ReserveBalance {
		return 0, quoteError("sellAmountForProceeds", ErrInsufficientReserve, "proceeds %d exceed reserve balance %d", reserveProceeds, snap.ReserveBalance)
	}

	maxAmount := snap.TotalSupply
	if cfg.Kind() == CurveKindLinear && snap.ReserveTokenUnits < maxAmount {
		maxAmount = snap.ReserveTokenUnits
	}

	// amounts whose proceeds would exceed the reserve count as enough; the answer is
	// checked below
	enough := func(amount uint64) (bool, error) {
		proceeds, err := sellProceeds(cfg, snap, amount)
		if errors.Is(err, ErrInsufficientReserve) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		return proceeds >= reserveProceeds, nil
	}

	ok, err := enough(maxAmount)
	if err != nil {
		return 0, quoteError("sellAmountForProceeds", err, "proceeds %d", reserveProceeds)
	}
	if !ok {
		return 0, quoteError("sellAmountForProceeds", ErrInsufficientReserve, "selling all %d tokens returns less than %d", maxAmount, reserveProceeds)
	}

	lo, hi := uint64(0), maxAmount
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		ok, err := enough(mid)
		if err != nil {
			return 0, quoteError("sellAmountForProceeds", err, "proceeds %d", reserveProceeds)
		}
		if ok {
			hi = mid
		} else {
			lo = mid
		}
	}

	if _, err := sellProceeds(cfg, snap, hi); err != nil {
		return 0, quoteError("sellAmountForProceeds", err, "proceeds %d", reserveProceeds)
	}
	return hi, nil
}
