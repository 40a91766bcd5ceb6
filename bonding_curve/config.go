package bonding_curve

import (
	"strings"

	"github.com/dmitro3/fairlaunch-go/bonding_curve/math"
	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
)

type CurveKind uint8

const (
	// CurveKindLinear is the constant reserve ratio curve. A ratio of 100 gives a flat
	// price, 50 a price linear in supply.
	CurveKindLinear CurveKind = 0
	// CurveKindExponential grows the price as p0*e^(k*s).
	CurveKindExponential CurveKind = 1
	// CurveKindLogarithmic grows the price as p0 + m*ln(1+s/h).
	CurveKindLogarithmic CurveKind = 2
	// CurveKindSquareLaw is the launchpad program's curve: the price is
	// supply/(reserveRatioBps*10000) lamports per base unit.
	CurveKindSquareLaw CurveKind = 3
	// CurveKindQuadratic is the program's quadratic variant with
	// k = reserveRatioBps/10000 in integer division.
	CurveKindQuadratic CurveKind = 4
)

// PricesBySupply reports whether the curve is priced by total supply alone, with the
// reserve ratio in basis points.
func (k CurveKind) PricesBySupply() bool {
	return k == CurveKindSquareLaw || k == CurveKindQuadratic
}

func (k CurveKind) String() string {
	switch k {
	case CurveKindLinear:
		return "linear"
	case CurveKindExponential:
		return "exponential"
	case CurveKindLogarithmic:
		return "logarithmic"
	case CurveKindSquareLaw:
		return "square-law"
	case CurveKindQuadratic:
		return "quadratic"
	default:
		return "unknown"
	}
}

func ParseCurveKind(s string) (CurveKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return CurveKindLinear, nil
	case "exponential":
		return CurveKindExponential, nil
	case "logarithmic":
		return CurveKindLogarithmic, nil
	case "square-law", "squarelaw":
		return CurveKindSquareLaw, nil
	case "quadratic":
		return CurveKindQuadratic, nil
	}
	return 0, invalidConfig("kind", s, ErrUnknownCurveKind.Error())
}

// CurveParams are the deployment parameters of a curve.
type CurveParams struct {
	Kind          CurveKind
	InitialPrice  Price
	FinalPrice    Price
	TargetRaise   uint64 // lamports
	ReserveRatio  uint8  // percent, (0, 100]
	TokenDecimals uint8

	// ReserveRatioBps is the on-chain ratio used by the supply curves. Zero means
	// ReserveRatio*100, or shared.DefaultReserveRatio when that is zero too.
	ReserveRatioBps uint16
}

// CurveConfig is a validated, immutable CurveParams.
type CurveConfig struct {
	params CurveParams

	// logarithmic curve horizon in token base units and slope per unit of ln
	logHorizon *uint256.Int
	logSlope   *uint256.Int
}

// NewCurveConfig validates params. Any violation is returned as *InvalidCurveConfigError.
//
// Example:
//
// initial, _ := PriceFromSOLPerToken(decimal.RequireFromString("0.005"), 6)
//
// final, _ := PriceFromSOLPerToken(decimal.RequireFromString("0.02"), 6)
//
// cfg, err := NewCurveConfig(CurveParams{
//
//	Kind:          CurveKindLinear,
//	InitialPrice:  initial,
//	FinalPrice:    final,
//	TargetRaise:   100 * LamportsPerSOL,
//	ReserveRatio:  50,
//	TokenDecimals: 6,
//
// })
func NewCurveConfig(params CurveParams) (*CurveConfig, error) {
	if params.ReserveRatio > bc.MaxReserveRatio {
		return nil, invalidConfig("reserveRatio", params.ReserveRatio, "must be at most 100")
	}
	if params.Kind.PricesBySupply() {
		if params.ReserveRatioBps == 0 {
			params.ReserveRatioBps = uint16(params.ReserveRatio) * (bc.MaxBasisPoint / bc.MaxReserveRatio)
		}
		if params.ReserveRatioBps == 0 {
			params.ReserveRatioBps = bc.DefaultReserveRatio
		}
		if params.Kind == CurveKindQuadratic && params.ReserveRatioBps < bc.MaxBasisPoint {
			return nil, invalidConfig("reserveRatioBps", params.ReserveRatioBps, "quadratic k truncates to 0 below 10000")
		}
	} else if params.ReserveRatio == 0 {
		return nil, invalidConfig("reserveRatio", params.ReserveRatio, "must be greater than 0")
	}
	if params.FinalPrice.Cmp(params.InitialPrice) <= 0 {
		return nil, invalidConfig("finalPrice", params.FinalPrice, "must be greater than initialPrice "+params.InitialPrice.String())
	}
	if params.TargetRaise == 0 {
		return nil, invalidConfig("targetRaise", params.TargetRaise, "must be greater than 0")
	}
	if params.TokenDecimals > bc.MaxTokenDecimals {
		return nil, invalidConfig("tokenDecimals", params.TokenDecimals, "must be at most 18")
	}
	if params.FinalPrice.wad.Gt(bc.U128Max) {
		return nil, invalidConfig("finalPrice", params.FinalPrice, "does not fit in 128 bits")
	}

	cfg := &CurveConfig{params: params}
	switch params.Kind {
	case CurveKindLinear:
	case CurveKindExponential:
		if params.InitialPrice.IsZero() {
			return nil, invalidConfig("initialPrice", params.InitialPrice, "exponential curve needs a positive initial price")
		}
	case CurveKindLogarithmic:
		if err := cfg.deriveLogarithmic(); err != nil {
			return nil, err
		}
	case CurveKindSquareLaw, CurveKindQuadratic:
	default:
		return nil, invalidConfig("kind", params.Kind, ErrUnknownCurveKind.Error())
	}
	return cfg, nil
}

// deriveLogarithmic fixes h and m so that p(h) ~= finalPrice and the reserve raised
// over [0, h] ~= targetRaise:
//
//	m = (p1 - p0) / ln2
//	h = T / (p0 + 2*(p1 - p0) - m)
func (c *CurveConfig) deriveLogarithmic() error {
	p0 := c.params.InitialPrice.Wad()
	delta := new(uint256.Int).Sub(c.params.FinalPrice.Wad(), p0)

	slope, err := math.MulDiv(delta, bc.OneQ128, math.Ln2(bc.RoundingUp), bc.RoundingDown)
	if err != nil {
		return invalidConfig("finalPrice", c.params.FinalPrice, err.Error())
	}
	avg := new(uint256.Int).Add(p0, new(uint256.Int).Lsh(delta, 1))
	avg.Sub(avg, slope)

	horizon, err := math.MulDiv(uint256.NewInt(c.params.TargetRaise), bc.Wad, avg, bc.RoundingDown)
	if err != nil {
		return invalidConfig("targetRaise", c.params.TargetRaise, err.Error())
	}
	if horizon.IsZero() {
		return invalidConfig("targetRaise", c.params.TargetRaise, "too small for the price range")
	}
	c.logHorizon = horizon
	c.logSlope = slope
	return nil
}

func (c *CurveConfig) Kind() CurveKind {
	return c.params.Kind
}

func (c *CurveConfig) InitialPrice() Price {
	return c.params.InitialPrice
}

func (c *CurveConfig) FinalPrice() Price {
	return c.params.FinalPrice
}

func (c *CurveConfig) TargetRaise() uint64 {
	return c.params.TargetRaise
}

func (c *CurveConfig) ReserveRatio() uint8 {
	return c.params.ReserveRatio
}

// ReserveRatioBps is the basis point ratio the supply curves price with.
func (c *CurveConfig) ReserveRatioBps() uint16 {
	return c.params.ReserveRatioBps
}

func (c *CurveConfig) TokenDecimals() uint8 {
	return c.params.TokenDecimals
}

func (c *CurveConfig) Params() CurveParams {
	return c.params
}

// ReserveRatioFromBps converts the on-chain basis point ratio to a percent, rounding down.
func ReserveRatioFromBps(bps uint16) (uint8, error) {
	if bps > bc.MaxBasisPoint {
		return 0, invalidConfig("reserveRatio", bps, "basis points above 10000")
	}
	pct := bps / (bc.MaxBasisPoint / bc.MaxReserveRatio)
	if pct == 0 {
		return 0, invalidConfig("reserveRatio", bps, "below 1 percent")
	}
	return uint8(pct), nil
}
