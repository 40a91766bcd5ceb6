package presenter

import (
	"fmt"

	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	"github.com/dmitro3/fairlaunch-go/decimal_math"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	DefaultChartPoints = 50

	chartRaisedDigits = 2
	chartPriceDigits  = 6
	chartWorkDigits   = 18
	chartSqrtBits     = 128
)

// ChartPoint is one point of the display curve: SOL raised so far against the
// price in SOL per whole token at that point.
type ChartPoint struct {
	Raised decimal.Decimal
	Price  decimal.Decimal
}

// ChartSeries samples the display curve of cfg at points+1 evenly spaced raise levels
// from zero to the target raise. It is an illustration of the curve's shape between
// its initial and final price and is never used to price a trade.
func ChartSeries(cfg *bonding_curve.CurveConfig, points int) ([]ChartPoint, error) {
	if cfg == nil {
		return nil, fmt.Errorf("chart: %w", bonding_curve.ErrInvalidCurveConfig)
	}
	if points <= 0 {
		points = DefaultChartPoints
	}

	target := LamportsToSOL(cfg.TargetRaise())
	p0 := cfg.InitialPrice().SOLPerToken(cfg.TokenDecimals())
	p1 := cfg.FinalPrice().SOLPerToken(cfg.TokenDecimals())
	shape, err := chartShape(cfg.Kind(), p0, p1)
	if err != nil {
		return nil, err
	}

	steps := decimal.NewFromInt(int64(points))
	series := make([]ChartPoint, 0, points+1)
	for _, i := range lo.RangeFrom(0, points+1) {
		t := decimal.NewFromInt(int64(i)).DivRound(steps, chartWorkDigits)
		price, err := shape(t)
		if err != nil {
			return nil, fmt.Errorf("chart point %d: %w", i, err)
		}
		series = append(series, ChartPoint{
			Raised: target.Mul(t).Round(chartRaisedDigits),
			Price:  price.Round(chartPriceDigits),
		})
	}
	return series, nil
}

// chartShape returns the price at fraction t in [0, 1] of the target raise.
func chartShape(kind bonding_curve.CurveKind, p0, p1 decimal.Decimal) (func(t decimal.Decimal) (decimal.Decimal, error), error) {
	delta := p1.Sub(p0)
	switch kind {
	case bonding_curve.CurveKindLinear:
		return func(t decimal.Decimal) (decimal.Decimal, error) {
			return decimal_math.Lerp(p0, p1, t, decimal.NewFromInt(1), chartWorkDigits)
		}, nil

	case bonding_curve.CurveKindExponential:
		if !p0.IsPositive() {
			return nil, fmt.Errorf("chart: exponential curve needs a positive initial price: %w", bonding_curve.ErrInvalidCurveConfig)
		}
		growth := p1.DivRound(p0, chartWorkDigits)
		return func(t decimal.Decimal) (decimal.Decimal, error) {
			g, err := decimal_math.Pow(growth, t, chartWorkDigits)
			if err != nil {
				return decimal.Zero, err
			}
			return p0.Mul(g), nil
		}, nil

	case bonding_curve.CurveKindLogarithmic:
		ln2, err := decimal_math.Ln(decimal.NewFromInt(2), chartWorkDigits)
		if err != nil {
			return nil, err
		}
		return func(t decimal.Decimal) (decimal.Decimal, error) {
			l, err := decimal_math.Ln(t.Add(decimal.NewFromInt(1)), chartWorkDigits)
			if err != nil {
				return decimal.Zero, err
			}
			return p0.Add(delta.Mul(l).DivRound(ln2, chartWorkDigits)), nil
		}, nil

	case bonding_curve.CurveKindSquareLaw, bonding_curve.CurveKindQuadratic:
		// price is linear in supply and the raise quadratic, so price grows as sqrt(t)
		return func(t decimal.Decimal) (decimal.Decimal, error) {
			r, err := decimal_math.Sqrt(t, chartSqrtBits)
			if err != nil {
				return decimal.Zero, err
			}
			return p0.Add(delta.Mul(r)), nil
		}, nil
	}
	return nil, fmt.Errorf("chart: %s: %w", kind, bonding_curve.ErrUnknownCurveKind)
}
