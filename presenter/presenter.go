package presenter

import (
	"context"
	"fmt"

	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	"github.com/dmitro3/fairlaunch-go/decimal_math"
	"github.com/shopspring/decimal"
)

const (
	solDisplayDigits   = 6
	usdDisplayDigits   = 2
	priceDisplayDigits = 9
)

var lamportsPerSOL = decimal.NewFromInt(bonding_curve.LamportsPerSOL)

// PricePresenter turns engine output into display values. Nothing here feeds back
// into a quote.
type PricePresenter struct {
	rates RateSource
}

// NewPricePresenter creates a presenter. rates may be nil when no fiat values are needed.
func NewPricePresenter(rates RateSource) *PricePresenter {
	return &PricePresenter{rates: rates}
}

// LamportsToSOL converts lamports to SOL exactly.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Div(lamportsPerSOL)
}

// TokensToWhole converts token base units to whole tokens exactly.
func TokensToWhole(units uint64, tokenDecimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(units).Shift(-int32(tokenDecimals))
}

// FormatSOL renders lamports as SOL with banker's rounding.
func (p *PricePresenter) FormatSOL(lamports uint64) string {
	return LamportsToSOL(lamports).StringFixedBank(solDisplayDigits) + " SOL"
}

// FormatPrice renders a spot price as SOL per whole token.
func (p *PricePresenter) FormatPrice(price bonding_curve.Price, tokenDecimals uint8) string {
	return price.SOLPerToken(tokenDecimals).StringFixedBank(priceDisplayDigits) + " SOL"
}

// USD converts a SOL amount with the current rate.
func (p *PricePresenter) USD(ctx context.Context, sol decimal.Decimal) (decimal.Decimal, error) {
	if p.rates == nil {
		return decimal.Zero, ErrNoRate
	}
	rate, err := p.rates.SOLUSD(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", ErrNoRate, err)
	}
	return sol.Mul(rate), nil
}

// FormatUSD renders lamports as dollars.
func (p *PricePresenter) FormatUSD(ctx context.Context, lamports uint64) (string, error) {
	usd, err := p.USD(ctx, LamportsToSOL(lamports))
	if err != nil {
		return "", err
	}
	return "$" + usd.StringFixedBank(usdDisplayDigits), nil
}

// MarketCap is spot price times circulating supply, in SOL.
func (p *PricePresenter) MarketCap(spot bonding_curve.Price, supply uint64, tokenDecimals uint8) decimal.Decimal {
	return spot.SOLPerToken(tokenDecimals).Mul(TokensToWhole(supply, tokenDecimals))
}

// MarketCapUSD is MarketCap at the current rate.
func (p *PricePresenter) MarketCapUSD(ctx context.Context, spot bonding_curve.Price, supply uint64, tokenDecimals uint8) (decimal.Decimal, error) {
	return p.USD(ctx, p.MarketCap(spot, supply, tokenDecimals))
}

// Progress is the share of the target raise already in the reserve, in percent,
// capped at 100.
func Progress(cfg *bonding_curve.CurveConfig, snap bonding_curve.ReserveSnapshot) decimal.Decimal {
	target := decimal.NewFromUint64(cfg.TargetRaise())
	pct := decimal.NewFromUint64(snap.ReserveBalance).Mul(decimal_math.Pow10(2)).DivRound(target, usdDisplayDigits)
	return decimal.Min(pct, decimal.NewFromInt(100))
}
