package launchpad

import (
	"context"
	"fmt"

	"github.com/dmitro3/fairlaunch-go/bonding_curve"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Quote fetches mint's snapshot and quotes one trade against it.
// It depends on the bonding_curve.Quote function.
//
// Example:
//
// cfg, _ := bonding_curve.TemplateConfig("gentle-growth", 6)
//
// result, snapshot, _ := lp.Quote(
//
//	ctx,
//	mint, // token mint
//	cfg, // curve parameters of the mint
//	bonding_curve.DirectionBuyForCost, // spend an exact lamport amount
//	1_000_000_000, // 1 SOL
//
// )
func (l *Launchpad) Quote(
	ctx context.Context,
	mint solana.PublicKey,
	cfg *bonding_curve.CurveConfig,
	direction bonding_curve.Direction,
	amount uint64,
) (*bonding_curve.QuoteResult, bonding_curve.ReserveSnapshot, error) {
	snap, err := l.FetchReserveSnapshot(ctx, mint)
	if err != nil {
		l.metrics.ObserveQuote(direction.String(), err)
		return nil, bonding_curve.ReserveSnapshot{}, err
	}

	result, err := l.quoter.Quote(cfg, snap, direction, amount)
	l.metrics.ObserveQuote(direction.String(), err)
	if err != nil {
		l.logger.Info("quote rejected",
			zap.Stringer("mint", mint),
			zap.Stringer("direction", direction),
			zap.Uint64("amount", amount),
			zap.Error(err),
		)
		return nil, snap, err
	}

	l.logger.Debug("quote",
		zap.Stringer("mint", mint),
		zap.Stringer("direction", direction),
		zap.Uint64("in", result.InputAmount),
		zap.Uint64("out", result.OutputAmount),
		zap.Stringer("spotAfter", result.SpotPriceAfter),
		zap.Uint64("slot", snap.Tag.Slot),
	)
	return result, snap, nil
}

// BuyQuote quotes the tokens received for spending lamports.
//
// Example:
//
// result, _, _ := lp.BuyQuote(ctx, mint, cfg, 1_000_000_000)
func (l *Launchpad) BuyQuote(ctx context.Context, mint solana.PublicKey, cfg *bonding_curve.CurveConfig, lamports uint64) (*bonding_curve.QuoteResult, bonding_curve.ReserveSnapshot, error) {
	return l.Quote(ctx, mint, cfg, bonding_curve.DirectionBuyForCost, lamports)
}

// SellQuote quotes the lamports received for selling tokens.
//
// Example:
//
// result, _, _ := lp.SellQuote(ctx, mint, cfg, 1_000_000) // one whole token at 6 decimals
func (l *Launchpad) SellQuote(ctx context.Context, mint solana.PublicKey, cfg *bonding_curve.CurveConfig, tokens uint64) (*bonding_curve.QuoteResult, bonding_curve.ReserveSnapshot, error) {
	return l.Quote(ctx, mint, cfg, bonding_curve.DirectionSellExact, tokens)
}

// CurveConfigFromChain completes base with what the chain knows about mint: the
// reserve ratio stored in its curve account and the mint's decimals. The result is a
// square law curve, the one the program executes. base keeps its prices and target
// for display.
func (l *Launchpad) CurveConfigFromChain(ctx context.Context, mint solana.PublicKey, base bonding_curve.CurveParams) (*bonding_curve.CurveConfig, error) {
	decimals, err := l.TokenDecimals(ctx, mint)
	if err != nil {
		return nil, err
	}
	return l.curveConfigFromChain(ctx, mint, base, decimals)
}

// TemplateConfigFromChain prices mint on its on-chain curve with a linear template's
// prices and target. Other template kinds fail with ErrTemplateKind.
//
// Example:
//
// t, _ := bonding_curve.LookupTemplate("gentle-growth")
//
// cfg, err := lp.TemplateConfigFromChain(ctx, mint, t)
func (l *Launchpad) TemplateConfigFromChain(ctx context.Context, mint solana.PublicKey, t bonding_curve.Template) (*bonding_curve.CurveConfig, error) {
	if t.Kind != bonding_curve.CurveKindLinear {
		return nil, fmt.Errorf("template %s prices a %s curve: %w", t.Name, t.Kind, ErrTemplateKind)
	}
	decimals, err := l.TokenDecimals(ctx, mint)
	if err != nil {
		return nil, err
	}
	params, err := t.Params(decimals)
	if err != nil {
		return nil, err
	}
	return l.curveConfigFromChain(ctx, mint, params, decimals)
}

func (l *Launchpad) curveConfigFromChain(ctx context.Context, mint solana.PublicKey, base bonding_curve.CurveParams, decimals uint8) (*bonding_curve.CurveConfig, error) {
	curve, _, err := l.GetBondingCurve(ctx, mint)
	if err != nil {
		return nil, err
	}
	if curve.ReserveRatio == 0 {
		return nil, fmt.Errorf("curve %s has a zero reserve ratio: %w", curve.Address, bonding_curve.ErrInvalidCurveConfig)
	}

	base.Kind = bonding_curve.CurveKindSquareLaw
	base.ReserveRatioBps = curve.ReserveRatio
	base.ReserveRatio = 0
	if pct, err := bonding_curve.ReserveRatioFromBps(curve.ReserveRatio); err == nil {
		base.ReserveRatio = pct
	}
	base.TokenDecimals = decimals
	return bonding_curve.NewCurveConfig(base)
}
