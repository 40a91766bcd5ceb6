package fairlaunch

import (
	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	"github.com/dmitro3/fairlaunch-go/launchpad"
	"github.com/dmitro3/fairlaunch-go/presenter"
)

// NewLaunchpad creates a client for one launchpad program.
//
// Example:
//
// lp, _ := NewLaunchpad(rpc.New(rpc.MainNetBeta_RPC), launchpad.Options{ProgramID: programID})
//
// cfg, _ := lp.CurveConfigFromChain(ctx, mint, params)
//
// quote, _, _ := lp.BuyQuote(ctx, mint, cfg, 1_000_000_000)
var NewLaunchpad = launchpad.NewLaunchpad

// NewCurveConfig validates curve parameters.
var NewCurveConfig = bonding_curve.NewCurveConfig

// Quote prices one trade against a snapshot without any chain access.
//
// Example:
//
// cfg, _ := TemplateConfig("gentle-growth", 6)
//
// quote, _ := Quote(cfg, snapshot, bonding_curve.DirectionSellExact, 1_000_000)
var Quote = bonding_curve.Quote

// TemplateConfig builds the curve of a named preset.
var TemplateConfig = bonding_curve.TemplateConfig

// NewPricePresenter creates a presenter for display values.
//
// Example:
//
// source := NewCoinGeckoSource("")
//
// p := NewPricePresenter(source)
//
// usd, _ := p.FormatUSD(ctx, quote.Lamports())
var NewPricePresenter = presenter.NewPricePresenter

// NewCoinGeckoSource creates the SOL/USD rate source.
var NewCoinGeckoSource = presenter.NewCoinGeckoSource
