package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	"github.com/dmitro3/fairlaunch-go/config"
	"github.com/dmitro3/fairlaunch-go/launchpad"
	"github.com/dmitro3/fairlaunch-go/logger"
	"github.com/dmitro3/fairlaunch-go/metrics"
	"github.com/dmitro3/fairlaunch-go/presenter"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	mint       solana.PublicKey
	direction  bonding_curve.Direction
	amount     uint64
	usd        bool
	template   string
	maxSlotLag uint64
	metrics    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("fairlaunch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts      options
		mint      string
		direction string
	)
	fs.StringVar(&opts.configPath, "config", "config.yaml", "config file")
	fs.StringVar(&mint, "mint", "", "token mint address")
	fs.StringVar(&direction, "direction", "buyForCost", "buyExact, buyForCost, sellExact or sellForProceeds")
	fs.Uint64Var(&opts.amount, "amount", 0, "lamports for buyForCost and sellForProceeds, token base units otherwise")
	fs.BoolVar(&opts.usd, "usd", false, "show fiat values")
	fs.StringVar(&opts.template, "template", "gentle-growth", "linear price template for mints missing from the config")
	fs.Uint64Var(&opts.maxSlotLag, "max-slot-lag", 150, "reject quotes from snapshots this many slots behind")
	fs.BoolVar(&opts.metrics, "metrics", false, "print quote metrics after the quote")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if opts.mint, err = solana.PublicKeyFromBase58(mint); err != nil {
		return nil, fmt.Errorf("-mint %q: %w", mint, err)
	}
	if opts.direction, err = bonding_curve.ParseDirection(direction); err != nil {
		return nil, err
	}
	if opts.amount == 0 {
		return nil, errors.New("-amount must be positive")
	}
	return &opts, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	m, err := metrics.NewQuoteMetrics(reg)
	if err != nil {
		return err
	}

	lp, err := launchpad.NewLaunchpad(rpc.New(cfg.RPCEndpoint), launchpad.Options{
		ProgramID:  cfg.ProgramPublicKey(),
		Commitment: cfg.CommitmentType(),
		Retries:    cfg.Retries,
		RetryDelay: cfg.RetryDelay(),
		Workers:    cfg.FetchWorkers,
		Logger:     log.WithMint(opts.mint.String()),
		Metrics:    m,
	})
	if err != nil {
		return err
	}

	curve, err := curveConfig(ctx, cfg, lp, opts)
	if err != nil {
		return err
	}

	quote, snap, err := lp.Quote(ctx, opts.mint, curve, opts.direction, opts.amount)
	if err != nil {
		return err
	}
	if slot, err := lp.CurrentSlot(ctx); err == nil {
		if err := quote.CheckSlot(slot, opts.maxSlotLag); err != nil {
			return err
		}
	} else {
		log.Warn("could not read current slot", zap.Error(err))
	}

	var rates presenter.RateSource
	if opts.usd {
		source := presenter.NewCoinGeckoSource(cfg.CoinGeckoURL, presenter.WithLogger(log.Logger))
		if rates, err = presenter.NewCachedRateSource(source, nil, cfg.RateCacheTTL(), log.Logger, m); err != nil {
			return err
		}
	}
	if err := printQuote(ctx, out, presenter.NewPricePresenter(rates), curve, snap, quote, opts.usd); err != nil {
		return err
	}
	if opts.metrics {
		return writeMetrics(out, reg)
	}
	return nil
}

// curveConfig prefers the config entry for the mint and falls back to the chain's
// curve, displayed with a linear template's prices.
func curveConfig(ctx context.Context, cfg *config.Config, lp *launchpad.Launchpad, opts *options) (*bonding_curve.CurveConfig, error) {
	if entry, ok := cfg.Curve(opts.mint.String()); ok {
		return entry.CurveConfig()
	}
	t, ok := bonding_curve.LookupTemplate(opts.template)
	if !ok {
		return nil, fmt.Errorf("unknown template %q, have %v", opts.template, bonding_curve.TemplateNames())
	}
	return lp.TemplateConfigFromChain(ctx, opts.mint, t)
}

func writeMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}

func printQuote(
	ctx context.Context,
	out io.Writer,
	p *presenter.PricePresenter,
	curve *bonding_curve.CurveConfig,
	snap bonding_curve.ReserveSnapshot,
	quote *bonding_curve.QuoteResult,
	usd bool,
) error {
	decimals := curve.TokenDecimals()
	fmt.Fprintf(out, "direction:   %s\n", quote.Direction)
	fmt.Fprintf(out, "tokens:      %s\n", presenter.TokensToWhole(quote.Tokens(), decimals))
	fmt.Fprintf(out, "lamports:    %d (%s)\n", quote.Lamports(), p.FormatSOL(quote.Lamports()))
	fmt.Fprintf(out, "spot before: %s\n", p.FormatPrice(quote.SpotPriceBefore, decimals))
	fmt.Fprintf(out, "spot after:  %s\n", p.FormatPrice(quote.SpotPriceAfter, decimals))
	fmt.Fprintf(out, "market cap:  %s SOL\n", p.MarketCap(quote.SpotPriceAfter, snap.TotalSupply, decimals).StringFixedBank(2))
	fmt.Fprintf(out, "progress:    %s%%\n", presenter.Progress(curve, snap))
	fmt.Fprintf(out, "snapshot:    %s at slot %d\n", quote.Snapshot.Source, quote.Snapshot.Slot)
	if !usd {
		return nil
	}
	value, err := p.FormatUSD(ctx, quote.Lamports())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "value:       %s\n", value)
	return nil
}
