package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	"github.com/dmitro3/fairlaunch-go/logger"
	"github.com/dmitro3/fairlaunch-go/presenter"
	"github.com/dmitro3/fairlaunch-go/u128"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const EnvPrefix = "FAIRLAUNCH"

const (
	DefaultRPCEndpoint     = "https://api.mainnet-beta.solana.com"
	DefaultCommitment      = string(rpc.CommitmentFinalized)
	DefaultRetries         = 3
	DefaultRetryDelayMs    = 200
	DefaultFetchWorkers    = 8
	DefaultRateCacheTTLSec = 300
	DefaultCoinGeckoURL    = presenter.DefaultCoinGeckoURL
)

type Config struct {
	RPCEndpoint     string         `mapstructure:"rpc_endpoint"`
	ProgramID       string         `mapstructure:"program_id"`
	Commitment      string         `mapstructure:"commitment"`
	Retries         uint           `mapstructure:"retries"`
	RetryDelayMs    int            `mapstructure:"retry_delay_ms"`
	FetchWorkers    int            `mapstructure:"fetch_workers"`
	CoinGeckoURL    string         `mapstructure:"coingecko_url"`
	RateCacheTTLSec int            `mapstructure:"rate_cache_ttl_sec"`
	Log             *logger.Config `mapstructure:"log"`
	Curves          []CurveEntry   `mapstructure:"curves"`
}

// CurveEntry describes the curve of one mint. Either Template names a preset or
// Kind and the price fields are set. Prices are SOL per whole token, TargetRaise is
// lamports.
type CurveEntry struct {
	Mint          string `mapstructure:"mint"`
	Template      string `mapstructure:"template"`
	Kind          string `mapstructure:"kind"`
	InitialPrice  string `mapstructure:"initial_price"`
	FinalPrice    string `mapstructure:"final_price"`
	TargetRaise   string `mapstructure:"target_raise"`
	ReserveRatio  uint8  `mapstructure:"reserve_ratio"`
	TokenDecimals uint8  `mapstructure:"token_decimals"`

	// on-chain ratio for the square-law and quadratic kinds
	ReserveRatioBps uint16 `mapstructure:"reserve_ratio_bps"`
}

// LoadConfig reads the config file at path. A .env file next to it is loaded into
// the environment first, and FAIRLAUNCH_* variables override file values.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)

	defaultLog := logger.DefaultConfig()
	defaults := map[string]interface{}{
		"rpc_endpoint":       DefaultRPCEndpoint,
		"program_id":         "",
		"commitment":         DefaultCommitment,
		"retries":            DefaultRetries,
		"retry_delay_ms":     DefaultRetryDelayMs,
		"fetch_workers":      DefaultFetchWorkers,
		"coingecko_url":      DefaultCoinGeckoURL,
		"rate_cache_ttl_sec": DefaultRateCacheTTLSec,
		"log.file":           defaultLog.LogFile,
		"log.max_size":       defaultLog.MaxSize,
		"log.max_age":        defaultLog.MaxAge,
		"log.max_backups":    defaultLog.MaxBackups,
		"log.compress":       defaultLog.Compress,
		"log.development":    defaultLog.Development,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate checks every field and each curve entry.
func (c *Config) Validate() error {
	if err := validateURL(c.RPCEndpoint, "http"); err != nil {
		return fmt.Errorf("rpc_endpoint: %w", err)
	}
	if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		return fmt.Errorf("program_id %q: %w", c.ProgramID, err)
	}
	if !lo.Contains([]string{
		string(rpc.CommitmentProcessed),
		string(rpc.CommitmentConfirmed),
		string(rpc.CommitmentFinalized),
	}, c.Commitment) {
		return fmt.Errorf("invalid commitment %q", c.Commitment)
	}
	if c.RetryDelayMs < 0 {
		return errors.New("invalid retry_delay_ms")
	}
	if c.FetchWorkers < 0 {
		return errors.New("invalid fetch_workers")
	}
	if c.RateCacheTTLSec < 0 {
		return errors.New("invalid rate_cache_ttl_sec")
	}
	if c.CoinGeckoURL != "" {
		if err := validateURL(c.CoinGeckoURL, "http"); err != nil {
			return fmt.Errorf("coingecko_url: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(c.Curves))
	for i, entry := range c.Curves {
		if _, err := solana.PublicKeyFromBase58(entry.Mint); err != nil {
			return fmt.Errorf("curves[%d]: mint %q: %w", i, entry.Mint, err)
		}
		if _, dup := seen[entry.Mint]; dup {
			return fmt.Errorf("curves[%d]: duplicate mint %s", i, entry.Mint)
		}
		seen[entry.Mint] = struct{}{}
		if _, err := entry.CurveConfig(); err != nil {
			return fmt.Errorf("curves[%d] (%s): %w", i, entry.Mint, err)
		}
	}
	return nil
}

func validateURL(rawURL, scheme string) error {
	if rawURL == "" {
		return errors.New("empty URL")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if !strings.HasPrefix(parsed.Scheme, scheme) || parsed.Host == "" {
		return fmt.Errorf("invalid URL %q", rawURL)
	}
	return nil
}

func (c *Config) ProgramPublicKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.ProgramID)
}

func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func (c *Config) RateCacheTTL() time.Duration {
	return time.Duration(c.RateCacheTTLSec) * time.Second
}

// Curve finds the entry for mint.
func (c *Config) Curve(mint string) (CurveEntry, bool) {
	return lo.Find(c.Curves, func(e CurveEntry) bool { return e.Mint == mint })
}

// Params converts the entry to curve parameters. It does not validate them.
func (e CurveEntry) Params() (bonding_curve.CurveParams, error) {
	if e.Template != "" {
		t, ok := bonding_curve.LookupTemplate(e.Template)
		if !ok {
			return bonding_curve.CurveParams{}, fmt.Errorf("unknown template %q, have %v", e.Template, bonding_curve.TemplateNames())
		}
		return t.Params(e.TokenDecimals)
	}

	kind, err := bonding_curve.ParseCurveKind(e.Kind)
	if err != nil {
		return bonding_curve.CurveParams{}, err
	}
	initial, err := parsePrice("initial_price", e.InitialPrice, e.TokenDecimals)
	if err != nil {
		return bonding_curve.CurveParams{}, err
	}
	final, err := parsePrice("final_price", e.FinalPrice, e.TokenDecimals)
	if err != nil {
		return bonding_curve.CurveParams{}, err
	}
	raise, err := u128.Parse(e.TargetRaise)
	if err != nil {
		return bonding_curve.CurveParams{}, fmt.Errorf("target_raise: %w", err)
	}
	target, err := u128.ToUint64(raise)
	if err != nil {
		return bonding_curve.CurveParams{}, fmt.Errorf("target_raise: %w", err)
	}

	return bonding_curve.CurveParams{
		Kind:            kind,
		InitialPrice:    initial,
		FinalPrice:      final,
		TargetRaise:     target,
		ReserveRatio:    e.ReserveRatio,
		TokenDecimals:   e.TokenDecimals,
		ReserveRatioBps: e.ReserveRatioBps,
	}, nil
}

// CurveConfig converts and validates the entry.
func (e CurveEntry) CurveConfig() (*bonding_curve.CurveConfig, error) {
	params, err := e.Params()
	if err != nil {
		return nil, err
	}
	return bonding_curve.NewCurveConfig(params)
}

func parsePrice(field, value string, tokenDecimals uint8) (bonding_curve.Price, error) {
	sol, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return bonding_curve.Price{}, fmt.Errorf("%s %q: %w", field, value, err)
	}
	price, err := bonding_curve.PriceFromSOLPerToken(sol, tokenDecimals)
	if err != nil {
		return bonding_curve.Price{}, fmt.Errorf("%s: %w", field, err)
	}
	return price, nil
}
