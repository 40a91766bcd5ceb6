package presenter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"

	defaultHTTPTimeout = 10 * time.Second
	maxBodySize        = 1 << 20
)

// CoinGeckoSource reads the SOL/USD rate from the CoinGecko simple price endpoint.
type CoinGeckoSource struct {
	url        string
	httpClient *http.Client
	retries    uint
	retryDelay time.Duration
	logger     *zap.Logger
}

type CoinGeckoOption func(*CoinGeckoSource)

func WithHTTPClient(c *http.Client) CoinGeckoOption {
	return func(s *CoinGeckoSource) { s.httpClient = c }
}

func WithRetry(retries uint, delay time.Duration) CoinGeckoOption {
	return func(s *CoinGeckoSource) {
		s.retries = retries
		s.retryDelay = delay
	}
}

func WithLogger(logger *zap.Logger) CoinGeckoOption {
	return func(s *CoinGeckoSource) { s.logger = logger }
}

// NewCoinGeckoSource creates a source for url, DefaultCoinGeckoURL when empty.
func NewCoinGeckoSource(url string, opts ...CoinGeckoOption) *CoinGeckoSource {
	if url == "" {
		url = DefaultCoinGeckoURL
	}
	s := &CoinGeckoSource{
		url:        url,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		retries:    3,
		retryDelay: 500 * time.Millisecond,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "coingecko"))
	return s
}

func (s *CoinGeckoSource) SOLUSD(ctx context.Context) (decimal.Decimal, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryDelay
	policy.MaxInterval = s.retryDelay * 10

	rate, err := backoff.Retry(ctx, func() (decimal.Decimal, error) {
		return s.fetch(ctx)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(s.retries),
		backoff.WithNotify(func(err error, d time.Duration) {
			s.logger.Warn("rate request failed, retrying", zap.Error(err), zap.Duration("backoff", d))
		}))
	if err != nil {
		return decimal.Zero, err
	}
	s.logger.Debug("fetched SOL/USD rate", zap.Stringer("rate", rate))
	return rate, nil
}

func (s *CoinGeckoSource) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return decimal.Zero, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return decimal.Zero, fmt.Errorf("coingecko: HTTP %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return decimal.Zero, backoff.Permanent(fmt.Errorf("coingecko: HTTP %d", resp.StatusCode))
	}

	usd := gjson.GetBytes(body, "solana.usd")
	if !usd.Exists() {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("coingecko: solana.usd missing: %w", ErrInvalidRate))
	}
	rate, err := decimal.NewFromString(usd.Raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("coingecko: solana.usd=%s: %w", usd.Raw, ErrInvalidRate))
	}
	return rate, nil
}
