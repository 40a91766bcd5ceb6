package presenter

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/dmitro3/fairlaunch-go/metrics"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	rstore "github.com/eko/gocache/store/ristretto/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRateTTL = 5 * time.Minute

	rateKey = "rate:SOL/USD"
)

// NewRistrettoStore builds the in-memory store the rate cache runs on.
func NewRistrettoStore() (store.StoreInterface, error) {
	rcache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return rstore.NewRistretto(rcache), nil
}

// CachedRateSource keeps a rate from source for ttl. When the cache is cold and the
// source fails, it answers with the last rate it saw, however old. Concurrent misses
// share one source call.
type CachedRateSource struct {
	source  RateSource
	cache   *cache.Cache[[]byte]
	group   singleflight.Group
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.QuoteMetrics

	mu       sync.Mutex
	last     decimal.Decimal
	lastSeen time.Time
}

// NewCachedRateSource wraps source. A nil cacheStore gets a fresh ristretto store and
// ttl <= 0 means DefaultRateTTL.
func NewCachedRateSource(source RateSource, cacheStore store.StoreInterface, ttl time.Duration, logger *zap.Logger, m *metrics.QuoteMetrics) (*CachedRateSource, error) {
	if cacheStore == nil {
		var err error
		if cacheStore, err = NewRistrettoStore(); err != nil {
			return nil, err
		}
	}
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRateSource{
		source:  source,
		cache:   cache.New[[]byte](cacheStore),
		ttl:     ttl,
		logger:  logger.With(zap.String("component", "rate-cache")),
		metrics: m,
	}, nil
}

func (c *CachedRateSource) SOLUSD(ctx context.Context) (decimal.Decimal, error) {
	if rate, ok := c.cached(ctx); ok {
		c.metrics.ObserveRate("hit")
		return rate, nil
	}

	v, err, _ := c.group.Do(rateKey, func() (any, error) {
		// an earlier flight may have filled the cache while this caller missed
		if rate, ok := c.cached(ctx); ok {
			c.metrics.ObserveRate("hit")
			return rate, nil
		}
		return c.fetch(ctx)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return v.(decimal.Decimal), nil
}

func (c *CachedRateSource) cached(ctx context.Context) (decimal.Decimal, bool) {
	data, err := c.cache.Get(ctx, rateKey)
	if err != nil {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(string(data))
	if err != nil {
		return decimal.Zero, false
	}
	return rate, true
}

func (c *CachedRateSource) fetch(ctx context.Context) (decimal.Decimal, error) {
	rate, err := c.source.SOLUSD(ctx)
	if err != nil {
		c.mu.Lock()
		last, seen := c.last, c.lastSeen
		c.mu.Unlock()
		if seen.IsZero() {
			c.metrics.ObserveRate("miss")
			return decimal.Zero, err
		}
		c.metrics.ObserveRate("stale")
		c.logger.Warn("rate source failed, using last known rate",
			zap.Stringer("rate", last),
			zap.Time("seenAt", seen),
			zap.Error(err),
		)
		return last, nil
	}
	c.metrics.ObserveRate("miss")

	c.mu.Lock()
	c.last, c.lastSeen = rate, time.Now()
	c.mu.Unlock()

	if err := c.cache.Set(ctx, rateKey, []byte(rate.String()), store.WithExpiration(c.ttl), store.WithCost(1)); err != nil {
		c.logger.Debug("failed to cache rate", zap.Error(err))
	}
	return rate, nil
}

// Last returns the last rate fetched from the source and when.
func (c *CachedRateSource) Last() (decimal.Decimal, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.lastSeen
}
