package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fairlaunch"

// QuoteMetrics records quote, fetch and rate cache activity. A nil *QuoteMetrics
// records nothing.
type QuoteMetrics struct {
	quotes    *prometheus.CounterVec
	fetch     prometheus.Histogram
	rateCache *prometheus.CounterVec
}

// NewQuoteMetrics registers the collectors with reg. A nil reg leaves them unregistered.
func NewQuoteMetrics(reg prometheus.Registerer) (*QuoteMetrics, error) {
	m := &QuoteMetrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Quotes answered, by direction and result.",
		}, []string{"direction", "result"}),
		fetch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_fetch_seconds",
			Help:      "Latency of reading a bonding curve account, retries included.",
			Buckets:   prometheus.DefBuckets,
		}),
		rateCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_cache_total",
			Help:      "SOL/USD rate lookups, by cache result.",
		}, []string{"result"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.quotes, m.fetch, m.rateCache} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveQuote counts a quote; err == nil counts as "ok".
func (m *QuoteMetrics) ObserveQuote(direction string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.quotes.WithLabelValues(direction, result).Inc()
}

func (m *QuoteMetrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetch.Observe(d.Seconds())
}

// ObserveRate counts a rate lookup: "hit", "miss" or "stale".
func (m *QuoteMetrics) ObserveRate(result string) {
	if m == nil {
		return
	}
	m.rateCache.WithLabelValues(result).Inc()
}
