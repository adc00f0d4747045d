package scanner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// QuotesFetchedTotal tracks successful quote fetches per venue.
	QuotesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_scanner_quotes_fetched_total",
			Help: "Total number of venue quotes fetched successfully",
		},
		[]string{"venue"},
	)

	// QuoteFetchFailuresTotal tracks failed quote fetches per venue.
	QuoteFetchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_scanner_quote_fetch_failures_total",
			Help: "Total number of venue quote fetches that failed",
		},
		[]string{"venue"},
	)

	// ScanDurationSeconds tracks the duration of one full refresh cycle.
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_scanner_scan_duration_seconds",
		Help:    "Duration of one full price refresh cycle",
		Buckets: prometheus.DefBuckets,
	})

	// OpportunitiesDetectedTotal tracks emitted arbitrage opportunities.
	OpportunitiesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexarb_scanner_opportunities_detected_total",
		Help: "Total number of arbitrage opportunities detected",
	})

	// OpportunitiesRejectedTotal tracks discarded spreads by reason.
	OpportunitiesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_scanner_opportunities_rejected_total",
			Help: "Total number of candidate spreads discarded",
		},
		[]string{"reason"},
	)

	// OpportunityNetProfitUSD tracks net profit of emitted opportunities.
	OpportunityNetProfitUSD = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_scanner_opportunity_net_profit_usd",
		Help:    "Net profit of detected opportunities in USD",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)
