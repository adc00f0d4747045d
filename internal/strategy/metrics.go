package strategy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// EvaluationsTotal tracks strategy evaluations by recommendation.
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_strategy_evaluations_total",
			Help: "Total number of strategy evaluations by recommendation",
		},
		[]string{"recommendation"},
	)

	// OverallRiskScore tracks the distribution of overall risk scores.
	OverallRiskScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_strategy_overall_risk_score",
		Help:    "Overall risk score of evaluated opportunities",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	// ConfidenceLevel tracks the distribution of confidence levels.
	ConfidenceLevel = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_strategy_confidence_level",
		Help:    "Confidence level of evaluated strategies",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	// ExpectedValueUSD tracks the probability-weighted expected value.
	ExpectedValueUSD = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_strategy_expected_value_usd",
		Help:    "Expected value of evaluated strategies in USD",
		Buckets: []float64{-100, -10, 0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	// EvaluationDurationSeconds tracks evaluation latency.
	EvaluationDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_strategy_evaluation_duration_seconds",
		Help:    "Duration of one strategy evaluation",
		Buckets: prometheus.DefBuckets,
	})
)
