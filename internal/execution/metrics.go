package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ExecutionsTotal tracks finished executions by terminal status.
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_execution_executions_total",
			Help: "Total number of executions by terminal status",
		},
		[]string{"status"},
	)

	// AdmissionRejectedTotal tracks executions rejected before starting.
	AdmissionRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexarb_execution_admission_rejected_total",
			Help: "Total number of executions rejected at admission",
		},
		[]string{"reason"},
	)

	// ExecutionDurationSeconds tracks end-to-end execution latency.
	ExecutionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexarb_execution_duration_seconds",
		Help:    "Duration of one execution from admission to terminal status",
		Buckets: prometheus.DefBuckets,
	})

	// ProfitRealizedUSD tracks cumulative realized profit. A gauge, not a
	// counter: a completed execution can realize a loss when both legs
	// slip adversely.
	ProfitRealizedUSD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dexarb_execution_profit_realized_usd",
		Help: "Cumulative realized profit in USD across completed executions",
	})

	// GasSpentUSD tracks cumulative gas spend.
	GasSpentUSD = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexarb_execution_gas_spent_usd_total",
		Help: "Cumulative gas spend in USD across completed executions",
	})

	// ActiveExecutions tracks in-flight executions.
	ActiveExecutions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dexarb_execution_active_executions",
		Help: "Number of executions currently in flight",
	})
)
