package types

import "time"

// RiskTolerance controls how much overall risk the operator accepts.
type RiskTolerance string

// Supported risk tolerance levels.
const (
	RiskToleranceLow    RiskTolerance = "low"
	RiskToleranceMedium RiskTolerance = "medium"
	RiskToleranceHigh   RiskTolerance = "high"
)

// Threshold returns the maximum acceptable overall risk score for the
// tolerance level. Unknown values fall back to medium.
func (r RiskTolerance) Threshold() float64 {
	switch r {
	case RiskToleranceLow:
		return 0.3
	case RiskToleranceHigh:
		return 0.8
	default:
		return 0.6
	}
}

// Valid reports whether the tolerance is one of the known levels.
func (r RiskTolerance) Valid() bool {
	return r == RiskToleranceLow || r == RiskToleranceMedium || r == RiskToleranceHigh
}

// StrategyParameters are the operator-configurable thresholds for one
// evaluation. Supplied by the caller or defaulted.
type StrategyParameters struct {
	MaxTradeSize          float64       `json:"max_trade_size"`
	MinProfitThresholdPct float64       `json:"min_profit_threshold_pct"`
	MaxSlippagePct        float64       `json:"max_slippage_pct"`
	GasPriceLimitGwei     float64       `json:"gas_price_limit_gwei"`
	ExecutionTimeout      time.Duration `json:"execution_timeout"`
	RiskTolerance         RiskTolerance `json:"risk_tolerance"`
	UseProtectedRelay     bool          `json:"use_protected_relay"`
}

// RiskMetrics holds the six component risk scores and their weighted
// aggregate. Every score is in [0,1]. Created once per evaluation.
type RiskMetrics struct {
	VolatilityScore   float64 `json:"volatility_score"`
	LiquidityRisk     float64 `json:"liquidity_risk"`
	ExecutionRisk     float64 `json:"execution_risk"`
	MarketImpactScore float64 `json:"market_impact_score"`
	SlippageRisk      float64 `json:"slippage_risk"`
	GasRisk           float64 `json:"gas_risk"`
	OverallRiskScore  float64 `json:"overall_risk_score"`
}

// PlanStep is one leg of the execution plan.
type PlanStep struct {
	Action         TransactionType `json:"action"`
	Venue          string          `json:"venue"`
	Pair           string          `json:"pair"`
	Amount         float64         `json:"amount"`
	ExpectedPrice  float64         `json:"expected_price"`
	MaxSlippagePct float64         `json:"max_slippage_pct"`
	GasEstimateUSD float64         `json:"gas_estimate_usd"`
}

// PlanTiming bounds the plan in time.
type PlanTiming struct {
	ExecutionTimeout time.Duration `json:"execution_timeout"`
	CreatedAt        time.Time     `json:"created_at"`
}

// PlanProtection carries the front-running protection settings.
type PlanProtection struct {
	UseProtectedRelay      bool `json:"use_protected_relay"`
	FrontRunningProtection bool `json:"front_running_protection"`
}

// PlanFallback carries the abort thresholds checked before execution.
type PlanFallback struct {
	CancelIfProfitBelowPct float64 `json:"cancel_if_profit_below_pct"`
	MaxPriceDeviationPct   float64 `json:"max_price_deviation_pct"`
}

// ExecutionPlan is the ordered buy-then-sell plan built by the evaluator and
// consumed read-only by the execution engine.
type ExecutionPlan struct {
	BuyStep    PlanStep       `json:"buy_step"`
	SellStep   PlanStep       `json:"sell_step"`
	Timing     PlanTiming     `json:"timing"`
	Protection PlanProtection `json:"protection"`
	Fallback   PlanFallback   `json:"fallback"`
}

// ExpectedOutcome is the probability-weighted profit distribution for a
// strategy. Optimistic and Realistic are floored at zero; Pessimistic is not.
type ExpectedOutcome struct {
	OptimisticProfit  float64 `json:"optimistic_profit"`
	RealisticProfit   float64 `json:"realistic_profit"`
	PessimisticProfit float64 `json:"pessimistic_profit"`
	ExpectedValue     float64 `json:"expected_value"`
	MaxLossUSD        float64 `json:"max_loss_usd"`
}

// RecommendedAction is the evaluator's final label for an opportunity.
type RecommendedAction string

// Closed set of recommendation labels, in rule priority order.
const (
	ActionRejectInsufficientProfit RecommendedAction = "reject_insufficient_profit"
	ActionRejectHighRisk           RecommendedAction = "reject_high_risk"
	ActionRejectNegativeEV         RecommendedAction = "reject_negative_expected_value"
	ActionRejectLowConfidence      RecommendedAction = "reject_low_confidence"
	ActionRejectHighGasCost        RecommendedAction = "reject_high_gas_cost"
	ActionExecute                  RecommendedAction = "execute"
	ActionExecuteWithCaution       RecommendedAction = "execute_with_caution"
	ActionMonitor                  RecommendedAction = "monitor"
)

// Actionable reports whether the engine should accept a strategy with this
// recommendation.
func (a RecommendedAction) Actionable() bool {
	return a == ActionExecute || a == ActionExecuteWithCaution
}

// ArbitrageStrategy is the immutable unit passed from the evaluator to the
// execution engine.
type ArbitrageStrategy struct {
	ID                string               `json:"id"`
	Opportunity       ArbitrageOpportunity `json:"opportunity"`
	RiskMetrics       RiskMetrics          `json:"risk_metrics"`
	Plan              ExecutionPlan        `json:"plan"`
	ExpectedOutcome   ExpectedOutcome      `json:"expected_outcome"`
	ConfidenceLevel   float64              `json:"confidence_level"`
	RecommendedAction RecommendedAction    `json:"recommended_action"`
	CreatedAt         time.Time            `json:"created_at"`
}
