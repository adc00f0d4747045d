package strategy

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mvelez/dexarb/pkg/cache"
	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

// Risk component weights. They sum to 1.0.
const (
	weightVolatility   = 0.25
	weightLiquidity    = 0.20
	weightExecution    = 0.20
	weightMarketImpact = 0.15
	weightSlippage     = 0.15
	weightGas          = 0.05
)

// Execution-risk constants per venue. Venues not listed here score 0.3.
var venueExecutionRisk = map[string]float64{
	"uniswap_v3": 0.10,
	"sushiswap":  0.15,
	"curve":      0.12,
	"balancer":   0.18,
}

const unknownVenueRisk = 0.3

// MarketData is the evaluator's view into the scanner's cache: current
// quotes for staleness checks and mid-price history for volatility.
type MarketData interface {
	Quote(pair, venue string) (*types.PriceQuote, bool)
	RecentPrices(pair string) []float64
}

// Config holds evaluator configuration.
type Config struct {
	Defaults        types.StrategyParameters
	Market          MarketData  // optional
	VolatilityCache cache.Cache // optional
	Logger          *zap.Logger
}

// Evaluator decides whether an opportunity is worth executing and builds the
// plan to do so. It keeps its own evaluation history for the historical
// confidence bonus.
type Evaluator struct {
	defaults types.StrategyParameters
	market   MarketData
	volCache cache.Cache
	logger   *zap.Logger

	mu      sync.Mutex
	history []*types.ArbitrageStrategy

	now func() time.Time
}

// New creates a new strategy evaluator.
func New(cfg Config) *Evaluator {
	return &Evaluator{
		defaults: cfg.Defaults,
		market:   cfg.Market,
		volCache: cfg.VolatilityCache,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Evaluate produces a full strategy for one opportunity: risk metrics,
// execution plan, expected outcome, confidence and a final recommendation.
// A nil params uses the configured defaults.
func (e *Evaluator) Evaluate(opp *types.ArbitrageOpportunity, params *types.StrategyParameters) *types.ArbitrageStrategy {
	start := time.Now()

	p := e.defaults
	if params != nil {
		p = *params
	}

	risk := e.AssessRisk(opp, p)
	plan := buildPlan(opp, p, risk, e.now())
	outcome := expectedOutcome(opp, p, risk)
	confidence := e.confidenceLevel(opp, risk)
	action := recommend(opp, p, risk, outcome, confidence)

	strategy := &types.ArbitrageStrategy{
		ID:                uuid.New().String(),
		Opportunity:       *opp,
		RiskMetrics:       risk,
		Plan:              plan,
		ExpectedOutcome:   outcome,
		ConfidenceLevel:   confidence,
		RecommendedAction: action,
		CreatedAt:         e.now(),
	}

	e.mu.Lock()
	e.history = append(e.history, strategy)
	e.mu.Unlock()

	EvaluationsTotal.WithLabelValues(string(action)).Inc()
	OverallRiskScore.Observe(risk.OverallRiskScore)
	ConfidenceLevel.Observe(confidence)
	ExpectedValueUSD.Observe(outcome.ExpectedValue)
	EvaluationDurationSeconds.Observe(time.Since(start).Seconds())

	e.logger.Info("strategy-evaluated",
		zap.String("strategy-id", strategy.ID),
		zap.String("pair", opp.Pair),
		zap.String("recommendation", string(action)),
		zap.Float64("risk-score", risk.OverallRiskScore),
		zap.Float64("confidence", confidence),
		zap.Float64("expected-value", outcome.ExpectedValue))

	return strategy
}

// AssessRisk combines six independent component scores into an overall risk
// score in [0,1].
func (e *Evaluator) AssessRisk(opp *types.ArbitrageOpportunity, p types.StrategyParameters) types.RiskMetrics {
	m := types.RiskMetrics{
		VolatilityScore:   e.volatilityScore(opp.Pair),
		LiquidityRisk:     liquidityRisk(opp),
		ExecutionRisk:     e.executionRisk(opp),
		MarketImpactScore: marketImpactScore(opp),
		SlippageRisk:      slippageRisk(opp, p),
		GasRisk:           gasRisk(opp),
	}

	m.OverallRiskScore = clamp01(
		m.VolatilityScore*weightVolatility +
			m.LiquidityRisk*weightLiquidity +
			m.ExecutionRisk*weightExecution +
			m.MarketImpactScore*weightMarketImpact +
			m.SlippageRisk*weightSlippage +
			m.GasRisk*weightGas)

	return m
}

// liquidityRisk is a step function of trade size relative to the thinner
// pool. Missing liquidity data scores a flat 0.8.
func liquidityRisk(opp *types.ArbitrageOpportunity) float64 {
	minLiquidity := opp.MinLiquidity()
	if minLiquidity <= 0 {
		return 0.8
	}

	ratio := opp.TradeAmount / minLiquidity
	switch {
	case ratio < 0.01:
		return 0.1
	case ratio < 0.05:
		return 0.3
	case ratio < 0.10:
		return 0.6
	default:
		return 0.9
	}
}

// executionRisk combines venue quality, data staleness and margin thinness.
func (e *Evaluator) executionRisk(opp *types.ArbitrageOpportunity) float64 {
	risk := 0.2

	risk += (venueRisk(opp.BuyVenue) + venueRisk(opp.SellVenue)) / 2

	age := opp.Age(e.now())
	switch {
	case age > 30*time.Second:
		risk += 0.3
	case age > 10*time.Second:
		risk += 0.1
	}

	switch {
	case opp.ProfitPct < 0.5:
		risk += 0.4
	case opp.ProfitPct < 1.0:
		risk += 0.2
	}

	return clamp01(risk)
}

func venueRisk(name string) float64 {
	if r, ok := venueExecutionRisk[name]; ok {
		return r
	}
	return unknownVenueRisk
}

// marketImpactScore estimates price impact as sqrt(size/liquidity)*0.1 per
// leg, averaged across both legs.
func marketImpactScore(opp *types.ArbitrageOpportunity) float64 {
	impact := (legImpact(opp.TradeAmount, opp.BuyLiquidity) +
		legImpact(opp.TradeAmount, opp.SellLiquidity)) / 2
	return clamp01(impact)
}

func legImpact(amount, liquidity float64) float64 {
	if liquidity <= 0 {
		return 0.5
	}
	return math.Sqrt(amount/liquidity) * 0.1
}

// slippageRisk compares the expected slippage for the trade size against the
// operator's slippage budget.
func slippageRisk(opp *types.ArbitrageOpportunity, p types.StrategyParameters) float64 {
	if p.MaxSlippagePct <= 0 {
		return 1.0
	}
	expected := 0.1 * math.Min(opp.TradeAmount/10000, 2.0)
	return clamp01(expected / p.MaxSlippagePct)
}

// gasRisk is a step function of gas cost as a share of gross profit.
func gasRisk(opp *types.ArbitrageOpportunity) float64 {
	if opp.ProfitAmountUSD <= 0 {
		return 0.9
	}

	pct := opp.GasCostUSD / opp.ProfitAmountUSD * 100
	switch {
	case pct < 10:
		return 0.1
	case pct < 25:
		return 0.3
	case pct < 50:
		return 0.6
	default:
		return 0.9
	}
}

// buildPlan constructs the two-step buy-then-sell plan. A high overall risk
// score tightens both slippage caps and raises the cancel threshold.
func buildPlan(opp *types.ArbitrageOpportunity, p types.StrategyParameters, risk types.RiskMetrics, now time.Time) types.ExecutionPlan {
	slippageCap := p.MaxSlippagePct
	cancelBelow := opp.ProfitPct * 0.5

	if risk.OverallRiskScore > 0.7 {
		slippageCap *= 0.8
		cancelBelow = opp.ProfitPct * 0.7
	}

	legGas := opp.GasCostUSD / 2

	return types.ExecutionPlan{
		BuyStep: types.PlanStep{
			Action:         types.TxBuy,
			Venue:          opp.BuyVenue,
			Pair:           opp.Pair,
			Amount:         opp.TradeAmount,
			ExpectedPrice:  opp.BuyPrice,
			MaxSlippagePct: slippageCap,
			GasEstimateUSD: legGas,
		},
		SellStep: types.PlanStep{
			Action:         types.TxSell,
			Venue:          opp.SellVenue,
			Pair:           opp.Pair,
			Amount:         opp.TradeAmount,
			ExpectedPrice:  opp.SellPrice,
			MaxSlippagePct: slippageCap,
			GasEstimateUSD: legGas,
		},
		Timing: types.PlanTiming{
			ExecutionTimeout: p.ExecutionTimeout,
			CreatedAt:        now,
		},
		Protection: types.PlanProtection{
			UseProtectedRelay:      p.UseProtectedRelay,
			FrontRunningProtection: p.UseProtectedRelay,
		},
		Fallback: types.PlanFallback{
			CancelIfProfitBelowPct: cancelBelow,
			MaxPriceDeviationPct:   1.0,
		},
	}
}

// expectedOutcome builds the probability-weighted profit distribution.
// Optimistic and realistic are floored at zero; pessimistic is not.
func expectedOutcome(opp *types.ArbitrageOpportunity, p types.StrategyParameters, risk types.RiskMetrics) types.ExpectedOutcome {
	riskAdjustment := 1 - risk.OverallRiskScore*0.3
	slippageCost := opp.TradeAmount * (p.MaxSlippagePct / 100) * 2
	marketImpactCost := opp.TradeAmount * risk.MarketImpactScore

	optimistic := math.Max(opp.NetProfitUSD*1.1, 0)
	realistic := math.Max(opp.NetProfitUSD*riskAdjustment-slippageCost-marketImpactCost, 0)
	pessimistic := realistic * 0.5

	return types.ExpectedOutcome{
		OptimisticProfit:  optimistic,
		RealisticProfit:   realistic,
		PessimisticProfit: pessimistic,
		ExpectedValue:     0.2*optimistic + 0.6*realistic + 0.2*pessimistic,
		MaxLossUSD:        math.Min(pessimistic, -opp.TradeAmount*0.02),
	}
}

// confidenceLevel blends the opportunity's own confidence with risk, margin
// and the recent track record of actionable recommendations.
func (e *Evaluator) confidenceLevel(opp *types.ArbitrageOpportunity, risk types.RiskMetrics) float64 {
	confidence := opp.Confidence -
		risk.OverallRiskScore*0.4 +
		math.Min(opp.ProfitPct/2.0, 0.2) +
		e.historicalBonus()

	return clamp01(confidence)
}

// historicalBonus looks at the execute-recommendation rate of the last 10
// evaluations. It needs at least 5 prior strategies to say anything.
func (e *Evaluator) historicalBonus() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.history) < 5 {
		return 0
	}

	recent := e.history
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	executed := 0
	for _, s := range recent {
		if s.RecommendedAction.Actionable() {
			executed++
		}
	}
	rate := float64(executed) / float64(len(recent))

	switch {
	case rate > 0.8:
		return 0.1
	case rate > 0.6:
		return 0.05
	case rate < 0.4:
		return -0.1
	default:
		return 0
	}
}

// recommend applies the ordered decision rules; the first matching rule
// wins, so the order here is load-bearing.
func recommend(
	opp *types.ArbitrageOpportunity,
	p types.StrategyParameters,
	risk types.RiskMetrics,
	outcome types.ExpectedOutcome,
	confidence float64,
) types.RecommendedAction {
	switch {
	case opp.ProfitPct < p.MinProfitThresholdPct:
		return types.ActionRejectInsufficientProfit
	case risk.OverallRiskScore > p.RiskTolerance.Threshold():
		return types.ActionRejectHighRisk
	case outcome.RealisticProfit <= 0:
		return types.ActionRejectNegativeEV
	case confidence < 0.6:
		return types.ActionRejectLowConfidence
	case opp.GasCostUSD > opp.ProfitAmountUSD*0.8:
		return types.ActionRejectHighGasCost
	case outcome.ExpectedValue > opp.TradeAmount*0.001 && confidence > 0.7:
		return types.ActionExecute
	case confidence > 0.6:
		return types.ActionExecuteWithCaution
	default:
		return types.ActionMonitor
	}
}

// HistorySize returns how many strategies the evaluator has produced.
func (e *Evaluator) HistorySize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
