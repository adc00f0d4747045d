package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/params"
	"github.com/google/uuid"
	"github.com/mvelez/dexarb/internal/relay"
	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

const (
	// maxOpportunityAge is how old an opportunity may be before execution
	// refuses to act on it.
	maxOpportunityAge = 60 * time.Second

	// legGasLimit is the per-leg gas limit for a swap.
	legGasLimit = 250_000
)

// Storage is the sink for terminal execution results (the reporting
// collaborator). Implementations must treat results as immutable.
type Storage interface {
	StoreResult(ctx context.Context, result *types.ExecutionResult) error
	Close() error
}

// Config holds engine configuration.
type Config struct {
	MaxConcurrentExecutions int
	ExecutionTimeout        time.Duration // fallback when the plan has none
	GasPriceLimitGwei       float64
	ETHUSDPrice             float64
	Relay                   relay.Client  // nil forces the sequential path
	Outcomes                OutcomeSource
	Storage                 Storage // optional
	Logger                  *zap.Logger
}

// Engine drives recommended strategies through the two-leg execution state
// machine and owns each ExecutionResult until it reaches a terminal status.
type Engine struct {
	cfg      Config
	logger   *zap.Logger
	relay    relay.Client
	outcomes OutcomeSource
	storage  Storage
	ledger   *Ledger

	now func() time.Time
}

// New creates a new execution engine.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   cfg.Logger,
		relay:    cfg.Relay,
		outcomes: cfg.Outcomes,
		storage:  cfg.Storage,
		ledger:   NewLedger(cfg.MaxConcurrentExecutions),
		now:      time.Now,
	}
}

// Ledger exposes the engine's execution ledger (read API).
func (e *Engine) Ledger() *Ledger {
	return e.ledger
}

// ExecuteStrategy drives one strategy to a terminal result. It never returns
// an error: admission failures, validation failures, leg failures and
// internal errors are all reported through the result's status and
// ErrorMessage. Once admitted, an execution always finalizes.
func (e *Engine) ExecuteStrategy(ctx context.Context, strategy *types.ArbitrageStrategy) *types.ExecutionResult {
	startedAt := e.now()
	result := &types.ExecutionResult{
		ExecutionID: uuid.New().String(),
		StrategyID:  strategy.ID,
		Pair:        strategy.Opportunity.Pair,
		Status:      types.ExecutionPending,
		StartedAt:   &startedAt,
	}

	if !strategy.RecommendedAction.Actionable() {
		result.Status = types.ExecutionCancelled
		result.ErrorMessage = fmt.Sprintf("strategy not recommended for execution: %s", strategy.RecommendedAction)
		AdmissionRejectedTotal.WithLabelValues("recommendation").Inc()
		e.finalize(ctx, result)
		return result
	}

	err := e.ledger.Admit(result)
	if err != nil {
		result.Status = types.ExecutionFailed
		result.ErrorMessage = ErrCapacityExceeded.Error()
		AdmissionRejectedTotal.WithLabelValues("capacity").Inc()
		e.finalize(ctx, result)
		return result
	}

	timeout := strategy.Plan.Timing.ExecutionTimeout
	if timeout <= 0 {
		timeout = e.cfg.ExecutionTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result.Status = types.ExecutionFailed
			result.ErrorMessage = fmt.Sprintf("internal error: %v", r)
			e.logger.Error("execution-panic-recovered",
				zap.String("execution-id", result.ExecutionID),
				zap.Any("panic", r))
		}
		// A finalize failure must not escape into the caller's goroutine.
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("finalize-panic-recovered",
					zap.String("execution-id", result.ExecutionID),
					zap.Any("panic", r))
			}
		}()
		e.finalize(ctx, result)
	}()

	e.drive(execCtx, result, strategy)
	return result
}

// drive runs PREPARING and EXECUTING for one admitted execution.
func (e *Engine) drive(ctx context.Context, result *types.ExecutionResult, strategy *types.ArbitrageStrategy) {
	result.Status = types.ExecutionPreparing
	e.ledger.Update(result)

	age := strategy.Opportunity.Age(e.now())
	if age > maxOpportunityAge {
		result.Status = types.ExecutionFailed
		result.ErrorMessage = fmt.Sprintf("opportunity expired: observed %.0fs ago", age.Seconds())
		return
	}

	if e.outcomes.PriceDrifted() {
		result.Status = types.ExecutionFailed
		result.ErrorMessage = "market conditions changed: price drifted beyond tolerance"
		return
	}

	plan := strategy.Plan
	result.Transactions = []*types.Transaction{
		e.buildTransaction(plan.BuyStep),
		e.buildTransaction(plan.SellStep),
	}

	result.Status = types.ExecutionExecuting
	e.ledger.Update(result)

	if plan.Protection.UseProtectedRelay && e.relay != nil {
		e.executeProtected(ctx, result, plan)
	} else {
		e.executeSequential(ctx, result, plan)
	}
}

// buildTransaction prepares one leg from its plan step.
func (e *Engine) buildTransaction(step types.PlanStep) *types.Transaction {
	return &types.Transaction{
		ID:            uuid.New().String(),
		Type:          step.Action,
		Venue:         step.Venue,
		Pair:          step.Pair,
		Amount:        step.Amount,
		ExpectedPrice: step.ExpectedPrice,
		GasPriceGwei:  e.outcomes.GasPriceGwei(e.cfg.GasPriceLimitGwei),
		GasLimit:      legGasLimit,
		Status:        types.TxPending,
	}
}

// executeProtected submits both legs as one atomic bundle. Either both legs
// land in the block or neither does.
func (e *Engine) executeProtected(ctx context.Context, result *types.ExecutionResult, plan types.ExecutionPlan) {
	result.ProtectedExecutionUsed = true

	submittedAt := e.now()
	for _, tx := range result.Transactions {
		tx.Status = types.TxSubmitted
		tx.SubmittedAt = &submittedAt
	}

	receipt, err := e.relay.SubmitBundle(ctx, result.Transactions)
	if err != nil {
		msg := fmt.Sprintf("bundle submission failed: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("execution timed out after %.0fs", plan.Timing.ExecutionTimeout.Seconds())
		}
		for _, tx := range result.Transactions {
			tx.Status = types.TxFailed
			tx.Error = msg
		}
		result.Status = types.ExecutionFailed
		result.ErrorMessage = msg
		return
	}

	if !receipt.Included {
		for _, tx := range result.Transactions {
			tx.Status = types.TxFailed
			tx.Error = "bundle not included in block"
		}
		result.Status = types.ExecutionFailed
		result.ErrorMessage = "bundle not included in block"
		return
	}

	confirmedAt := e.now()
	e.confirmLeg(result.Leg(types.TxBuy), plan.BuyStep, confirmedAt)
	e.confirmLeg(result.Leg(types.TxSell), plan.SellStep, confirmedAt)

	result.Status = types.ExecutionCompleted

	e.logger.Info("bundle-included",
		zap.String("execution-id", result.ExecutionID),
		zap.String("bundle-hash", receipt.BundleHash.Hex()))
}

// executeSequential submits the buy leg alone first and only touches the
// sell leg after the buy confirmed. A sell failure after a confirmed buy is
// PARTIAL: the operator owns unhedged inventory.
func (e *Engine) executeSequential(ctx context.Context, result *types.ExecutionResult, plan types.ExecutionPlan) {
	buy := result.Leg(types.TxBuy)
	sell := result.Leg(types.TxSell)

	e.submitLeg(ctx, buy, plan.BuyStep, plan)
	if !buy.Confirmed() {
		result.Status = types.ExecutionFailed
		result.ErrorMessage = fmt.Sprintf("buy transaction failed: %s", buy.Error)
		return
	}

	e.submitLeg(ctx, sell, plan.SellStep, plan)
	if !sell.Confirmed() {
		result.Status = types.ExecutionPartial
		result.ErrorMessage = fmt.Sprintf("sell transaction failed: %s", sell.Error)
		return
	}

	result.Status = types.ExecutionCompleted
}

// submitLeg drives one public-mempool leg through SUBMITTED to a terminal
// transaction status.
func (e *Engine) submitLeg(ctx context.Context, tx *types.Transaction, step types.PlanStep, plan types.ExecutionPlan) {
	submittedAt := e.now()
	tx.Status = types.TxSubmitted
	tx.SubmittedAt = &submittedAt

	err := sleepCtx(ctx, e.outcomes.ConfirmLatency())
	if err != nil {
		tx.Status = types.TxFailed
		tx.Error = fmt.Sprintf("execution timed out after %.0fs", plan.Timing.ExecutionTimeout.Seconds())
		return
	}

	if !e.outcomes.LegConfirmed() {
		if e.outcomes.LegReverted() {
			tx.Status = types.TxReverted
			tx.Error = "transaction reverted on-chain"
		} else {
			tx.Status = types.TxFailed
			tx.Error = "transaction not confirmed in time"
		}
		return
	}

	e.confirmLeg(tx, step, e.now())
}

// confirmLeg stamps a confirmed leg with its realized price and gas usage.
func (e *Engine) confirmLeg(tx *types.Transaction, step types.PlanStep, confirmedAt time.Time) {
	tx.ActualPrice = e.outcomes.ExecutionPrice(tx.ExpectedPrice, step.MaxSlippagePct)
	tx.GasUsed = e.outcomes.GasUsed(tx.GasLimit)
	tx.Status = types.TxConfirmed
	tx.ConfirmedAt = &confirmedAt
}

// finalize stamps timestamps, computes final results where applicable, hands
// the result to the ledger and the storage sink, and updates metrics. It
// runs for every execution regardless of outcome.
func (e *Engine) finalize(ctx context.Context, result *types.ExecutionResult) {
	completedAt := e.now()
	result.CompletedAt = &completedAt
	if result.StartedAt != nil {
		result.ExecutionTimeSec = completedAt.Sub(*result.StartedAt).Seconds()
	}

	e.computeFinalResults(result)

	e.ledger.Finalize(result)

	if e.storage != nil {
		err := e.storage.StoreResult(ctx, result)
		if err != nil {
			e.logger.Error("failed-to-store-result",
				zap.String("execution-id", result.ExecutionID),
				zap.Error(err))
		}
	}

	ExecutionsTotal.WithLabelValues(string(result.Status)).Inc()
	ExecutionDurationSeconds.Observe(result.ExecutionTimeSec)
	if result.Status == types.ExecutionCompleted {
		if result.ActualProfitUSD != nil {
			ProfitRealizedUSD.Add(*result.ActualProfitUSD)
		}
		GasSpentUSD.Add(result.GasCostUSD)
	}

	e.logger.Info("execution-finalized",
		zap.String("execution-id", result.ExecutionID),
		zap.String("status", string(result.Status)),
		zap.Float64("execution-time-sec", result.ExecutionTimeSec),
		zap.String("error", result.ErrorMessage))
}

// computeFinalResults fills in gas cost, slippage and realized profit. It
// only applies to COMPLETED or PARTIAL results with at least one confirmed
// leg. A PARTIAL result reports gas and slippage but no profit figure; one
// leg is unhedged and reconciling it is the caller's responsibility.
func (e *Engine) computeFinalResults(result *types.ExecutionResult) {
	if result.Status != types.ExecutionCompleted && result.Status != types.ExecutionPartial {
		return
	}

	confirmed := result.ConfirmedLegs()
	if len(confirmed) == 0 {
		return
	}

	totalGas := 0.0
	totalSlippage := 0.0
	for _, tx := range confirmed {
		totalGas += float64(tx.GasUsed) * tx.GasPriceGwei / params.GWei * e.cfg.ETHUSDPrice
		totalSlippage += tx.SlippagePct()
	}

	result.GasCostUSD = totalGas
	result.SlippagePct = totalSlippage / float64(len(confirmed))

	buy := result.Leg(types.TxBuy)
	sell := result.Leg(types.TxSell)
	if result.Status == types.ExecutionCompleted && buy.Confirmed() && sell.Confirmed() {
		profit := sell.Amount*sell.ActualPrice - buy.Amount*buy.ActualPrice - totalGas
		result.ActualProfitUSD = &profit
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
