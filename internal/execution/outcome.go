package execution

import (
	"math/rand"
	"sync"
	"time"
)

// OutcomeSource supplies every nondeterministic market outcome the engine
// needs, so the state machine itself stays deterministic. Production uses
// the rand-backed implementation below; tests supply fixed fakes.
type OutcomeSource interface {
	// PriceDrifted reports whether prices moved beyond tolerance between
	// detection and execution.
	PriceDrifted() bool

	// LegConfirmed reports whether a publicly submitted leg confirmed.
	LegConfirmed() bool

	// LegReverted reports whether a failed leg was mined but reverted,
	// as opposed to never confirming at all.
	LegReverted() bool

	// ExecutionPrice draws the realized price for a leg, within the
	// slippage cap around the expected price.
	ExecutionPrice(expected, maxSlippagePct float64) float64

	// GasUsed draws the gas actually consumed by a leg.
	GasUsed(gasLimit uint64) uint64

	// GasPriceGwei draws the gas price paid, bounded by the operator limit.
	GasPriceGwei(limitGwei float64) float64

	// ConfirmLatency is the wait between submission and the confirmation
	// result of one public leg.
	ConfirmLatency() time.Duration
}

// RandomOutcomesConfig tunes the production outcome source.
type RandomOutcomesConfig struct {
	DriftRate      float64       // chance validation fails on price drift
	LegSuccessRate float64       // per-leg confirmation probability
	RevertShare    float64       // share of leg failures that are reverts
	ConfirmLatency time.Duration // base confirmation wait
	Seed           int64
}

// RandomOutcomes is the rand-backed OutcomeSource used in production.
type RandomOutcomes struct {
	cfg RandomOutcomesConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomOutcomes creates an outcome source with the given rates.
// Zero-valued rates fall back to the reference behavior: 5% drift,
// 95% per-leg success, half of failures reverting.
func NewRandomOutcomes(cfg RandomOutcomesConfig) *RandomOutcomes {
	if cfg.DriftRate == 0 {
		cfg.DriftRate = 0.05
	}
	if cfg.LegSuccessRate == 0 {
		cfg.LegSuccessRate = 0.95
	}
	if cfg.RevertShare == 0 {
		cfg.RevertShare = 0.5
	}
	if cfg.ConfirmLatency == 0 {
		cfg.ConfirmLatency = 500 * time.Millisecond
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomOutcomes{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomOutcomes) draw() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// PriceDrifted draws the validation-stage price-drift outcome.
func (r *RandomOutcomes) PriceDrifted() bool {
	return r.draw() < r.cfg.DriftRate
}

// LegConfirmed draws the confirmation outcome for one public leg.
func (r *RandomOutcomes) LegConfirmed() bool {
	return r.draw() < r.cfg.LegSuccessRate
}

// LegReverted draws whether a failed leg reverted on-chain.
func (r *RandomOutcomes) LegReverted() bool {
	return r.draw() < r.cfg.RevertShare
}

// ExecutionPrice draws a realized price uniformly within the slippage cap.
func (r *RandomOutcomes) ExecutionPrice(expected, maxSlippagePct float64) float64 {
	slip := (r.draw()*2 - 1) * maxSlippagePct / 100
	return expected * (1 + slip)
}

// GasUsed draws between 60% and 100% of the gas limit.
func (r *RandomOutcomes) GasUsed(gasLimit uint64) uint64 {
	return uint64(float64(gasLimit) * (0.6 + r.draw()*0.4))
}

// GasPriceGwei draws between 10 gwei and the operator limit.
func (r *RandomOutcomes) GasPriceGwei(limitGwei float64) float64 {
	if limitGwei <= 10 {
		return limitGwei
	}
	return 10 + r.draw()*(limitGwei-10)
}

// ConfirmLatency jitters the base confirmation wait by up to 50%.
func (r *RandomOutcomes) ConfirmLatency() time.Duration {
	return time.Duration(float64(r.cfg.ConfirmLatency) * (1 + r.draw()*0.5))
}
