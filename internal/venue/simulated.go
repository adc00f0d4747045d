package venue

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

// Reference mid prices used when a simulated venue is not given its own.
var defaultBasePrices = map[string]float64{
	"WETH/USDC": 2000.0,
	"WBTC/USDC": 40000.0,
	"WETH/DAI":  2000.0,
}

// SimulatedConfig holds configuration for a simulated venue.
type SimulatedConfig struct {
	Name         string
	GasCostUSD   float64            // flat swap gas estimate for this venue
	PriceBiasPct float64            // persistent skew vs the reference price
	JitterPct    float64            // amplitude of per-quote random noise
	Liquidity    map[string]float64 // per-pair pool liquidity in USD
	Volume24h    map[string]float64 // per-pair 24h volume in USD
	BasePrices   map[string]float64 // overrides defaultBasePrices
	Seed         int64
	Logger       *zap.Logger
}

// Simulated is an in-process venue adapter that stands in for a real DEX
// price feed. Prices random-walk around a reference mid with a per-venue
// bias, so two simulated venues drift apart and produce spreads.
type Simulated struct {
	cfg    SimulatedConfig
	logger *zap.Logger

	mu   sync.Mutex
	rng  *rand.Rand
	base map[string]float64
}

// NewSimulated creates a simulated venue adapter.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	base := make(map[string]float64)
	for pair, price := range defaultBasePrices {
		base[pair] = price
	}
	for pair, price := range cfg.BasePrices {
		base[pair] = price
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulated{
		cfg:    cfg,
		logger: cfg.Logger,
		rng:    rand.New(rand.NewSource(seed)),
		base:   base,
	}
}

// Name returns the venue identifier.
func (s *Simulated) Name() string {
	return s.cfg.Name
}

// GetPrice returns the venue's current quote for a pair.
func (s *Simulated) GetPrice(ctx context.Context, pair string) (*types.PriceQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokenA, tokenB, err := types.SplitPair(pair)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mid, ok := s.base[pair]
	if !ok {
		return nil, types.ErrPairNotSupported
	}

	// Random-walk the reference mid so spreads open and close over time.
	// A zero jitter keeps the venue fully deterministic for tests.
	jitter := 0.0
	if s.cfg.JitterPct > 0 {
		mid *= 1 + (s.rng.Float64()-0.5)*0.002
		s.base[pair] = mid
		jitter = (s.rng.Float64()*2 - 1) * s.cfg.JitterPct / 100
	}
	price := mid * (1 + s.cfg.PriceBiasPct/100) * (1 + jitter)

	liquidity := s.cfg.Liquidity[pair]
	if liquidity == 0 {
		liquidity = 1_000_000
	}
	volume := s.cfg.Volume24h[pair]
	if volume == 0 {
		volume = liquidity * 2
	}

	return &types.PriceQuote{
		Venue:      s.cfg.Name,
		TokenA:     tokenA,
		TokenB:     tokenB,
		Price:      price,
		Liquidity:  liquidity,
		Volume24h:  volume,
		GasCostUSD: s.cfg.GasCostUSD,
		ObservedAt: time.Now(),
	}, nil
}

// GetLiquidity returns the venue's liquidity for a pair in USD.
func (s *Simulated) GetLiquidity(ctx context.Context, pair string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.base[pair]; !ok {
		return 0, types.ErrPairNotSupported
	}

	liquidity := s.cfg.Liquidity[pair]
	if liquidity == 0 {
		liquidity = 1_000_000
	}

	return liquidity, nil
}

// SetBasePrice pins the reference mid for a pair. Used by tests and by the
// scan command to replay fixed scenarios.
func (s *Simulated) SetBasePrice(pair string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base[pair] = price
}
