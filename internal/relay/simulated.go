package relay

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

const (
	defaultSubmitLatency    = 500 * time.Millisecond
	defaultInclusionLatency = 2 * time.Second
	defaultInclusionRate    = 0.85
)

// SimulatedConfig holds configuration for the simulated relay.
type SimulatedConfig struct {
	SubmitLatency    time.Duration // relay acceptance round trip
	InclusionLatency time.Duration // wait for the target block
	InclusionRate    float64       // probability a bundle lands in the block
	Seed             int64
	Logger           *zap.Logger
}

// Simulated is an in-process relay client that stands in for a real bundle
// relay. It models the two latencies of the real thing (submission and block
// inclusion) and an inclusion success draw.
type Simulated struct {
	cfg    SimulatedConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulated creates a simulated relay client. Zero latencies default to
// values in the range of a real relay round trip and block inclusion wait.
func NewSimulated(cfg SimulatedConfig) *Simulated {
	if cfg.SubmitLatency == 0 {
		cfg.SubmitLatency = defaultSubmitLatency
	}
	if cfg.InclusionLatency == 0 {
		cfg.InclusionLatency = defaultInclusionLatency
	}
	if cfg.InclusionRate == 0 {
		cfg.InclusionRate = defaultInclusionRate
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Simulated{
		cfg:    cfg,
		logger: cfg.Logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// SubmitBundle submits the legs as one bundle and waits for the inclusion
// result. The whole call respects ctx cancellation.
func (s *Simulated) SubmitBundle(ctx context.Context, legs []*types.Transaction) (*Receipt, error) {
	hash := bundleHash(legs)

	s.logger.Debug("relay-bundle-submitting",
		zap.String("bundle-hash", hash.Hex()),
		zap.Int("legs", len(legs)))

	if err := sleepCtx(ctx, s.cfg.SubmitLatency); err != nil {
		return nil, err
	}

	if err := sleepCtx(ctx, s.cfg.InclusionLatency); err != nil {
		return nil, err
	}

	s.mu.Lock()
	included := s.rng.Float64() < s.cfg.InclusionRate
	s.mu.Unlock()

	s.logger.Debug("relay-bundle-result",
		zap.String("bundle-hash", hash.Hex()),
		zap.Bool("included", included))

	return &Receipt{
		BundleHash: hash,
		Accepted:   true,
		Included:   included,
	}, nil
}

// bundleHash derives a deterministic bundle identifier from the leg IDs.
func bundleHash(legs []*types.Transaction) common.Hash {
	data := make([]byte, 0, len(legs)*36)
	for _, leg := range legs {
		data = append(data, []byte(leg.ID)...)
	}
	return crypto.Keccak256Hash(data)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
