package venue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

// flakySource fails a configurable number of times before succeeding.
type flakySource struct {
	name      string
	failures  int
	calls     int
	pairKnown bool
}

func (f *flakySource) Name() string { return f.name }

func (f *flakySource) GetPrice(ctx context.Context, pair string) (*types.PriceQuote, error) {
	f.calls++
	if !f.pairKnown {
		return nil, types.ErrPairNotSupported
	}
	if f.calls <= f.failures {
		return nil, errors.New("venue timeout")
	}
	return &types.PriceQuote{Venue: f.name, TokenA: "WETH", TokenB: "USDC", Price: 2000, ObservedAt: time.Now()}, nil
}

func (f *flakySource) GetLiquidity(ctx context.Context, pair string) (float64, error) {
	if !f.pairKnown {
		return 0, types.ErrPairNotSupported
	}
	return 1_000_000, nil
}

func newGuard(src Source) *Guarded {
	logger, _ := zap.NewDevelopment()
	return NewGuarded(src, GuardConfig{
		RateLimit:       1000, // effectively unlimited for tests
		BreakerFailures: 3,
		BreakerCooldown: time.Minute,
		Logger:          logger,
	})
}

func TestGuardedPassesThrough(t *testing.T) {
	g := newGuard(&flakySource{name: "uniswap_v3", pairKnown: true})

	quote, err := g.GetPrice(context.Background(), "WETH/USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Venue != "uniswap_v3" || quote.Price != 2000 {
		t.Errorf("unexpected quote: %+v", quote)
	}

	liq, err := g.GetLiquidity(context.Background(), "WETH/USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if liq != 1_000_000 {
		t.Errorf("expected liquidity 1000000, got %.0f", liq)
	}
}

func TestGuardedBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	src := &flakySource{name: "sushiswap", pairKnown: true, failures: 100}
	g := newGuard(src)

	for i := 0; i < 3; i++ {
		_, err := g.GetPrice(context.Background(), "WETH/USDC")
		if err == nil {
			t.Fatal("expected failure while breaker is closed")
		}
		if errors.Is(err, types.ErrVenueUnavailable) {
			t.Fatalf("breaker opened early on call %d", i+1)
		}
	}

	// Breaker is open now; the venue must not be hit again.
	callsBefore := src.calls
	_, err := g.GetPrice(context.Background(), "WETH/USDC")
	if !errors.Is(err, types.ErrVenueUnavailable) {
		t.Fatalf("expected ErrVenueUnavailable from open breaker, got %v", err)
	}
	if src.calls != callsBefore {
		t.Error("open breaker should not call the venue")
	}
}

func TestGuardedUnsupportedPairDoesNotTripBreaker(t *testing.T) {
	src := &flakySource{name: "curve", pairKnown: false}
	g := newGuard(src)

	for i := 0; i < 10; i++ {
		_, err := g.GetPrice(context.Background(), "FOO/BAR")
		if !errors.Is(err, types.ErrPairNotSupported) {
			t.Fatalf("expected ErrPairNotSupported, got %v", err)
		}
	}

	// The breaker must still be closed after many unsupported-pair answers.
	if src.calls != 10 {
		t.Errorf("expected all 10 calls to reach the venue, got %d", src.calls)
	}
}

func TestGuardedRateLimiterHonorsContext(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	g := NewGuarded(&flakySource{name: "balancer", pairKnown: true}, GuardConfig{
		RateLimit:       0.001, // one request per ~17 minutes
		BreakerFailures: 3,
		BreakerCooldown: time.Minute,
		Logger:          logger,
	})

	// First request consumes the initial token.
	if _, err := g.GetPrice(context.Background(), "WETH/USDC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.GetPrice(ctx, "WETH/USDC")
	if err == nil {
		t.Fatal("expected rate-limited request to fail on context deadline")
	}
}
