package venue

import (
	"context"
	"errors"
	"time"

	"github.com/mvelez/dexarb/pkg/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GuardConfig holds configuration for a guarded venue source.
type GuardConfig struct {
	RateLimit       float64       // requests per second against the venue
	BreakerFailures uint32        // consecutive failures before the breaker opens
	BreakerCooldown time.Duration // how long an open breaker skips the venue
	Logger          *zap.Logger
}

// Guarded wraps a venue Source with a per-venue rate limiter and a circuit
// breaker, so one flapping adapter neither gets hammered nor slows a scan
// cycle down with repeated timeouts.
type Guarded struct {
	src     Source
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGuarded wraps src with rate limiting and circuit breaking.
func NewGuarded(src Source, cfg GuardConfig) *Guarded {
	settings := gobreaker.Settings{
		Name:    src.Name(),
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			cfg.Logger.Warn("venue-breaker-state-change",
				zap.String("venue", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Guarded{
		src:     src,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  cfg.Logger,
	}
}

// Name returns the wrapped venue's identifier.
func (g *Guarded) Name() string {
	return g.src.Name()
}

// GetPrice fetches a quote through the limiter and breaker.
func (g *Guarded) GetPrice(ctx context.Context, pair string) (*types.PriceQuote, error) {
	err := g.limiter.Wait(ctx)
	if err != nil {
		return nil, err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		quote, priceErr := g.src.GetPrice(ctx, pair)
		if errors.Is(priceErr, types.ErrPairNotSupported) {
			// An unsupported pair is a permanent answer, not a venue failure.
			return nil, nil
		}
		if priceErr != nil {
			return nil, priceErr
		}
		return quote, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, types.ErrVenueUnavailable
		}
		return nil, err
	}

	if result == nil {
		return nil, types.ErrPairNotSupported
	}

	return result.(*types.PriceQuote), nil
}

// GetLiquidity fetches liquidity through the limiter and breaker.
func (g *Guarded) GetLiquidity(ctx context.Context, pair string) (float64, error) {
	err := g.limiter.Wait(ctx)
	if err != nil {
		return 0, err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		liquidity, liqErr := g.src.GetLiquidity(ctx, pair)
		if errors.Is(liqErr, types.ErrPairNotSupported) {
			return nil, nil
		}
		if liqErr != nil {
			return nil, liqErr
		}
		return liquidity, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, types.ErrVenueUnavailable
		}
		return 0, err
	}

	if result == nil {
		return 0, types.ErrPairNotSupported
	}

	return result.(float64), nil
}
