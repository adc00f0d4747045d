package strategy

import (
	"math"
	"time"
)

const (
	// defaultVolatility is used when no usable price history exists.
	defaultVolatility = 0.02

	// volatilityCacheTTL bounds how long a computed volatility is reused.
	volatilityCacheTTL = 60 * time.Second
)

// annualizedVolatility computes the annualized standard deviation of simple
// returns over the given price series. The series is treated as equally
// spaced daily-equivalent observations; this is a scoring input, not a
// pricing model. Falls back to defaultVolatility when history is too short.
func annualizedVolatility(prices []float64) float64 {
	if len(prices) < 3 {
		return defaultVolatility
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, prices[i]/prices[i-1]-1)
	}
	if len(returns) < 2 {
		return defaultVolatility
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(365)
}

// volatilityScore returns the clamped volatility risk component for a pair,
// caching the computed value briefly since history only changes once per
// scan cycle.
func (e *Evaluator) volatilityScore(pair string) float64 {
	cacheKey := "vol:" + pair

	if e.volCache != nil {
		if v, ok := e.volCache.Get(cacheKey); ok {
			if vol, ok := v.(float64); ok {
				return vol
			}
		}
	}

	vol := defaultVolatility
	if e.market != nil {
		vol = annualizedVolatility(e.market.RecentPrices(pair))
	}
	vol = clamp01(vol)

	if e.volCache != nil {
		e.volCache.Set(cacheKey, vol, volatilityCacheTTL)
	}

	return vol
}
