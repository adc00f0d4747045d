package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

// fakeMarket serves a fixed mid-price history.
type fakeMarket struct {
	prices map[string][]float64
}

func (f *fakeMarket) Quote(pair, venue string) (*types.PriceQuote, bool) { return nil, false }

func (f *fakeMarket) RecentPrices(pair string) []float64 { return f.prices[pair] }

func TestAnnualizedVolatility(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		expect float64
	}{
		{name: "too-short", prices: []float64{100, 101}, expect: defaultVolatility},
		{name: "empty", prices: nil, expect: defaultVolatility},
		{name: "constant-returns", prices: []float64{100, 110, 121}, expect: 0},
		{
			name:   "swinging",
			prices: []float64{100, 200, 100},
			// returns 1.0 and -0.5, sample stddev sqrt(1.125), annualized
			expect: math.Sqrt(1.125) * math.Sqrt(365),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := annualizedVolatility(tt.prices)
			if !floatEqual(got, tt.expect, 1e-9) {
				t.Errorf("expected %.6f, got %.6f", tt.expect, got)
			}
		})
	}
}

func TestVolatilityScoreClampsAndCaches(t *testing.T) {
	now := time.Now()
	logger, _ := zap.NewDevelopment()

	market := &fakeMarket{prices: map[string][]float64{
		"WETH/USDC": {100, 200, 100}, // annualized vol far above 1
	}}

	e := New(Config{
		Defaults: defaultParams(),
		Market:   market,
		Logger:   logger,
	})
	e.now = func() time.Time { return now }

	if got := e.volatilityScore("WETH/USDC"); got != 1.0 {
		t.Errorf("expected volatility clamped to 1.0, got %.4f", got)
	}

	// No market data for the pair falls back to the default.
	if got := e.volatilityScore("WBTC/USDC"); got != defaultVolatility {
		t.Errorf("expected default volatility %.4f, got %.4f", defaultVolatility, got)
	}
}
