package venue

import "go.uber.org/zap"

// profile shapes a simulated venue so different venues quote slightly
// different prices and spreads actually appear.
type profile struct {
	gasCostUSD   float64
	priceBiasPct float64
	jitterPct    float64
}

var profiles = map[string]profile{
	"uniswap_v3": {gasCostUSD: 12.0, priceBiasPct: 0.15, jitterPct: 0.20},
	"sushiswap":  {gasCostUSD: 15.0, priceBiasPct: -0.20, jitterPct: 0.25},
	"curve":      {gasCostUSD: 10.0, priceBiasPct: 0.05, jitterPct: 0.10},
	"balancer":   {gasCostUSD: 18.0, priceBiasPct: -0.10, jitterPct: 0.30},
}

var defaultProfile = profile{gasCostUSD: 14.0, priceBiasPct: 0.0, jitterPct: 0.20}

// NewSimulatedForVenue builds a simulated adapter with the stock profile for
// a known venue name. Unknown names get a generic profile.
func NewSimulatedForVenue(name string, logger *zap.Logger) *Simulated {
	p, ok := profiles[name]
	if !ok {
		p = defaultProfile
		logger.Warn("unknown-venue-using-default-profile", zap.String("venue", name))
	}

	return NewSimulated(SimulatedConfig{
		Name:         name,
		GasCostUSD:   p.gasCostUSD,
		PriceBiasPct: p.priceBiasPct,
		JitterPct:    p.jitterPct,
		Logger:       logger,
	})
}
