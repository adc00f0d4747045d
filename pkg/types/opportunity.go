package types

import (
	"fmt"
	"time"
)

// ArbitrageOpportunity is a profitable cross-venue spread derived from two
// cached quotes for the same pair. Invariants enforced by the scanner:
// BuyVenue != SellVenue, SellPrice > BuyPrice, NetProfitUSD > 0.
// Read-only input to the strategy evaluator.
type ArbitrageOpportunity struct {
	ID              string    `json:"id"`
	Pair            string    `json:"pair"`
	BuyVenue        string    `json:"buy_venue"`
	SellVenue       string    `json:"sell_venue"`
	BuyPrice        float64   `json:"buy_price"`
	SellPrice       float64   `json:"sell_price"`
	ProfitPct       float64   `json:"profit_pct"`
	ProfitAmountUSD float64   `json:"profit_amount_usd"`
	TradeAmount     float64   `json:"trade_amount"`
	BuyLiquidity    float64   `json:"buy_liquidity"`
	SellLiquidity   float64   `json:"sell_liquidity"`
	GasCostUSD      float64   `json:"gas_cost_usd"`
	NetProfitUSD    float64   `json:"net_profit_usd"`
	Confidence      float64   `json:"confidence"`
	ObservedAt      time.Time `json:"observed_at"`
}

// Age returns how old the opportunity is relative to now.
func (o *ArbitrageOpportunity) Age(now time.Time) time.Duration {
	return now.Sub(o.ObservedAt)
}

// MinLiquidity returns the thinner of the two venue liquidities.
func (o *ArbitrageOpportunity) MinLiquidity() float64 {
	if o.SellLiquidity < o.BuyLiquidity {
		return o.SellLiquidity
	}
	return o.BuyLiquidity
}

// String returns a human-readable representation of the opportunity.
func (o *ArbitrageOpportunity) String() string {
	return fmt.Sprintf(
		"Opportunity[%s] %s buy@%s=%.4f sell@%s=%.4f profit=%.2f%% size=$%.2f net=$%.2f conf=%.2f",
		shortID(o.ID),
		o.Pair,
		o.BuyVenue,
		o.BuyPrice,
		o.SellVenue,
		o.SellPrice,
		o.ProfitPct,
		o.TradeAmount,
		o.NetProfitUSD,
		o.Confidence,
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
