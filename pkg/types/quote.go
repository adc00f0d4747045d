package types

import (
	"fmt"
	"time"
)

// PriceQuote is a single venue's view of a token pair at a point in time.
// Quotes are immutable; a newer quote for the same (pair, venue) key
// supersedes the old one in the scanner cache, it never mutates it.
type PriceQuote struct {
	Venue      string    `json:"venue"`
	TokenA     string    `json:"token_a"`
	TokenB     string    `json:"token_b"`
	Price      float64   `json:"price"`
	Liquidity  float64   `json:"liquidity"`
	Volume24h  float64   `json:"volume_24h"`
	GasCostUSD float64   `json:"gas_cost_usd"`
	ObservedAt time.Time `json:"observed_at"`
}

// Pair returns the canonical "TOKENA/TOKENB" key for this quote.
func (q *PriceQuote) Pair() string {
	return q.TokenA + "/" + q.TokenB
}

// Age returns how old the quote is relative to now.
func (q *PriceQuote) Age(now time.Time) time.Duration {
	return now.Sub(q.ObservedAt)
}

// SplitPair splits a "TOKENA/TOKENB" pair key into its two tokens.
func SplitPair(pair string) (tokenA, tokenB string, err error) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '/' {
			if i == 0 || i == len(pair)-1 {
				break
			}
			return pair[:i], pair[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid pair %q: want TOKENA/TOKENB", pair)
}
