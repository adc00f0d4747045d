package venue

import (
	"context"

	"github.com/mvelez/dexarb/pkg/types"
)

// Source is the capability every venue adapter provides. The scanner is
// agnostic to how many venues are registered or how a source gets its data.
type Source interface {
	// Name returns the venue identifier (e.g. "uniswap_v3").
	Name() string

	// GetPrice returns the venue's quote for a pair, or
	// types.ErrPairNotSupported when the venue does not quote it.
	GetPrice(ctx context.Context, pair string) (*types.PriceQuote, error)

	// GetLiquidity returns the venue's available liquidity for a pair in USD.
	GetLiquidity(ctx context.Context, pair string) (float64, error)
}
