package relay

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mvelez/dexarb/pkg/types"
)

// Receipt is the relay's answer for one submitted bundle.
type Receipt struct {
	BundleHash common.Hash
	Accepted   bool
	Included   bool
}

// Client submits a set of trade legs as one atomic bundle for
// front-running-resistant inclusion in a single block. A nil client forces
// the execution engine onto the sequential path regardless of plan
// preference.
type Client interface {
	SubmitBundle(ctx context.Context, legs []*types.Transaction) (*Receipt, error)
}
