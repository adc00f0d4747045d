package scanner

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mvelez/dexarb/internal/venue"
	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// hardTradeCap is the absolute trade-size safety cap in USD.
	hardTradeCap = 5000.0

	// liquidityFraction caps trade size at this share of the thinner pool.
	liquidityFraction = 0.01

	// priceHistoryDepth is how many mid prices are kept per pair for
	// volatility estimation.
	priceHistoryDepth = 100
)

// Config holds scanner configuration.
type Config struct {
	Pairs                  []string
	ScanInterval           time.Duration
	OpportunityLogInterval time.Duration
	MinProfitPct           float64
	MaxTradeAmount         float64
	Logger                 *zap.Logger
}

// Scanner keeps a fresh cross-venue price view and surfaces profitable
// spreads. It is the sole owner of the price cache.
type Scanner struct {
	venues []venue.Source
	cfg    Config
	logger *zap.Logger

	mu      sync.RWMutex
	cache   map[string]map[string]*types.PriceQuote // pair -> venue -> quote
	history map[string][]float64                    // pair -> recent mid prices

	now func() time.Time

	ctx context.Context
	wg  sync.WaitGroup
}

// New creates a new opportunity scanner.
func New(cfg Config, venues []venue.Source) *Scanner {
	return &Scanner{
		venues:  venues,
		cfg:     cfg,
		logger:  cfg.Logger,
		cache:   make(map[string]map[string]*types.PriceQuote),
		history: make(map[string][]float64),
		now:     time.Now,
	}
}

// UpdateAll refreshes the price cache by querying every (venue, pair)
// combination concurrently. A failed fetch is logged and leaves the previous
// cache entry in place; stale-but-present beats absent.
func (s *Scanner) UpdateAll(ctx context.Context) {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)

	for _, src := range s.venues {
		for _, pair := range s.cfg.Pairs {
			src, pair := src, pair
			g.Go(func() error {
				quote, err := src.GetPrice(ctx, pair)
				if err != nil {
					QuoteFetchFailuresTotal.WithLabelValues(src.Name()).Inc()
					s.logger.Warn("quote-fetch-failed",
						zap.String("venue", src.Name()),
						zap.String("pair", pair),
						zap.Error(err))
					// Keep the stale entry; one failing venue must not
					// abort the rest of the cycle.
					return nil
				}

				QuotesFetchedTotal.WithLabelValues(src.Name()).Inc()
				s.storeQuote(quote)
				return nil
			})
		}
	}

	_ = g.Wait()

	s.recordMidPrices()

	ScanDurationSeconds.Observe(time.Since(start).Seconds())
}

// storeQuote overwrites the cache entry for the quote's (pair, venue) key.
func (s *Scanner) storeQuote(quote *types.PriceQuote) {
	pair := quote.Pair()

	s.mu.Lock()
	defer s.mu.Unlock()

	byVenue, ok := s.cache[pair]
	if !ok {
		byVenue = make(map[string]*types.PriceQuote)
		s.cache[pair] = byVenue
	}
	byVenue[quote.Venue] = quote
}

// recordMidPrices appends the cross-venue mid price of every cached pair to
// its history ring. The evaluator reads these for volatility estimation.
func (s *Scanner) recordMidPrices() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pair, byVenue := range s.cache {
		if len(byVenue) == 0 {
			continue
		}

		sum := 0.0
		for _, q := range byVenue {
			sum += q.Price
		}
		mid := sum / float64(len(byVenue))

		hist := append(s.history[pair], mid)
		if len(hist) > priceHistoryDepth {
			hist = hist[len(hist)-priceHistoryDepth:]
		}
		s.history[pair] = hist
	}
}

// Quote returns the cached quote for a (pair, venue) key.
func (s *Scanner) Quote(pair, venueName string) (*types.PriceQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byVenue, ok := s.cache[pair]
	if !ok {
		return nil, false
	}
	quote, ok := byVenue[venueName]
	return quote, ok
}

// RecentPrices returns a copy of the recorded mid-price history for a pair.
func (s *Scanner) RecentPrices(pair string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hist := s.history[pair]
	out := make([]float64, len(hist))
	copy(out, hist)
	return out
}

// FindOpportunities derives ranked arbitrage opportunities from the cache.
// For each pair with at least two venue quotes it buys at the cheapest venue
// and sells at the dearest. The returned slice is sorted by net profit
// descending; callers that only look at the first element depend on that.
func (s *Scanner) FindOpportunities(minProfitPct, maxTradeAmount float64) []*types.ArbitrageOpportunity {
	snapshot := s.snapshot()
	now := s.now()

	var opportunities []*types.ArbitrageOpportunity

	for pair, byVenue := range snapshot {
		if len(byVenue) < 2 {
			continue
		}

		var buy, sell *types.PriceQuote
		for _, q := range byVenue {
			if buy == nil || q.Price < buy.Price {
				buy = q
			}
			if sell == nil || q.Price > sell.Price {
				sell = q
			}
		}

		if buy.Venue == sell.Venue || sell.Price <= buy.Price {
			OpportunitiesRejectedTotal.WithLabelValues("no_spread").Inc()
			continue
		}

		profitPct := (sell.Price - buy.Price) / buy.Price * 100
		if profitPct < minProfitPct {
			OpportunitiesRejectedTotal.WithLabelValues("below_min_profit").Inc()
			continue
		}

		minLiquidity := math.Min(buy.Liquidity, sell.Liquidity)
		tradeAmount := math.Min(maxTradeAmount, math.Min(minLiquidity*liquidityFraction, hardTradeCap))

		gasCost := buy.GasCostUSD + sell.GasCostUSD
		profitAmount := tradeAmount * (sell.Price - buy.Price)
		netProfit := profitAmount - gasCost
		if netProfit <= 0 {
			OpportunitiesRejectedTotal.WithLabelValues("negative_net_profit").Inc()
			continue
		}

		// The opportunity is only as fresh as its older quote.
		observedAt := buy.ObservedAt
		if sell.ObservedAt.Before(observedAt) {
			observedAt = sell.ObservedAt
		}

		opp := &types.ArbitrageOpportunity{
			ID:              uuid.New().String(),
			Pair:            pair,
			BuyVenue:        buy.Venue,
			SellVenue:       sell.Venue,
			BuyPrice:        buy.Price,
			SellPrice:       sell.Price,
			ProfitPct:       profitPct,
			ProfitAmountUSD: profitAmount,
			TradeAmount:     tradeAmount,
			BuyLiquidity:    buy.Liquidity,
			SellLiquidity:   sell.Liquidity,
			GasCostUSD:      gasCost,
			NetProfitUSD:    netProfit,
			Confidence:      confidenceScore(buy, sell, profitPct, now),
			ObservedAt:      observedAt,
		}

		OpportunitiesDetectedTotal.Inc()
		OpportunityNetProfitUSD.Observe(netProfit)

		opportunities = append(opportunities, opp)
	}

	sort.Slice(opportunities, func(i, j int) bool {
		return opportunities[i].NetProfitUSD > opportunities[j].NetProfitUSD
	})

	return opportunities
}

// snapshot copies the cache under the read lock so detection never observes
// a partially written cycle.
func (s *Scanner) snapshot() map[string]map[string]*types.PriceQuote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]*types.PriceQuote, len(s.cache))
	for pair, byVenue := range s.cache {
		venues := make(map[string]*types.PriceQuote, len(byVenue))
		for name, quote := range byVenue {
			venues[name] = quote
		}
		out[pair] = venues
	}
	return out
}

// confidenceScore rates an opportunity in [0,1] from liquidity depth, spread
// width and quote freshness.
func confidenceScore(buy, sell *types.PriceQuote, profitPct float64, now time.Time) float64 {
	score := 0.5

	minLiquidity := math.Min(buy.Liquidity, sell.Liquidity)
	switch {
	case minLiquidity > 500_000:
		score += 0.2
	case minLiquidity > 100_000:
		score += 0.1
	}

	switch {
	case profitPct > 2.0:
		score += 0.2
	case profitPct > 1.0:
		score += 0.1
	}

	maxAge := buy.Age(now)
	if sellAge := sell.Age(now); sellAge > maxAge {
		maxAge = sellAge
	}
	switch {
	case maxAge < 10*time.Second:
		score += 0.2
	case maxAge < 30*time.Second:
		score += 0.1
	case maxAge > 120*time.Second:
		score -= 0.2
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Start launches the background refresh and opportunity-logging loops.
func (s *Scanner) Start(ctx context.Context) error {
	s.ctx = ctx
	s.logger.Info("scanner-starting",
		zap.Int("venues", len(s.venues)),
		zap.Strings("pairs", s.cfg.Pairs),
		zap.Duration("scan-interval", s.cfg.ScanInterval))

	s.wg.Add(2)
	go s.refreshLoop()
	go s.opportunityLogLoop()

	return nil
}

// refreshLoop refreshes all quotes on a fixed cadence. Cancellation stops
// scheduling the next cycle; an in-flight fan-out finishes on its own and
// each key write is independent, so partial updates are harmless.
func (s *Scanner) refreshLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	s.UpdateAll(s.ctx)

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("scanner-refresh-loop-stopping")
			return
		case <-ticker.C:
			s.UpdateAll(s.ctx)
		}
	}
}

// opportunityLogLoop periodically surfaces the current best opportunities in
// the logs for an unattended operator.
func (s *Scanner) opportunityLogLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.OpportunityLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("scanner-opportunity-loop-stopping")
			return
		case <-ticker.C:
			opportunities := s.FindOpportunities(s.cfg.MinProfitPct, s.cfg.MaxTradeAmount)
			if len(opportunities) == 0 {
				s.logger.Debug("no-opportunities-found")
				continue
			}

			best := opportunities[0]
			s.logger.Info("opportunities-found",
				zap.Int("count", len(opportunities)),
				zap.String("best-pair", best.Pair),
				zap.Float64("best-net-profit-usd", best.NetProfitUSD),
				zap.Float64("best-profit-pct", best.ProfitPct),
				zap.Float64("best-confidence", best.Confidence))
		}
	}
}

// Close waits for the background loops to stop.
func (s *Scanner) Close() error {
	s.logger.Info("closing-scanner")
	s.wg.Wait()
	s.logger.Info("scanner-closed")
	return nil
}
