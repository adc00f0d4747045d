package app

import (
	"context"
	"fmt"

	"github.com/mvelez/dexarb/internal/execution"
	"github.com/mvelez/dexarb/internal/relay"
	"github.com/mvelez/dexarb/internal/scanner"
	"github.com/mvelez/dexarb/internal/storage"
	"github.com/mvelez/dexarb/internal/strategy"
	"github.com/mvelez/dexarb/internal/venue"
	"github.com/mvelez/dexarb/pkg/cache"
	"github.com/mvelez/dexarb/pkg/config"
	"github.com/mvelez/dexarb/pkg/healthprobe"
	"github.com/mvelez/dexarb/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	volCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	venues := setupVenues(cfg, logger)
	priceScanner := setupScanner(cfg, logger, venues)
	evaluator := setupEvaluator(cfg, logger, priceScanner, volCache)

	resultStorage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	engine := setupEngine(cfg, logger, resultStorage)

	httpServer := setupHTTPServer(cfg, logger, healthChecker, engine, priceScanner)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		scanner:       priceScanner,
		evaluator:     evaluator,
		engine:        engine,
		storage:       resultStorage,
		dryRun:        opts.DryRun,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
}

// setupVenues builds one guarded simulated adapter per configured venue.
// Each adapter gets its own rate limiter and circuit breaker so one flapping
// venue does not slow the whole scan cycle down.
func setupVenues(cfg *config.Config, logger *zap.Logger) []venue.Source {
	sources := make([]venue.Source, 0, len(cfg.Venues))

	for _, name := range cfg.Venues {
		src := venue.NewSimulatedForVenue(name, logger)

		sources = append(sources, venue.NewGuarded(src, venue.GuardConfig{
			RateLimit:       cfg.VenueRateLimit,
			BreakerFailures: cfg.VenueBreakerFailures,
			BreakerCooldown: cfg.VenueBreakerCooldown,
			Logger:          logger,
		}))
	}

	return sources
}

func setupScanner(cfg *config.Config, logger *zap.Logger, venues []venue.Source) *scanner.Scanner {
	return scanner.New(scanner.Config{
		Pairs:                  cfg.Pairs,
		ScanInterval:           cfg.ScanInterval,
		OpportunityLogInterval: cfg.OpportunityLogInterval,
		MinProfitPct:           cfg.MinProfitPct,
		MaxTradeAmount:         cfg.MaxTradeAmount,
		Logger:                 logger,
	}, venues)
}

func setupEvaluator(cfg *config.Config, logger *zap.Logger, market strategy.MarketData, volCache cache.Cache) *strategy.Evaluator {
	return strategy.New(strategy.Config{
		Defaults:        cfg.StrategyParameters(),
		Market:          market,
		VolatilityCache: volCache,
		Logger:          logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (execution.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupEngine(cfg *config.Config, logger *zap.Logger, resultStorage execution.Storage) *execution.Engine {
	var relayClient relay.Client
	if cfg.RelayEnabled {
		relayClient = relay.NewSimulated(relay.SimulatedConfig{Logger: logger})
	} else {
		logger.Info("relay-disabled-sequential-execution-only")
	}

	return execution.New(execution.Config{
		MaxConcurrentExecutions: cfg.MaxConcurrentExecutions,
		ExecutionTimeout:        cfg.ExecutionTimeout,
		GasPriceLimitGwei:       cfg.GasPriceLimitGwei,
		ETHUSDPrice:             cfg.ETHUSDPrice,
		Relay:                   relayClient,
		Outcomes:                execution.NewRandomOutcomes(execution.RandomOutcomesConfig{}),
		Storage:                 resultStorage,
		Logger:                  logger,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	engine *execution.Engine,
	priceScanner *scanner.Scanner,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:           cfg.HTTPPort,
		Logger:         logger,
		HealthChecker:  healthChecker,
		Ledger:         engine.Ledger(),
		Opportunities:  priceScanner,
		MinProfitPct:   cfg.MinProfitPct,
		MaxTradeAmount: cfg.MaxTradeAmount,
	})
}
