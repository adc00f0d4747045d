package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.Strings("venues", a.cfg.Venues),
		zap.Strings("pairs", a.cfg.Pairs),
		zap.Bool("dry-run", a.dryRun),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents()
	if err != nil {
		return err
	}

	// Mark as ready
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Duration("scan-interval", a.cfg.ScanInterval))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	// Start HTTP server
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	// Prime the price cache before the first pipeline tick
	a.scanner.UpdateAll(a.ctx)

	err := a.scanner.Start(a.ctx)
	if err != nil {
		return fmt.Errorf("start scanner: %w", err)
	}

	// Start the evaluate-and-execute pipeline
	a.wg.Add(1)
	go a.runPipeline()

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

// runPipeline is the main decision loop. Every scan interval it takes the
// best opportunity the scanner currently sees, evaluates it, and hands
// actionable strategies to the execution engine.
func (a *App) runPipeline() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			a.logger.Info("pipeline-stopping")
			return
		case <-ticker.C:
			a.pipelineTick()
		}
	}
}

func (a *App) pipelineTick() {
	opportunities := a.scanner.FindOpportunities(a.cfg.MinProfitPct, a.cfg.MaxTradeAmount)
	if len(opportunities) == 0 {
		return
	}

	// Opportunities come back sorted by net profit; evaluate the best one.
	best := opportunities[0]
	strat := a.evaluator.Evaluate(best, nil)

	if !strat.RecommendedAction.Actionable() {
		a.logger.Debug("strategy-not-actionable",
			zap.String("pair", best.Pair),
			zap.String("action", string(strat.RecommendedAction)))
		return
	}

	if a.dryRun {
		a.logger.Info("dry-run-skipping-execution",
			zap.String("strategy-id", strat.ID),
			zap.String("pair", best.Pair),
			zap.String("action", string(strat.RecommendedAction)),
			zap.Float64("net-profit-usd", best.NetProfitUSD))
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		result := a.engine.ExecuteStrategy(a.ctx, strat)
		a.logger.Info("pipeline-execution-finished",
			zap.String("execution-id", result.ExecutionID),
			zap.String("status", string(result.Status)))
	}()
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
