package app

import (
	"context"
	"sync"

	"github.com/mvelez/dexarb/internal/execution"
	"github.com/mvelez/dexarb/internal/scanner"
	"github.com/mvelez/dexarb/internal/strategy"
	"github.com/mvelez/dexarb/pkg/config"
	"github.com/mvelez/dexarb/pkg/healthprobe"
	"github.com/mvelez/dexarb/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator. It owns the scan-evaluate-execute
// pipeline and the HTTP surface around it.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	scanner       *scanner.Scanner
	evaluator     *strategy.Evaluator
	engine        *execution.Engine
	storage       execution.Storage
	dryRun        bool
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	DryRun bool // evaluate and log strategies without executing them
}
