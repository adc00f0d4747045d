package storage

import (
	"context"
	"fmt"

	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

// ConsoleStorage implements the result sink by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StoreResult pretty-prints a terminal execution result to console.
func (c *ConsoleStorage) StoreResult(ctx context.Context, result *types.ExecutionResult) error {
	fmt.Println("\n────────────────────────────────────────────────────────────")
	fmt.Printf("EXECUTION %s  [%s]\n", shortID(result.ExecutionID), result.Status)
	fmt.Printf("Pair:      %s\n", result.Pair)
	if result.StartedAt != nil {
		fmt.Printf("Started:   %s\n", result.StartedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Duration:  %.2fs  protected=%v\n", result.ExecutionTimeSec, result.ProtectedExecutionUsed)
	for _, tx := range result.Transactions {
		fmt.Printf("  %-4s %-12s [%s] expected=%.4f actual=%.4f gas=%d\n",
			tx.Type, tx.Venue, tx.Status, tx.ExpectedPrice, tx.ActualPrice, tx.GasUsed)
	}
	if result.ActualProfitUSD != nil {
		fmt.Printf("Profit:    $%.2f  gas=$%.2f  slippage=%.3f%%\n",
			*result.ActualProfitUSD, result.GasCostUSD, result.SlippagePct)
	}
	if result.ErrorMessage != "" {
		fmt.Printf("Error:     %s\n", result.ErrorMessage)
	}
	fmt.Println("────────────────────────────────────────────────────────────")

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
