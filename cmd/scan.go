package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mvelez/dexarb/internal/scanner"
	"github.com/mvelez/dexarb/internal/venue"
	"github.com/mvelez/dexarb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single scan cycle and print opportunities",
	Long: `Fetches current prices for every configured (venue, pair)
combination, runs opportunity detection once, and prints the results.
Useful for checking configuration and thresholds without starting the bot.`,
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	venues := make([]venue.Source, 0, len(cfg.Venues))
	for _, name := range cfg.Venues {
		venues = append(venues, venue.NewSimulatedForVenue(name, logger))
	}

	s := scanner.New(scanner.Config{
		Pairs:          cfg.Pairs,
		MinProfitPct:   cfg.MinProfitPct,
		MaxTradeAmount: cfg.MaxTradeAmount,
		Logger:         logger,
	}, venues)

	s.UpdateAll(context.Background())

	opportunities := s.FindOpportunities(cfg.MinProfitPct, cfg.MaxTradeAmount)
	if len(opportunities) == 0 {
		fmt.Println("No opportunities above threshold.")
		return nil
	}

	fmt.Printf("%-12s %-12s %-12s %12s %12s %12s %10s\n",
		"PAIR", "BUY", "SELL", "SPREAD%", "SIZE USD", "NET USD", "CONF")
	for _, opp := range opportunities {
		fmt.Printf("%-12s %-12s %-12s %12.3f %12.2f %12.2f %10.2f\n",
			opp.Pair, opp.BuyVenue, opp.SellVenue,
			opp.ProfitPct, opp.TradeAmount, opp.NetProfitUSD, opp.Confidence)
	}

	return nil
}
