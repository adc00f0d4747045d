package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mvelez/dexarb/internal/app"
	"github.com/mvelez/dexarb/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the arbitrage bot",
	Long: `Starts the arbitrage bot, which will:
1. Scan configured venues for token pair prices on a fixed interval
2. Detect cross-venue spreads worth more than the profit threshold
3. Evaluate each opportunity for risk and build an execution plan
4. Execute recommended strategies, protected by a bundle relay when enabled

Use --dry-run to evaluate and log strategies without executing them.`,
	RunE: runBot,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("dry-run", false, "Evaluate and log strategies without executing them")
}

func runBot(cmd *cobra.Command, args []string) error {
	// .env is optional; real environments set variables directly
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

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	application, err := app.New(cfg, logger, &app.Options{DryRun: dryRun})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
