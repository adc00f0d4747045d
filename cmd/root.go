package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "dexarb",
	Short: "Cross-venue DEX arbitrage bot",
	Long: `Cross-venue DEX arbitrage bot that scans token pair prices across
decentralized exchanges, detects profitable spreads, evaluates each
opportunity for risk, and executes the profitable ones as a buy/sell
transaction pair, optionally through a protected bundle relay.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
