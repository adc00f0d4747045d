package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mvelez/dexarb/pkg/types"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Venues and pairs
	Venues []string
	Pairs  []string

	// Scanner
	ScanInterval           time.Duration
	OpportunityLogInterval time.Duration
	MinProfitPct           float64
	MaxTradeAmount         float64
	VenueRateLimit         float64
	VenueBreakerFailures   uint32
	VenueBreakerCooldown   time.Duration

	// Strategy
	MaxSlippagePct    float64
	GasPriceLimitGwei float64
	RiskTolerance     types.RiskTolerance

	// Execution
	MaxConcurrentExecutions int
	ExecutionTimeout        time.Duration
	UseProtectedRelay       bool
	RelayEnabled            bool
	ETHUSDPrice             float64

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Venue defaults
		Venues: getListOrDefault("VENUES", []string{"uniswap_v3", "sushiswap", "curve"}),
		Pairs:  getListOrDefault("PAIRS", []string{"WETH/USDC", "WBTC/USDC", "WETH/DAI"}),

		// Scanner defaults
		ScanInterval:           getDurationOrDefault("SCAN_INTERVAL", 5*time.Second),
		OpportunityLogInterval: getDurationOrDefault("OPPORTUNITY_LOG_INTERVAL", 30*time.Second),
		MinProfitPct:           getFloat64OrDefault("MIN_PROFIT_PCT", 0.5),
		MaxTradeAmount:         getFloat64OrDefault("MAX_TRADE_AMOUNT", 10000.0),
		VenueRateLimit:         getFloat64OrDefault("VENUE_RATE_LIMIT", 10.0),
		VenueBreakerFailures:   uint32(getIntOrDefault("VENUE_BREAKER_FAILURES", 5)),
		VenueBreakerCooldown:   getDurationOrDefault("VENUE_BREAKER_COOLDOWN", 30*time.Second),

		// Strategy defaults
		MaxSlippagePct:    getFloat64OrDefault("MAX_SLIPPAGE_PCT", 1.0),
		GasPriceLimitGwei: getFloat64OrDefault("GAS_PRICE_LIMIT_GWEI", 100.0),
		RiskTolerance:     types.RiskTolerance(getEnvOrDefault("RISK_TOLERANCE", "medium")),

		// Execution defaults
		MaxConcurrentExecutions: getIntOrDefault("MAX_CONCURRENT_EXECUTIONS", 3),
		ExecutionTimeout:        getDurationOrDefault("EXECUTION_TIMEOUT", 30*time.Second),
		UseProtectedRelay:       getBoolOrDefault("USE_PROTECTED_RELAY", true),
		RelayEnabled:            getBoolOrDefault("RELAY_ENABLED", true),
		ETHUSDPrice:             getFloat64OrDefault("ETH_USD_PRICE", 2000.0),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "dexarb"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "dexarb123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "dexarb"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if len(c.Venues) < 2 {
		return fmt.Errorf("VENUES needs at least 2 venues for cross-venue arbitrage, got %d", len(c.Venues))
	}

	if len(c.Pairs) == 0 {
		return fmt.Errorf("PAIRS cannot be empty")
	}

	for _, pair := range c.Pairs {
		_, _, err := types.SplitPair(pair)
		if err != nil {
			return fmt.Errorf("PAIRS: %w", err)
		}
	}

	if c.MinProfitPct < 0 {
		return fmt.Errorf("MIN_PROFIT_PCT must be >= 0, got %f", c.MinProfitPct)
	}

	if c.MaxSlippagePct <= 0 {
		return fmt.Errorf("MAX_SLIPPAGE_PCT must be > 0, got %f", c.MaxSlippagePct)
	}

	if !c.RiskTolerance.Valid() {
		return fmt.Errorf("RISK_TOLERANCE must be low, medium or high, got %q", c.RiskTolerance)
	}

	if c.MaxConcurrentExecutions <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_EXECUTIONS must be > 0, got %d", c.MaxConcurrentExecutions)
	}

	if c.ETHUSDPrice <= 0 {
		return fmt.Errorf("ETH_USD_PRICE must be > 0, got %f", c.ETHUSDPrice)
	}

	if c.StorageMode != "console" && c.StorageMode != "postgres" {
		return fmt.Errorf("STORAGE_MODE must be 'console' or 'postgres', got %q", c.StorageMode)
	}

	return nil
}

// StrategyParameters builds the per-evaluation parameter set from config.
func (c *Config) StrategyParameters() types.StrategyParameters {
	return types.StrategyParameters{
		MaxTradeSize:          c.MaxTradeAmount,
		MinProfitThresholdPct: c.MinProfitPct,
		MaxSlippagePct:        c.MaxSlippagePct,
		GasPriceLimitGwei:     c.GasPriceLimitGwei,
		ExecutionTimeout:      c.ExecutionTimeout,
		RiskTolerance:         c.RiskTolerance,
		UseProtectedRelay:     c.UseProtectedRelay,
	}
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return defaultValue
	}

	return out
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
