package config

import (
	"os"
	"testing"
	"time"

	"github.com/mvelez/dexarb/pkg/types"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if len(cfg.Venues) != 3 {
		t.Errorf("expected 3 default venues, got %d", len(cfg.Venues))
	}
	if cfg.ScanInterval != 5*time.Second {
		t.Errorf("expected default scan interval 5s, got %v", cfg.ScanInterval)
	}
	if cfg.MinProfitPct != 0.5 {
		t.Errorf("expected default min profit 0.5, got %f", cfg.MinProfitPct)
	}
	if cfg.MaxTradeAmount != 10000.0 {
		t.Errorf("expected default max trade 10000, got %f", cfg.MaxTradeAmount)
	}
	if cfg.RiskTolerance != types.RiskToleranceMedium {
		t.Errorf("expected default risk tolerance medium, got %s", cfg.RiskTolerance)
	}
	if cfg.MaxConcurrentExecutions != 3 {
		t.Errorf("expected default concurrency 3, got %d", cfg.MaxConcurrentExecutions)
	}
	if !cfg.UseProtectedRelay {
		t.Error("expected protected relay enabled by default")
	}
	if cfg.StorageMode != "console" {
		t.Errorf("expected default storage console, got %s", cfg.StorageMode)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	os.Setenv("MIN_PROFIT_PCT", "1.5")
	os.Setenv("SCAN_INTERVAL", "10s")
	os.Setenv("VENUES", "uniswap_v3, balancer")
	os.Setenv("RISK_TOLERANCE", "high")
	t.Cleanup(func() {
		os.Unsetenv("MIN_PROFIT_PCT")
		os.Unsetenv("SCAN_INTERVAL")
		os.Unsetenv("VENUES")
		os.Unsetenv("RISK_TOLERANCE")
	})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MinProfitPct != 1.5 {
		t.Errorf("expected min profit 1.5, got %f", cfg.MinProfitPct)
	}
	if cfg.ScanInterval != 10*time.Second {
		t.Errorf("expected scan interval 10s, got %v", cfg.ScanInterval)
	}
	if len(cfg.Venues) != 2 || cfg.Venues[1] != "balancer" {
		t.Errorf("expected trimmed venue list [uniswap_v3 balancer], got %v", cfg.Venues)
	}
	if cfg.RiskTolerance != types.RiskToleranceHigh {
		t.Errorf("expected risk tolerance high, got %s", cfg.RiskTolerance)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:                "8080",
			Venues:                  []string{"uniswap_v3", "sushiswap"},
			Pairs:                   []string{"WETH/USDC"},
			MinProfitPct:            0.5,
			MaxSlippagePct:          1.0,
			RiskTolerance:           types.RiskToleranceMedium,
			MaxConcurrentExecutions: 3,
			ETHUSDPrice:             2000,
			StorageMode:             "console",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty-port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: true},
		{name: "single-venue", mutate: func(c *Config) { c.Venues = []string{"uniswap_v3"} }, wantErr: true},
		{name: "no-pairs", mutate: func(c *Config) { c.Pairs = nil }, wantErr: true},
		{name: "malformed-pair", mutate: func(c *Config) { c.Pairs = []string{"WETHUSDC"} }, wantErr: true},
		{name: "negative-min-profit", mutate: func(c *Config) { c.MinProfitPct = -1 }, wantErr: true},
		{name: "zero-slippage", mutate: func(c *Config) { c.MaxSlippagePct = 0 }, wantErr: true},
		{name: "bad-risk-tolerance", mutate: func(c *Config) { c.RiskTolerance = "yolo" }, wantErr: true},
		{name: "zero-concurrency", mutate: func(c *Config) { c.MaxConcurrentExecutions = 0 }, wantErr: true},
		{name: "zero-eth-price", mutate: func(c *Config) { c.ETHUSDPrice = 0 }, wantErr: true},
		{name: "bad-storage-mode", mutate: func(c *Config) { c.StorageMode = "redis" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestStrategyParameters(t *testing.T) {
	cfg := &Config{
		MaxTradeAmount:    5000,
		MinProfitPct:      0.8,
		MaxSlippagePct:    0.5,
		GasPriceLimitGwei: 80,
		ExecutionTimeout:  20 * time.Second,
		RiskTolerance:     types.RiskToleranceLow,
		UseProtectedRelay: true,
	}

	p := cfg.StrategyParameters()

	if p.MaxTradeSize != 5000 || p.MinProfitThresholdPct != 0.8 {
		t.Errorf("unexpected parameters: %+v", p)
	}
	if p.RiskTolerance.Threshold() != 0.3 {
		t.Errorf("expected low-tolerance threshold 0.3, got %f", p.RiskTolerance.Threshold())
	}
	if !p.UseProtectedRelay {
		t.Error("expected protected relay carried into parameters")
	}
}
