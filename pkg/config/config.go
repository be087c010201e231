// Package config holds the typed backtest configuration loaded from
// JSON files, with environment-variable overrides for account settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Defaults applied by Normalize.
const (
	DefaultInitialCapital = 10000.0
	DefaultCommission     = 0.001
	DefaultPeriodsPerYear = 252
	DefaultRiskFreeRate   = 0.02
)

// Config is the full configuration of one backtest invocation.
type Config struct {
	Symbol         string  `json:"symbol"`
	DataFile       string  `json:"data_file"`
	InitialCapital float64 `json:"initial_capital"`
	Commission     float64 `json:"commission"`
	PeriodsPerYear int     `json:"periods_per_year"`
	RiskFreeRate   float64 `json:"risk_free_rate"`

	Strategy StrategyConfig     `json:"strategy"`
	Sizing   *SizingConfig      `json:"sizing,omitempty"`
	Limits   map[string]float64 `json:"risk_limits,omitempty"`
	Output   OutputConfig       `json:"output"`
}

// StrategyConfig selects and parameterizes a strategy by name.
type StrategyConfig struct {
	Name       string  `json:"name"`
	FastPeriod int     `json:"fast_period,omitempty"`
	SlowPeriod int     `json:"slow_period,omitempty"`
	Lookback   int     `json:"lookback,omitempty"`
	Threshold  float64 `json:"threshold,omitempty"`
}

// SizingConfig selects and parameterizes an external position sizer.
// When absent, the strategy's own sizing rule is used.
type SizingConfig struct {
	Method             string  `json:"method"`
	Fraction           float64 `json:"fraction,omitempty"`
	VolatilityLookback int     `json:"volatility_lookback,omitempty"`
	WinRate            float64 `json:"win_rate,omitempty"`
	AvgWin             float64 `json:"avg_win,omitempty"`
	AvgLoss            float64 `json:"avg_loss,omitempty"`
}

// OutputConfig controls report destinations.
type OutputConfig struct {
	Directory   string `json:"directory,omitempty"`
	TradesCSV   bool   `json:"trades_csv,omitempty"`
	MetricsJSON bool   `json:"metrics_json,omitempty"`
	Excel       bool   `json:"excel,omitempty"`
}

// Load reads a configuration file and applies defaults and environment
// overrides.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Normalize()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Normalize fills zero-valued account settings with defaults.
func (c *Config) Normalize() {
	if c.InitialCapital == 0 {
		c.InitialCapital = DefaultInitialCapital
	}
	if c.Commission == 0 {
		c.Commission = DefaultCommission
	}
	if c.PeriodsPerYear == 0 {
		c.PeriodsPerYear = DefaultPeriodsPerYear
	}
	if c.RiskFreeRate == 0 {
		c.RiskFreeRate = DefaultRiskFreeRate
	}
}

// ApplyEnv overrides account settings from the environment, typically
// populated from a .env file by the CLI. Recognized variables:
// BACKTEST_INITIAL_CAPITAL, BACKTEST_COMMISSION, BACKTEST_DATA_FILE.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("BACKTEST_INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.InitialCapital = f
		}
	}
	if v := os.Getenv("BACKTEST_COMMISSION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Commission = f
		}
	}
	if v := os.Getenv("BACKTEST_DATA_FILE"); v != "" {
		c.DataFile = v
	}
}

// Validate rejects configurations that cannot produce a meaningful run.
func (c *Config) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %v", c.InitialCapital)
	}
	if c.Commission < 0 || c.Commission >= 1 {
		return fmt.Errorf("commission must be in [0, 1), got %v", c.Commission)
	}
	if c.PeriodsPerYear <= 0 {
		return fmt.Errorf("periods per year must be positive, got %d", c.PeriodsPerYear)
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy name is required")
	}
	for name, value := range c.Limits {
		if value <= 0 {
			return fmt.Errorf("risk limit %q must be positive, got %v", name, value)
		}
	}
	return nil
}
