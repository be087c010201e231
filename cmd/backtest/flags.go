package main

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds all command line flags for the backtest command.
type Flags struct {
	// Configuration
	ConfigFile *string
	DataFile   *string
	Symbol     *string
	EnvFile    *string

	// Account settings
	InitialCapital *float64
	Commission     *float64

	// Strategy selection
	Strategy   *string
	FastPeriod *int
	SlowPeriod *int
	Lookback   *int
	Threshold  *float64

	// Position sizing
	SizingMethod *string
	Fraction     *float64
	VolLookback  *int
	WinRate      *float64
	AvgWin       *float64
	AvgLoss      *float64

	// Risk limits
	MaxPositionValue *float64
	MaxPortfolioVaR  *float64

	// Metrics
	PeriodsPerYear *int
	RiskFreeRate   *float64

	// Output
	OutputDir   *string
	TradesCSV   *bool
	MetricsJSON *bool
	Excel       *bool
	ShowTrades  *bool
	LogDir      *string

	// Monitoring
	MetricsAddr *string
}

// NewFlags registers all backtest command line flags.
func NewFlags() *Flags {
	return &Flags{
		ConfigFile: flag.String("config", "", "Path to JSON configuration file"),
		DataFile:   flag.String("data", "", "Path to historical data CSV file"),
		Symbol:     flag.String("symbol", "BTCUSDT", "Trading symbol"),
		EnvFile:    flag.String("env", "", "Path to .env file (default .env if present)"),

		InitialCapital: flag.Float64("capital", 10000, "Initial capital"),
		Commission:     flag.Float64("commission", 0.001, "Commission rate (0.001 = 0.1% of notional)"),

		Strategy:   flag.String("strategy", "ma_crossover", "Strategy (ma_crossover, mean_reversion)"),
		FastPeriod: flag.Int("fast-period", 0, "Fast MA period (ma_crossover)"),
		SlowPeriod: flag.Int("slow-period", 0, "Slow MA period (ma_crossover)"),
		Lookback:   flag.Int("lookback", 0, "Lookback window (mean_reversion)"),
		Threshold:  flag.Float64("threshold", 0, "Z-score threshold (mean_reversion)"),

		SizingMethod: flag.String("sizing", "", "Position sizing override (fixed_fractional, volatility_adjusted, kelly)"),
		Fraction:     flag.Float64("fraction", 0, "Account fraction to risk per trade"),
		VolLookback:  flag.Int("vol-lookback", 0, "Volatility lookback (volatility_adjusted)"),
		WinRate:      flag.Float64("win-rate", 0, "Empirical win rate (kelly)"),
		AvgWin:       flag.Float64("avg-win", 0, "Average win per trade (kelly)"),
		AvgLoss:      flag.Float64("avg-loss", 0, "Average loss per trade (kelly)"),

		MaxPositionValue: flag.Float64("max-position-value", 0, "Risk limit: maximum position value"),
		MaxPortfolioVaR:  flag.Float64("max-portfolio-var", 0, "Risk limit: maximum portfolio VaR"),

		PeriodsPerYear: flag.Int("periods-per-year", 252, "Bars per year for annualization"),
		RiskFreeRate:   flag.Float64("risk-free-rate", 0.02, "Annual risk-free rate"),

		OutputDir:   flag.String("output", "results", "Output directory for reports"),
		TradesCSV:   flag.Bool("trades-csv", false, "Write trade log CSV"),
		MetricsJSON: flag.Bool("metrics-json", false, "Write metrics JSON"),
		Excel:       flag.Bool("excel", false, "Write Excel workbook"),
		ShowTrades:  flag.Bool("show-trades", false, "Print the trade log table"),
		LogDir:      flag.String("log-dir", "", "Directory for run logs (console only when empty)"),

		MetricsAddr: flag.String("metrics-addr", "", "Listen address for Prometheus metrics (disabled when empty)"),
	}
}

// Usage prints command usage with examples.
func Usage() {
	fmt.Fprintf(os.Stderr, "Usage: backtest [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Replays a trading strategy against a CSV bar history and reports\n")
	fmt.Fprintf(os.Stderr, "performance metrics.\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  backtest -data data/BTCUSDT_1d.csv -strategy ma_crossover -fast-period 10 -slow-period 30\n")
	fmt.Fprintf(os.Stderr, "  backtest -config configs/meanrev.json -trades-csv -excel\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}
