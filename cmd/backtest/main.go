package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/trkhoanh/quant-backtest/internal/analysis"
	"github.com/trkhoanh/quant-backtest/internal/backtest"
	"github.com/trkhoanh/quant-backtest/internal/logger"
	"github.com/trkhoanh/quant-backtest/internal/monitoring"
	"github.com/trkhoanh/quant-backtest/internal/risk"
	"github.com/trkhoanh/quant-backtest/internal/sizing"
	"github.com/trkhoanh/quant-backtest/internal/strategy"
	"github.com/trkhoanh/quant-backtest/pkg/config"
	"github.com/trkhoanh/quant-backtest/pkg/data"
)

func main() {
	flags := NewFlags()
	flag.Usage = Usage
	flag.Parse()

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "backtest: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *Flags) error {
	loadEnvFile(*flags.EnvFile)

	cfg, err := buildConfig(flags)
	if err != nil {
		return err
	}

	log := newLogger(cfg, *flags.LogDir)
	defer log.Close()

	if *flags.MetricsAddr != "" {
		go serveMetrics(*flags.MetricsAddr, log)
	}

	provider := data.NewCSVProvider()
	bars, err := provider.Load(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("loading data: %w", err)
	}
	log.Info("loaded %d bars from %s", len(bars), cfg.DataFile)

	strat, err := strategy.New(cfg.Strategy.Name, strategy.Params{
		FastPeriod: cfg.Strategy.FastPeriod,
		SlowPeriod: cfg.Strategy.SlowPeriod,
		Lookback:   cfg.Strategy.Lookback,
		Threshold:  cfg.Strategy.Threshold,
	})
	if err != nil {
		return err
	}

	opts := []backtest.EngineOption{
		backtest.WithCalculator(analysis.NewCalculator(cfg.RiskFreeRate, cfg.PeriodsPerYear)),
	}

	if cfg.Sizing != nil {
		sizer, err := sizing.New(cfg.Sizing.Method, sizing.Params{
			Fraction:           cfg.Sizing.Fraction,
			VolatilityLookback: cfg.Sizing.VolatilityLookback,
			WinRate:            cfg.Sizing.WinRate,
			AvgWin:             cfg.Sizing.AvgWin,
			AvgLoss:            cfg.Sizing.AvgLoss,
		})
		if err != nil {
			return err
		}
		opts = append(opts, backtest.WithSizer(sizer))
		log.Info("using %s position sizing", sizer.Name())
	}

	if len(cfg.Limits) > 0 {
		manager, err := risk.NewPortfolioManager(0)
		if err != nil {
			return err
		}
		for name, value := range cfg.Limits {
			manager.SetRiskLimit(name, value)
		}
		opts = append(opts, backtest.WithRiskManager(manager, cfg.Symbol))
		log.Info("risk limits active: %d", len(cfg.Limits))
	}

	engine := backtest.NewEngine(cfg.InitialCapital, cfg.Commission, opts...)

	result := engine.Run(strat, bars)
	monitoring.RecordRun(result.StrategyName, result.FinalCapital, 0)
	monitoring.RecordDroppedSignals(result.StrategyName, result.DroppedSignals)
	for _, t := range result.Trades {
		monitoring.RecordTrade(result.StrategyName, string(t.Kind))
		log.Trade(string(t.Kind), t.Size, t.Price)
	}
	log.Info("run complete: %d trades, final capital %.2f", len(result.Trades), result.FinalCapital)

	return writeOutputs(result, cfg, flags)
}

// loadEnvFile loads environment overrides. A missing default .env is
// fine; an explicitly requested file that cannot be read is not.
func loadEnvFile(path string) {
	if path == "" {
		_ = godotenv.Load()
		return
	}
	if err := godotenv.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "backtest: warning: could not load env file %s: %v\n", path, err)
	}
}

// buildConfig builds the run configuration either from a config file or
// from flags. With a config file, only the data file, sizing, risk
// limit and output flags layer on top.
func buildConfig(flags *Flags) (*config.Config, error) {
	var cfg *config.Config
	if *flags.ConfigFile != "" {
		loaded, err := config.Load(*flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{
			Symbol:         *flags.Symbol,
			InitialCapital: *flags.InitialCapital,
			Commission:     *flags.Commission,
			PeriodsPerYear: *flags.PeriodsPerYear,
			RiskFreeRate:   *flags.RiskFreeRate,
			Strategy: config.StrategyConfig{
				Name:       *flags.Strategy,
				FastPeriod: *flags.FastPeriod,
				SlowPeriod: *flags.SlowPeriod,
				Lookback:   *flags.Lookback,
				Threshold:  *flags.Threshold,
			},
		}
		cfg.Normalize()
		cfg.ApplyEnv()
	}

	if *flags.DataFile != "" {
		cfg.DataFile = *flags.DataFile
	}
	if cfg.DataFile == "" {
		return nil, fmt.Errorf("no data file: pass -data or set data_file in the config")
	}

	if *flags.SizingMethod != "" {
		cfg.Sizing = &config.SizingConfig{
			Method:             *flags.SizingMethod,
			Fraction:           *flags.Fraction,
			VolatilityLookback: *flags.VolLookback,
			WinRate:            *flags.WinRate,
			AvgWin:             *flags.AvgWin,
			AvgLoss:            *flags.AvgLoss,
		}
	}

	if *flags.MaxPositionValue > 0 || *flags.MaxPortfolioVaR > 0 {
		if cfg.Limits == nil {
			cfg.Limits = make(map[string]float64)
		}
		if *flags.MaxPositionValue > 0 {
			cfg.Limits[risk.LimitMaxPositionValue] = *flags.MaxPositionValue
		}
		if *flags.MaxPortfolioVaR > 0 {
			cfg.Limits[risk.LimitMaxPortfolioVaR] = *flags.MaxPortfolioVaR
		}
	}

	if *flags.OutputDir != "" {
		cfg.Output.Directory = *flags.OutputDir
	}
	cfg.Output.TradesCSV = cfg.Output.TradesCSV || *flags.TradesCSV
	cfg.Output.MetricsJSON = cfg.Output.MetricsJSON || *flags.MetricsJSON
	cfg.Output.Excel = cfg.Output.Excel || *flags.Excel

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, logDir string) *logger.Logger {
	runTag := fmt.Sprintf("%s_%s", cfg.Symbol, cfg.Strategy.Name)
	if logDir != "" {
		if l, err := logger.NewFileLogger(logDir, runTag); err == nil {
			return l
		}
		fmt.Fprintf(os.Stderr, "backtest: warning: falling back to console logging\n")
	}
	return logger.New(os.Stderr, runTag)
}

func serveMetrics(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())
	log.Info("serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server: %v", err)
	}
}
