package main

import (
	"fmt"
	"path/filepath"

	"github.com/trkhoanh/quant-backtest/internal/backtest"
	"github.com/trkhoanh/quant-backtest/pkg/config"
	"github.com/trkhoanh/quant-backtest/pkg/reporting"
)

// writeOutputs renders the result to the console and to the configured
// file formats.
func writeOutputs(result *backtest.Result, cfg *config.Config, flags *Flags) error {
	reporter := reporting.NewReporter()

	reporter.OutputResults(result)
	if *flags.ShowTrades {
		reporter.OutputTrades(result)
	}

	dir := cfg.Output.Directory
	base := fmt.Sprintf("%s_%s", cfg.Symbol, result.StrategyName)

	if cfg.Output.TradesCSV {
		path := filepath.Join(dir, base+"_trades.csv")
		if err := reporter.WriteTradesCSV(result, path); err != nil {
			return fmt.Errorf("writing trades CSV: %w", err)
		}
		fmt.Printf("Trades written to %s\n", path)
	}

	if cfg.Output.MetricsJSON {
		path := filepath.Join(dir, base+"_metrics.json")
		if err := reporter.WriteMetricsJSON(result, path); err != nil {
			return fmt.Errorf("writing metrics JSON: %w", err)
		}
		fmt.Printf("Metrics written to %s\n", path)
	}

	if cfg.Output.Excel {
		path := filepath.Join(dir, base+"_report.xlsx")
		if err := reporter.WriteWorkbook(result, path); err != nil {
			return fmt.Errorf("writing Excel workbook: %w", err)
		}
		fmt.Printf("Workbook written to %s\n", path)
	}

	return nil
}
