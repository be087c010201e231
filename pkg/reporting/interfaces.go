// Package reporting renders backtest output: console tables, trade-log
// CSV, metrics JSON, and Excel workbooks. It consumes the engine's
// {trade log, equity curve, metrics} contract and never feeds back into
// the simulation.
package reporting

import "github.com/trkhoanh/quant-backtest/internal/backtest"

// ConsoleReporter renders results to standard output.
type ConsoleReporter interface {
	OutputResults(result *backtest.Result)
}

// FileReporter writes results to files.
type FileReporter interface {
	WriteTradesCSV(result *backtest.Result, path string) error
	WriteMetricsJSON(result *backtest.Result, path string) error
	WriteWorkbook(result *backtest.Result, path string) error
}

// Reporter combines all reporting capabilities.
type Reporter interface {
	ConsoleReporter
	FileReporter
}
