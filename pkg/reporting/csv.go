package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/trkhoanh/quant-backtest/internal/backtest"
	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// DefaultCSVReporter writes trade logs and equity curves as CSV.
type DefaultCSVReporter struct{}

// NewCSVReporter creates a CSV reporter.
func NewCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteTradesCSV writes the trade log to path, creating parent
// directories as needed.
func (r *DefaultCSVReporter) WriteTradesCSV(result *backtest.Result, path string) error {
	f, err := createWithDirs(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Side", "Size", "Price", "Cost", "Proceeds", "Commission", "PnL"}); err != nil {
		return err
	}

	for _, t := range result.Trades {
		row := []string{
			t.Date.Format("2006-01-02 15:04:05"),
			string(t.Kind),
			fmt.Sprintf("%.8f", t.Size),
			fmt.Sprintf("%.8f", t.Price),
			fmt.Sprintf("%.2f", t.Cost),
			fmt.Sprintf("%.2f", t.Proceeds),
			fmt.Sprintf("%.4f", t.Commission),
			fmt.Sprintf("%.2f", t.PnL),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// WriteEquityCSV writes the equity curve to path.
func (r *DefaultCSVReporter) WriteEquityCSV(curve []types.EquityPoint, path string) error {
	f, err := createWithDirs(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Timestamp", "Equity"}); err != nil {
		return err
	}
	for _, p := range curve {
		if err := w.Write([]string{p.Timestamp.Format("2006-01-02 15:04:05"), fmt.Sprintf("%.2f", p.Value)}); err != nil {
			return err
		}
	}
	return w.Error()
}

func createWithDirs(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
