package reporting

import (
	"fmt"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/trkhoanh/quant-backtest/internal/backtest"
	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// DefaultConsoleReporter renders results as go-pretty tables.
type DefaultConsoleReporter struct{}

// NewConsoleReporter creates a console reporter.
func NewConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// OutputResults prints the performance report and a drop summary.
func (r *DefaultConsoleReporter) OutputResults(result *backtest.Result) {
	m := result.Metrics

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Backtest Results: %s", result.StrategyName)

	t.AppendRows([]table.Row{
		{"Initial Capital", fmt.Sprintf("$%.2f", result.InitialCapital)},
		{"Final Capital", fmt.Sprintf("$%.2f", result.FinalCapital)},
		{"Total Return", fmt.Sprintf("%.2f%%", m.TotalReturn*100)},
		{"Annualized Return", fmt.Sprintf("%.2f%%", m.AnnualizedReturn*100)},
		{"Volatility", fmt.Sprintf("%.2f%%", m.Volatility*100)},
		{"Sharpe Ratio", fmt.Sprintf("%.2f", m.SharpeRatio)},
		{"Sortino Ratio", fmt.Sprintf("%.2f", m.SortinoRatio)},
		{"Calmar Ratio", fmt.Sprintf("%.2f", m.CalmarRatio)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", m.MaxDrawdown*100)},
		{"Avg Drawdown", fmt.Sprintf("%.2f%%", m.AvgDrawdown*100)},
		{"Trades", fmt.Sprintf("%d", m.TradeCount)},
		{"Win Rate", fmt.Sprintf("%.1f%%", m.WinRate*100)},
		{"Profit Factor", formatProfitFactor(m.ProfitFactor)},
		{"Dropped Signals", fmt.Sprintf("%d", result.TotalDropped())},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
}

// OutputTrades prints the trade log.
func (r *DefaultConsoleReporter) OutputTrades(result *backtest.Result) {
	if len(result.Trades) == 0 {
		fmt.Println("No trades executed.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Trades: %s", result.StrategyName)
	t.AppendHeader(table.Row{"#", "Date", "Side", "Size", "Price", "Cash Flow", "Commission", "PnL"})

	for i, tr := range result.Trades {
		flow := -tr.Cost
		if tr.Kind == types.TradeSell {
			flow = tr.Proceeds
		}
		t.AppendRow(table.Row{
			i + 1,
			tr.Date.Format("2006-01-02 15:04"),
			string(tr.Kind),
			fmt.Sprintf("%.6f", tr.Size),
			fmt.Sprintf("%.4f", tr.Price),
			fmt.Sprintf("%.2f", flow),
			fmt.Sprintf("%.2f", tr.Commission),
			fmt.Sprintf("%.2f", tr.PnL),
		})
	}
	t.Render()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}
