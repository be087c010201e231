package reporting

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/trkhoanh/quant-backtest/internal/backtest"
)

// DefaultJSONReporter writes the metrics mapping as JSON.
type DefaultJSONReporter struct{}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter() *DefaultJSONReporter {
	return &DefaultJSONReporter{}
}

// metricsDocument is the serialized shape of a run's metrics. Profit
// factor is emitted as a string when infinite, since JSON has no Inf.
type metricsDocument struct {
	Strategy       string         `json:"strategy"`
	InitialCapital float64        `json:"initial_capital"`
	FinalCapital   float64        `json:"final_capital"`
	Metrics        map[string]any `json:"metrics"`
	DroppedSignals map[string]int `json:"dropped_signals,omitempty"`
}

// WriteMetricsJSON writes the performance report to path.
func (r *DefaultJSONReporter) WriteMetricsJSON(result *backtest.Result, path string) error {
	m := result.Metrics

	var profitFactor any = m.ProfitFactor
	if math.IsInf(m.ProfitFactor, 1) {
		profitFactor = "inf"
	}

	doc := metricsDocument{
		Strategy:       result.StrategyName,
		InitialCapital: result.InitialCapital,
		FinalCapital:   result.FinalCapital,
		Metrics: map[string]any{
			"total_return":      m.TotalReturn,
			"annualized_return": m.AnnualizedReturn,
			"volatility":        m.Volatility,
			"sharpe_ratio":      m.SharpeRatio,
			"sortino_ratio":     m.SortinoRatio,
			"calmar_ratio":      m.CalmarRatio,
			"max_drawdown":      m.MaxDrawdown,
			"avg_drawdown":      m.AvgDrawdown,
			"win_rate":          m.WinRate,
			"profit_factor":     profitFactor,
			"num_trades":        m.TradeCount,
			"num_periods":       m.Periods,
		},
		DroppedSignals: result.DroppedSignals,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
