package backtest

import (
	"github.com/trkhoanh/quant-backtest/internal/analysis"
	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// Result is the output of one backtest run: the trade log, the equity
// curve (one point per input bar), the performance report, and counts
// of signals that were dropped by policy.
type Result struct {
	StrategyName   string
	InitialCapital float64
	FinalCapital   float64

	Trades      []types.Trade
	EquityCurve []types.EquityPoint
	Metrics     analysis.Report

	// DroppedSignals counts non-HOLD signals that produced no trade,
	// keyed by drop reason. The drops themselves are silent policy; the
	// counts exist for observability.
	DroppedSignals map[string]int

	// RiskRejections holds the reasons returned by the risk manager for
	// trades it refused, in order of occurrence.
	RiskRejections []string
}

func (r *Result) drop(reason string) {
	r.DroppedSignals[reason]++
}

// TotalDropped is the total number of dropped signals across reasons.
func (r *Result) TotalDropped() int {
	n := 0
	for _, c := range r.DroppedSignals {
		n += c
	}
	return n
}
