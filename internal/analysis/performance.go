// Package analysis turns a completed equity curve and trade log into
// risk/return statistics.
package analysis

import (
	"math"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// DefaultPeriodsPerYear assumes daily bars.
const DefaultPeriodsPerYear = 252

// DefaultRiskFreeRate is the annual risk-free rate used for excess
// return calculations.
const DefaultRiskFreeRate = 0.02

// Report holds the performance statistics of one backtest run. All
// fields are derived and recomputed on demand; degenerate inputs
// resolve to zero except ProfitFactor, which is +Inf for a profitable
// run with no losing trades.
type Report struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	CalmarRatio      float64 `json:"calmar_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	AvgDrawdown      float64 `json:"avg_drawdown"`
	Periods          int     `json:"num_periods"`

	// Trade statistics, populated only when a trade log is supplied.
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	TradeCount   int     `json:"num_trades"`
}

// Calculator computes performance reports for equity curves.
type Calculator struct {
	riskFreeRate   float64
	periodsPerYear int
}

// NewCalculator creates a metrics calculator. Zero arguments fall back
// to the defaults (2% annual risk-free rate, 252 periods per year).
func NewCalculator(riskFreeRate float64, periodsPerYear int) *Calculator {
	if riskFreeRate == 0 {
		riskFreeRate = DefaultRiskFreeRate
	}
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}
	return &Calculator{riskFreeRate: riskFreeRate, periodsPerYear: periodsPerYear}
}

// Calculate builds a full report from an equity curve and an optional
// trade log. Curves with fewer than two points yield a zeroed report.
func (c *Calculator) Calculate(curve []types.EquityPoint, trades []types.Trade) Report {
	equity := make([]float64, len(curve))
	for i, p := range curve {
		equity[i] = p.Value
	}
	return c.calculate(equity, trades)
}

func (c *Calculator) calculate(equity []float64, trades []types.Trade) Report {
	var r Report
	if len(equity) >= 2 {
		returns := periodReturns(equity)
		r.TotalReturn = TotalReturn(equity)
		r.AnnualizedReturn = c.AnnualizedReturn(equity)
		r.Volatility = c.Volatility(returns)
		r.SharpeRatio = c.SharpeRatio(returns)
		r.SortinoRatio = c.SortinoRatio(returns)
		r.MaxDrawdown = MaxDrawdown(equity)
		r.AvgDrawdown = AvgDrawdown(equity)
		r.CalmarRatio = c.CalmarRatio(equity)
		r.Periods = len(equity) - 1
	}
	if trades != nil {
		r.WinRate = WinRate(trades)
		r.ProfitFactor = ProfitFactor(trades)
		r.TradeCount = len(trades)
	}
	return r
}

// TotalReturn is final/initial - 1.
func TotalReturn(equity []float64) float64 {
	if len(equity) < 2 || equity[0] == 0 {
		return 0
	}
	return equity[len(equity)-1]/equity[0] - 1
}

// AnnualizedReturn compounds the total return to periods-per-year.
func (c *Calculator) AnnualizedReturn(equity []float64) float64 {
	periods := len(equity) - 1
	if periods <= 0 {
		return 0
	}
	total := TotalReturn(equity)
	return math.Pow(1+total, float64(c.periodsPerYear)/float64(periods)) - 1
}

// Volatility is the annualized sample standard deviation of returns.
func (c *Calculator) Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return sampleStdDev(returns) * math.Sqrt(float64(c.periodsPerYear))
}

// SharpeRatio annualizes mean excess return over return dispersion.
// The per-period risk-free rate is the annual rate divided by
// periods-per-year.
func (c *Calculator) SharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	stdev := sampleStdDev(returns)
	if stdev == 0 {
		return 0
	}
	excess := mean(returns) - c.riskFreeRate/float64(c.periodsPerYear)
	return excess / stdev * math.Sqrt(float64(c.periodsPerYear))
}

// SortinoRatio replaces the Sharpe denominator with downside-only
// deviation; it is zero when there are no negative returns.
func (c *Calculator) SortinoRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var negatives []float64
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) == 0 {
		return 0
	}
	downside := sampleStdDev(negatives) * math.Sqrt(float64(c.periodsPerYear))
	if downside == 0 {
		return 0
	}
	excess := mean(returns) - c.riskFreeRate/float64(c.periodsPerYear)
	return excess / downside * math.Sqrt(float64(c.periodsPerYear))
}

// MaxDrawdown is the worst decline from a running equity peak,
// expressed as a non-positive fraction.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	worst := 0.0
	runningMax := equity[0]
	for _, v := range equity {
		if v > runningMax {
			runningMax = v
		}
		if runningMax > 0 {
			if dd := (v - runningMax) / runningMax; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// AvgDrawdown is the mean of the running-maximum-relative series over
// every point of the curve, peaks included.
func AvgDrawdown(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	sum := 0.0
	runningMax := equity[0]
	for _, v := range equity {
		if v > runningMax {
			runningMax = v
		}
		if runningMax > 0 {
			sum += (v - runningMax) / runningMax
		}
	}
	return sum / float64(len(equity))
}

// CalmarRatio is annualized return over the magnitude of max drawdown,
// zero when the curve never drew down.
func (c *Calculator) CalmarRatio(equity []float64) float64 {
	maxDD := math.Abs(MaxDrawdown(equity))
	if maxDD == 0 {
		return 0
	}
	return c.AnnualizedReturn(equity) / maxDD
}

// WinRate is the fraction of trades with positive PnL.
func WinRate(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

// ProfitFactor is gross profit over gross loss: +Inf for profit with no
// losses, zero when there is neither.
func ProfitFactor(trades []types.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	grossProfit := 0.0
	grossLoss := 0.0
	for _, t := range trades {
		switch {
		case t.PnL > 0:
			grossProfit += t.PnL
		case t.PnL < 0:
			grossLoss += -t.PnL
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

func periodReturns(equity []float64) []float64 {
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		out = append(out, (equity[i]-equity[i-1])/equity[i-1])
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}
