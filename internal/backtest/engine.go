// Package backtest replays a strategy against an ordered bar history
// and produces a trade log, an equity curve, and performance metrics.
package backtest

import (
	"math"

	"github.com/trkhoanh/quant-backtest/internal/analysis"
	"github.com/trkhoanh/quant-backtest/internal/risk"
	"github.com/trkhoanh/quant-backtest/internal/sizing"
	"github.com/trkhoanh/quant-backtest/internal/strategy"
	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// Reasons a non-HOLD signal can be dropped without a trade. Dropping is
// deliberate policy, not an error: the bar is simply skipped.
const (
	DropInsufficientCash = "insufficient_cash"
	DropNoHolding        = "no_holding"
	DropZeroSize         = "zero_size"
	DropRiskRejected     = "risk_rejected"
)

// riskVolatilityLookback is the trailing return window used to estimate
// the volatility handed to the risk manager on trade validation.
const riskVolatilityLookback = 20

// Engine drives a strategy bar-by-bar from a configured initial capital
// and a flat commission rate (fraction of notional traded).
//
// An Engine holds no per-run state and may be reused; each Run resets
// the supplied strategy first so results are independent of prior runs.
type Engine struct {
	initialCapital float64
	commission     float64
	calculator     *analysis.Calculator

	sizer       sizing.PositionSizer
	riskManager *risk.PortfolioManager
	symbol      string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSizer overrides the strategy's own sizing call with an external
// position sizer.
func WithSizer(s sizing.PositionSizer) EngineOption {
	return func(e *Engine) { e.sizer = s }
}

// WithRiskManager validates every proposed BUY against the manager's
// limits before it is executed; rejected signals are dropped.
func WithRiskManager(m *risk.PortfolioManager, symbol string) EngineOption {
	return func(e *Engine) {
		e.riskManager = m
		e.symbol = symbol
	}
}

// WithCalculator replaces the default metrics calculator.
func WithCalculator(c *analysis.Calculator) EngineOption {
	return func(e *Engine) { e.calculator = c }
}

// NewEngine creates a backtest engine.
func NewEngine(initialCapital, commission float64, opts ...EngineOption) *Engine {
	e := &Engine{
		initialCapital: initialCapital,
		commission:     commission,
		calculator:     analysis.NewCalculator(0, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run replays the history bar-by-bar. On each bar the strategy sees
// only bars [0..i]; it must never see future bars. Unfunded buys and
// sells with nothing to close are silently dropped and counted.
//
// The returned result has exactly one equity point per input bar, and
// re-running the same strategy against the same bars is deterministic.
func (e *Engine) Run(strat strategy.Strategy, bars []types.OHLCV) *Result {
	strat.Reset()

	result := &Result{
		StrategyName:   strat.Name(),
		InitialCapital: e.initialCapital,
		Trades:         make([]types.Trade, 0),
		EquityCurve:    make([]types.EquityPoint, 0, len(bars)),
		DroppedSignals: make(map[string]int),
	}

	cash := e.initialCapital
	var lot holding

	for i := range bars {
		visible := bars[:i+1]
		price := bars[i].Close

		signal := strat.GenerateSignal(visible)
		if signal != strategy.Hold {
			size := e.positionSize(strat, signal, visible, cash)
			commission := math.Abs(size*price) * e.commission

			switch signal {
			case strategy.Buy:
				e.executeBuy(result, strat, &lot, &cash, bars[i], size, commission)
			case strategy.Sell:
				e.executeSell(result, strat, &lot, &cash, bars[i], commission)
			}
		}

		result.EquityCurve = append(result.EquityCurve, types.EquityPoint{
			Timestamp: bars[i].Timestamp,
			Value:     cash + lot.size*price,
		})
	}

	result.FinalCapital = cash + lot.size*lastClose(bars)
	result.Metrics = e.calculator.Calculate(result.EquityCurve, result.Trades)
	return result
}

// holding is the single undifferentiated lot a run may carry: repeated
// buys accumulate into it, a sell liquidates it entirely.
type holding struct {
	size     float64
	avgEntry float64
}

func (e *Engine) positionSize(strat strategy.Strategy, signal strategy.Signal, visible []types.OHLCV, cash float64) float64 {
	if e.sizer != nil {
		price := visible[len(visible)-1].Close
		size, _ := e.sizer.Size(cash, price, visible)
		return size
	}
	return strat.PositionSize(signal, visible, cash)
}

func (e *Engine) executeBuy(result *Result, strat strategy.Strategy, lot *holding, cash *float64, bar types.OHLCV, size, commission float64) {
	price := bar.Close
	if size <= 0 {
		result.drop(DropZeroSize)
		return
	}

	cost := size*price + commission
	if cost > *cash {
		result.drop(DropInsufficientCash)
		return
	}

	if e.riskManager != nil {
		vol := trailingVolatility(result.EquityCurve, riskVolatilityLookback)
		if ok, reason := e.riskManager.ValidateTrade(e.symbol, size, price, vol); !ok {
			result.drop(DropRiskRejected)
			result.RiskRejections = append(result.RiskRejections, reason)
			return
		}
		e.riskManager.AddPosition(e.symbol, lot.size+size, price, vol)
	}

	// Accumulate into the lot at a blended entry price.
	total := lot.size + size
	lot.avgEntry = (lot.avgEntry*lot.size + price*size) / total
	lot.size = total
	*cash -= cost

	result.Trades = append(result.Trades, types.Trade{
		Date:       bar.Timestamp,
		Price:      price,
		Size:       size,
		Kind:       types.TradeBuy,
		Cost:       cost,
		Commission: commission,
	})
	strat.ApplySignal(strategy.Buy, price)
}

func (e *Engine) executeSell(result *Result, strat strategy.Strategy, lot *holding, cash *float64, bar types.OHLCV, _ float64) {
	if lot.size <= 0 {
		result.drop(DropNoHolding)
		return
	}

	// A sell always liquidates the currently tracked lot.
	price := bar.Close
	size := lot.size
	commission := math.Abs(size*price) * e.commission
	proceeds := size*price - commission

	*cash += proceeds
	pnl := (price-lot.avgEntry)*size - commission

	result.Trades = append(result.Trades, types.Trade{
		Date:       bar.Timestamp,
		Price:      price,
		Size:       -size,
		Kind:       types.TradeSell,
		Proceeds:   proceeds,
		Commission: commission,
		PnL:        pnl,
	})

	lot.size = 0
	lot.avgEntry = 0
	if e.riskManager != nil {
		e.riskManager.RemovePosition(e.symbol)
	}
	strat.ApplySignal(strategy.Sell, price)
}

// trailingVolatility estimates per-period volatility from the tail of
// the equity curve built so far. Used only to feed the risk manager's
// VaR check; returns 0 while the curve is too short.
func trailingVolatility(curve []types.EquityPoint, lookback int) float64 {
	if len(curve) < lookback+1 {
		return 0
	}
	window := curve[len(curve)-lookback-1:]
	returns := make([]float64, 0, lookback)
	for i := 1; i < len(window); i++ {
		if window[i-1].Value == 0 {
			continue
		}
		returns = append(returns, (window[i].Value-window[i-1].Value)/window[i-1].Value)
	}
	if len(returns) < 2 {
		return 0
	}

	m := 0.0
	for _, r := range returns {
		m += r
	}
	m /= float64(len(returns))
	v := 0.0
	for _, r := range returns {
		v += (r - m) * (r - m)
	}
	return math.Sqrt(v / float64(len(returns)-1))
}

func lastClose(bars []types.OHLCV) float64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Close
}
