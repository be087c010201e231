// Package sizing implements the position-sizing algorithms consumed by
// the backtest engine: fixed fractional, volatility adjusted, and
// Kelly criterion.
package sizing

import (
	"fmt"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// PositionSizer computes how many units to trade for a given account
// value and price. The visible bar history is supplied so that sizers
// reacting to market conditions can use it; stateless sizers ignore it.
//
// A non-positive price yields (0, 0).
type PositionSizer interface {
	// Name returns the method name of the sizer.
	Name() string

	// Size returns the position size in units and the account currency
	// amount put at risk.
	Size(accountValue, price float64, bars []types.OHLCV) (size, riskAmount float64)
}

// Method names accepted by New.
const (
	MethodFixedFractional    = "fixed_fractional"
	MethodVolatilityAdjusted = "volatility_adjusted"
	MethodKellyCriterion     = "kelly"
)

// Params collects the recognized parameters across sizing methods.
// Each method reads only its own fields; constructors validate the
// ones they need.
type Params struct {
	// Fraction of account value to risk (fixed fractional and
	// volatility adjusted). Defaults to 0.01.
	Fraction float64

	// VolatilityLookback is the number of trailing returns used for the
	// volatility estimate. Defaults to 20.
	VolatilityLookback int

	// VolatilityData is an optional fallback history used when the
	// caller does not pass bars at sizing time.
	VolatilityData []types.OHLCV

	// Kelly inputs: empirical win rate and average win/loss per trade.
	WinRate float64
	AvgWin  float64
	AvgLoss float64
}

// New constructs a position sizer by method name. Unknown methods are
// configuration errors.
func New(method string, params Params) (PositionSizer, error) {
	switch method {
	case MethodFixedFractional:
		return NewFixedFractional(params.Fraction)
	case MethodVolatilityAdjusted:
		return NewVolatilityAdjusted(params.Fraction, params.VolatilityLookback, params.VolatilityData)
	case MethodKellyCriterion:
		return NewKellyCriterion(params.WinRate, params.AvgWin, params.AvgLoss)
	default:
		return nil, fmt.Errorf("unknown position sizing method %q (supported: %s, %s, %s)",
			method, MethodFixedFractional, MethodVolatilityAdjusted, MethodKellyCriterion)
	}
}
