package sizing

import (
	"fmt"
	"math"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// DefaultVolatilityLookback is the trailing return window used when no
// lookback is configured.
const DefaultVolatilityLookback = 20

// VolatilityAdjusted shrinks position size as realized volatility
// rises. With no usable volatility estimate it degrades to plain
// fixed-fractional sizing.
type VolatilityAdjusted struct {
	fraction float64
	lookback int
	fallback []types.OHLCV
}

// NewVolatilityAdjusted creates a volatility-adjusted sizer. The
// fallback history is used when the caller passes no bars at sizing
// time.
func NewVolatilityAdjusted(fraction float64, lookback int, fallback []types.OHLCV) (*VolatilityAdjusted, error) {
	if fraction == 0 {
		fraction = DefaultFraction
	}
	if fraction < 0 || fraction > 1 {
		return nil, fmt.Errorf("volatility adjusted: fraction must be in (0, 1], got %v", fraction)
	}
	if lookback == 0 {
		lookback = DefaultVolatilityLookback
	}
	if lookback < 2 {
		return nil, fmt.Errorf("volatility adjusted: lookback must be at least 2, got %d", lookback)
	}
	return &VolatilityAdjusted{fraction: fraction, lookback: lookback, fallback: fallback}, nil
}

func (s *VolatilityAdjusted) Name() string { return MethodVolatilityAdjusted }

func (s *VolatilityAdjusted) Size(accountValue, price float64, bars []types.OHLCV) (float64, float64) {
	if price <= 0 {
		return 0, 0
	}

	riskAmount := accountValue * s.fraction

	history := bars
	if len(history) == 0 {
		history = s.fallback
	}

	if vol := s.trailingVolatility(history); vol > 0 {
		// Scale risk inversely to volatility: a 1% return stdev leaves
		// the risk amount unchanged.
		adjusted := riskAmount / (vol * 100)
		return adjusted / price, adjusted
	}

	return riskAmount / price, riskAmount
}

// trailingVolatility returns the sample standard deviation of the last
// lookback returns, or 0 when the history is too short.
func (s *VolatilityAdjusted) trailingVolatility(bars []types.OHLCV) float64 {
	returns := types.Returns(bars)
	if len(returns) < s.lookback {
		return 0
	}
	window := returns[len(returns)-s.lookback:]

	mean := 0.0
	for _, r := range window {
		mean += r
	}
	mean /= float64(len(window))

	variance := 0.0
	for _, r := range window {
		variance += (r - mean) * (r - mean)
	}
	return math.Sqrt(variance / float64(len(window)-1))
}
