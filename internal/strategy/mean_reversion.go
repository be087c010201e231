package strategy

import (
	"fmt"
	"math"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

const (
	DefaultLookback  = 20
	DefaultThreshold = 2.0
)

// MeanReversion trades deviations from a rolling mean: BUY when the
// latest close sits more than threshold standard deviations below the
// lookback mean, SELL on the symmetric condition while long.
type MeanReversion struct {
	tracker
	name      string
	lookback  int
	threshold float64
}

// NewMeanReversion creates a mean-reversion strategy.
func NewMeanReversion(lookback int, threshold float64) (*MeanReversion, error) {
	if lookback < 2 {
		return nil, fmt.Errorf("mean reversion: lookback must be at least 2, got %d", lookback)
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("mean reversion: threshold must be positive, got %v", threshold)
	}
	return &MeanReversion{
		name:      fmt.Sprintf("mean_reversion_%d_%.1f", lookback, threshold),
		lookback:  lookback,
		threshold: threshold,
	}, nil
}

func (s *MeanReversion) Name() string { return s.name }

func (s *MeanReversion) GenerateSignal(bars []types.OHLCV) Signal {
	z, ok := s.zScore(bars)
	if !ok {
		return Hold
	}

	switch {
	case z > s.threshold:
		if s.position == Long {
			return Sell
		}
		return Hold
	case z < -s.threshold:
		return Buy
	default:
		return Hold
	}
}

// PositionSize scales a 1% account-risk base linearly with how far the
// price has strayed from the mean, capped at the full base amount.
func (s *MeanReversion) PositionSize(signal Signal, bars []types.OHLCV, accountValue float64) float64 {
	if signal == Hold || len(bars) == 0 {
		return 0
	}
	price := bars[len(bars)-1].Close
	if price <= 0 {
		return 0
	}

	z, ok := s.zScore(bars)
	if !ok {
		return 0
	}
	fraction := math.Min(math.Abs(z)/s.threshold, 1.0)
	return accountValue * baseRiskFraction * fraction / price
}

// zScore computes how many standard deviations the latest close lies
// from the lookback-window mean. Returns false when the history is too
// short or the window has zero dispersion.
func (s *MeanReversion) zScore(bars []types.OHLCV) (float64, bool) {
	if len(bars) < s.lookback {
		return 0, false
	}

	closes := types.Closes(bars)
	window := closes[len(closes)-s.lookback:]

	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))

	variance := 0.0
	for _, v := range window {
		variance += (v - mean) * (v - mean)
	}
	// Sample standard deviation, matching the dispersion used elsewhere
	// in the metrics layer.
	stdev := math.Sqrt(variance / float64(len(window)-1))
	if stdev == 0 {
		return 0, false
	}

	return (closes[len(closes)-1] - mean) / stdev, true
}
