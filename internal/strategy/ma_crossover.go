package strategy

import (
	"fmt"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

const (
	DefaultFastPeriod = 10
	DefaultSlowPeriod = 30

	// Flat fraction of account value risked per trade.
	baseRiskFraction = 0.01
)

// MACrossover trades simple moving average crossovers: BUY when the
// fast average crosses above the slow average, SELL on the opposite
// crossover while long.
type MACrossover struct {
	tracker
	name       string
	fastPeriod int
	slowPeriod int
}

// NewMACrossover creates a moving-average crossover strategy. Periods
// are validated at construction so a misconfigured run fails before any
// bar is processed.
func NewMACrossover(fastPeriod, slowPeriod int) (*MACrossover, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return nil, fmt.Errorf("ma crossover: periods must be positive (fast=%d, slow=%d)", fastPeriod, slowPeriod)
	}
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("ma crossover: fast period %d must be shorter than slow period %d", fastPeriod, slowPeriod)
	}
	return &MACrossover{
		name:       fmt.Sprintf("ma_crossover_%d_%d", fastPeriod, slowPeriod),
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}, nil
}

func (s *MACrossover) Name() string { return s.name }

// GenerateSignal compares the fast and slow averages on the current and
// previous bar. A crossover needs a previous bar with a full slow
// window, so the strategy holds until slow_period+1 bars are visible.
func (s *MACrossover) GenerateSignal(bars []types.OHLCV) Signal {
	if len(bars) <= s.slowPeriod {
		return Hold
	}

	closes := types.Closes(bars)
	currFast := sma(closes, s.fastPeriod)
	currSlow := sma(closes, s.slowPeriod)
	prevFast := sma(closes[:len(closes)-1], s.fastPeriod)
	prevSlow := sma(closes[:len(closes)-1], s.slowPeriod)

	switch {
	case prevFast <= prevSlow && currFast > currSlow:
		return Buy
	case prevFast >= prevSlow && currFast < currSlow:
		if s.position == Long {
			return Sell
		}
		return Hold
	default:
		return Hold
	}
}

// PositionSize risks a flat 1% of account value per trade.
func (s *MACrossover) PositionSize(signal Signal, bars []types.OHLCV, accountValue float64) float64 {
	if signal == Hold || len(bars) == 0 {
		return 0
	}
	price := bars[len(bars)-1].Close
	if price <= 0 {
		return 0
	}
	return accountValue * baseRiskFraction / price
}

// sma returns the simple moving average of the trailing window of the
// series. The caller guarantees len(series) >= window.
func sma(series []float64, window int) float64 {
	sum := 0.0
	for _, v := range series[len(series)-window:] {
		sum += v
	}
	return sum / float64(window)
}
