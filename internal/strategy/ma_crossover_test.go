package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// barsFromCloses builds a flat-bar history from closing prices, one bar
// per day.
func barsFromCloses(closes []float64) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = types.OHLCV{
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
			Timestamp: start.AddDate(0, 0, i),
		}
	}
	return bars
}

// TestMACrossover_Validation rejects degenerate period combinations.
func TestMACrossover_Validation(t *testing.T) {
	_, err := NewMACrossover(0, 30)
	assert.Error(t, err)

	_, err = NewMACrossover(30, 10)
	assert.Error(t, err)

	_, err = NewMACrossover(10, 10)
	assert.Error(t, err)
}

// TestMACrossover_HoldsUntilSlowWindow verifies the strategy emits HOLD
// while the history is shorter than the slow period.
func TestMACrossover_HoldsUntilSlowWindow(t *testing.T) {
	s, err := NewMACrossover(2, 3)
	require.NoError(t, err)

	bars := barsFromCloses([]float64{5, 4, 3})
	for i := 1; i <= len(bars); i++ {
		assert.Equal(t, Hold, s.GenerateSignal(bars[:i]), "bar %d", i-1)
	}
}

// TestMACrossover_BuyOnCross verifies a BUY fires exactly on the bar
// where the fast average crosses above the slow average, with HOLD on
// the surrounding bars.
func TestMACrossover_BuyOnCross(t *testing.T) {
	s, err := NewMACrossover(2, 3)
	require.NoError(t, err)

	// Decline, then a sharp rally at index 5 pulls the 2-bar average
	// above the 3-bar average. Index 6 continues the rally with the
	// fast average already on top, so no second BUY.
	closes := []float64{5, 4, 3, 2, 1, 10, 11}
	bars := barsFromCloses(closes)

	signals := make([]Signal, len(bars))
	for i := range bars {
		signals[i] = s.GenerateSignal(bars[:i+1])
		s.ApplySignal(signals[i], bars[i].Close)
	}

	assert.Equal(t, Hold, signals[4])
	assert.Equal(t, Buy, signals[5])
	assert.Equal(t, Hold, signals[6], "no repeated BUY while already long")
	assert.Equal(t, Long, s.Position())
}

// TestMACrossover_SellOnlyWhenLong verifies the down-cross emits SELL
// while long and HOLD otherwise.
func TestMACrossover_SellOnlyWhenLong(t *testing.T) {
	closes := []float64{5, 4, 3, 2, 1, 10, 11, 1, 1}

	// Flat strategy: the down-cross is suppressed to HOLD.
	flat, err := NewMACrossover(2, 3)
	require.NoError(t, err)
	for i := range closes {
		sig := flat.GenerateSignal(barsFromCloses(closes[:i+1]))
		assert.NotEqual(t, Sell, sig, "bar %d", i)
	}

	// Long strategy: the same history produces a SELL on the down-cross.
	long, err := NewMACrossover(2, 3)
	require.NoError(t, err)
	bars := barsFromCloses(closes)
	sawSell := false
	for i := range bars {
		sig := long.GenerateSignal(bars[:i+1])
		if sig == Sell {
			sawSell = true
		}
		long.ApplySignal(sig, bars[i].Close)
	}
	assert.True(t, sawSell)
	assert.Equal(t, Flat, long.Position())
}

// TestMACrossover_Causality verifies signals depend only on the visible
// prefix of the history: truncating a longer series changes nothing.
func TestMACrossover_Causality(t *testing.T) {
	closes := []float64{5, 4, 3, 2, 1, 10, 11, 12, 2, 1, 6, 9, 3}
	full := barsFromCloses(closes)
	cut := 7

	a, err := NewMACrossover(2, 3)
	require.NoError(t, err)
	b, err := NewMACrossover(2, 3)
	require.NoError(t, err)

	for i := 0; i < cut; i++ {
		sigFull := a.GenerateSignal(full[:i+1])
		sigCut := b.GenerateSignal(full[:cut][:i+1])
		assert.Equal(t, sigFull, sigCut, "bar %d", i)
		a.ApplySignal(sigFull, full[i].Close)
		b.ApplySignal(sigCut, full[i].Close)
	}
}

// TestMACrossover_PositionSize verifies the flat 1% risk rule.
func TestMACrossover_PositionSize(t *testing.T) {
	s, err := NewMACrossover(2, 3)
	require.NoError(t, err)

	bars := barsFromCloses([]float64{100})

	size := s.PositionSize(Buy, bars, 10000)
	assert.InDelta(t, 1.0, size, 1e-12) // 10000 * 0.01 / 100

	assert.Zero(t, s.PositionSize(Hold, bars, 10000))
	assert.Zero(t, s.PositionSize(Buy, nil, 10000))
	assert.Zero(t, s.PositionSize(Buy, barsFromCloses([]float64{0}), 10000))
}
