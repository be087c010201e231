package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMeanReversion_Validation rejects degenerate parameters.
func TestMeanReversion_Validation(t *testing.T) {
	_, err := NewMeanReversion(1, 2.0)
	assert.Error(t, err)

	_, err = NewMeanReversion(20, 0)
	assert.Error(t, err)

	_, err = NewMeanReversion(20, -1.5)
	assert.Error(t, err)
}

// TestMeanReversion_HoldsOnShortHistory verifies HOLD while the history
// is shorter than the lookback window.
func TestMeanReversion_HoldsOnShortHistory(t *testing.T) {
	s, err := NewMeanReversion(20, 2.0)
	require.NoError(t, err)

	bars := barsFromCloses(make([]float64, 19))
	for i := range bars {
		bars[i].Close = 100
	}
	assert.Equal(t, Hold, s.GenerateSignal(bars))
}

// TestMeanReversion_HoldsOnZeroStdev verifies HOLD when the window has
// no dispersion at all.
func TestMeanReversion_HoldsOnZeroStdev(t *testing.T) {
	s, err := NewMeanReversion(20, 2.0)
	require.NoError(t, err)

	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	assert.Equal(t, Hold, s.GenerateSignal(barsFromCloses(closes)))
}

// TestMeanReversion_BuyFarBelowMean verifies a BUY when the latest
// close sits several standard deviations below a flat window mean.
func TestMeanReversion_BuyFarBelowMean(t *testing.T) {
	s, err := NewMeanReversion(20, 2.0)
	require.NoError(t, err)

	// 19 bars at 100, then a drop to 90: z is roughly -4.2.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	closes[19] = 90
	bars := barsFromCloses(closes)

	assert.Equal(t, Buy, s.GenerateSignal(bars))

	z, ok := s.zScore(bars)
	require.True(t, ok)
	assert.Less(t, z, -3.0)
}

// TestMeanReversion_SellOnlyWhenLong verifies the overbought signal is
// suppressed to HOLD while not long.
func TestMeanReversion_SellOnlyWhenLong(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	closes[19] = 110
	bars := barsFromCloses(closes)

	flat, err := NewMeanReversion(20, 2.0)
	require.NoError(t, err)
	assert.Equal(t, Hold, flat.GenerateSignal(bars))

	long, err := NewMeanReversion(20, 2.0)
	require.NoError(t, err)
	long.ApplySignal(Buy, 100)
	assert.Equal(t, Sell, long.GenerateSignal(bars))
}

// TestMeanReversion_PositionSizeScalesWithZScore verifies the linear
// z-score scaling of the 1% risk base, capped at the full base amount.
func TestMeanReversion_PositionSizeScalesWithZScore(t *testing.T) {
	s, err := NewMeanReversion(20, 2.0)
	require.NoError(t, err)

	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	closes[19] = 90
	bars := barsFromCloses(closes)

	// |z| well past the threshold: the fraction caps at 1.0, so the
	// size equals the plain 1% rule.
	size := s.PositionSize(Buy, bars, 10000)
	price := bars[len(bars)-1].Close
	assert.InDelta(t, 10000*0.01/price, size, 1e-12)

	// A dispersed window puts |z| inside the threshold, so the fraction
	// scales the size below the 1% base.
	dispersed, err := NewMeanReversion(4, 2.0)
	require.NoError(t, err)
	mild := barsFromCloses([]float64{100, 104, 96, 99})
	mildSize := dispersed.PositionSize(Buy, mild, 10000)
	require.Greater(t, mildSize, 0.0)
	assert.Less(t, mildSize, 10000*0.01/99)

	assert.Zero(t, s.PositionSize(Hold, bars, 10000))
}
