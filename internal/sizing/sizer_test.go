package sizing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

func barsFromCloses(closes []float64) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = types.OHLCV{
			Open: c, High: c, Low: c, Close: c,
			Volume:    1000,
			Timestamp: start.AddDate(0, 0, i),
		}
	}
	return bars
}

// TestFixedFractional_Size verifies the basic risk arithmetic: 2% of a
// 10000 account at price 100 is 2 units and 200 at risk.
func TestFixedFractional_Size(t *testing.T) {
	s, err := NewFixedFractional(0.02)
	require.NoError(t, err)

	size, riskAmount := s.Size(10000, 100, nil)
	assert.Equal(t, 2.0, size)
	assert.Equal(t, 200.0, riskAmount)
}

func TestFixedFractional_DefaultsAndValidation(t *testing.T) {
	s, err := NewFixedFractional(0)
	require.NoError(t, err)
	_, riskAmount := s.Size(10000, 100, nil)
	assert.Equal(t, 100.0, riskAmount) // 1% default

	_, err = NewFixedFractional(-0.1)
	assert.Error(t, err)
	_, err = NewFixedFractional(1.5)
	assert.Error(t, err)
}

func TestFixedFractional_ZeroPrice(t *testing.T) {
	s, err := NewFixedFractional(0.02)
	require.NoError(t, err)

	size, riskAmount := s.Size(10000, 0, nil)
	assert.Zero(t, size)
	assert.Zero(t, riskAmount)
}

// TestVolatilityAdjusted_ScalesDownRisk verifies the inverse volatility
// scaling against a hand-computed trailing stdev.
func TestVolatilityAdjusted_ScalesDownRisk(t *testing.T) {
	s, err := NewVolatilityAdjusted(0.01, 2, nil)
	require.NoError(t, err)

	// Returns are +10%, -10%, +10%; the last two have a sample stdev of
	// sqrt(0.02), so the 100 risk base shrinks to 100/(100*sqrt(0.02)).
	bars := barsFromCloses([]float64{100, 110, 99, 108.9})

	size, riskAmount := s.Size(10000, 108.9, bars)
	wantRisk := 100.0 / (100.0 * 0.1414213562373095)
	assert.InDelta(t, wantRisk, riskAmount, 1e-9)
	assert.InDelta(t, wantRisk/108.9, size, 1e-9)
	assert.Less(t, riskAmount, 100.0)
}

// TestVolatilityAdjusted_FallsBackWithoutHistory verifies the sizer
// degrades to fixed-fractional behavior on short histories, and that a
// constructor-supplied fallback history is used when no bars are passed.
func TestVolatilityAdjusted_FallsBackWithoutHistory(t *testing.T) {
	s, err := NewVolatilityAdjusted(0.01, 2, nil)
	require.NoError(t, err)

	size, riskAmount := s.Size(10000, 100, barsFromCloses([]float64{100, 101}))
	assert.Equal(t, 100.0, riskAmount)
	assert.Equal(t, 1.0, size)

	fallback := barsFromCloses([]float64{100, 110, 99, 108.9})
	withFallback, err := NewVolatilityAdjusted(0.01, 2, fallback)
	require.NoError(t, err)

	_, adjusted := withFallback.Size(10000, 108.9, nil)
	assert.Less(t, adjusted, 100.0)
}

// TestKellyCriterion_CapsFraction verifies a strong edge is damped and
// then capped at 2% of account.
func TestKellyCriterion_CapsFraction(t *testing.T) {
	s, err := NewKellyCriterion(0.6, 1.5, 1.0)
	require.NoError(t, err)

	// f* = 0.6 - 0.4/1.5 = 1/3; quarter-Kelly is about 8.3%, capped to 2%.
	size, riskAmount := s.Size(10000, 100, nil)
	assert.InDelta(t, 200.0, riskAmount, 1e-9)
	assert.InDelta(t, 2.0, size, 1e-9)
}

// TestKellyCriterion_NegativeEdgeFallsBack verifies a losing edge falls
// back to flat 1% sizing instead of going short or zero.
func TestKellyCriterion_NegativeEdgeFallsBack(t *testing.T) {
	s, err := NewKellyCriterion(0.3, 1.0, 1.0)
	require.NoError(t, err)

	_, riskAmount := s.Size(10000, 100, nil)
	assert.Equal(t, 100.0, riskAmount)

	zeroLoss, err := NewKellyCriterion(0.6, 1.5, 0)
	require.NoError(t, err)
	_, riskAmount = zeroLoss.Size(10000, 100, nil)
	assert.Equal(t, 100.0, riskAmount)
}

func TestKellyCriterion_Validation(t *testing.T) {
	_, err := NewKellyCriterion(1.2, 1, 1)
	assert.Error(t, err)
	_, err = NewKellyCriterion(0.5, -1, 1)
	assert.Error(t, err)
}

// TestNew_Factory covers method dispatch and the unknown-method error.
func TestNew_Factory(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{MethodFixedFractional, "fixed_fractional"},
		{MethodVolatilityAdjusted, "volatility_adjusted"},
		{MethodKellyCriterion, "kelly"},
	}
	for _, tt := range tests {
		s, err := New(tt.method, Params{})
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.Name())
	}

	_, err := New("martingale", Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "martingale")
}
