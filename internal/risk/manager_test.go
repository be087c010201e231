package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormQuantile(t *testing.T) {
	assert.InDelta(t, 1.6448536, normQuantile(0.95), 1e-6)
	assert.InDelta(t, 1.9599640, normQuantile(0.975), 1e-6)
	assert.InDelta(t, 0.0, normQuantile(0.5), 1e-9)
	assert.InDelta(t, -1.6448536, normQuantile(0.05), 1e-6)
	// Acklam's tail branch, well past pLow.
	assert.InDelta(t, -2.3263479, normQuantile(0.01), 1e-6)

	assert.True(t, math.IsInf(normQuantile(0), -1))
	assert.True(t, math.IsInf(normQuantile(1), 1))
}

func TestNewPortfolioManager_Validation(t *testing.T) {
	_, err := NewPortfolioManager(1.5)
	assert.Error(t, err)

	_, err = NewPortfolioManager(-0.1)
	assert.Error(t, err)

	m, err := NewPortfolioManager(0)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestValueAtRisk_EmptyPortfolio(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)

	assert.Zero(t, m.ValueAtRisk(1))
}

// TestValueAtRisk_SinglePosition checks VaR against the closed form for
// one position: value * volatility * z(confidence).
func TestValueAtRisk_SinglePosition(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)

	m.AddPosition("BTCUSDT", 0.5, 30000, 0.02)

	want := 15000.0 * 0.02 * normQuantile(0.95)
	assert.InDelta(t, want, m.ValueAtRisk(1), 1e-6)
}

// TestValueAtRisk_HorizonScaling verifies the square-root-of-time rule:
// a 4-period horizon doubles the 1-period VaR.
func TestValueAtRisk_HorizonScaling(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)

	m.AddPosition("BTCUSDT", 0.5, 30000, 0.02)
	m.AddPosition("ETHUSDT", 5, 2000, 0.03)

	assert.InDelta(t, 2*m.ValueAtRisk(1), m.ValueAtRisk(4), 1e-6)
}

// TestValueAtRisk_CorrelationRaisesVaR verifies two positions under the
// flat 0.5 default carry more VaR than independent ones but less than
// perfectly correlated ones.
func TestValueAtRisk_CorrelationRaisesVaR(t *testing.T) {
	build := func(opts ...Option) *PortfolioManager {
		m, err := NewPortfolioManager(0.95, opts...)
		require.NoError(t, err)
		m.AddPosition("BTCUSDT", 0.5, 30000, 0.02)
		m.AddPosition("ETHUSDT", 5, 2000, 0.03)
		return m
	}

	flat := build()
	independent := build(WithCorrelation(func(a, b string) float64 { return 0 }))
	perfect := build(WithCorrelation(func(a, b string) float64 { return 1 }))

	assert.Greater(t, flat.ValueAtRisk(1), independent.ValueAtRisk(1))
	assert.Less(t, flat.ValueAtRisk(1), perfect.ValueAtRisk(1))

	// Perfect correlation reduces to the sum of the individual VaRs.
	want := (15000*0.02 + 10000*0.03) * normQuantile(0.95)
	assert.InDelta(t, want, perfect.ValueAtRisk(1), 1e-6)
}

func TestAddRemovePosition(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)

	m.AddPosition("BTCUSDT", -0.5, 30000, 0.02)
	pos := m.Positions()["BTCUSDT"]
	assert.Equal(t, 15000.0, pos.Value, "value uses absolute size")
	assert.Equal(t, -0.5, pos.Size)

	m.RemovePosition("BTCUSDT")
	assert.Empty(t, m.Positions())

	m.RemovePosition("BTCUSDT") // absent symbol is a no-op
}

func TestCheckLimits(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)

	m.SetRiskLimit(LimitMaxPositionValue, 10000)
	m.SetRiskLimit(LimitMaxPortfolioVaR, 1e9)

	m.AddPosition("BTCUSDT", 0.5, 30000, 0.02)
	m.AddPosition("ETHUSDT", 1, 2000, 0.03)

	violations := m.CheckLimits()
	assert.True(t, violations[LimitMaxPositionValue+"_BTCUSDT"])
	_, flagged := violations[LimitMaxPositionValue+"_ETHUSDT"]
	assert.False(t, flagged, "position under the limit is not reported")
	assert.False(t, violations[LimitMaxPortfolioVaR])

	m.SetRiskLimit(LimitMaxPortfolioVaR, 1)
	assert.True(t, m.CheckLimits()[LimitMaxPortfolioVaR])
}

func TestValidateTrade_PositionValueLimit(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)
	m.SetRiskLimit(LimitMaxPositionValue, 10000)

	ok, reason := m.ValidateTrade("BTCUSDT", 0.2, 30000, 0.02)
	assert.True(t, ok)
	assert.Empty(t, reason)

	// An existing lot counts against the limit.
	m.AddPosition("BTCUSDT", 0.2, 30000, 0.02)
	ok, reason = m.ValidateTrade("BTCUSDT", 0.2, 30000, 0.02)
	assert.False(t, ok)
	assert.Contains(t, reason, "exceed limit")
}

func TestValidateTrade_VaRLimit(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)
	m.SetRiskLimit(LimitMaxPortfolioVaR, 100)

	ok, reason := m.ValidateTrade("BTCUSDT", 0.5, 30000, 0.02)
	assert.False(t, ok)
	assert.Contains(t, reason, "VaR")

	// Rejection must not leave the hypothetical position behind.
	assert.Empty(t, m.Positions())

	ok, _ = m.ValidateTrade("BTCUSDT", 0.001, 30000, 0.02)
	assert.True(t, ok)
}

func TestValidateTrade_NoLimits(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)

	ok, reason := m.ValidateTrade("BTCUSDT", 100, 30000, 0.5)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestSummary(t *testing.T) {
	m, err := NewPortfolioManager(0.95)
	require.NoError(t, err)

	m.AddPosition("BTCUSDT", 0.5, 30000, 0.02)
	m.AddPosition("ETHUSDT", 5, 2000, 0.03)

	s := m.Summary()
	assert.Equal(t, 2, s.PositionCount)
	assert.Equal(t, 25000.0, s.TotalValue)
	assert.Equal(t, 15000.0, s.PositionValues["BTCUSDT"])
	assert.InDelta(t, m.ValueAtRisk(1), s.ValueAtRisk, 1e-9)
}
