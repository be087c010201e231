// Package risk tracks open positions against named limits and computes
// portfolio Value-at-Risk.
package risk

import (
	"fmt"
	"math"
	"sort"
)

// DefaultConfidence is the confidence level used when none is supplied.
const DefaultConfidence = 0.95

// defaultCorrelation is the assumed pairwise correlation between any
// two distinct symbols when no correlation source is injected. A single
// flat coefficient is a deliberate simplification; callers needing real
// covariance inputs supply their own CorrelationFn.
const defaultCorrelation = 0.5

// CorrelationFn returns the assumed correlation between two symbols.
type CorrelationFn func(a, b string) float64

// PortfolioManager maintains an open-position map and a named
// risk-limit map. It is independent of the backtest engine; each
// portfolio owns its own instance.
type PortfolioManager struct {
	confidence  float64
	positions   map[string]Position
	limits      map[string]float64
	correlation CorrelationFn
}

// Option configures a PortfolioManager.
type Option func(*PortfolioManager)

// WithCorrelation replaces the flat default correlation with a caller
// supplied source, e.g. one backed by an estimated correlation matrix.
func WithCorrelation(fn CorrelationFn) Option {
	return func(m *PortfolioManager) { m.correlation = fn }
}

// NewPortfolioManager creates a risk manager at the given confidence
// level. A zero confidence falls back to DefaultConfidence.
func NewPortfolioManager(confidence float64, opts ...Option) (*PortfolioManager, error) {
	if confidence == 0 {
		confidence = DefaultConfidence
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, fmt.Errorf("risk: confidence level must be in (0, 1), got %v", confidence)
	}
	m := &PortfolioManager{
		confidence:  confidence,
		positions:   make(map[string]Position),
		limits:      make(map[string]float64),
		correlation: func(a, b string) float64 { return defaultCorrelation },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// AddPosition records or overwrites the position for a symbol.
func (m *PortfolioManager) AddPosition(symbol string, size, price, volatility float64) {
	m.positions[symbol] = Position{
		Symbol:     symbol,
		Size:       size,
		Price:      price,
		Volatility: volatility,
		Value:      math.Abs(size) * price,
	}
}

// RemovePosition drops the position for a symbol, if present.
func (m *PortfolioManager) RemovePosition(symbol string) {
	delete(m.positions, symbol)
}

// Positions returns a copy of the open-position map.
func (m *PortfolioManager) Positions() map[string]Position {
	out := make(map[string]Position, len(m.positions))
	for k, v := range m.positions {
		out[k] = v
	}
	return out
}

// SetRiskLimit sets a named limit consulted by CheckLimits and
// ValidateTrade.
func (m *PortfolioManager) SetRiskLimit(limitType string, value float64) {
	m.limits[limitType] = value
}

// ValueAtRisk computes parametric portfolio VaR over the given time
// horizon (in periods). Portfolio variance sums each position's
// individual variance plus pairwise covariance terms from the
// correlation source. An empty portfolio has zero VaR.
func (m *PortfolioManager) ValueAtRisk(timeHorizon float64) float64 {
	if len(m.positions) == 0 {
		return 0
	}

	symbols := make([]string, 0, len(m.positions))
	for s := range m.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	variance := 0.0
	for i, s1 := range symbols {
		p1 := m.positions[s1]
		variance += (p1.Value * p1.Volatility) * (p1.Value * p1.Volatility)

		for _, s2 := range symbols[i+1:] {
			p2 := m.positions[s2]
			cov := p1.Value * p1.Volatility * p2.Value * p2.Volatility * m.correlation(s1, s2)
			variance += 2 * cov
		}
	}

	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance) * normQuantile(m.confidence) * math.Sqrt(timeHorizon)
}

// CheckLimits reports, per configured limit, whether any position or
// the whole portfolio exceeds its threshold. Keys for per-position
// violations are suffixed with the symbol.
func (m *PortfolioManager) CheckLimits() map[string]bool {
	violations := make(map[string]bool)

	if maxValue, ok := m.limits[LimitMaxPositionValue]; ok {
		for symbol, pos := range m.positions {
			if pos.Value > maxValue {
				violations[LimitMaxPositionValue+"_"+symbol] = true
			}
		}
	}

	if maxVaR, ok := m.limits[LimitMaxPortfolioVaR]; ok {
		violations[LimitMaxPortfolioVaR] = m.ValueAtRisk(1) > maxVaR
	}

	return violations
}

// ValidateTrade checks a proposed trade against the configured limits
// before it is committed. It returns false with a human-readable reason
// on rejection. The manager never adjusts the size to comply.
func (m *PortfolioManager) ValidateTrade(symbol string, size, price, volatility float64) (bool, string) {
	value := math.Abs(size) * price

	if maxValue, ok := m.limits[LimitMaxPositionValue]; ok {
		existing := 0.0
		if pos, held := m.positions[symbol]; held {
			existing = pos.Value
		}
		if existing+value > maxValue {
			return false, fmt.Sprintf("position value %.2f for %s would exceed limit %.2f", existing+value, symbol, maxValue)
		}
	}

	if maxVaR, ok := m.limits[LimitMaxPortfolioVaR]; ok {
		if v := m.hypotheticalVaR(symbol, size, price, volatility); v > maxVaR {
			return false, fmt.Sprintf("portfolio VaR %.2f would exceed limit %.2f", v, maxVaR)
		}
	}

	return true, ""
}

// hypotheticalVaR computes VaR as if the proposed trade had been added
// to the current portfolio, without mutating it.
func (m *PortfolioManager) hypotheticalVaR(symbol string, size, price, volatility float64) float64 {
	prev, held := m.positions[symbol]
	m.AddPosition(symbol, size, price, volatility)
	v := m.ValueAtRisk(1)
	if held {
		m.positions[symbol] = prev
	} else {
		delete(m.positions, symbol)
	}
	return v
}

// Summary returns a snapshot of portfolio-level risk.
func (m *PortfolioManager) Summary() Summary {
	s := Summary{PositionValues: make(map[string]float64, len(m.positions))}
	for symbol, pos := range m.positions {
		s.TotalValue += pos.Value
		s.PositionValues[symbol] = pos.Value
	}
	s.PositionCount = len(m.positions)
	s.ValueAtRisk = m.ValueAtRisk(1)
	return s
}
