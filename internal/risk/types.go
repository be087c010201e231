package risk

// Position is one open portfolio position tracked by the manager.
// Size is signed: positive for long, negative for short. Value is the
// absolute notional at the recorded price.
type Position struct {
	Symbol     string
	Size       float64
	Price      float64
	Volatility float64
	Value      float64
}

// Named risk limits recognized by CheckLimits and ValidateTrade.
const (
	LimitMaxPositionValue = "max_position_value"
	LimitMaxPortfolioVaR  = "max_portfolio_var"
)

// Summary is a snapshot of portfolio-level risk.
type Summary struct {
	TotalValue     float64
	PositionCount  int
	ValueAtRisk    float64
	PositionValues map[string]float64
}
