package sizing

import (
	"fmt"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// DefaultFraction is the account fraction risked when none is configured.
const DefaultFraction = 0.01

// FixedFractional risks a fixed fraction of account equity per trade.
type FixedFractional struct {
	fraction float64
}

// NewFixedFractional creates a fixed-fractional sizer. A zero fraction
// falls back to DefaultFraction; negative or >1 fractions are rejected.
func NewFixedFractional(fraction float64) (*FixedFractional, error) {
	if fraction == 0 {
		fraction = DefaultFraction
	}
	if fraction < 0 || fraction > 1 {
		return nil, fmt.Errorf("fixed fractional: fraction must be in (0, 1], got %v", fraction)
	}
	return &FixedFractional{fraction: fraction}, nil
}

func (s *FixedFractional) Name() string { return MethodFixedFractional }

func (s *FixedFractional) Size(accountValue, price float64, _ []types.OHLCV) (float64, float64) {
	if price <= 0 {
		return 0, 0
	}
	riskAmount := accountValue * s.fraction
	return riskAmount / price, riskAmount
}
