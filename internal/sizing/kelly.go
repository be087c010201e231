package sizing

import (
	"fmt"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

const (
	// kellyDamping applies quarter-Kelly to the raw optimal fraction.
	kellyDamping = 0.25

	// kellyRiskCap bounds the damped Kelly fraction at 2% of account.
	kellyRiskCap = 0.02
)

// KellyCriterion sizes positions from the empirical edge of a strategy:
// win rate and average win/loss magnitudes. A non-positive Kelly
// fraction or a zero average loss falls back to flat 1% sizing.
type KellyCriterion struct {
	winRate float64
	avgWin  float64
	avgLoss float64
}

// NewKellyCriterion creates a Kelly sizer from trade statistics.
func NewKellyCriterion(winRate, avgWin, avgLoss float64) (*KellyCriterion, error) {
	if winRate < 0 || winRate > 1 {
		return nil, fmt.Errorf("kelly: win rate must be in [0, 1], got %v", winRate)
	}
	if avgWin < 0 || avgLoss < 0 {
		return nil, fmt.Errorf("kelly: average win/loss must be non-negative, got %v/%v", avgWin, avgLoss)
	}
	return &KellyCriterion{winRate: winRate, avgWin: avgWin, avgLoss: avgLoss}, nil
}

func (s *KellyCriterion) Name() string { return MethodKellyCriterion }

func (s *KellyCriterion) Size(accountValue, price float64, _ []types.OHLCV) (float64, float64) {
	if price <= 0 {
		return 0, 0
	}

	if s.avgLoss > 0 {
		// f* = p - (1-p)/b with b = avgWin/avgLoss.
		b := s.avgWin / s.avgLoss
		if b > 0 {
			kelly := s.winRate - (1-s.winRate)/b
			damped := kelly * kellyDamping
			if damped > 0 {
				fraction := damped
				if fraction > kellyRiskCap {
					fraction = kellyRiskCap
				}
				riskAmount := accountValue * fraction
				return riskAmount / price, riskAmount
			}
		}
	}

	riskAmount := accountValue * DefaultFraction
	return riskAmount / price, riskAmount
}
