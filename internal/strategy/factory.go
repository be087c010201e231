package strategy

import "fmt"

// Params carries the tunables for constructing a strategy by name.
// Zero values fall back to the strategy's defaults.
type Params struct {
	FastPeriod int
	SlowPeriod int
	Lookback   int
	Threshold  float64
}

// Strategy names accepted by New.
const (
	NameMACrossover   = "ma_crossover"
	NameMeanReversion = "mean_reversion"
)

// New constructs a strategy by name. An unknown name is a configuration
// error and is rejected with a descriptive reason.
func New(name string, params Params) (Strategy, error) {
	switch name {
	case NameMACrossover:
		fast := params.FastPeriod
		if fast == 0 {
			fast = DefaultFastPeriod
		}
		slow := params.SlowPeriod
		if slow == 0 {
			slow = DefaultSlowPeriod
		}
		return NewMACrossover(fast, slow)
	case NameMeanReversion:
		lookback := params.Lookback
		if lookback == 0 {
			lookback = DefaultLookback
		}
		threshold := params.Threshold
		if threshold == 0 {
			threshold = DefaultThreshold
		}
		return NewMeanReversion(lookback, threshold)
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: %s, %s)", name, NameMACrossover, NameMeanReversion)
	}
}
