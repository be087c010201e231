// Package data loads and validates the in-memory bar histories fed to
// the backtest engine. The engine never requires a particular storage
// format, only an ordered, validated []types.OHLCV.
package data

import (
	"fmt"

	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// Provider supplies a bar history from some source.
type Provider interface {
	// Name returns the name of the data provider.
	Name() string

	// Load reads the full bar history from the given source.
	Load(source string) ([]types.OHLCV, error)
}

// ValidateBars enforces the bar invariants the engine relies on:
// non-negative prices and volume, high >= low, open and close within
// [low, high], and strictly increasing timestamps.
func ValidateBars(bars []types.OHLCV) error {
	if len(bars) == 0 {
		return fmt.Errorf("no bars provided")
	}

	for i, b := range bars {
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
			return fmt.Errorf("bar %d: prices must be non-negative", i)
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d: volume must be non-negative", i)
		}
		if b.High < b.Low {
			return fmt.Errorf("bar %d: high %.4f below low %.4f", i, b.High, b.Low)
		}
		if b.Open < b.Low || b.Open > b.High {
			return fmt.Errorf("bar %d: open %.4f outside [low, high]", i, b.Open)
		}
		if b.Close < b.Low || b.Close > b.High {
			return fmt.Errorf("bar %d: close %.4f outside [low, high]", i, b.Close)
		}
		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("bar %d: timestamp %s does not advance past %s",
				i, b.Timestamp.Format("2006-01-02 15:04:05"), bars[i-1].Timestamp.Format("2006-01-02 15:04:05"))
		}
	}

	return nil
}
