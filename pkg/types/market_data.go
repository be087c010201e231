package types

import "time"

// OHLCV is a single time-indexed price bar. Bars are immutable once
// ingested; the caller supplying history to the engine owns them.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// EquityPoint is one entry of an equity curve: total account value
// (cash plus holdings) at the close of a simulated bar.
type EquityPoint struct {
	Timestamp time.Time
	Value     float64
}

// TradeKind distinguishes entries from exits in the trade log.
type TradeKind string

const (
	TradeBuy  TradeKind = "BUY"
	TradeSell TradeKind = "SELL"
)

// Trade is one executed simulation trade. Size is signed: positive
// units were bought or added, negative units sold or reduced. Cost is
// the cash debited on a buy; Proceeds the cash credited on a sell, both
// inclusive of commission. PnL is realized profit, set on exits.
type Trade struct {
	Date       time.Time
	Price      float64
	Size       float64
	Kind       TradeKind
	Cost       float64
	Proceeds   float64
	Commission float64
	PnL        float64
}

// Closes extracts the closing price series from a bar history.
func Closes(bars []OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Returns computes the simple per-bar return series of a bar history.
// Bars with a zero previous close are skipped.
func Returns(bars []OHLCV) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		out = append(out, (bars[i].Close-prev)/prev)
	}
	return out
}
