package strategy

import (
	"github.com/trkhoanh/quant-backtest/pkg/types"
)

// Signal is a strategy's trading decision for the current bar.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Hold:
		return "HOLD"
	default:
		return "UNKNOWN"
	}
}

// Position is the state a strategy is currently in.
type Position int

const (
	Flat Position = iota
	Long
	Short
)

func (p Position) String() string {
	switch p {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	case Flat:
		return "FLAT"
	default:
		return "UNKNOWN"
	}
}

// Strategy defines the interface for trading strategies.
//
// GenerateSignal must be a pure function of the supplied history: the
// backtest engine calls it with the bars visible so far, and the
// decision may not depend on anything beyond the last bar of the slice.
type Strategy interface {
	// Name returns the unique name of the strategy.
	Name() string

	// GenerateSignal analyzes the visible history and returns a decision
	// for the latest bar.
	GenerateSignal(bars []types.OHLCV) Signal

	// PositionSize returns the number of units to trade for a signal,
	// given the visible history and the current account value.
	PositionSize(signal Signal, bars []types.OHLCV, accountValue float64) float64

	// ApplySignal advances the position state machine after the engine
	// has executed (or confirmed) a trade at the given price.
	ApplySignal(signal Signal, price float64)

	// Position returns the current position state.
	Position() Position

	// EntryPrice returns the price at which the current position was
	// opened, or 0 while flat.
	EntryPrice() float64

	// Reset clears position state so the strategy can be reused for a
	// fresh backtest run.
	Reset()
}

// tracker carries the position state machine shared by all strategies.
// It is embedded by concrete strategy types.
type tracker struct {
	position   Position
	entryPrice float64
}

// ApplySignal implements the base transition table:
//
//	FLAT  --BUY-->  LONG
//	FLAT  --SELL--> SHORT
//	LONG  --SELL--> FLAT
//	SHORT --BUY-->  FLAT
//
// BUY while LONG and SELL while SHORT leave the state unchanged.
func (t *tracker) ApplySignal(signal Signal, price float64) {
	switch {
	case signal == Buy && t.position == Flat:
		t.position = Long
		t.entryPrice = price
	case signal == Sell && t.position == Flat:
		t.position = Short
		t.entryPrice = price
	case signal == Sell && t.position == Long:
		t.position = Flat
		t.entryPrice = 0
	case signal == Buy && t.position == Short:
		t.position = Flat
		t.entryPrice = 0
	}
}

func (t *tracker) Position() Position { return t.position }

func (t *tracker) EntryPrice() float64 { return t.entryPrice }

func (t *tracker) Reset() {
	t.position = Flat
	t.entryPrice = 0
}
