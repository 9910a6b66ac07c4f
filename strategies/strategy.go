// Package strategies holds candle-driven trading strategies.
package strategies

import (
	"time"

	"github.com/rustyeddy/breakout/market"
)

// State is the strategy position in its setup lifecycle.
type State int

const (
	// Idle: no active setup.
	Idle State = iota
	// Armed: a valid signal candle is held, waiting for a breakout.
	Armed
	// InTrade: a simulated position is open and managed by the ledger.
	InTrade
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Armed:
		return "ARMED"
	case InTrade:
		return "IN_TRADE"
	}
	return "UNKNOWN"
}

// Intent is a request to open a simulated short position. Entry is the
// broken level, Stop caps the loss, Target books the gain.
type Intent struct {
	Symbol string
	Entry  float64
	Stop   float64
	Target float64
	Time   time.Time
}

// CandleStrategy is consulted once per completed candle and emits at most
// one trade intent per candle.
type CandleStrategy interface {
	Name() string
	Reset()
	OnCandle(c market.Candle) *Intent
}

// TradeClosedListener is implemented by strategies that need to know when
// the ledger closes their position, so they can re-arm.
type TradeClosedListener interface {
	OnTradeClosed(tradeID string, reason string)
}
