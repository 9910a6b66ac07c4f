// Package journal records completed trades and equity snapshots.
package journal

import "time"

// TradeRecord is one completed simulated trade. Records are append-only;
// a record is written once, when the trade closes.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Side       string // "SHORT" (the strategy is short-only)
	Quantity   float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string // "StopLoss" or "TakeProfit"
}

// EquitySnapshot is the account value at a point in time: cash balance
// plus the mark-to-market value of any open position.
type EquitySnapshot struct {
	Time    time.Time
	Balance float64
	Equity  float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard is a no-op journal for tests and quick simulations.
type Discard struct{}

func (Discard) RecordTrade(TradeRecord) error { return nil }

func (Discard) RecordEquity(EquitySnapshot) error { return nil }

func (Discard) Close() error { return nil }
