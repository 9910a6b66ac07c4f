// Package ledger simulates fills and tracks cash, position and PnL for
// paper trading a single symbol.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/breakout/internal/id"
	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/strategies"
)

// ErrInvalidState protects the one-position-at-a-time invariant. Opening
// while a position is open is a programming error, never silently
// overwritten.
var ErrInvalidState = errors.New("ledger: invalid state")

// Position is the open simulated short. Quantity is negative while short,
// by convention; there is at most one open position at any time.
type Position struct {
	TradeID  string
	Symbol   string
	Quantity float64
	Entry    float64
	Stop     float64
	Target   float64
	OpenTime time.Time
}

// Trade is a completed round trip. Immutable once appended to the log.
type Trade struct {
	TradeID    string
	Symbol     string
	Quantity   float64
	Entry      float64
	Exit       float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

// Ledger applies simulated fills against incoming ticks. Exits are
// tick-driven so stops and targets can fire intrabar, without waiting for
// a candle to complete.
type Ledger struct {
	cash   float64
	pos    *Position
	closed []Trade
	last   market.Tick

	quantity float64
	slippage float64 // fraction of price, applied against the trader
	journal  journal.Journal
}

func New(startingCash, quantity, slippage float64, j journal.Journal) *Ledger {
	if j == nil {
		j = journal.Discard{}
	}
	return &Ledger{
		cash:     startingCash,
		quantity: quantity,
		slippage: slippage,
		journal:  j,
	}
}

func (l *Ledger) Cash() float64 { return l.cash }

// Position returns a copy of the open position, if any.
func (l *Ledger) Position() (Position, bool) {
	if l.pos == nil {
		return Position{}, false
	}
	return *l.pos, true
}

// Trades returns the closed-trade log, oldest first.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.closed))
	copy(out, l.closed)
	return out
}

// OpenShort opens a simulated short at the intent's entry, adjusted by
// slippage against the trader (a short sells slightly lower). No cash
// moves at open; PnL is realized only at close.
func (l *Ledger) OpenShort(intent *strategies.Intent) (Position, error) {
	if l.pos != nil {
		return Position{}, fmt.Errorf("%w: position %s already open", ErrInvalidState, l.pos.TradeID)
	}

	fill := intent.Entry * (1 - l.slippage)

	l.pos = &Position{
		TradeID:  id.New(),
		Symbol:   intent.Symbol,
		Quantity: -l.quantity,
		Entry:    fill,
		Stop:     intent.Stop,
		Target:   intent.Target,
		OpenTime: intent.Time,
	}
	return *l.pos, nil
}

// OnTick checks the open position against one raw tick. The stop is
// checked before the target: price at or above the stop closes the short
// at the stop level, otherwise price at or below the target closes it at
// the target level. Exit fills are slippage-adjusted buys. Returns the
// closed trade when an exit fired.
func (l *Ledger) OnTick(t market.Tick) (*Trade, error) {
	l.last = t

	if l.pos == nil {
		return nil, nil
	}

	switch {
	case t.Price >= l.pos.Stop:
		return l.close(l.pos.Stop, t.Time, "StopLoss")
	case t.Price <= l.pos.Target:
		return l.close(l.pos.Target, t.Time, "TakeProfit")
	}
	return nil, nil
}

// MarkToMarket returns cash plus the unrealized PnL of the open position
// valued at the latest known price.
func (l *Ledger) MarkToMarket() float64 {
	equity := l.cash
	if l.pos != nil && l.last.Price > 0 {
		equity += (l.pos.Entry - l.last.Price) * -l.pos.Quantity
	}
	return equity
}

// SnapshotEquity journals the current balance and mark-to-market equity.
// The bot calls this once per sealed candle to build the equity curve.
func (l *Ledger) SnapshotEquity(at time.Time) error {
	return l.journal.RecordEquity(journal.EquitySnapshot{
		Time:    at,
		Balance: l.cash,
		Equity:  l.MarkToMarket(),
	})
}

func (l *Ledger) close(level float64, at time.Time, reason string) (*Trade, error) {
	p := *l.pos

	exit := level * (1 + l.slippage)
	qty := -p.Quantity // magnitude of the short
	pl := (p.Entry - exit) * qty

	l.cash += pl
	l.pos = nil

	trade := Trade{
		TradeID:    p.TradeID,
		Symbol:     p.Symbol,
		Quantity:   qty,
		Entry:      p.Entry,
		Exit:       exit,
		OpenTime:   p.OpenTime,
		CloseTime:  at,
		RealizedPL: pl,
		Reason:     reason,
	}
	l.closed = append(l.closed, trade)

	if err := l.journal.RecordTrade(journal.TradeRecord{
		TradeID:    trade.TradeID,
		Symbol:     trade.Symbol,
		Side:       "SHORT",
		Quantity:   trade.Quantity,
		EntryPrice: trade.Entry,
		ExitPrice:  trade.Exit,
		OpenTime:   trade.OpenTime,
		CloseTime:  trade.CloseTime,
		RealizedPL: trade.RealizedPL,
		Reason:     trade.Reason,
	}); err != nil {
		return &trade, err
	}

	err := l.journal.RecordEquity(journal.EquitySnapshot{
		Time:    at,
		Balance: l.cash,
		Equity:  l.MarkToMarket(),
	})
	return &trade, err
}
