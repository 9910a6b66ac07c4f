package ledger

import (
	"testing"
	"time"

	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var openAt = time.Date(2025, 3, 3, 9, 35, 0, 0, time.UTC)

func shortIntent(entry, stop, target float64) *strategies.Intent {
	return &strategies.Intent{
		Symbol: "NIFTY",
		Entry:  entry,
		Stop:   stop,
		Target: target,
		Time:   openAt,
	}
}

func tickAt(price float64, offset time.Duration) market.Tick {
	return market.Tick{Symbol: "NIFTY", Price: price, Time: openAt.Add(offset)}
}

func TestLedger_OpenShort(t *testing.T) {
	l := New(100_000, 50, 0, nil)

	pos, err := l.OpenShort(shortIntent(100, 105, 90))
	require.NoError(t, err)

	assert.Equal(t, -50.0, pos.Quantity)
	assert.Equal(t, 100.0, pos.Entry)
	assert.Equal(t, 105.0, pos.Stop)
	assert.Equal(t, 90.0, pos.Target)
	assert.NotEmpty(t, pos.TradeID)
	assert.Equal(t, 100_000.0, l.Cash(), "no cash moves at open")
}

func TestLedger_DoubleOpenIsInvalidState(t *testing.T) {
	l := New(100_000, 50, 0, nil)

	first, err := l.OpenShort(shortIntent(100, 105, 90))
	require.NoError(t, err)

	_, err = l.OpenShort(shortIntent(99, 104, 89))
	assert.ErrorIs(t, err, ErrInvalidState)

	pos, open := l.Position()
	require.True(t, open)
	assert.Equal(t, first, pos, "original position untouched")
}

func TestLedger_TargetHit(t *testing.T) {
	l := New(100_000, 50, 0, nil)
	_, err := l.OpenShort(shortIntent(100, 105, 90))
	require.NoError(t, err)

	// Above the target: no exit.
	trade, err := l.OnTick(tickAt(95, time.Minute))
	require.NoError(t, err)
	assert.Nil(t, trade)

	trade, err = l.OnTick(tickAt(90, 2*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, trade)

	assert.Equal(t, "TakeProfit", trade.Reason)
	assert.Equal(t, 90.0, trade.Exit, "filled at the target level")
	assert.Equal(t, 500.0, trade.RealizedPL, "(100-90)*50")
	assert.Equal(t, 100_500.0, l.Cash())

	_, open := l.Position()
	assert.False(t, open)
	assert.Len(t, l.Trades(), 1)
}

func TestLedger_StopHit(t *testing.T) {
	l := New(100_000, 50, 0, nil)
	_, err := l.OpenShort(shortIntent(100, 105, 90))
	require.NoError(t, err)

	// Gap through the stop: still filled at the stop level.
	trade, err := l.OnTick(tickAt(108, time.Minute))
	require.NoError(t, err)
	require.NotNil(t, trade)

	assert.Equal(t, "StopLoss", trade.Reason)
	assert.Equal(t, 105.0, trade.Exit)
	assert.Equal(t, -250.0, trade.RealizedPL, "(100-105)*50")
	assert.Equal(t, 99_750.0, l.Cash())
}

func TestLedger_StopCheckedBeforeTarget(t *testing.T) {
	// A stop above entry and a target below it can never both trigger on
	// one tick, but the stop branch must win the evaluation order.
	l := New(100_000, 1, 0, nil)
	_, err := l.OpenShort(shortIntent(100, 100, 100))
	require.NoError(t, err)

	trade, err := l.OnTick(tickAt(100, time.Minute))
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, "StopLoss", trade.Reason)
}

func TestLedger_SlippageAgainstTrader(t *testing.T) {
	l := New(100_000, 50, 0.001, nil)

	pos, err := l.OpenShort(shortIntent(100, 105, 90))
	require.NoError(t, err)
	assert.InDelta(t, 99.9, pos.Entry, 1e-9, "short entry sells lower")

	trade, err := l.OnTick(tickAt(90, time.Minute))
	require.NoError(t, err)
	require.NotNil(t, trade)

	assert.InDelta(t, 90.09, trade.Exit, 1e-9, "exit buys higher")
	assert.InDelta(t, (99.9-90.09)*50, trade.RealizedPL, 1e-9)
}

func TestLedger_MarkToMarket(t *testing.T) {
	l := New(100_000, 50, 0, nil)

	assert.Equal(t, 100_000.0, l.MarkToMarket())

	_, err := l.OpenShort(shortIntent(100, 105, 90))
	require.NoError(t, err)

	_, err = l.OnTick(tickAt(96, time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 100_000.0+(100.0-96.0)*50, l.MarkToMarket())

	_, err = l.OnTick(tickAt(102, 2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 100_000.0+(100.0-102.0)*50, l.MarkToMarket())
}

func TestLedger_TickWhileFlatIsNoop(t *testing.T) {
	l := New(100_000, 50, 0, nil)

	trade, err := l.OnTick(tickAt(100, 0))
	assert.NoError(t, err)
	assert.Nil(t, trade)
	assert.Equal(t, 100_000.0, l.Cash())
}

type captureJournal struct {
	journal.Discard
	trades []journal.TradeRecord
	equity []journal.EquitySnapshot
}

func (c *captureJournal) RecordTrade(t journal.TradeRecord) error {
	c.trades = append(c.trades, t)
	return nil
}

func (c *captureJournal) RecordEquity(e journal.EquitySnapshot) error {
	c.equity = append(c.equity, e)
	return nil
}

func TestLedger_JournalsClosedTrades(t *testing.T) {
	jr := &captureJournal{}
	l := New(100_000, 50, 0, jr)

	_, err := l.OpenShort(shortIntent(100, 105, 90))
	require.NoError(t, err)
	assert.Empty(t, jr.trades, "nothing journaled at open")

	_, err = l.OnTick(tickAt(90, time.Minute))
	require.NoError(t, err)

	require.Len(t, jr.trades, 1)
	rec := jr.trades[0]
	assert.Equal(t, "NIFTY", rec.Symbol)
	assert.Equal(t, "SHORT", rec.Side)
	assert.Equal(t, 50.0, rec.Quantity)
	assert.Equal(t, 500.0, rec.RealizedPL)
	assert.Equal(t, "TakeProfit", rec.Reason)

	require.Len(t, jr.equity, 1)
	assert.Equal(t, 100_500.0, jr.equity[0].Balance)
	assert.Equal(t, 100_500.0, jr.equity[0].Equity)
}
