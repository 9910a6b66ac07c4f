package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteJournalRecordTrade(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	open := time.Date(2025, 3, 3, 9, 35, 0, 0, time.UTC)
	closed := time.Date(2025, 3, 3, 9, 48, 12, 0, time.UTC)

	err := j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		Symbol:     "NIFTY",
		Side:       "SHORT",
		Quantity:   50,
		EntryPrice: 100,
		ExitPrice:  102.5,
		OpenTime:   open,
		CloseTime:  closed,
		RealizedPL: -125,
		Reason:     "StopLoss",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var (
		symbol, side, reason string
		qty, entry, exit, pl float64
	)
	row := db.QueryRow(`SELECT symbol, side, quantity, entry_price, exit_price, realized_pl, reason FROM trades WHERE trade_id = ?`, "T1")
	require.NoError(t, row.Scan(&symbol, &side, &qty, &entry, &exit, &pl, &reason))

	assert.Equal(t, "NIFTY", symbol)
	assert.Equal(t, "SHORT", side)
	assert.Equal(t, 50.0, qty)
	assert.Equal(t, 100.0, entry)
	assert.Equal(t, 102.5, exit)
	assert.Equal(t, -125.0, pl)
	assert.Equal(t, "StopLoss", reason)
}

func TestSQLiteJournalRecordEquity(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	err := j.RecordEquity(EquitySnapshot{
		Time:    time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		Balance: 99875,
		Equity:  99875,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM equity`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLiteJournalDuplicateTradeID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	rec := TradeRecord{TradeID: "DUP", Symbol: "NIFTY", Side: "SHORT"}
	assert.NoError(t, j.RecordTrade(rec))
	assert.Error(t, j.RecordTrade(rec), "trade_id is the primary key")
}
