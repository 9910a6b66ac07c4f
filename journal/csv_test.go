package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)

	return j, tradesPath, equityPath
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	j, tradesPath, equityPath := newTestCSV(t)
	assert.NoError(t, j.Close())

	wantTrades := []string{"trade_id", "symbol", "side", "quantity", "entry_price", "exit_price", "open_time", "close_time", "realized_pl", "reason"}
	assert.Equal(t, wantTrades, readRows(t, tradesPath)[0])

	wantEquity := []string{"time", "balance", "equity"}
	assert.Equal(t, wantEquity, readRows(t, equityPath)[0])
}

func TestCSVJournalHeaderWriteError(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("needs /dev/full")
	}

	// The header flush fails with ENOSPC; both files must be released.
	j, err := NewCSV("/dev/full", filepath.Join(t.TempDir(), "equity.csv"))
	assert.Error(t, err)
	assert.Nil(t, j)
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	j, tradesPath, _ := newTestCSV(t)

	open := time.Date(2025, 3, 3, 9, 35, 0, 0, time.UTC)
	closed := time.Date(2025, 3, 3, 9, 48, 12, 0, time.UTC)

	err := j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		Symbol:     "NIFTY",
		Side:       "SHORT",
		Quantity:   50,
		EntryPrice: 100,
		ExitPrice:  90,
		OpenTime:   open,
		CloseTime:  closed,
		RealizedPL: 500,
		Reason:     "TakeProfit",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readRows(t, tradesPath)
	want := []string{
		"T1",
		"NIFTY",
		"SHORT",
		"50.000000",
		"100.000000",
		"90.000000",
		open.Format(time.RFC3339),
		closed.Format(time.RFC3339),
		"500.000000",
		"TakeProfit",
	}
	assert.Equal(t, want, rows[1])
}

func TestCSVJournalRecordEquity(t *testing.T) {
	t.Parallel()

	j, _, equityPath := newTestCSV(t)

	ts := time.Date(2025, 3, 3, 9, 48, 12, 0, time.UTC)
	err := j.RecordEquity(EquitySnapshot{Time: ts, Balance: 100500, Equity: 100500})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readRows(t, equityPath)
	want := []string{ts.Format(time.RFC3339), "100500.000000", "100500.000000"}
	assert.Equal(t, want, rows[1])
}
