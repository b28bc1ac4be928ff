package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCSVJournal(t *testing.T) (*CSVJournal, string, string, string) {
	t.Helper()
	dir := t.TempDir()
	fills := filepath.Join(dir, "fills.csv")
	closes := filepath.Join(dir, "closes.csv")
	equity := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(fills, closes, equity)
	require.NoError(t, err)
	return j, fills, closes, equity
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalWritesRecords(t *testing.T) {
	j, fills, closes, equity := newCSVJournal(t)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordFill(FillRecord{
		OrderID: "ord-1", Symbol: "BTCUSDT", Mode: "spot", Side: "long", Kind: "limit",
		Price: 48_000, Size: 0.01, Amount: 480, Leverage: 1, Fee: 0.48, Time: now,
	}))
	require.NoError(t, j.RecordClose(CloseRecord{
		PositionID: "pos-1", Symbol: "BTCUSDT", Mode: "spot", Side: "long",
		EntryPrice: 48_000, ExitPrice: 49_000, Size: 0.01, Margin: 480,
		RealizedPnL: 9.03, EntryFee: 0.48, ExitFee: 0.49, Reason: "manual",
		OpenTime: now, CloseTime: now.Add(time.Hour),
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Time: now, Balance: 99_519.52, Equity: 100_000, MarginUsed: 480,
	}))
	require.NoError(t, j.Close())

	fillRows := readCSV(t, fills)
	require.Len(t, fillRows, 2) // header + one record
	assert.Equal(t, "order_id", fillRows[0][0])
	assert.Equal(t, "ord-1", fillRows[1][0])
	assert.Equal(t, "BTCUSDT", fillRows[1][1])

	closeRows := readCSV(t, closes)
	require.Len(t, closeRows, 2)
	assert.Equal(t, "pos-1", closeRows[1][0])
	assert.Equal(t, "manual", closeRows[1][11])

	equityRows := readCSV(t, equity)
	require.Len(t, equityRows, 2)
	assert.Equal(t, now.Format(time.RFC3339), equityRows[1][0])
}

func TestCSVJournalFlushesPerRecord(t *testing.T) {
	j, fills, _, _ := newCSVJournal(t)

	require.NoError(t, j.RecordFill(FillRecord{OrderID: "ord-1", Time: time.Now()}))

	// Readable before Close: a crash must not lose the audit trail.
	rows := readCSV(t, fills)
	assert.Len(t, rows, 2)

	require.NoError(t, j.Close())
}
