package history

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupHistoryDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE daily_prices (
			symbol TEXT NOT NULL,
			date   INTEGER NOT NULL,
			open   REAL NOT NULL,
			high   REAL NOT NULL,
			low    REAL NOT NULL,
			close  REAL NOT NULL,
			volume INTEGER,
			PRIMARY KEY (symbol, date)
		);
	`)
	require.NoError(t, err)

	return NewHistoryDB(db, zerolog.Nop())
}

// seedBars writes n daily bars ending today, each spanning exactly one point.
func seedBars(t *testing.T, h *HistoryDB, symbol string, n int) {
	t.Helper()

	day := time.Now().UTC().AddDate(0, 0, -n)
	for i := 0; i < n; i++ {
		day = day.AddDate(0, 0, 1)
		base := 100.0 + float64(i)*0.1
		require.NoError(t, h.SaveDailyPrice(symbol, day, base, base+1, base, base+0.5, nil))
	}
}

func TestHistoryDB_GetDailyPrices(t *testing.T) {
	h := setupHistoryDB(t)
	seedBars(t, h, "AAPL", 10)

	prices, err := h.GetDailyPrices("AAPL", 5)
	require.NoError(t, err)
	require.Len(t, prices, 5)

	// Newest first.
	assert.Greater(t, prices[0].Close, prices[4].Close)
	assert.NotEmpty(t, prices[0].Date)
	assert.Nil(t, prices[0].Volume)

	prices, err = h.GetDailyPrices("UNKNOWN", 5)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestHistoryDB_SaveDailyPriceUpsert(t *testing.T) {
	h := setupHistoryDB(t)

	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	vol := int64(1000)
	require.NoError(t, h.SaveDailyPrice("AAPL", day, 100, 102, 99, 101, &vol))
	require.NoError(t, h.SaveDailyPrice("AAPL", day, 100, 103, 99, 102, &vol))

	prices, err := h.GetDailyPrices("AAPL", 10)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 102.0, prices[0].Close)
	assert.Equal(t, 103.0, prices[0].High)
	require.NotNil(t, prices[0].Volume)
	assert.Equal(t, int64(1000), *prices[0].Volume)
}

func TestService_ATR(t *testing.T) {
	h := setupHistoryDB(t)
	svc := NewService(h, zerolog.Nop())

	t.Run("not enough history", func(t *testing.T) {
		seedBars(t, h, "THIN", 5)

		_, err := svc.ATR("THIN", 14)
		assert.Error(t, err)
	})

	t.Run("computes from stored bars", func(t *testing.T) {
		seedBars(t, h, "AAPL", 60)

		atr, err := svc.ATR("AAPL", 14)
		require.NoError(t, err)
		// Each bar spans one point with a small upward drift, so the ATR
		// lands close to the bar range.
		assert.InDelta(t, 1.0, atr, 0.2)
	})

	t.Run("default period", func(t *testing.T) {
		seedBars(t, h, "MSFT", 60)

		atr, err := svc.ATR("MSFT", 0)
		require.NoError(t, err)
		assert.Greater(t, atr, 0.0)
	})
}
