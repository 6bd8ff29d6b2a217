package snapshots

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/aristath/sizer/internal/modules/portfolio"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE exposure_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id  TEXT NOT NULL,
			captured_at INTEGER NOT NULL,
			payload     BLOB NOT NULL
		);
	`)
	require.NoError(t, err)

	return NewRepository(db, zerolog.Nop())
}

func testSnap(accountID string, capturedAt time.Time) portfolio.AccountSnapshot {
	return portfolio.AccountSnapshot{
		AccountID:           accountID,
		AccountValue:        100000,
		BuyingPower:         80000,
		AggregateRiskAmount: 1200,
		OpenPositions:       3,
		Constraints: portfolio.Constraints{
			MaxPositionPct:      0.10,
			MaxAggregateRiskPct: 0.05,
			AssumedStopDistance: 0.05,
		},
		CapturedAt: capturedAt,
	}
}

func TestRepository_SaveAndGetRecent(t *testing.T) {
	repo := setupTestRepo(t)

	now := time.Now().UTC().Truncate(time.Second)
	id, err := repo.Save(testSnap("acct-1", now.Add(-2*time.Hour)))
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = repo.Save(testSnap("acct-1", now))
	require.NoError(t, err)
	_, err = repo.Save(testSnap("acct-2", now))
	require.NoError(t, err)

	records, err := repo.GetRecent("acct-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first, payload round-trips intact.
	assert.Equal(t, now, records[0].CapturedAt)
	assert.Equal(t, "acct-1", records[0].Snapshot.AccountID)
	assert.Equal(t, 100000.0, records[0].Snapshot.AccountValue)
	assert.Equal(t, 1200.0, records[0].Snapshot.AggregateRiskAmount)
	assert.Equal(t, 0.10, records[0].Snapshot.Constraints.MaxPositionPct)

	records, err = repo.GetRecent("acct-1", 1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRepository_Prune(t *testing.T) {
	repo := setupTestRepo(t)

	now := time.Now().UTC()
	_, err := repo.Save(testSnap("acct-1", now.Add(-100*24*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Save(testSnap("acct-1", now))
	require.NoError(t, err)

	pruned, err := repo.Prune(now.Add(-DefaultRetention))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	records, err := repo.GetRecent("acct-1", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
