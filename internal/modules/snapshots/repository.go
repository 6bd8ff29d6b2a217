// Package snapshots persists point-in-time account exposure records so risk
// decisions can be replayed against the state they were made under.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/sizer/internal/modules/portfolio"
)

// Record is one stored exposure snapshot.
type Record struct {
	ID         int64                     `json:"id"`
	AccountID  string                    `json:"account_id"`
	CapturedAt time.Time                 `json:"captured_at"`
	Snapshot   portfolio.AccountSnapshot `json:"snapshot"`
}

// Repository stores exposure snapshots as msgpack blobs.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Save persists one snapshot and returns its row id.
func (r *Repository) Save(snap portfolio.AccountSnapshot) (int64, error) {
	payload, err := msgpack.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	result, err := r.db.Exec(
		`INSERT INTO exposure_snapshots (account_id, captured_at, payload) VALUES (?, ?, ?)`,
		snap.AccountID, snap.CapturedAt.Unix(), payload,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot id: %w", err)
	}
	return id, nil
}

// GetRecent returns the most recent snapshots for an account, newest first.
func (r *Repository) GetRecent(accountID string, limit int) ([]Record, error) {
	rows, err := r.db.Query(
		`SELECT id, account_id, captured_at, payload
		 FROM exposure_snapshots
		 WHERE account_id = ?
		 ORDER BY captured_at DESC
		 LIMIT ?`,
		accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var capturedAt int64
		var payload []byte

		if err := rows.Scan(&rec.ID, &rec.AccountID, &capturedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := msgpack.Unmarshal(payload, &rec.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %d: %w", rec.ID, err)
		}
		rec.CapturedAt = time.Unix(capturedAt, 0).UTC()
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Prune deletes snapshots older than the retention window.
func (r *Repository) Prune(olderThan time.Time) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM exposure_snapshots WHERE captured_at < ?`,
		olderThan.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected()
}
