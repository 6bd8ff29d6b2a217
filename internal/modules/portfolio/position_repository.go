package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// PositionRepositoryInterface defines the contract used by the service layer
// and handlers. Kept small so tests can substitute a mock.
type PositionRepositoryInterface interface {
	GetByAccount(accountID string) ([]Position, error)
	GetAggregateRisk(accountID string) (float64, error)
	Upsert(pos Position) error
	Delete(accountID, symbol string) error
}

// PositionRepository handles position database operations
type PositionRepository struct {
	db  *sql.DB // portfolio.db - positions table
	log zerolog.Logger
}

var _ PositionRepositoryInterface = (*PositionRepository)(nil)

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// GetByAccount returns all positions for an account
func (r *PositionRepository) GetByAccount(accountID string) ([]Position, error) {
	query := `SELECT account_id, symbol, quantity, avg_price, current_price,
		stop_loss, market_value, risk_amount, opened_at, updated_at
		FROM positions WHERE account_id = ? ORDER BY symbol`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetAggregateRisk returns the sum of risk amounts across open positions.
func (r *PositionRepository) GetAggregateRisk(accountID string) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRow(
		`SELECT SUM(risk_amount) FROM positions WHERE account_id = ?`, accountID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum position risk: %w", err)
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Float64, nil
}

// Upsert inserts or updates a position
func (r *PositionRepository) Upsert(pos Position) error {
	now := time.Now().Unix()
	openedAt := pos.OpenedAt.Unix()
	if pos.OpenedAt.IsZero() {
		openedAt = now
	}

	var stopLoss interface{}
	if pos.StopLoss != nil {
		stopLoss = *pos.StopLoss
	}

	_, err := r.db.Exec(`
		INSERT INTO positions (account_id, symbol, quantity, avg_price, current_price,
			stop_loss, market_value, risk_amount, opened_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			avg_price = excluded.avg_price,
			current_price = excluded.current_price,
			stop_loss = excluded.stop_loss,
			market_value = excluded.market_value,
			risk_amount = excluded.risk_amount,
			updated_at = excluded.updated_at
	`, pos.AccountID, pos.Symbol, pos.Quantity, pos.AvgPrice, pos.CurrentPrice,
		stopLoss, pos.MarketValue, pos.RiskAmount, openedAt, now)
	if err != nil {
		return fmt.Errorf("failed to upsert position %s/%s: %w", pos.AccountID, pos.Symbol, err)
	}
	return nil
}

// Delete removes a position
func (r *PositionRepository) Delete(accountID, symbol string) error {
	_, err := r.db.Exec(`DELETE FROM positions WHERE account_id = ? AND symbol = ?`,
		accountID, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete position %s/%s: %w", accountID, symbol, err)
	}
	return nil
}

// scanPosition scans a position row
func scanPosition(rows *sql.Rows) (Position, error) {
	var pos Position
	var stopLoss sql.NullFloat64
	var openedAt, updatedAt int64

	err := rows.Scan(
		&pos.AccountID, &pos.Symbol, &pos.Quantity, &pos.AvgPrice, &pos.CurrentPrice,
		&stopLoss, &pos.MarketValue, &pos.RiskAmount, &openedAt, &updatedAt,
	)
	if err != nil {
		return pos, err
	}

	if stopLoss.Valid {
		pos.StopLoss = &stopLoss.Float64
	}
	pos.OpenedAt = time.Unix(openedAt, 0)
	pos.UpdatedAt = time.Unix(updatedAt, 0)

	return pos, nil
}
