package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// AccountRepository handles account database operations
type AccountRepository struct {
	db  *sql.DB // portfolio.db - accounts table
	log zerolog.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB, log zerolog.Logger) *AccountRepository {
	return &AccountRepository{
		db:  db,
		log: log.With().Str("repo", "account").Logger(),
	}
}

// Get returns the account with the given ID, or ErrAccountNotFound.
func (r *AccountRepository) Get(id string) (*Account, error) {
	query := `SELECT id, name, account_value, buying_power, currency, updated_at
		FROM accounts WHERE id = ?`

	var acc Account
	var updatedAt int64
	err := r.db.QueryRow(query, id).Scan(
		&acc.ID, &acc.Name, &acc.AccountValue, &acc.BuyingPower,
		&acc.Currency, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account %s: %w", id, err)
	}

	acc.UpdatedAt = time.Unix(updatedAt, 0)
	return &acc, nil
}

// GetAll returns all accounts
func (r *AccountRepository) GetAll() ([]Account, error) {
	rows, err := r.db.Query(`SELECT id, name, account_value, buying_power, currency, updated_at
		FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var acc Account
		var updatedAt int64
		if err := rows.Scan(&acc.ID, &acc.Name, &acc.AccountValue, &acc.BuyingPower,
			&acc.Currency, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		acc.UpdatedAt = time.Unix(updatedAt, 0)
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Upsert inserts or updates an account
func (r *AccountRepository) Upsert(acc Account) error {
	_, err := r.db.Exec(`
		INSERT INTO accounts (id, name, account_value, buying_power, currency, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			account_value = excluded.account_value,
			buying_power = excluded.buying_power,
			currency = excluded.currency,
			updated_at = excluded.updated_at
	`, acc.ID, acc.Name, acc.AccountValue, acc.BuyingPower, acc.Currency, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert account %s: %w", acc.ID, err)
	}
	return nil
}
