package portfolio

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type stubSettings struct {
	values map[string]float64
}

func (s *stubSettings) GetFloat(key string, defaultValue float64) (float64, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func setupPortfolioDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE accounts (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			account_value REAL NOT NULL DEFAULT 0,
			buying_power  REAL NOT NULL DEFAULT 0,
			currency      TEXT NOT NULL DEFAULT 'EUR',
			updated_at    INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);
		CREATE TABLE positions (
			account_id    TEXT NOT NULL,
			symbol        TEXT NOT NULL,
			quantity      REAL NOT NULL,
			avg_price     REAL NOT NULL,
			current_price REAL NOT NULL DEFAULT 0,
			stop_loss     REAL,
			market_value  REAL NOT NULL DEFAULT 0,
			risk_amount   REAL NOT NULL DEFAULT 0,
			opened_at     INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			updated_at    INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
			PRIMARY KEY (account_id, symbol)
		);
	`)
	require.NoError(t, err)

	return db
}

func newTestService(t *testing.T, db *sql.DB, settings SettingsProvider) *Service {
	t.Helper()

	if settings == nil {
		settings = &stubSettings{}
	}
	return NewService(
		NewAccountRepository(db, zerolog.Nop()),
		NewPositionRepository(db, zerolog.Nop()),
		settings,
		zerolog.Nop(),
	)
}

func TestAccountRepository(t *testing.T) {
	db := setupPortfolioDB(t)
	repo := NewAccountRepository(db, zerolog.Nop())

	t.Run("missing account", func(t *testing.T) {
		_, err := repo.Get("nope")
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("upsert and get", func(t *testing.T) {
		require.NoError(t, repo.Upsert(Account{
			ID:           "acct-1",
			Name:         "Main",
			AccountValue: 100000,
			BuyingPower:  80000,
			Currency:     "USD",
		}))

		acc, err := repo.Get("acct-1")
		require.NoError(t, err)
		assert.Equal(t, "Main", acc.Name)
		assert.Equal(t, 100000.0, acc.AccountValue)

		require.NoError(t, repo.Upsert(Account{
			ID:           "acct-1",
			Name:         "Main",
			AccountValue: 110000,
			BuyingPower:  90000,
			Currency:     "USD",
		}))

		acc, err = repo.Get("acct-1")
		require.NoError(t, err)
		assert.Equal(t, 110000.0, acc.AccountValue)

		accounts, err := repo.GetAll()
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
	})
}

func TestPositionRepository(t *testing.T) {
	db := setupPortfolioDB(t)
	repo := NewPositionRepository(db, zerolog.Nop())

	stop := 48.0
	require.NoError(t, repo.Upsert(Position{
		AccountID:    "acct-1",
		Symbol:       "AAPL",
		Quantity:     100,
		AvgPrice:     50,
		CurrentPrice: 52,
		StopLoss:     &stop,
		MarketValue:  5200,
		RiskAmount:   400,
	}))
	require.NoError(t, repo.Upsert(Position{
		AccountID:    "acct-1",
		Symbol:       "MSFT",
		Quantity:     20,
		AvgPrice:     300,
		CurrentPrice: 310,
		MarketValue:  6200,
		RiskAmount:   310,
	}))

	t.Run("get by account", func(t *testing.T) {
		positions, err := repo.GetByAccount("acct-1")
		require.NoError(t, err)
		require.Len(t, positions, 2)

		assert.Equal(t, "AAPL", positions[0].Symbol)
		require.NotNil(t, positions[0].StopLoss)
		assert.Equal(t, 48.0, *positions[0].StopLoss)
		assert.Nil(t, positions[1].StopLoss)
	})

	t.Run("aggregate risk", func(t *testing.T) {
		total, err := repo.GetAggregateRisk("acct-1")
		require.NoError(t, err)
		assert.Equal(t, 710.0, total)

		total, err = repo.GetAggregateRisk("acct-empty")
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete("acct-1", "MSFT"))

		positions, err := repo.GetByAccount("acct-1")
		require.NoError(t, err)
		assert.Len(t, positions, 1)
	})
}

func TestService_Snapshot(t *testing.T) {
	db := setupPortfolioDB(t)
	svc := newTestService(t, db, nil)

	require.NoError(t, svc.accountRepo.Upsert(Account{
		ID:           "acct-1",
		Name:         "Main",
		AccountValue: 100000,
		BuyingPower:  80000,
		Currency:     "USD",
	}))
	require.NoError(t, svc.positionRepo.Upsert(Position{
		AccountID:    "acct-1",
		Symbol:       "AAPL",
		Quantity:     100,
		AvgPrice:     50,
		CurrentPrice: 52,
		MarketValue:  5200,
		RiskAmount:   400,
	}))

	snap, err := svc.Snapshot("acct-1")
	require.NoError(t, err)

	assert.Equal(t, "acct-1", snap.AccountID)
	assert.Equal(t, 100000.0, snap.AccountValue)
	assert.Equal(t, 80000.0, snap.BuyingPower)
	assert.Equal(t, 400.0, snap.AggregateRiskAmount)
	assert.Equal(t, 1, snap.OpenPositions)
	assert.Equal(t, DefaultMaxPositionPct, snap.Constraints.MaxPositionPct)
	assert.False(t, snap.CapturedAt.IsZero())

	_, err = svc.Snapshot("acct-missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestService_SavePosition(t *testing.T) {
	db := setupPortfolioDB(t)
	svc := newTestService(t, db, nil)

	require.NoError(t, svc.SaveAccount(Account{
		ID:           "acct-1",
		Name:         "Main",
		AccountValue: 100000,
		BuyingPower:  80000,
		Currency:     "USD",
	}))

	t.Run("risk derived from the stop", func(t *testing.T) {
		stop := 48.0
		require.NoError(t, svc.SavePosition(Position{
			AccountID:    "acct-1",
			Symbol:       "AAPL",
			Quantity:     100,
			AvgPrice:     50,
			CurrentPrice: 52,
			StopLoss:     &stop,
		}))

		positions, err := svc.Positions("acct-1")
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, 5200.0, positions[0].MarketValue)
		assert.Equal(t, 400.0, positions[0].RiskAmount)
	})

	t.Run("no stop falls back to the assumed distance", func(t *testing.T) {
		require.NoError(t, svc.SavePosition(Position{
			AccountID:    "acct-1",
			Symbol:       "MSFT",
			Quantity:     10,
			AvgPrice:     100,
			CurrentPrice: 100,
		}))

		risk, err := svc.positionRepo.GetAggregateRisk("acct-1")
		require.NoError(t, err)
		// 400 from AAPL plus 10 x 100 x 0.05 from the stopless MSFT line.
		assert.Equal(t, 450.0, risk)
	})

	t.Run("unknown account", func(t *testing.T) {
		err := svc.SavePosition(Position{AccountID: "acct-missing", Symbol: "AAPL", Quantity: 1, CurrentPrice: 10})
		assert.ErrorIs(t, err, ErrAccountNotFound)

		assert.ErrorIs(t, svc.ClosePosition("acct-missing", "AAPL"), ErrAccountNotFound)
	})

	t.Run("close removes the position", func(t *testing.T) {
		require.NoError(t, svc.ClosePosition("acct-1", "MSFT"))

		positions, err := svc.Positions("acct-1")
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, "AAPL", positions[0].Symbol)
	})
}

func TestService_ConstraintsFor(t *testing.T) {
	db := setupPortfolioDB(t)

	t.Run("defaults", func(t *testing.T) {
		svc := newTestService(t, db, nil)

		constraints, err := svc.ConstraintsFor("acct-1")
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxPositionPct, constraints.MaxPositionPct)
		assert.Equal(t, DefaultMaxAggregateRiskPct, constraints.MaxAggregateRiskPct)
		assert.Equal(t, DefaultAssumedStopDistance, constraints.AssumedStopDistance)
	})

	t.Run("per account override beats global", func(t *testing.T) {
		svc := newTestService(t, db, &stubSettings{values: map[string]float64{
			SettingMaxPositionPct:             0.20,
			SettingMaxPositionPct + ".acct-2": 0.02,
			SettingMaxAggregateRiskPct:        0.08,
		}})

		constraints, err := svc.ConstraintsFor("acct-1")
		require.NoError(t, err)
		assert.Equal(t, 0.20, constraints.MaxPositionPct)
		assert.Equal(t, 0.08, constraints.MaxAggregateRiskPct)

		constraints, err = svc.ConstraintsFor("acct-2")
		require.NoError(t, err)
		assert.Equal(t, 0.02, constraints.MaxPositionPct)
	})
}
