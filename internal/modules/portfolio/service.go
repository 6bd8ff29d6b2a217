package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// Settings keys for portfolio-level risk limits. Each key may carry a
// per-account override stored as "<key>.<account_id>".
const (
	SettingMaxPositionPct      = "risk_max_position_pct"
	SettingMaxAggregateRiskPct = "risk_max_aggregate_risk_pct"
	SettingAssumedStopDistance = "risk_assumed_stop_distance"
)

// Default limits applied when nothing is configured.
const (
	DefaultMaxPositionPct      = 0.10
	DefaultMaxAggregateRiskPct = 0.05
	DefaultAssumedStopDistance = 0.05
)

// SettingsProvider is the slice of the settings repository the service needs.
type SettingsProvider interface {
	GetFloat(key string, defaultValue float64) (float64, error)
}

// Service assembles account snapshots for the validation engine and handlers.
type Service struct {
	accountRepo  *AccountRepository
	positionRepo PositionRepositoryInterface
	settings     SettingsProvider
	log          zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(
	accountRepo *AccountRepository,
	positionRepo PositionRepositoryInterface,
	settings SettingsProvider,
	log zerolog.Logger,
) *Service {
	return &Service{
		accountRepo:  accountRepo,
		positionRepo: positionRepo,
		settings:     settings,
		log:          log.With().Str("module", "portfolio").Logger(),
	}
}

// Snapshot resolves an account ID to its current state: account value, buying
// power, aggregate risk across open positions, and the effective constraints.
func (s *Service) Snapshot(accountID string) (*AccountSnapshot, error) {
	acc, err := s.accountRepo.Get(accountID)
	if err != nil {
		return nil, err
	}

	positions, err := s.positionRepo.GetByAccount(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions for %s: %w", accountID, err)
	}

	aggregateRisk, err := s.positionRepo.GetAggregateRisk(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute aggregate risk for %s: %w", accountID, err)
	}

	constraints, err := s.ConstraintsFor(accountID)
	if err != nil {
		return nil, err
	}

	return &AccountSnapshot{
		AccountID:           acc.ID,
		AccountValue:        acc.AccountValue,
		BuyingPower:         acc.BuyingPower,
		AggregateRiskAmount: aggregateRisk,
		OpenPositions:       len(positions),
		Constraints:         constraints,
		CapturedAt:          time.Now().UTC(),
	}, nil
}

// Positions returns the open positions for an account.
func (s *Service) Positions(accountID string) ([]Position, error) {
	if _, err := s.accountRepo.Get(accountID); err != nil {
		return nil, err
	}
	return s.positionRepo.GetByAccount(accountID)
}

// Accounts returns all tracked accounts.
func (s *Service) Accounts() ([]Account, error) {
	return s.accountRepo.GetAll()
}

// SaveAccount persists an account record.
func (s *Service) SaveAccount(acc Account) error {
	return s.accountRepo.Upsert(acc)
}

// SavePosition persists a position under an existing account. Market value
// and risk amount are derived at write time, with the assumed stop distance
// standing in when the position carries no stop, so aggregate risk stays a
// plain sum over the positions table.
func (s *Service) SavePosition(pos Position) error {
	if _, err := s.accountRepo.Get(pos.AccountID); err != nil {
		return err
	}
	constraints, err := s.ConstraintsFor(pos.AccountID)
	if err != nil {
		return err
	}

	pos.MarketValue = pos.Quantity * pos.CurrentPrice
	if pos.StopLoss != nil {
		pos.RiskAmount = pos.Quantity * math.Abs(pos.CurrentPrice-*pos.StopLoss)
	} else {
		pos.RiskAmount = pos.Quantity * pos.CurrentPrice * constraints.AssumedStopDistance
	}

	return s.positionRepo.Upsert(pos)
}

// ClosePosition removes a position from an existing account.
func (s *Service) ClosePosition(accountID, symbol string) error {
	if _, err := s.accountRepo.Get(accountID); err != nil {
		return err
	}
	return s.positionRepo.Delete(accountID, symbol)
}

// ConstraintsFor resolves the effective limits for an account: global settings
// with per-account overrides, falling back to hardcoded defaults.
func (s *Service) ConstraintsFor(accountID string) (Constraints, error) {
	maxPos, err := s.constraint(SettingMaxPositionPct, accountID, DefaultMaxPositionPct)
	if err != nil {
		return Constraints{}, err
	}
	maxAgg, err := s.constraint(SettingMaxAggregateRiskPct, accountID, DefaultMaxAggregateRiskPct)
	if err != nil {
		return Constraints{}, err
	}
	assumedStop, err := s.constraint(SettingAssumedStopDistance, accountID, DefaultAssumedStopDistance)
	if err != nil {
		return Constraints{}, err
	}

	return Constraints{
		MaxPositionPct:      maxPos,
		MaxAggregateRiskPct: maxAgg,
		AssumedStopDistance: assumedStop,
	}, nil
}

// constraint reads a limit with per-account override precedence.
func (s *Service) constraint(key, accountID string, defaultValue float64) (float64, error) {
	global, err := s.settings.GetFloat(key, defaultValue)
	if err != nil {
		return defaultValue, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return s.settings.GetFloat(key+"."+accountID, global)
}
