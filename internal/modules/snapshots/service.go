package snapshots

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sizer/internal/modules/portfolio"
)

// DefaultRetention is how long captured snapshots are kept.
const DefaultRetention = 90 * 24 * time.Hour

// Service captures exposure snapshots for every known account.
type Service struct {
	portfolio *portfolio.Service
	repo      *Repository
	log       zerolog.Logger
}

// NewService creates a new snapshot service
func NewService(portfolioSvc *portfolio.Service, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		portfolio: portfolioSvc,
		repo:      repo,
		log:       log.With().Str("module", "snapshots").Logger(),
	}
}

// CaptureAll stores one snapshot per account. A failure on one account is
// logged and does not block the others.
func (s *Service) CaptureAll() (int, error) {
	accounts, err := s.portfolio.Accounts()
	if err != nil {
		return 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	captured := 0
	for _, account := range accounts {
		snap, err := s.portfolio.Snapshot(account.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("account_id", account.ID).Msg("Failed to build snapshot")
			continue
		}
		if _, err := s.repo.Save(*snap); err != nil {
			s.log.Warn().Err(err).Str("account_id", account.ID).Msg("Failed to save snapshot")
			continue
		}
		captured++
	}

	s.log.Info().Int("captured", captured).Int("accounts", len(accounts)).Msg("Exposure snapshots captured")
	return captured, nil
}

// PruneExpired removes snapshots older than the retention window.
func (s *Service) PruneExpired() (int64, error) {
	pruned, err := s.repo.Prune(time.Now().Add(-DefaultRetention))
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		s.log.Info().Int64("pruned", pruned).Msg("Expired snapshots removed")
	}
	return pruned, nil
}
