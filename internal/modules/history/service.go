package history

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/sizer/pkg/formulas"
)

// DefaultATRPeriod is the lookback used when a caller does not specify one.
const DefaultATRPeriod = 14

// Service derives volatility figures from stored price history.
type Service struct {
	historyDB *HistoryDB
	log       zerolog.Logger
}

// NewService creates a new history service
func NewService(historyDB *HistoryDB, log zerolog.Logger) *Service {
	return &Service{
		historyDB: historyDB,
		log:       log.With().Str("module", "history").Logger(),
	}
}

// ATR computes the average true range for a symbol over the given period.
// It needs period+1 bars; fewer stored bars is an error rather than a
// silently truncated average.
func (s *Service) ATR(symbol string, period int) (float64, error) {
	if period <= 0 {
		period = DefaultATRPeriod
	}

	// Fetch extra bars so Wilder smoothing has room to settle.
	prices, err := s.historyDB.GetDailyPrices(symbol, period*3+1)
	if err != nil {
		return 0, fmt.Errorf("failed to load prices for %s: %w", symbol, err)
	}
	if len(prices) < period+1 {
		return 0, fmt.Errorf("not enough history for %s: have %d bars, need %d", symbol, len(prices), period+1)
	}

	// Stored newest first, the calculation wants chronological order.
	n := len(prices)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i, p := range prices {
		high[n-1-i] = p.High
		low[n-1-i] = p.Low
		closes[n-1-i] = p.Close
	}

	atr := formulas.ATR(high, low, closes, period)
	if atr == 0 {
		return 0, fmt.Errorf("atr for %s is zero over %d bars", symbol, period)
	}

	return atr, nil
}
