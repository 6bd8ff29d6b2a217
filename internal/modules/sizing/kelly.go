package sizing

import (
	"math"

	"github.com/rs/zerolog"
)

// HighKellyThreshold is the raw kelly fraction above which the calculator
// warns about drawdown variance.
const HighKellyThreshold = 0.25

// KellyCriterionCalculator sizes a position as the kelly-optimal fraction of
// capital given a win rate and an average win/loss ratio, optionally damped by
// a confidence level (fractional kelly). A non-positive edge yields a zero
// size with a warning rather than an error.
type KellyCriterionCalculator struct {
	log zerolog.Logger
}

// NewKellyCriterionCalculator creates a kelly criterion calculator.
func NewKellyCriterionCalculator(log zerolog.Logger) *KellyCriterionCalculator {
	return &KellyCriterionCalculator{
		log: log.With().Str("calculator", "kelly").Logger(),
	}
}

// Method returns the registry tag.
func (c *KellyCriterionCalculator) Method() Method {
	return MethodKelly
}

// Info returns the static metadata for the methods listing.
func (c *KellyCriterionCalculator) Info() MethodInfo {
	return MethodInfo{
		ID:          MethodKelly,
		Name:        "Kelly Criterion",
		Description: "Size as the kelly-optimal fraction of capital from win rate and average win/loss ratio, damped by confidence level",
		RequiredFields: []string{
			"account_value", "win_rate", "avg_win_loss_ratio",
		},
		OptionalFields: []string{"confidence_level", "entry_price", "stop_loss"},
	}
}

// Calculate runs the kelly criterion math.
func (c *KellyCriterionCalculator) Calculate(req CalculationRequest) (CalculationResult, error) {
	accountValue := req.AccountValue
	winRate := *req.WinRate
	winLossRatio := *req.AvgWinLossRatio

	confidence := 1.0
	if req.ConfidenceLevel != nil {
		confidence = *req.ConfidenceLevel
	}

	// f* = W - (1-W)/R
	rawKelly := winRate - (1-winRate)/winLossRatio

	warnings := []string{}
	var kellyPct float64
	switch {
	case rawKelly <= 0:
		kellyPct = 0
		warnings = append(warnings, WarnNoEdge)
	default:
		if rawKelly > HighKellyThreshold {
			warnings = append(warnings, WarnHighKelly)
		}
		kellyPct = Clamp(rawKelly*confidence, 0, 1)
		if rawKelly*confidence > 1 {
			warnings = append(warnings, WarnKellyCapped)
		}
	}

	riskAmount := accountValue * kellyPct
	result := CalculationResult{
		Method:          MethodKelly,
		RiskAmount:      riskAmount,
		RiskPercentage:  kellyPct,
		KellyPercentage: &kellyPct,
		Warnings:        warnings,
		Details: map[string]float64{
			"raw_kelly":        rawKelly,
			"confidence_level": confidence,
		},
	}

	if req.EntryPrice != nil {
		entry := *req.EntryPrice
		size := FloorUnits(riskAmount / entry)
		result.PositionSize = &size
		result.PositionValue = float64(size) * entry

		if req.StopLoss != nil {
			result.StopLossPercentage = math.Abs(entry-*req.StopLoss) / entry
		}
	}

	c.log.Debug().
		Float64("raw_kelly", rawKelly).
		Float64("kelly_percentage", kellyPct).
		Msg("Kelly calculation complete")

	return result, nil
}
