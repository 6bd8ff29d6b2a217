package risk

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/sizer/internal/modules/portfolio"
	"github.com/aristath/sizer/internal/modules/sizing"
)

// Engine runs the hard and soft risk checks for proposed positions. It is
// stateless: all account context arrives on the snapshot, so the same request
// against the same snapshot always produces the same result.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a risk validation engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("module", "risk").Logger(),
	}
}

// Validate checks a proposed position against the account snapshot. Hard
// breaches land in Violations, near-limit conditions in Warnings, and
// MaxAllowedSize is the largest whole-unit size passing every hard check.
func (e *Engine) Validate(req ValidationRequest, snap portfolio.AccountSnapshot) (ValidationResult, error) {
	// A zero size is legitimate: a no-edge calculation produces one, and
	// feeding it back through validation must not raise.
	if req.ProposedSize < 0 {
		return ValidationResult{}, sizing.NewInputError("proposed_size", "must not be negative")
	}
	if req.EntryPrice <= 0 {
		return ValidationResult{}, sizing.NewInputError("entry_price", "must be greater than zero")
	}
	if req.StopLoss != nil && *req.StopLoss <= 0 {
		return ValidationResult{}, sizing.NewInputError("stop_loss", "must be greater than zero")
	}
	if snap.AccountValue <= 0 {
		return ValidationResult{}, sizing.NewDomainError("account value is zero, limits cannot be evaluated")
	}

	entry := req.EntryPrice
	positionValue := float64(req.ProposedSize) * entry
	perUnitRisk := e.perUnitRisk(req, snap.Constraints)
	if perUnitRisk == 0 {
		return ValidationResult{}, sizing.NewDomainError("per-unit risk is zero, aggregate risk cannot be evaluated")
	}
	proposedRisk := float64(req.ProposedSize) * perUnitRisk

	result := ValidationResult{
		Violations:    []Violation{},
		Warnings:      []string{},
		PositionValue: sizing.RoundTo(positionValue, 2),
		ProposedRisk:  sizing.RoundTo(proposedRisk, 2),
	}

	// Max position size: value as a fraction of the account.
	maxPositionValue := snap.Constraints.MaxPositionPct * snap.AccountValue
	positionCap := sizing.FloorUnits(maxPositionValue / entry)
	if positionValue > maxPositionValue {
		result.Violations = append(result.Violations, Violation{
			Check:   CheckMaxPositionSize,
			Message: "position value exceeds the maximum fraction of account value",
			Limit:   sizing.RoundTo(maxPositionValue, 2),
			Actual:  sizing.RoundTo(positionValue, 2),
		})
	} else if positionValue > NearLimitThreshold*maxPositionValue {
		result.Warnings = append(result.Warnings, WarnNearPositionLimit)
	}

	// Aggregate risk: existing open risk plus this position's contribution
	// against the account risk budget.
	riskBudget := snap.Constraints.MaxAggregateRiskPct * snap.AccountValue
	totalRisk := snap.AggregateRiskAmount + proposedRisk
	remaining := math.Max(riskBudget-snap.AggregateRiskAmount, 0)
	riskCap := sizing.FloorUnits(remaining / perUnitRisk)
	if totalRisk > riskBudget {
		result.Violations = append(result.Violations, Violation{
			Check:   CheckAggregateRisk,
			Message: "aggregate open risk would exceed the account risk budget",
			Limit:   sizing.RoundTo(riskBudget, 2),
			Actual:  sizing.RoundTo(totalRisk, 2),
		})
	} else if totalRisk > NearLimitThreshold*riskBudget {
		result.Warnings = append(result.Warnings, WarnNearAggregateRisk)
	}

	// Buying power: the position has to be purchasable.
	buyingPowerCap := sizing.FloorUnits(snap.BuyingPower / entry)
	if positionValue > snap.BuyingPower {
		result.Violations = append(result.Violations, Violation{
			Check:   CheckBuyingPower,
			Message: "position value exceeds available buying power",
			Limit:   sizing.RoundTo(snap.BuyingPower, 2),
			Actual:  sizing.RoundTo(positionValue, 2),
		})
	} else if positionValue > NearLimitThreshold*snap.BuyingPower {
		result.Warnings = append(result.Warnings, WarnNearBuyingPower)
	}

	result.MaxAllowedSize = min64(positionCap, min64(riskCap, buyingPowerCap))
	result.AdjustedSize = min64(req.ProposedSize, result.MaxAllowedSize)
	result.Valid = len(result.Violations) == 0

	e.log.Debug().
		Str("account_id", req.AccountID).
		Str("symbol", req.Symbol).
		Bool("valid", result.Valid).
		Int64("adjusted_size", result.AdjustedSize).
		Msg("Risk validation complete")

	return result, nil
}

// perUnitRisk returns the dollar risk per unit. With a stop it is the stop
// distance; without one it falls back to the account's assumed stop distance
// as a fraction of entry.
func (e *Engine) perUnitRisk(req ValidationRequest, constraints portfolio.Constraints) float64 {
	if req.StopLoss != nil {
		return math.Abs(req.EntryPrice - *req.StopLoss)
	}
	return req.EntryPrice * constraints.AssumedStopDistance
}

func min64(a, b int64) int64 {
	if b < a {
		return b
	}
	return a
}
