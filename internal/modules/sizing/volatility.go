package sizing

import (
	"github.com/rs/zerolog"
)

// VolatilityBasedCalculator sizes a position against a volatility-derived
// stop distance. Per-unit risk is the ATR times a multiplier, so wider-ranging
// instruments get proportionally smaller positions for the same risk budget.
type VolatilityBasedCalculator struct {
	log zerolog.Logger
}

// NewVolatilityBasedCalculator creates a volatility based calculator.
func NewVolatilityBasedCalculator(log zerolog.Logger) *VolatilityBasedCalculator {
	return &VolatilityBasedCalculator{
		log: log.With().Str("calculator", "volatility_based").Logger(),
	}
}

// Method returns the registry tag.
func (c *VolatilityBasedCalculator) Method() Method {
	return MethodVolatilityBased
}

// Info returns the static metadata for the methods listing.
func (c *VolatilityBasedCalculator) Info() MethodInfo {
	return MethodInfo{
		ID:          MethodVolatilityBased,
		Name:        "Volatility Based",
		Description: "Risk a fixed percentage of the account against an ATR-derived stop distance",
		RequiredFields: []string{
			"account_value", "risk_percentage", "entry_price", "atr",
		},
		OptionalFields: []string{"atr_multiplier"},
	}
}

// Calculate runs the volatility based sizing math.
func (c *VolatilityBasedCalculator) Calculate(req CalculationRequest) (CalculationResult, error) {
	accountValue := req.AccountValue
	riskPct := *req.RiskPercentage
	entry := *req.EntryPrice
	atr := *req.ATR

	multiplier := DefaultATRMultiplier
	if req.ATRMultiplier != nil {
		multiplier = *req.ATRMultiplier
	}

	perUnitRisk := atr * multiplier
	riskAmount := accountValue * riskPct
	rawSize, err := SafeDivide(riskAmount, perUnitRisk, "atr is zero, volatility-derived stop distance is undefined")
	if err != nil {
		return CalculationResult{}, err
	}
	size := FloorUnits(rawSize)

	warnings := []string{}
	positionValue := float64(size) * entry
	if positionValue > accountValue {
		size = FloorUnits(accountValue / entry)
		positionValue = float64(size) * entry
		warnings = append(warnings, WarnLimitedByBalance)
	}

	result := CalculationResult{
		Method:             MethodVolatilityBased,
		PositionSize:       &size,
		PositionValue:      positionValue,
		RiskAmount:         riskAmount,
		RiskPercentage:     riskPct,
		StopLossPercentage: perUnitRisk / entry,
		Warnings:           warnings,
		Details: map[string]float64{
			"atr":               atr,
			"atr_multiplier":    multiplier,
			"per_unit_risk":     perUnitRisk,
			"raw_position_size": rawSize,
		},
	}

	c.log.Debug().
		Float64("per_unit_risk", perUnitRisk).
		Int64("position_size", size).
		Msg("Volatility based calculation complete")

	return result, nil
}
