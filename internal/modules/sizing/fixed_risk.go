package sizing

import (
	"math"

	"github.com/rs/zerolog"
)

// FixedRiskCalculator sizes a position so that hitting the stop loses a fixed
// fraction of the account. Size is the dollar risk budget divided by the
// per-unit distance between entry and stop, floored to whole units.
type FixedRiskCalculator struct {
	log zerolog.Logger
}

// NewFixedRiskCalculator creates a fixed risk calculator.
func NewFixedRiskCalculator(log zerolog.Logger) *FixedRiskCalculator {
	return &FixedRiskCalculator{
		log: log.With().Str("calculator", "fixed_risk").Logger(),
	}
}

// Method returns the registry tag.
func (c *FixedRiskCalculator) Method() Method {
	return MethodFixedRisk
}

// Info returns the static metadata for the methods listing.
func (c *FixedRiskCalculator) Info() MethodInfo {
	return MethodInfo{
		ID:          MethodFixedRisk,
		Name:        "Fixed Risk",
		Description: "Risk a fixed percentage of the account per trade, sized by the distance between entry and stop loss",
		RequiredFields: []string{
			"account_value", "risk_percentage", "entry_price", "stop_loss",
		},
		OptionalFields: []string{"target_price"},
	}
}

// Calculate runs the fixed risk sizing math.
func (c *FixedRiskCalculator) Calculate(req CalculationRequest) (CalculationResult, error) {
	accountValue := req.AccountValue
	riskPct := *req.RiskPercentage
	entry := *req.EntryPrice
	stop := *req.StopLoss

	perUnitRisk := math.Abs(entry - stop)
	riskAmount := accountValue * riskPct
	rawSize, err := SafeDivide(riskAmount, perUnitRisk, "stop loss equals entry price, per-unit risk is zero")
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
		Method:             MethodFixedRisk,
		PositionSize:       &size,
		PositionValue:      positionValue,
		RiskAmount:         riskAmount,
		RiskPercentage:     riskPct,
		StopLossPercentage: perUnitRisk / entry,
		Warnings:           warnings,
		Details: map[string]float64{
			"per_unit_risk":     perUnitRisk,
			"raw_position_size": rawSize,
		},
	}

	if req.TargetPrice != nil {
		target := *req.TargetPrice
		reward := math.Abs(target - entry)
		ratio := reward / perUnitRisk
		result.RiskRewardRatio = &ratio

		long := IsLong(entry, stop)
		if (long && target <= entry) || (!long && target >= entry) {
			result.Warnings = append(result.Warnings, WarnTargetWrongSide)
		}
	}

	c.log.Debug().
		Float64("risk_amount", riskAmount).
		Int64("position_size", size).
		Msg("Fixed risk calculation complete")

	return result, nil
}
