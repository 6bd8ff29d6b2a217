package sizing

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Dispatcher validates incoming requests, routes them to the registered
// calculator, and normalizes results. It is the only entry point callers
// should use for calculations.
type Dispatcher struct {
	registry *Registry
	log      zerolog.Logger
}

// NewDispatcher creates a dispatcher backed by a fully populated registry.
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: NewPopulatedRegistry(log),
		log:      log.With().Str("module", "sizing").Logger(),
	}
}

// Calculate validates the request, runs the selected calculator, and rounds
// the result. Money values round to cents, ratios to six decimal places.
func (d *Dispatcher) Calculate(req CalculationRequest) (CalculationResult, error) {
	calc, ok := d.registry.Get(req.Method)
	if !ok {
		return CalculationResult{}, NewInputError("method", fmt.Sprintf("unknown sizing method %q", req.Method))
	}

	if err := validateRequest(req); err != nil {
		return CalculationResult{}, err
	}

	result, err := calc.Calculate(req)
	if err != nil {
		return CalculationResult{}, err
	}

	normalizeResult(&result)
	return result, nil
}

// Methods returns metadata for all registered calculators in registration
// order.
func (d *Dispatcher) Methods() []MethodInfo {
	return d.registry.Methods()
}

// requiredFields maps each method to the optional request fields it requires
// beyond account_value. Field names match the JSON wire names so InputError
// points at what the caller actually sent.
var requiredFields = map[Method][]string{
	MethodFixedRisk:       {"risk_percentage", "entry_price", "stop_loss"},
	MethodKelly:           {"win_rate", "avg_win_loss_ratio"},
	MethodVolatilityBased: {"risk_percentage", "entry_price", "atr"},
}

func validateRequest(req CalculationRequest) error {
	if req.AccountValue <= 0 {
		return NewInputError("account_value", "must be greater than zero")
	}

	present := map[string]bool{
		"risk_percentage":    req.RiskPercentage != nil,
		"entry_price":        req.EntryPrice != nil,
		"stop_loss":          req.StopLoss != nil,
		"win_rate":           req.WinRate != nil,
		"avg_win_loss_ratio": req.AvgWinLossRatio != nil,
		"atr":                req.ATR != nil,
	}
	for _, field := range requiredFields[req.Method] {
		if !present[field] {
			return NewInputError(field, fmt.Sprintf("required for method %s", req.Method))
		}
	}

	return validateRanges(req)
}

// validateRanges rejects values outside each field's well-formed range.
// Presence has already been checked, so only non-nil fields are inspected.
func validateRanges(req CalculationRequest) error {
	if req.RiskPercentage != nil {
		if v := *req.RiskPercentage; v <= 0 || v > 1 {
			return NewInputError("risk_percentage", "must be in (0, 1]")
		}
	}
	if req.EntryPrice != nil && *req.EntryPrice <= 0 {
		return NewInputError("entry_price", "must be greater than zero")
	}
	if req.StopLoss != nil && *req.StopLoss <= 0 {
		return NewInputError("stop_loss", "must be greater than zero")
	}
	if req.TargetPrice != nil && *req.TargetPrice <= 0 {
		return NewInputError("target_price", "must be greater than zero")
	}
	if req.WinRate != nil {
		if v := *req.WinRate; v <= 0 || v >= 1 {
			return NewInputError("win_rate", "must be in (0, 1)")
		}
	}
	if req.AvgWinLossRatio != nil && *req.AvgWinLossRatio <= 0 {
		return NewInputError("avg_win_loss_ratio", "must be greater than zero")
	}
	if req.ConfidenceLevel != nil {
		if v := *req.ConfidenceLevel; v <= 0 || v > 1 {
			return NewInputError("confidence_level", "must be in (0, 1]")
		}
	}
	if req.ATR != nil && *req.ATR < 0 {
		return NewInputError("atr", "must not be negative")
	}
	if req.ATRMultiplier != nil && *req.ATRMultiplier <= 0 {
		return NewInputError("atr_multiplier", "must be greater than zero")
	}
	return nil
}

// normalizeResult rounds money to cents and ratios to six decimal places, and
// guarantees warnings and details are non-nil so the JSON shape is stable.
func normalizeResult(r *CalculationResult) {
	r.PositionValue = RoundTo(r.PositionValue, 2)
	r.RiskAmount = RoundTo(r.RiskAmount, 2)
	r.RiskPercentage = RoundTo(r.RiskPercentage, 6)
	r.StopLossPercentage = RoundTo(r.StopLossPercentage, 6)
	if r.RiskRewardRatio != nil {
		v := RoundTo(*r.RiskRewardRatio, 6)
		r.RiskRewardRatio = &v
	}
	if r.KellyPercentage != nil {
		v := RoundTo(*r.KellyPercentage, 6)
		r.KellyPercentage = &v
	}
	for k, v := range r.Details {
		r.Details[k] = RoundTo(v, 6)
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if r.Details == nil {
		r.Details = map[string]float64{}
	}
}
