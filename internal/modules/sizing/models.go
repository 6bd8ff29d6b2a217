// Package sizing implements the position sizing calculators and their
// dispatcher. Every calculator is a pure function of its request: no shared
// state, no I/O, warnings accumulated in order on the result.
package sizing

// Method identifies a position sizing method.
type Method string

const (
	MethodFixedRisk       Method = "fixed_risk"
	MethodKelly           Method = "kelly"
	MethodVolatilityBased Method = "volatility_based"
)

// DefaultATRMultiplier is applied when a volatility_based request omits
// atr_multiplier.
const DefaultATRMultiplier = 2.0

// Warning strings surfaced on results. These change the answer without
// aborting the calculation, so they are part of the contract and asserted in
// tests.
const (
	WarnLimitedByBalance = "position size limited by account balance"
	WarnNoEdge           = "no statistical edge detected; declining to size"
	WarnKellyCapped      = "kelly fraction capped at 100% of capital"
	WarnHighKelly        = "full kelly above 25% is historically associated with high drawdown variance"
	WarnTargetWrongSide  = "target price is on the stop side of entry"
)

// CalculationRequest carries the inputs for one sizing calculation. Optional
// fields are pointers so absence is distinguishable from zero; each calculator
// declares its required subset and the dispatcher enforces presence before
// computation.
type CalculationRequest struct {
	Method          Method   `json:"method"`
	AccountValue    float64  `json:"account_value"`
	RiskPercentage  *float64 `json:"risk_percentage,omitempty"`
	EntryPrice      *float64 `json:"entry_price,omitempty"`
	StopLoss        *float64 `json:"stop_loss,omitempty"`
	TargetPrice     *float64 `json:"target_price,omitempty"`
	WinRate         *float64 `json:"win_rate,omitempty"`
	AvgWinLossRatio *float64 `json:"avg_win_loss_ratio,omitempty"`
	ConfidenceLevel *float64 `json:"confidence_level,omitempty"`
	ATR             *float64 `json:"atr,omitempty"`
	ATRMultiplier   *float64 `json:"atr_multiplier,omitempty"`
}

// CalculationResult is the normalized output shape shared by all methods.
// PositionSize is nil only for a kelly request without entry_price, which is a
// valid partial result (percentage only), not an error.
type CalculationResult struct {
	Method             Method             `json:"method"`
	PositionSize       *int64             `json:"position_size"`
	PositionValue      float64            `json:"position_value"`
	RiskAmount         float64            `json:"risk_amount"`
	RiskPercentage     float64            `json:"risk_percentage"`
	StopLossPercentage float64            `json:"stop_loss_percentage"`
	RiskRewardRatio    *float64           `json:"risk_reward_ratio,omitempty"`
	KellyPercentage    *float64           `json:"kelly_percentage,omitempty"`
	Warnings           []string           `json:"warnings"`
	Details            map[string]float64 `json:"details"`
}

// MethodInfo is the static metadata returned by the methods listing.
type MethodInfo struct {
	ID             Method   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	RequiredFields []string `json:"required_fields"`
	OptionalFields []string `json:"optional_fields"`
}
