// Package risk validates proposed positions against account constraints.
// Validation never mutates anything: it reports violations, advisory
// warnings, and the largest compliant size.
package risk

// Check names carried on violations and used for warning thresholds.
const (
	CheckMaxPositionSize = "max_position_size"
	CheckAggregateRisk   = "aggregate_risk"
	CheckBuyingPower     = "buying_power"
)

// Advisory warnings emitted when a proposed position is close to a limit
// without breaching it.
const (
	WarnNearPositionLimit = "position is within 20% of the maximum position size limit"
	WarnNearAggregateRisk = "aggregate risk is within 20% of the account risk budget"
	WarnNearBuyingPower   = "position value is within 20% of available buying power"
)

// NearLimitThreshold is the fraction of a limit above which an advisory
// warning is emitted.
const NearLimitThreshold = 0.8

// ValidationRequest describes a proposed position. StopLoss is optional; when
// absent the position's risk contribution is estimated from the account's
// assumed stop distance.
type ValidationRequest struct {
	AccountID    string   `json:"account_id"`
	Symbol       string   `json:"symbol"`
	ProposedSize int64    `json:"proposed_size"`
	EntryPrice   float64  `json:"entry_price"`
	StopLoss     *float64 `json:"stop_loss,omitempty"`
}

// Violation is one hard limit breach. Limit and Actual are in the same unit
// so callers can render them side by side.
type Violation struct {
	Check   string  `json:"check"`
	Message string  `json:"message"`
	Limit   float64 `json:"limit"`
	Actual  float64 `json:"actual"`
}

// ValidationResult reports the outcome of validating one proposed position.
// MaxAllowedSize is the largest size passing every hard check regardless of
// what was proposed, zero when even a single unit would breach a limit;
// AdjustedSize is the proposed size capped to that bound.
type ValidationResult struct {
	Valid          bool        `json:"valid"`
	Violations     []Violation `json:"violations"`
	Warnings       []string    `json:"warnings"`
	AdjustedSize   int64       `json:"adjusted_size"`
	MaxAllowedSize int64       `json:"max_allowed_size"`
	PositionValue  float64     `json:"position_value"`
	ProposedRisk   float64     `json:"proposed_risk"`
}
