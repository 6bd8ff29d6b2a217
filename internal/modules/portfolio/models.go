// Package portfolio provides account and position state for the sizing and
// risk validation engines. All I/O lives here; the engines receive plain data.
package portfolio

import (
	"errors"
	"time"
)

// ErrAccountNotFound is returned when an account identifier cannot be resolved.
var ErrAccountNotFound = errors.New("account not found")

// Account represents one brokerage account tracked by the service.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AccountValue float64   `json:"account_value"`
	BuyingPower  float64   `json:"buying_power"`
	Currency     string    `json:"currency"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Position represents one open position in an account.
// RiskAmount is the loss at the stop for this position; when a position has no
// stop it is estimated from the assumed stop distance at write time so that
// aggregate risk is always a plain sum.
type Position struct {
	AccountID    string    `json:"account_id"`
	Symbol       string    `json:"symbol"`
	Quantity     float64   `json:"quantity"`
	AvgPrice     float64   `json:"avg_price"`
	CurrentPrice float64   `json:"current_price"`
	StopLoss     *float64  `json:"stop_loss,omitempty"`
	MarketValue  float64   `json:"market_value"`
	RiskAmount   float64   `json:"risk_amount"`
	OpenedAt     time.Time `json:"opened_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Constraints holds the portfolio-level risk limits for an account.
// Read-only to the validation engine.
type Constraints struct {
	MaxPositionPct      float64 `json:"max_position_pct" msgpack:"max_position_pct"`
	MaxAggregateRiskPct float64 `json:"max_aggregate_risk_pct" msgpack:"max_aggregate_risk_pct"`
	AssumedStopDistance float64 `json:"assumed_stop_distance" msgpack:"assumed_stop_distance"`
}

// AccountSnapshot is the point-in-time account state handed to the validation
// engine and captured periodically for exposure audit.
type AccountSnapshot struct {
	AccountID           string      `json:"account_id" msgpack:"account_id"`
	AccountValue        float64     `json:"account_value" msgpack:"account_value"`
	BuyingPower         float64     `json:"buying_power" msgpack:"buying_power"`
	AggregateRiskAmount float64     `json:"aggregate_risk_amount" msgpack:"aggregate_risk_amount"`
	OpenPositions       int         `json:"open_positions" msgpack:"open_positions"`
	Constraints         Constraints `json:"constraints" msgpack:"constraints"`
	CapturedAt          time.Time   `json:"captured_at" msgpack:"captured_at"`
}
