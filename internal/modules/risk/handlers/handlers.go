// Package handlers provides HTTP handlers for risk validation operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sizer/internal/modules/portfolio"
	"github.com/aristath/sizer/internal/modules/risk"
	"github.com/aristath/sizer/internal/modules/sizing"
)

// SnapshotProvider resolves account state for validation.
type SnapshotProvider interface {
	Snapshot(accountID string) (*portfolio.AccountSnapshot, error)
	ConstraintsFor(accountID string) (portfolio.Constraints, error)
}

// Handler handles risk validation HTTP requests
type Handler struct {
	engine    *risk.Engine
	snapshots SnapshotProvider
	log       zerolog.Logger
}

// NewHandler creates a new risk validation handler
func NewHandler(engine *risk.Engine, snapshots SnapshotProvider, log zerolog.Logger) *Handler {
	return &Handler{
		engine:    engine,
		snapshots: snapshots,
		log:       log.With().Str("handler", "risk").Logger(),
	}
}

// HandleValidate handles POST /api/risk/validate
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req risk.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "body", "invalid JSON request body")
		return
	}
	if req.AccountID == "" {
		h.writeError(w, http.StatusBadRequest, "account_id", "must not be empty")
		return
	}

	snap, err := h.snapshots.Snapshot(req.AccountID)
	if err != nil {
		if errors.Is(err, portfolio.ErrAccountNotFound) {
			h.writeError(w, http.StatusNotFound, "account_id", "account not found")
			return
		}
		h.log.Error().Err(err).Str("account_id", req.AccountID).Msg("Failed to load account snapshot")
		h.writeError(w, http.StatusInternalServerError, "", "failed to load account state")
		return
	}

	result, err := h.engine.Validate(req, *snap)
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	// A valid position is 200, a rejected one 403 with the same shape so
	// callers always get the violations and the adjusted size.
	status := http.StatusOK
	if !result.Valid {
		status = http.StatusForbidden
	}

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"account_id": req.AccountID,
			"timestamp":  time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, status, response)
}

// HandleGetLimits handles GET /api/risk/limits/{accountID}
func (h *Handler) HandleGetLimits(w http.ResponseWriter, r *http.Request, accountID string) {
	constraints, err := h.snapshots.ConstraintsFor(accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to load constraints")
		h.writeError(w, http.StatusInternalServerError, "", "failed to load limits")
		return
	}

	response := map[string]interface{}{
		"data": constraints,
		"metadata": map[string]interface{}{
			"account_id": accountID,
			"timestamp":  time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var inputErr *sizing.InputError
	if errors.As(err, &inputErr) {
		h.writeError(w, http.StatusBadRequest, inputErr.Field, inputErr.Reason)
		return
	}

	var domainErr *sizing.DomainError
	if errors.As(err, &domainErr) {
		h.writeError(w, http.StatusUnprocessableEntity, "", domainErr.Reason)
		return
	}

	h.log.Error().Err(err).Msg("Validation failed")
	h.writeError(w, http.StatusInternalServerError, "", "validation failed")
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, field, message string) {
	body := map[string]interface{}{
		"error": message,
	}
	if field != "" {
		body["field"] = field
	}
	h.writeJSON(w, status, body)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
