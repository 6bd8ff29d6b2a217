// Package handlers provides HTTP handlers for position sizing operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/sizer/internal/modules/sizing"
)

// Handler handles position sizing HTTP requests
type Handler struct {
	dispatcher *sizing.Dispatcher
	log        zerolog.Logger
}

// NewHandler creates a new sizing handler
func NewHandler(dispatcher *sizing.Dispatcher, log zerolog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		log:        log.With().Str("handler", "sizing").Logger(),
	}
}

// HandleCalculate handles POST /api/sizing/calculate
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req sizing.CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "body", "invalid JSON request body")
		return
	}

	result, err := h.dispatcher.Calculate(req)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"calculation_id": uuid.New().String(),
			"timestamp":      time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleListMethods handles GET /api/sizing/methods
func (h *Handler) HandleListMethods(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"data": map[string]interface{}{
			"methods": h.dispatcher.Methods(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// writeCalcError maps engine errors onto HTTP statuses. Input problems are
// 400 with the offending field, undefined math is 422.
func (h *Handler) writeCalcError(w http.ResponseWriter, err error) {
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

	h.log.Error().Err(err).Msg("Calculation failed")
	h.writeError(w, http.StatusInternalServerError, "", "calculation failed")
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
