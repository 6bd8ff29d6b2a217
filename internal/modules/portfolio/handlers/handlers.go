// Package handlers provides HTTP handlers for account and position queries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sizer/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleListAccounts handles GET /api/portfolio/accounts
func (h *Handler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.Accounts()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"accounts": accounts,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetSnapshot handles GET /api/portfolio/accounts/{accountID}
func (h *Handler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request, accountID string) {
	snap, err := h.service.Snapshot(accountID)
	if err != nil {
		if errors.Is(err, portfolio.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to build snapshot")
		http.Error(w, "Failed to build snapshot", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": snap,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetPositions handles GET /api/portfolio/accounts/{accountID}/positions
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request, accountID string) {
	positions, err := h.service.Positions(accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to get positions")
		http.Error(w, "Failed to get positions", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"positions": positions,
		},
		"metadata": map[string]interface{}{
			"account_id": accountID,
			"timestamp":  time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleUpsertAccount handles PUT /api/portfolio/accounts/{accountID}
func (h *Handler) HandleUpsertAccount(w http.ResponseWriter, r *http.Request, accountID string) {
	var acc portfolio.Account
	if err := json.NewDecoder(r.Body).Decode(&acc); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	acc.ID = accountID

	if acc.AccountValue <= 0 {
		http.Error(w, "account_value must be greater than zero", http.StatusBadRequest)
		return
	}
	if acc.BuyingPower < 0 {
		http.Error(w, "buying_power must not be negative", http.StatusBadRequest)
		return
	}
	if acc.Currency == "" {
		acc.Currency = "USD"
	}

	if err := h.service.SaveAccount(acc); err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to save account")
		http.Error(w, "Failed to save account", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"account_id": accountID,
			"saved":      true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleUpsertPosition handles PUT /api/portfolio/accounts/{accountID}/positions/{symbol}
func (h *Handler) HandleUpsertPosition(w http.ResponseWriter, r *http.Request, accountID, symbol string) {
	var pos portfolio.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	pos.AccountID = accountID
	pos.Symbol = symbol

	if pos.Quantity <= 0 {
		http.Error(w, "quantity must be greater than zero", http.StatusBadRequest)
		return
	}
	if pos.CurrentPrice <= 0 {
		http.Error(w, "current_price must be greater than zero", http.StatusBadRequest)
		return
	}

	if err := h.service.SavePosition(pos); err != nil {
		if errors.Is(err, portfolio.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Str("symbol", symbol).Msg("Failed to save position")
		http.Error(w, "Failed to save position", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"account_id": accountID,
			"symbol":     symbol,
			"saved":      true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleDeletePosition handles DELETE /api/portfolio/accounts/{accountID}/positions/{symbol}
func (h *Handler) HandleDeletePosition(w http.ResponseWriter, r *http.Request, accountID, symbol string) {
	if err := h.service.ClosePosition(accountID, symbol); err != nil {
		if errors.Is(err, portfolio.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Str("symbol", symbol).Msg("Failed to delete position")
		http.Error(w, "Failed to delete position", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"account_id": accountID,
			"symbol":     symbol,
			"deleted":    true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
