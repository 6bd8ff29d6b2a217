// Package handlers provides HTTP handlers for price history queries.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sizer/internal/modules/history"
)

// Handler handles price history HTTP requests
type Handler struct {
	historyDB *history.HistoryDB
	service   *history.Service
	log       zerolog.Logger
}

// NewHandler creates a new history handler
func NewHandler(historyDB *history.HistoryDB, service *history.Service, log zerolog.Logger) *Handler {
	return &Handler{
		historyDB: historyDB,
		service:   service,
		log:       log.With().Str("handler", "history").Logger(),
	}
}

// HandleGetPrices handles GET /api/history/{symbol}/prices
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request, symbol string) {
	limit := 252
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	prices, err := h.historyDB.GetDailyPrices(symbol, limit)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get prices")
		http.Error(w, "Failed to get prices", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"prices": prices,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleSavePrice handles POST /api/history/{symbol}/prices
func (h *Handler) HandleSavePrice(w http.ResponseWriter, r *http.Request, symbol string) {
	var bar struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume *int64  `json:"volume,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&bar); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", bar.Date)
	if err != nil {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		http.Error(w, "Prices must be greater than zero", http.StatusBadRequest)
		return
	}
	if bar.High < bar.Low {
		http.Error(w, "high must not be below low", http.StatusBadRequest)
		return
	}

	if err := h.historyDB.SaveDailyPrice(symbol, date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to save price")
		http.Error(w, "Failed to save price", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"date":   bar.Date,
			"saved":  true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetATR handles GET /api/history/{symbol}/atr
func (h *Handler) HandleGetATR(w http.ResponseWriter, r *http.Request, symbol string) {
	period := history.DefaultATRPeriod
	if v := r.URL.Query().Get("period"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid period", http.StatusBadRequest)
			return
		}
		period = parsed
	}

	atr, err := h.service.ATR(symbol, period)
	if err != nil {
		h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to compute ATR")
		http.Error(w, "Failed to compute ATR", http.StatusUnprocessableEntity)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"symbol": symbol,
			"atr":    atr,
			"period": period,
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
