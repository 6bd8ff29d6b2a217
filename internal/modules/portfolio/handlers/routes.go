package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/accounts", h.HandleListAccounts)
		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				accountID := chi.URLParam(r, "accountID")
				h.HandleGetSnapshot(w, r, accountID)
			})
			r.Put("/", func(w http.ResponseWriter, r *http.Request) {
				accountID := chi.URLParam(r, "accountID")
				h.HandleUpsertAccount(w, r, accountID)
			})
			r.Get("/positions", func(w http.ResponseWriter, r *http.Request) {
				accountID := chi.URLParam(r, "accountID")
				h.HandleGetPositions(w, r, accountID)
			})
			r.Put("/positions/{symbol}", func(w http.ResponseWriter, r *http.Request) {
				accountID := chi.URLParam(r, "accountID")
				symbol := chi.URLParam(r, "symbol")
				h.HandleUpsertPosition(w, r, accountID, symbol)
			})
			r.Delete("/positions/{symbol}", func(w http.ResponseWriter, r *http.Request) {
				accountID := chi.URLParam(r, "accountID")
				symbol := chi.URLParam(r, "symbol")
				h.HandleDeletePosition(w, r, accountID, symbol)
			})
		})
	})
}
