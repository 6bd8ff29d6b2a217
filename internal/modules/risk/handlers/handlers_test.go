package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sizer/internal/modules/portfolio"
	"github.com/aristath/sizer/internal/modules/risk"
)

type stubSnapshots struct {
	snapshots map[string]*portfolio.AccountSnapshot
}

func (s *stubSnapshots) Snapshot(accountID string) (*portfolio.AccountSnapshot, error) {
	snap, ok := s.snapshots[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, portfolio.ErrAccountNotFound)
	}
	return snap, nil
}

func (s *stubSnapshots) ConstraintsFor(accountID string) (portfolio.Constraints, error) {
	if snap, ok := s.snapshots[accountID]; ok {
		return snap.Constraints, nil
	}
	return portfolio.Constraints{
		MaxPositionPct:      0.10,
		MaxAggregateRiskPct: 0.05,
		AssumedStopDistance: 0.05,
	}, nil
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	snapshots := &stubSnapshots{
		snapshots: map[string]*portfolio.AccountSnapshot{
			"acct-1": {
				AccountID:    "acct-1",
				AccountValue: 100000,
				BuyingPower:  100000,
				Constraints: portfolio.Constraints{
					MaxPositionPct:      0.10,
					MaxAggregateRiskPct: 0.05,
					AssumedStopDistance: 0.05,
				},
			},
		},
	}

	h := NewHandler(risk.NewEngine(zerolog.Nop()), snapshots, zerolog.Nop())
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r
}

func TestHandleValidate(t *testing.T) {
	router := newTestRouter(t)

	t.Run("compliant position returns 200", func(t *testing.T) {
		body := `{
			"account_id": "acct-1",
			"symbol": "AAPL",
			"proposed_size": 100,
			"entry_price": 50,
			"stop_loss": 48
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/risk/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response struct {
			Data risk.ValidationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.True(t, response.Data.Valid)
		assert.Empty(t, response.Data.Violations)
	})

	t.Run("limit breach is 403 with violations and adjusted size", func(t *testing.T) {
		body := `{
			"account_id": "acct-1",
			"symbol": "AAPL",
			"proposed_size": 300,
			"entry_price": 50,
			"stop_loss": 49
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/risk/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)

		var response struct {
			Data risk.ValidationResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.False(t, response.Data.Valid)
		require.Len(t, response.Data.Violations, 1)
		assert.Equal(t, risk.CheckMaxPositionSize, response.Data.Violations[0].Check)
		assert.Equal(t, int64(200), response.Data.AdjustedSize)
		assert.Equal(t, int64(200), response.Data.MaxAllowedSize)
	})

	t.Run("unknown account is 404", func(t *testing.T) {
		body := `{
			"account_id": "acct-missing",
			"symbol": "AAPL",
			"proposed_size": 100,
			"entry_price": 50
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/risk/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing account id is 400", func(t *testing.T) {
		body := `{"symbol": "AAPL", "proposed_size": 100, "entry_price": 50}`
		req := httptest.NewRequest(http.MethodPost, "/api/risk/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative size is 400", func(t *testing.T) {
		body := `{
			"account_id": "acct-1",
			"symbol": "AAPL",
			"proposed_size": -5,
			"entry_price": 50
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/risk/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "proposed_size", response["field"])
	})
}

func TestHandleGetLimits(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/risk/limits/acct-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data portfolio.Constraints `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 0.10, response.Data.MaxPositionPct)
	assert.Equal(t, 0.05, response.Data.MaxAggregateRiskPct)
}
