package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/worker"
)

// Refresher runs one ingestion pass on demand.
type Refresher interface {
	Refresh(ctx context.Context) (worker.State, error)
}

// Handler serves the current portfolio state.
type Handler struct {
	store          *worker.Store
	refresher      Refresher
	includeDetails bool
}

// NewHandler creates a new API handler.
func NewHandler(store *worker.Store, refresher Refresher, includeDetails bool) *Handler {
	return &Handler{store: store, refresher: refresher, includeDetails: includeDetails}
}

type holdingsResponse struct {
	State     string           `json:"state"`
	Count     int              `json:"count"`
	Totals    domain.Totals    `json:"totals"`
	Holdings  []domain.Holding `json:"holdings,omitempty"`
	CheckedAt time.Time        `json:"checkedAt"`
}

type statusResponse struct {
	State         string        `json:"state"`
	HoldingsCount int           `json:"holdingsCount"`
	Status        domain.Status `json:"status"`
}

// GetHoldings handles GET /api/v1/holdings.
func (h *Handler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store.Load()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no data loaded yet")
		return
	}

	resp := holdingsResponse{
		State:     st.Status.State(),
		Count:     len(st.Result.Holdings),
		Totals:    roundTotals(st.Result.Totals),
		CheckedAt: st.Status.CheckedAt,
	}
	if h.includeDetails {
		resp.Holdings = lo.Map(st.Result.Holdings, func(hd domain.Holding, _ int) domain.Holding {
			return roundHolding(hd)
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetHolding handles GET /api/v1/holdings/{key}.
func (h *Handler) GetHolding(w http.ResponseWriter, r *http.Request) {
	if !h.includeDetails {
		writeError(w, http.StatusNotFound, "holding details are disabled")
		return
	}
	st, ok := h.store.Load()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no data loaded yet")
		return
	}

	key := r.PathValue("key")
	holding, found := lo.Find(st.Result.Holdings, func(hd domain.Holding) bool {
		return strings.EqualFold(hd.Key(), key)
	})
	if !found {
		writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	writeJSON(w, http.StatusOK, roundHolding(holding))
}

// GetStatus handles GET /api/v1/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := h.store.Load()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no data loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		State:         st.Status.State(),
		HoldingsCount: len(st.Result.Holdings),
		Status:        st.Status,
	})
}

// Refresh handles POST /api/v1/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh not available")
		return
	}
	st, err := h.refresher.Refresh(r.Context())
	if err != nil {
		slog.Error("refresh request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{
			State:         st.Status.State(),
			HoldingsCount: len(st.Result.Holdings),
			Status:        st.Status,
		})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		State:         st.Status.State(),
		HoldingsCount: len(st.Result.Holdings),
		Status:        st.Status,
	})
}

func roundTotals(t domain.Totals) domain.Totals {
	return domain.Totals{
		Value:   domain.Round2(t.Value),
		Cost:    domain.Round2(t.Cost),
		GainAbs: domain.Round2(t.GainAbs),
		GainPct: domain.Round2(t.GainPct),
	}
}

func roundHolding(h domain.Holding) domain.Holding {
	h.Price = domain.Round2(h.Price)
	h.Value = domain.Round2(h.Value)
	h.Cost = domain.Round2(h.Cost)
	h.GainAbs = domain.Round2(h.GainAbs)
	h.GainPct = domain.Round2(h.GainPct)
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
