package api

import (
	"net/http"
	"time"

	"github.com/okian/pele/internal/adapters/repository"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	store  repository.Store
	scorer Scorer
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store repository.Store, scorer Scorer) *HealthHandler {
	return &HealthHandler{store: store, scorer: scorer}
}

type healthResponse struct {
	Status    string     `json:"status"`
	Players   int        `json:"players"`
	LastRunID string     `json:"last_run_id,omitempty"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Players: h.store.Count(r.Context())}
	if run, ok := h.scorer.LastRun(); ok {
		resp.LastRunID = run.RunID
		resp.LastRunAt = &run.FinishedAt
	}
	writeJSON(w, http.StatusOK, resp)
}
