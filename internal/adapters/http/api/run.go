package api

import (
	"net/http"
)

// RunHandler exposes the latest run and the effective configuration.
type RunHandler struct {
	scorer Scorer
}

// NewRunHandler creates a new run handler.
func NewRunHandler(scorer Scorer) *RunHandler {
	return &RunHandler{scorer: scorer}
}

// HandleRun handles GET /api/v1/run.
func (h *RunHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.scorer.LastRun()
	if !ok {
		writeFailure(w, ErrNoRun)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleWeights handles GET /api/v1/weights.
func (h *RunHandler) HandleWeights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scorer.Weights())
}
