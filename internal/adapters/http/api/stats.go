package api

import (
	"net/http"

	"github.com/okian/pele/internal/adapters/repository"
)

// StatsProvider reports service state for GET /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler merges service state with a summary of the stored output.
type StatsHandler struct {
	provider StatsProvider
	store    repository.Store
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider, store repository.Store) *StatsHandler {
	return &StatsHandler{provider: provider, store: store}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	out := map[string]interface{}{}
	for k, v := range h.provider.GetStats() {
		out[k] = v
	}
	f := h.store.Filters(r.Context())
	out["seasons"] = len(f.Seasons)
	out["teams"] = len(f.Teams)
	writeJSON(w, http.StatusOK, out)
}
