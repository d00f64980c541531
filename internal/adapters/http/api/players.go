package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/pele/internal/adapters/repository"
)

// PlayersHandler serves stored output. It never recomputes scores.
type PlayersHandler struct {
	store repository.Store
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(store repository.Store) *PlayersHandler {
	return &PlayersHandler{store: store}
}

func intParam(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, name)
	}
	return n, nil
}

// HandleList handles GET /api/v1/players?season&team&q&sort&limit&offset.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeFailure(w, err)
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		writeFailure(w, err)
		return
	}
	q := r.URL.Query()
	page, err := h.store.Search(r.Context(), repository.Query{
		Season: q.Get("season"),
		Team:   q.Get("team"),
		Name:   q.Get("q"),
		SortBy: repository.SortField(q.Get("sort")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// defaultTopN is the size of /players/top without ?n.
const defaultTopN = 10

// HandleTop handles GET /api/v1/players/top?n, the n best rows across every
// key by pele_raw.
func (h *PlayersHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n")
	if err != nil {
		writeFailure(w, err)
		return
	}
	if r.URL.Query().Get("n") == "" {
		n = defaultTopN
	}
	entries, err := h.store.TopN(r.Context(), n)
	if err != nil {
		writeFailure(w, fmt.Errorf("n=%d: %w", n, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type playerResponse struct {
	PlayerID string             `json:"player_id"`
	Entries  []repository.Entry `json:"entries"`
}

// HandleGet handles GET /api/v1/players/{playerID}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "playerID")
	entries, err := h.store.ByPlayer(r.Context(), id)
	if err != nil {
		writeFailure(w, fmt.Errorf("%s: %w", id, err))
		return
	}
	writeJSON(w, http.StatusOK, playerResponse{PlayerID: id, Entries: entries})
}

// HandleCompare handles GET /api/v1/compare?player=a&player=b[&season=].
func (h *PlayersHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, v := range r.URL.Query()["player"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		writeFailure(w, fmt.Errorf("%w: at least one player is required", ErrBadRequest))
		return
	}
	entries, err := h.store.Compare(r.Context(), ids, r.URL.Query().Get("season"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	if entries == nil {
		entries = []repository.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleFilters handles GET /api/v1/filters.
func (h *PlayersHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Filters(r.Context()))
}
