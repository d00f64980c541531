package repository

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/pele/internal/domain/model"
	"github.com/okian/pele/pkg/metrics"
)

const (
	defaultMaxLimit     = 500
	defaultDefaultLimit = 50
)

// snapshot is an immutable view of one run's output.
type snapshot struct {
	// entries are ordered by pele_raw desc, ties by key.
	entries  []Entry
	byPlayer map[string][]int
	filters  model.Filters
}

func buildSnapshot(players []model.ScoredPlayer) *snapshot {
	entries := make([]Entry, len(players))
	for i := range players {
		entries[i] = Entry{Player: players[i]}
	}
	sortEntries(entries, SortPeleRaw)
	assignRanksWithTies(entries)

	byPlayer := make(map[string][]int)
	for i := range entries {
		id := entries[i].Player.Key.PlayerID
		byPlayer[id] = append(byPlayer[id], i)
	}
	return &snapshot{
		entries:  entries,
		byPlayer: byPlayer,
		filters:  model.BuildFilters(players),
	}
}

// SnapshotStore is an in-memory Store. Readers never block: each Replace
// publishes a new immutable snapshot.
type SnapshotStore struct {
	current      atomic.Pointer[snapshot]
	maxLimit     int
	defaultLimit int
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		maxLimit:     defaultMaxLimit,
		defaultLimit: defaultDefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	s.current.Store(buildSnapshot(nil))
	return s
}

// Replace publishes players as the current output.
func (s *SnapshotStore) Replace(ctx context.Context, players []model.ScoredPlayer) error {
	start := time.Now()
	snap := buildSnapshot(players)
	s.current.Store(snap)
	metrics.RecordStoreOperation("replace", time.Since(start).Seconds())
	metrics.UpdateStoredPlayers(len(snap.entries))
	return nil
}

// TopN returns the n best entries by pele_raw.
func (s *SnapshotStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("top", time.Since(start).Seconds()) }()

	if n < 1 || n > s.maxLimit {
		metrics.RecordError("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap := s.current.Load()
	n = min(n, len(snap.entries))
	out := make([]Entry, n)
	copy(out, snap.entries[:n])
	return out, nil
}

// Search filters, sorts and pages the stored entries.
func (s *SnapshotStore) Search(ctx context.Context, q Query) (Page, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("search", time.Since(start).Seconds()) }()

	if q.Limit < 0 || q.Offset < 0 || q.Limit > s.maxLimit {
		metrics.RecordError("repository", "invalid_limit")
		return Page{}, ErrInvalidLimit
	}
	if q.Limit == 0 {
		q.Limit = s.defaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = SortPeleRaw
	}
	if !validSort(q.SortBy) {
		metrics.RecordError("repository", "invalid_sort")
		return Page{}, ErrInvalidSort
	}

	snap := s.current.Load()
	name := strings.ToLower(strings.TrimSpace(q.Name))
	matched := make([]Entry, 0, len(snap.entries))
	for _, e := range snap.entries {
		p := &e.Player
		if q.Season != "" && p.Key.Season != q.Season {
			continue
		}
		if q.Team != "" && !strings.EqualFold(p.Team(), q.Team) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.PlayerName), name) &&
			!strings.Contains(strings.ToLower(p.Key.PlayerID), name) {
			continue
		}
		matched = append(matched, e)
	}
	if q.SortBy != SortPeleRaw {
		sortEntries(matched, q.SortBy)
	}

	page := Page{Total: len(matched), Offset: q.Offset, Limit: q.Limit, Entries: []Entry{}}
	if q.Offset < len(matched) {
		page.Entries = matched[q.Offset:min(q.Offset+q.Limit, len(matched))]
	}
	return page, nil
}

// ByPlayer returns every entry of a player in rank order.
func (s *SnapshotStore) ByPlayer(ctx context.Context, playerID string) ([]Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("player", time.Since(start).Seconds()) }()

	snap := s.current.Load()
	idx, ok := snap.byPlayer[playerID]
	if !ok {
		metrics.RecordError("repository", "not_found")
		return nil, ErrNotFound
	}
	out := make([]Entry, len(idx))
	for i, j := range idx {
		out[i] = snap.entries[j]
	}
	return out, nil
}

// Compare returns entries of the given players in request order. Within one
// player, entries stay in rank order. Unknown players fail with ErrNotFound.
func (s *SnapshotStore) Compare(ctx context.Context, playerIDs []string, season string) ([]Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation("compare", time.Since(start).Seconds()) }()

	snap := s.current.Load()
	var out []Entry
	for _, id := range playerIDs {
		idx, ok := snap.byPlayer[id]
		if !ok {
			metrics.RecordError("repository", "not_found")
			return nil, ErrNotFound
		}
		for _, j := range idx {
			if season != "" && snap.entries[j].Player.Key.Season != season {
				continue
			}
			out = append(out, snap.entries[j])
		}
	}
	return out, nil
}

// Filters returns the seasons and teams of the current output.
func (s *SnapshotStore) Filters(ctx context.Context) model.Filters {
	return s.current.Load().filters
}

// Count returns the number of stored entries.
func (s *SnapshotStore) Count(ctx context.Context) int {
	return len(s.current.Load().entries)
}

func validSort(f SortField) bool {
	switch f {
	case SortPele100, SortPeleRaw, SortOC, SortDC, SortMinutes:
		return true
	}
	return false
}

func sortValue(p *model.ScoredPlayer, f SortField) float64 {
	switch f {
	case SortPele100:
		if p.Pele100 != nil {
			return *p.Pele100
		}
		return p.PeleRaw
	case SortOC:
		return p.OC
	case SortDC:
		return p.DC
	case SortMinutes:
		return p.Minutes
	default:
		return p.PeleRaw
	}
}

// sortEntries orders entries by f descending, then key ascending.
func sortEntries(entries []Entry, f SortField) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := sortValue(&entries[i].Player, f), sortValue(&entries[j].Player, f)
		if a != b {
			return a > b
		}
		return entries[i].Player.Key.String() < entries[j].Player.Key.String()
	})
}

// assignRanksWithTies gives equal pele_raw the same rank; the next distinct
// score takes the following rank.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Player.PeleRaw != entries[i-1].Player.PeleRaw {
			rank++
		}
		entries[i].Rank = rank
	}
}
