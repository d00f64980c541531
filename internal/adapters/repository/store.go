// Package repository holds the scored players of the latest run for reads.
package repository

import (
	"context"

	"github.com/okian/pele/internal/domain/model"
)

// Entry is one stored output row with its rank by pele_raw.
type Entry struct {
	Rank   int                `json:"rank"`
	Player model.ScoredPlayer `json:"player"`
}

// SortField names a sortable output column.
type SortField string

// Sortable columns. All sort descending, ties by key.
const (
	SortPele100 SortField = "pele_100"
	SortPeleRaw SortField = "pele_raw"
	SortOC      SortField = "oc"
	SortDC      SortField = "dc"
	SortMinutes SortField = "minutes"
)

// Query filters and pages stored players. Empty fields match everything.
type Query struct {
	Season string
	Team   string
	// Name matches player names and ids, case-insensitive substring.
	Name   string
	SortBy SortField
	Limit  int
	Offset int
}

// Page is one slice of a query result.
type Page struct {
	Total   int     `json:"total"`
	Offset  int     `json:"offset"`
	Limit   int     `json:"limit"`
	Entries []Entry `json:"entries"`
}

// Store provides read access to the latest scored output and replaces it
// wholesale after each run.
type Store interface {
	// Replace swaps the stored output for players.
	Replace(ctx context.Context, players []model.ScoredPlayer) error

	// TopN returns the n best entries by pele_raw.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Search filters, sorts and pages entries.
	Search(ctx context.Context, q Query) (Page, error)

	// ByPlayer returns every entry of a player, one per group.
	// Returns ErrNotFound if the player is unknown.
	ByPlayer(ctx context.Context, playerID string) ([]Entry, error)

	// Compare returns entries of several players, optionally within one season.
	Compare(ctx context.Context, playerIDs []string, season string) ([]Entry, error)

	// Filters returns the seasons and teams present.
	Filters(ctx context.Context) model.Filters

	// Count returns the number of stored entries.
	Count(ctx context.Context) int
}
