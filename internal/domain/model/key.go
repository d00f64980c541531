package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGroupKey is returned for grouping fields the pipeline does not know.
var ErrInvalidGroupKey = errors.New("invalid group key")

// KeyField names an identity field usable for grouping.
type KeyField string

// Grouping fields.
const (
	KeyPlayer KeyField = "player_id"
	KeySeason KeyField = "season"
	KeyTeam   KeyField = "team_id"
	KeyMatch  KeyField = "match_id"
)

// KeySpec is an ordered list of grouping fields. player_id is always first.
type KeySpec []KeyField

// ParseKeySpec builds a KeySpec from field names. player_id is implied and
// duplicates are ignored; unknown names fail with ErrInvalidGroupKey.
func ParseKeySpec(fields ...string) (KeySpec, error) {
	spec := KeySpec{KeyPlayer}
	for _, f := range fields {
		kf := KeyField(strings.ToLower(strings.TrimSpace(f)))
		switch kf {
		case "":
			continue
		case KeyPlayer, KeySeason, KeyTeam, KeyMatch:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidGroupKey, f)
		}
		if !spec.Has(kf) {
			spec = append(spec, kf)
		}
	}
	return spec, nil
}

// Has reports whether f is one of the grouping fields.
func (s KeySpec) Has(f KeyField) bool {
	for _, k := range s {
		if k == f {
			return true
		}
	}
	return false
}

// Strings returns the field names.
func (s KeySpec) Strings() []string {
	out := make([]string, len(s))
	for i, k := range s {
		out[i] = string(k)
	}
	return out
}

// KeyOf extracts the group key of r under s.
func (s KeySpec) KeyOf(r *MatchRecord) GroupKey {
	k := GroupKey{PlayerID: r.PlayerID}
	for _, f := range s {
		switch f {
		case KeySeason:
			k.Season = r.Season
		case KeyTeam:
			k.TeamID = r.TeamID
		case KeyMatch:
			k.MatchID = r.MatchID
		}
	}
	return k
}

// GroupKey identifies one aggregated output row. Fields outside the KeySpec
// stay empty, so the struct is usable as a map key.
type GroupKey struct {
	PlayerID string `json:"player_id"`
	Season   string `json:"season,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
	MatchID  string `json:"match_id,omitempty"`
}

// String renders the non-empty key parts joined by "|".
func (k GroupKey) String() string {
	parts := []string{k.PlayerID}
	for _, p := range []string{k.Season, k.TeamID, k.MatchID} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "|")
}
