package model

import (
	"bytes"
	"encoding/json"
	"sort"
)

// ScoredPlayer is one output row of a scoring run. It is never mutated after
// the run that produced it returns.
type ScoredPlayer struct {
	Key        GroupKey
	PlayerName string
	TeamID     string
	Matches    int
	Minutes    float64

	Rates             Rates
	PassCompletionPct float64
	DribbleSuccessPct float64

	OC      float64
	DC      float64
	MinMult float64
	PeleRaw float64
	// Pele100 is nil when the run skipped standardization.
	Pele100 *float64
}

// Field is one named output value. Value is a string, an int or a float64.
type Field struct {
	Name  string
	Value any
}

// Team returns the grouped team when team_id is part of the key, otherwise
// the first team seen for the group.
func (p *ScoredPlayer) Team() string {
	if p.Key.TeamID != "" {
		return p.Key.TeamID
	}
	return p.TeamID
}

// Columns lists the output column names in order. Season and match_id are
// always present so CSV rows line up across runs.
func Columns(standardized bool) []string {
	cols := []string{"player_id", "player_name", "season", "team_id", "match_id", "matches", "minutes"}
	for _, s := range Stats() {
		cols = append(cols, s.RateName())
	}
	cols = append(cols, "pass_completion_pct", "dribble_success_pct", "oc", "dc", "min_mult", "pele_raw")
	if standardized {
		cols = append(cols, "pele_100")
	}
	return cols
}

// Fields returns the output values in Columns order.
func (p *ScoredPlayer) Fields() []Field {
	out := []Field{
		{"player_id", p.Key.PlayerID},
		{"player_name", p.PlayerName},
		{"season", p.Key.Season},
		{"team_id", p.Team()},
		{"match_id", p.Key.MatchID},
		{"matches", p.Matches},
		{"minutes", p.Minutes},
	}
	for _, s := range Stats() {
		out = append(out, Field{s.RateName(), p.Rates[s]})
	}
	out = append(out,
		Field{"pass_completion_pct", p.PassCompletionPct},
		Field{"dribble_success_pct", p.DribbleSuccessPct},
		Field{"oc", p.OC},
		Field{"dc", p.DC},
		Field{"min_mult", p.MinMult},
		Field{"pele_raw", p.PeleRaw},
	)
	if p.Pele100 != nil {
		out = append(out, Field{"pele_100", *p.Pele100})
	}
	return out
}

// MarshalJSON writes the flat, ordered output object.
func (p ScoredPlayer) MarshalJSON() ([]byte, error) {
	return MarshalFields(p.Fields())
}

// MarshalFields encodes fields as one JSON object, keeping their order.
func MarshalFields(fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Filters holds the distinct seasons and teams of a result set.
type Filters struct {
	Seasons []string `json:"seasons"`
	Teams   []string `json:"teams"`
}

// BuildFilters collects sorted, de-duplicated seasons and teams.
func BuildFilters(players []ScoredPlayer) Filters {
	seasons := map[string]struct{}{}
	teams := map[string]struct{}{}
	for i := range players {
		if s := players[i].Key.Season; s != "" {
			seasons[s] = struct{}{}
		}
		if t := players[i].Team(); t != "" {
			teams[t] = struct{}{}
		}
	}
	return Filters{Seasons: sortedKeys(seasons), Teams: sortedKeys(teams)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
