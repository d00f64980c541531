package pele

import (
	"fmt"
	"math"

	"github.com/okian/pele/internal/domain/model"
)

const minutesPerMatch = 90

// Normalize converts group totals to per-90 rates. Groups with zero minutes
// get zero rates and a warning. A rate that overflows, e.g. from a
// vanishingly small minutes total, fails the run with a *SchemaError.
func Normalize(groups []model.AggregatedGroup) ([]model.RatedGroup, []Warning, error) {
	out := make([]model.RatedGroup, len(groups))
	var warnings []Warning
	for i := range groups {
		g := &groups[i]
		for _, s := range model.Stats() {
			v := g.Totals[s]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, &SchemaError{Field: s.String(), Row: -1, Key: g.Key.String(), Reason: "not a finite number"}
			}
		}
		out[i].AggregatedGroup = *g
		if g.Minutes <= 0 {
			warnings = append(warnings, Warning{
				Kind:    WarnZeroMinutes,
				Key:     g.Key.String(),
				Message: fmt.Sprintf("group %s has no minutes; rates set to 0", g.Key),
			})
			continue
		}
		scale := minutesPerMatch / g.Minutes
		for _, s := range model.Stats() {
			r := g.Totals[s] * scale
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return nil, nil, &SchemaError{Field: s.String(), Row: -1, Key: g.Key.String(), Reason: "per-90 rate not finite"}
			}
			out[i].Rates[s] = r
		}
	}
	return out, warnings, nil
}
