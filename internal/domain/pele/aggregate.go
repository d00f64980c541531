package pele

import (
	"math"
	"sort"
	"sync"

	"github.com/okian/pele/internal/domain/model"
)

// groupAcc accumulates one group. Share sums are kept separately so
// partitions can be merged before percentages are derived.
type groupAcc struct {
	model.AggregatedGroup

	nameIdx int
	teamIdx int

	passMade, passAtt        float64
	passWeighted, passWeight float64
	passAllCounted           bool
	dribMade, dribAtt        float64
	dribWeighted, dribWeight float64
	dribAllCounted           bool
}

func newAcc(key model.GroupKey, idx int) *groupAcc {
	a := &groupAcc{nameIdx: -1, teamIdx: -1, passAllCounted: true, dribAllCounted: true}
	a.Key = key
	a.First = idx
	return a
}

func (a *groupAcc) add(idx int, r *model.MatchRecord) {
	a.Matches++
	a.Minutes += r.Minutes
	a.Totals.Add(r.Counts)
	if idx < a.First {
		a.First = idx
	}
	if r.PlayerName != "" && (a.nameIdx < 0 || idx < a.nameIdx) {
		a.PlayerName, a.nameIdx = r.PlayerName, idx
	}
	if r.TeamID != "" && (a.teamIdx < 0 || idx < a.teamIdx) {
		a.TeamID, a.teamIdx = r.TeamID, idx
	}

	wt := r.Minutes
	if wt <= 0 {
		wt = 1
	}
	a.passWeighted += r.PassCompletion.Pct * wt
	a.passWeight += wt
	if r.PassCompletion.Counted {
		a.passMade += r.PassCompletion.Made
		a.passAtt += r.PassCompletion.Attempted
	} else {
		a.passAllCounted = false
	}
	a.dribWeighted += r.DribbleSuccess.Pct * wt
	a.dribWeight += wt
	if r.DribbleSuccess.Counted {
		a.dribMade += r.DribbleSuccess.Made
		a.dribAtt += r.DribbleSuccess.Attempted
	} else {
		a.dribAllCounted = false
	}
}

func (a *groupAcc) merge(b *groupAcc) {
	a.Matches += b.Matches
	a.Minutes += b.Minutes
	a.Totals.Add(b.Totals)
	if b.First < a.First {
		a.First = b.First
	}
	if b.nameIdx >= 0 && (a.nameIdx < 0 || b.nameIdx < a.nameIdx) {
		a.PlayerName, a.nameIdx = b.PlayerName, b.nameIdx
	}
	if b.teamIdx >= 0 && (a.teamIdx < 0 || b.teamIdx < a.teamIdx) {
		a.TeamID, a.teamIdx = b.TeamID, b.teamIdx
	}
	a.passMade += b.passMade
	a.passAtt += b.passAtt
	a.passWeighted += b.passWeighted
	a.passWeight += b.passWeight
	a.passAllCounted = a.passAllCounted && b.passAllCounted
	a.dribMade += b.dribMade
	a.dribAtt += b.dribAtt
	a.dribWeighted += b.dribWeighted
	a.dribWeight += b.dribWeight
	a.dribAllCounted = a.dribAllCounted && b.dribAllCounted
}

func sharePct(allCounted bool, made, att, weighted, weight float64) float64 {
	if allCounted {
		if att == 0 {
			return 0
		}
		return 100 * made / att
	}
	if weight == 0 {
		return 0
	}
	return weighted / weight
}

func (a *groupAcc) finish() model.AggregatedGroup {
	g := a.AggregatedGroup
	g.PassCompletionPct = sharePct(a.passAllCounted, a.passMade, a.passAtt, a.passWeighted, a.passWeight)
	g.DribbleSuccessPct = sharePct(a.dribAllCounted, a.dribMade, a.dribAtt, a.dribWeighted, a.dribWeight)
	return g
}

func validateRecord(idx int, r *model.MatchRecord, spec model.KeySpec) error {
	fail := func(field, reason string) error {
		return &SchemaError{Field: field, Row: idx, Key: r.PlayerID, Reason: reason}
	}
	if r.PlayerID == "" {
		return fail("player_id", "required")
	}
	if r.MatchID == "" {
		return fail("match_id", "required")
	}
	if spec.Has(model.KeySeason) && r.Season == "" {
		return fail("season", "required for grouping")
	}
	if spec.Has(model.KeyTeam) && r.TeamID == "" {
		return fail("team_id", "required for grouping")
	}
	if math.IsNaN(r.Minutes) || math.IsInf(r.Minutes, 0) {
		return fail("minutes", "not a finite number")
	}
	if r.Minutes < 0 {
		return fail("minutes", "negative")
	}
	return nil
}

type partition struct {
	order []model.GroupKey
	accs  map[model.GroupKey]*groupAcc
}

func aggregateRange(records []model.MatchRecord, spec model.KeySpec, lo, hi int) (*partition, error) {
	p := &partition{accs: make(map[model.GroupKey]*groupAcc)}
	for i := lo; i < hi; i++ {
		r := &records[i]
		if err := validateRecord(i, r, spec); err != nil {
			return nil, err
		}
		key := spec.KeyOf(r)
		acc, ok := p.accs[key]
		if !ok {
			acc = newAcc(key, i)
			p.accs[key] = acc
			p.order = append(p.order, key)
		}
		acc.add(i, r)
	}
	return p, nil
}

func (p *partition) emit() []model.AggregatedGroup {
	out := make([]model.AggregatedGroup, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, p.accs[k].finish())
	}
	return out
}

// Aggregate sums records into one group per distinct key under spec.
// Groups are returned in first-appearance order.
func Aggregate(records []model.MatchRecord, spec model.KeySpec) ([]model.AggregatedGroup, error) {
	if len(spec) == 0 {
		spec = model.KeySpec{model.KeyPlayer}
	}
	p, err := aggregateRange(records, spec, 0, len(records))
	if err != nil {
		return nil, err
	}
	return p.emit(), nil
}

// AggregateParallel splits records into workers partitions, aggregates them
// concurrently and merges the partial groups. The result matches Aggregate
// up to floating-point summation order.
func AggregateParallel(records []model.MatchRecord, spec model.KeySpec, workers int) ([]model.AggregatedGroup, error) {
	if workers <= 1 || len(records) < 2*workers {
		return Aggregate(records, spec)
	}
	if len(spec) == 0 {
		spec = model.KeySpec{model.KeyPlayer}
	}

	chunk := (len(records) + workers - 1) / workers
	parts := make([]*partition, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(records))
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			parts[w], errs[w] = aggregateRange(records, spec, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()

	// Report the earliest failing row, matching the serial path.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := &partition{accs: make(map[model.GroupKey]*groupAcc)}
	for _, p := range parts {
		if p == nil {
			continue
		}
		for _, k := range p.order {
			acc := p.accs[k]
			if have, ok := merged.accs[k]; ok {
				have.merge(acc)
				continue
			}
			merged.accs[k] = acc
			merged.order = append(merged.order, k)
		}
	}
	sort.SliceStable(merged.order, func(i, j int) bool {
		return merged.accs[merged.order[i]].First < merged.accs[merged.order[j]].First
	})
	return merged.emit(), nil
}
