// Package model contains the records that flow through the scoring pipeline.
package model

// Stat identifies one countable statistic of a match record.
type Stat int

// Countable statistics. The order is the canonical column order.
const (
	NPGoals Stat = iota
	PenaltyGoals
	Assists
	XG
	XA
	KeyPasses
	ProgressivePasses
	ProgressiveCarries
	SuccessfulDribbles
	Turnovers
	Shots
	ShotsOnTarget
	PassesIntoFinalThird
	ProgressiveReceives
	Tackles
	Interceptions
	Blocks
	TacklesDefThird
	TacklesMidThird
	TacklesAttThird
	AerialsWon

	NumStats
)

var statNames = [NumStats]string{
	NPGoals:              "np_goals",
	PenaltyGoals:         "penalty_goals",
	Assists:              "assists",
	XG:                   "xg",
	XA:                   "xa",
	KeyPasses:            "key_passes",
	ProgressivePasses:    "progressive_passes",
	ProgressiveCarries:   "progressive_carries",
	SuccessfulDribbles:   "successful_dribbles",
	Turnovers:            "turnovers",
	Shots:                "shots",
	ShotsOnTarget:        "shots_on_target",
	PassesIntoFinalThird: "passes_into_final_third",
	ProgressiveReceives:  "progressive_receives",
	Tackles:              "tackles",
	Interceptions:        "interceptions",
	Blocks:               "blocks",
	TacklesDefThird:      "tackles_def_third",
	TacklesMidThird:      "tackles_mid_third",
	TacklesAttThird:      "tackles_att_third",
	AerialsWon:           "aerials_won",
}

// String returns the canonical column name of the stat.
func (s Stat) String() string {
	if s < 0 || s >= NumStats {
		return "unknown"
	}
	return statNames[s]
}

// RateName returns the output column name of the stat's per-90 rate.
func (s Stat) RateName() string { return s.String() + "_p90" }

// Stats returns every countable stat in canonical order.
func Stats() []Stat {
	out := make([]Stat, NumStats)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

// StatByName resolves a canonical column name.
func StatByName(name string) (Stat, bool) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), true
		}
	}
	return 0, false
}

// Counts holds one value per countable stat.
type Counts [NumStats]float64

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	for i := range c {
		c[i] += other[i]
	}
}

// Rates holds per-90-minute rates, one per countable stat.
type Rates [NumStats]float64
