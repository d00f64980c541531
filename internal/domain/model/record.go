package model

// Share is a percentage stat. When Counted is set, Made and Attempted hold
// the counts the percentage was derived from.
type Share struct {
	Pct       float64
	Made      float64
	Attempted float64
	Counted   bool
}

// MatchRecord is one player's statistics for one match or period.
type MatchRecord struct {
	PlayerID   string
	PlayerName string
	MatchID    string
	Season     string
	TeamID     string

	Minutes float64
	Counts  Counts

	PassCompletion Share
	// DribbleSuccess is optional; a zero Share contributes nothing.
	DribbleSuccess Share
}

// AggregatedGroup sums every record that shares one GroupKey.
type AggregatedGroup struct {
	Key GroupKey

	// Descriptive fields from the first record carrying a value.
	PlayerName string
	TeamID     string

	Matches int
	Minutes float64
	Totals  Counts

	PassCompletionPct float64
	DribbleSuccessPct float64

	// First is the input index of the group's first record.
	First int
}

// RatedGroup is an aggregated group with its per-90 rates.
type RatedGroup struct {
	AggregatedGroup
	Rates Rates
}
