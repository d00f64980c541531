// Package pele computes the PELE composite player score from match records.
//
// A run flows strictly forward through four stages: Aggregate groups and sums
// records, Normalize converts totals to per-90 rates, the component scorer
// derives OC, DC and the minutes multiplier, and Standardize rescales raw
// scores against the cohort. Each stage returns new values and never touches
// the output of an earlier one.
package pele

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/pele/internal/domain/model"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine) error

// WithWeights replaces the scoring coefficients.
func WithWeights(w Weights) Option {
	return func(e *Engine) error {
		e.weights = w
		return nil
	}
}

// WithWeightOverrides replaces individual coefficients by name.
func WithWeightOverrides(values map[string]float64) Option {
	return func(e *Engine) error {
		w, err := e.weights.Override(values)
		if err != nil {
			return err
		}
		e.weights = w
		return nil
	}
}

// WithGroupBy sets the grouping fields in addition to player_id.
func WithGroupBy(fields ...string) Option {
	return func(e *Engine) error {
		spec, err := model.ParseKeySpec(fields...)
		if err != nil {
			return err
		}
		e.spec = spec
		return nil
	}
}

// WithStandardize enables or disables the pele_100 stage.
func WithStandardize(on bool) Option {
	return func(e *Engine) error {
		e.standardize = on
		return nil
	}
}

// WithWorkers sets the number of aggregation partitions. Values below 2 keep
// aggregation serial.
func WithWorkers(n int) Option {
	return func(e *Engine) error {
		if n > 0 {
			e.workers = n
		}
		return nil
	}
}

// WithMinutesPower sets the exponent of the minutes multiplier.
func WithMinutesPower(p float64) Option {
	return func(e *Engine) error {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return fmt.Errorf("%w: minutes power %v", ErrInvalidOption, p)
		}
		e.minutesPower = p
		return nil
	}
}

// Engine runs the scoring pipeline. It holds configuration only, so one
// Engine may serve concurrent runs.
type Engine struct {
	weights      Weights
	spec         model.KeySpec
	standardize  bool
	workers      int
	minutesPower float64
}

// New creates an Engine with default weights, player_id grouping and
// standardization enabled.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		weights:      DefaultWeights(),
		spec:         model.KeySpec{model.KeyPlayer},
		standardize:  true,
		workers:      1,
		minutesPower: DefaultMinutesPower,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Weights returns the effective coefficients.
func (e *Engine) Weights() Weights { return e.weights }

// GroupBy returns the effective grouping fields.
func (e *Engine) GroupBy() model.KeySpec { return append(model.KeySpec(nil), e.spec...) }

// Standardized reports whether runs emit pele_100.
func (e *Engine) Standardized() bool { return e.standardize }

// Result is the output of one run.
type Result struct {
	// Players are ordered by pele_raw descending, ties by key.
	Players      []model.ScoredPlayer
	Warnings     []Warning
	AvgMinutes   float64
	Mean         float64
	StdDev       float64
	Standardized bool
}

// Run scores records. It fails only on schema violations; degenerate inputs
// produce warnings. An empty input yields an empty result.
func (e *Engine) Run(records []model.MatchRecord) (*Result, error) {
	groups, err := AggregateParallel(records, e.spec, e.workers)
	if err != nil {
		return nil, err
	}
	rated, warnings, err := Normalize(groups)
	if err != nil {
		return nil, err
	}

	res := &Result{Standardized: e.standardize, Warnings: warnings}
	if len(rated) == 0 {
		res.Players = []model.ScoredPlayer{}
		return res, nil
	}

	minutes := make([]float64, len(rated))
	for i := range rated {
		minutes[i] = rated[i].Minutes
	}
	res.AvgMinutes = stat.Mean(minutes, nil)
	if res.AvgMinutes <= 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    WarnZeroAverageMinutes,
			Message: "average minutes is 0; every minutes multiplier is 0",
		})
	}

	players := make([]model.ScoredPlayer, len(rated))
	for i := range rated {
		players[i] = e.score(&rated[i], res.AvgMinutes)
		if v := players[i].PeleRaw; math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &SchemaError{Field: "pele_raw", Row: -1, Key: players[i].Key.String(), Reason: "not a finite number"}
		}
	}
	sortPlayers(players)

	if e.standardize {
		raw := make([]float64, len(players))
		for i := range players {
			raw[i] = players[i].PeleRaw
		}
		scores, mean, std, ok := Standardize(raw)
		res.Mean, res.StdDev = mean, std
		if !ok {
			res.Warnings = append(res.Warnings, Warning{
				Kind:    WarnZeroVariance,
				Message: "pele_raw has zero variance; every pele_100 is 50",
			})
		}
		for i := range players {
			v := scores[i]
			players[i].Pele100 = &v
		}
	}
	res.Players = players
	return res, nil
}

func (e *Engine) score(g *model.RatedGroup, avg float64) model.ScoredPlayer {
	oc := OffensiveComponent(g.Rates, g.PassCompletionPct, g.DribbleSuccessPct, e.weights)
	dc := DefensiveComponent(g.Rates, e.weights)
	mult := MinutesMultiplier(g.Minutes, avg, e.minutesPower)
	return model.ScoredPlayer{
		Key:               g.Key,
		PlayerName:        g.PlayerName,
		TeamID:            g.TeamID,
		Matches:           g.Matches,
		Minutes:           g.Minutes,
		Rates:             g.Rates,
		PassCompletionPct: g.PassCompletionPct,
		DribbleSuccessPct: g.DribbleSuccessPct,
		OC:                oc,
		DC:                dc,
		MinMult:           mult,
		PeleRaw:           (oc + dc) * mult,
	}
}

func sortPlayers(players []model.ScoredPlayer) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].PeleRaw != players[j].PeleRaw {
			return players[i].PeleRaw > players[j].PeleRaw
		}
		return players[i].Key.String() < players[j].Key.String()
	})
}
