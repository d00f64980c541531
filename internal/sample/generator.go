// Package sample generates deterministic synthetic match records for demos
// and tests.
package sample

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/pele/internal/domain/model"
)

// Defaults used when a Config field is left zero.
const (
	defaultPlayers = 40
	defaultMatches = 10
	benchChance    = 0.05
	subChance      = 0.25
)

// Config sizes the generated cohort.
type Config struct {
	Players int
	// Matches per season.
	Matches int
	Seasons []string
	Teams   []string
	Seed    int64
}

func (c Config) withDefaults() Config {
	if c.Players <= 0 {
		c.Players = defaultPlayers
	}
	if c.Matches <= 0 {
		c.Matches = defaultMatches
	}
	if len(c.Seasons) == 0 {
		c.Seasons = []string{"2023-2024", "2024-2025"}
	}
	if len(c.Teams) == 0 {
		c.Teams = []string{"ARS", "BAR", "BAY", "INT", "PSG"}
	}
	return c
}

// profile holds per-90 means for one kind of player.
type profile struct {
	name       string
	per90      [model.NumStats]float64
	passPct    float64
	dribblePct float64
}

var profiles = []profile{
	{
		name: "forward",
		per90: [model.NumStats]float64{
			model.NPGoals: 0.45, model.PenaltyGoals: 0.06, model.Assists: 0.15,
			model.XG: 0.42, model.XA: 0.14, model.KeyPasses: 1.2,
			model.ProgressivePasses: 1.5, model.ProgressiveCarries: 2.5, model.SuccessfulDribbles: 1.4,
			model.Turnovers: 3.0, model.Shots: 3.4, model.ShotsOnTarget: 1.4,
			model.PassesIntoFinalThird: 0.8, model.ProgressiveReceives: 8.0,
			model.Tackles: 0.6, model.Interceptions: 0.2, model.Blocks: 0.3,
			model.TacklesDefThird: 0.1, model.TacklesMidThird: 0.2, model.TacklesAttThird: 0.3,
			model.AerialsWon: 1.2,
		},
		passPct:    74,
		dribblePct: 48,
	},
	{
		name: "midfielder",
		per90: [model.NumStats]float64{
			model.NPGoals: 0.12, model.PenaltyGoals: 0.02, model.Assists: 0.18,
			model.XG: 0.11, model.XA: 0.17, model.KeyPasses: 1.8,
			model.ProgressivePasses: 6.5, model.ProgressiveCarries: 2.2, model.SuccessfulDribbles: 1.0,
			model.Turnovers: 1.8, model.Shots: 1.3, model.ShotsOnTarget: 0.4,
			model.PassesIntoFinalThird: 5.0, model.ProgressiveReceives: 4.0,
			model.Tackles: 2.0, model.Interceptions: 1.0, model.Blocks: 1.1,
			model.TacklesDefThird: 0.8, model.TacklesMidThird: 0.9, model.TacklesAttThird: 0.3,
			model.AerialsWon: 0.8,
		},
		passPct:    86,
		dribblePct: 55,
	},
	{
		name: "defender",
		per90: [model.NumStats]float64{
			model.NPGoals: 0.04, model.PenaltyGoals: 0, model.Assists: 0.05,
			model.XG: 0.05, model.XA: 0.05, model.KeyPasses: 0.4,
			model.ProgressivePasses: 4.0, model.ProgressiveCarries: 1.2, model.SuccessfulDribbles: 0.3,
			model.Turnovers: 0.8, model.Shots: 0.5, model.ShotsOnTarget: 0.15,
			model.PassesIntoFinalThird: 3.0, model.ProgressiveReceives: 0.8,
			model.Tackles: 2.4, model.Interceptions: 1.6, model.Blocks: 1.8,
			model.TacklesDefThird: 1.4, model.TacklesMidThird: 0.8, model.TacklesAttThird: 0.2,
			model.AerialsWon: 2.8,
		},
		passPct:    88,
		dribblePct: 60,
	},
}

// Generate returns Players × Matches × len(Seasons) records. Equal configs
// produce equal output.
func Generate(ctx context.Context, cfg Config) ([]model.MatchRecord, error) {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible fixtures

	type player struct {
		id      string
		name    string
		team    string
		prof    *profile
		quality float64
	}
	players := make([]player, cfg.Players)
	for i := range players {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("player id: %w", err)
		}
		players[i] = player{
			id:      id.String(),
			name:    fmt.Sprintf("Player %03d", i+1),
			team:    cfg.Teams[i%len(cfg.Teams)],
			prof:    &profiles[rng.Intn(len(profiles))],
			quality: 0.6 + 0.8*rng.Float64(),
		}
	}

	out := make([]model.MatchRecord, 0, cfg.Players*cfg.Matches*len(cfg.Seasons))
	for _, season := range cfg.Seasons {
		for m := 0; m < cfg.Matches; m++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for i := range players {
				p := &players[i]
				out = append(out, matchRecord(rng, p.prof, p.quality, model.MatchRecord{
					PlayerID:   p.id,
					PlayerName: p.name,
					MatchID:    fmt.Sprintf("%s-%s-%02d", season, p.team, m+1),
					Season:     season,
					TeamID:     p.team,
				}))
			}
		}
	}
	return out, nil
}

func matchRecord(rng *rand.Rand, p *profile, quality float64, r model.MatchRecord) model.MatchRecord {
	switch roll := rng.Float64(); {
	case roll < benchChance:
		r.Minutes = 0
	case roll < benchChance+subChance:
		r.Minutes = float64(10 + rng.Intn(50))
	default:
		r.Minutes = float64(75 + rng.Intn(16))
	}
	share := r.Minutes / 90

	for s := range r.Counts {
		mean := p.per90[s] * share * quality
		if model.Stat(s) == model.Turnovers {
			mean = p.per90[s] * share / quality
		}
		if model.Stat(s) == model.XG || model.Stat(s) == model.XA {
			r.Counts[s] = round2(mean * (0.5 + rng.Float64()))
			continue
		}
		r.Counts[s] = float64(poisson(rng, mean))
	}
	if r.Counts[model.ShotsOnTarget] > r.Counts[model.Shots] {
		r.Counts[model.Shots] = r.Counts[model.ShotsOnTarget]
	}

	att := float64(poisson(rng, 45*share))
	made := math.Round(att * clampPct(p.passPct+6*(quality-1)+rng.NormFloat64()*4) / 100)
	r.PassCompletion = model.Share{Made: made, Attempted: att, Counted: true, Pct: pct(made, att)}

	dribAtt := r.Counts[model.SuccessfulDribbles] + float64(poisson(rng, share*(100-p.dribblePct)/50))
	r.DribbleSuccess = model.Share{
		Made:      r.Counts[model.SuccessfulDribbles],
		Attempted: dribAtt,
		Counted:   true,
		Pct:       pct(r.Counts[model.SuccessfulDribbles], dribAtt),
	}
	return r
}

// poisson draws from a Poisson distribution with Knuth's method. Means here
// stay small, so the loop is short.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func pct(made, att float64) float64 {
	if att == 0 {
		return 0
	}
	return 100 * made / att
}

func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
