package pele

import (
	"math"

	"github.com/okian/pele/internal/domain/model"
)

// DefaultMinutesPower is the exponent of the minutes multiplier.
const DefaultMinutesPower = 2.0

// OffensiveComponent computes OC from per-90 rates. The xG and xA terms
// reward chance quality beyond the goals and assists already counted.
func OffensiveComponent(r model.Rates, passPct, dribPct float64, w Weights) float64 {
	oc := w.Goals*r[model.NPGoals] +
		w.Penalties*r[model.PenaltyGoals] +
		w.Assists*r[model.Assists] +
		w.XGResidual*(r[model.XG]-r[model.NPGoals]) +
		w.XAResidual*(r[model.XA]-r[model.Assists]) +
		w.KeyPasses*r[model.KeyPasses] +
		w.Progression*(r[model.ProgressivePasses]+w.CarryFactor*r[model.ProgressiveCarries]) +
		w.Dribbles*r[model.SuccessfulDribbles] -
		w.Turnovers*r[model.Turnovers] +
		w.Shots*r[model.Shots] +
		w.ShotsOnTarget*r[model.ShotsOnTarget] +
		w.PassPct*(passPct/100) +
		w.FinalThird*r[model.PassesIntoFinalThird] +
		w.ProgReceives*r[model.ProgressiveReceives]
	return oc + w.Dribbles*(dribPct/100)
}

// DefensiveComponent computes DC from per-90 rates.
func DefensiveComponent(r model.Rates, w Weights) float64 {
	return w.TacklesInts*(r[model.Tackles]+r[model.Interceptions]) +
		w.Blocks*r[model.Blocks] +
		w.Aerials*r[model.AerialsWon] +
		w.TacklesDef*r[model.TacklesDefThird] +
		w.TacklesMid*r[model.TacklesMidThird] +
		w.TacklesAtt*r[model.TacklesAttThird]
}

// MinutesMultiplier damps small samples: (ln(1+m)/ln(1+avg))^power.
// It is 0 when avg is 0 and 1 when minutes equals avg.
func MinutesMultiplier(minutes, avg, power float64) float64 {
	if avg <= 0 {
		return 0
	}
	ratio := math.Log1p(minutes) / math.Log1p(avg)
	return math.Pow(ratio, power)
}
