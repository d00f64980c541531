package pele

import (
	"fmt"
	"sort"
)

// Weights holds the named scoring coefficients.
type Weights struct {
	// Offensive.
	Goals         float64 `json:"w_g" koanf:"w_g"`
	Penalties     float64 `json:"w_pk" koanf:"w_pk"`
	Assists       float64 `json:"w_a" koanf:"w_a"`
	XGResidual    float64 `json:"w_xg" koanf:"w_xg"`
	XAResidual    float64 `json:"w_xa" koanf:"w_xa"`
	KeyPasses     float64 `json:"w_kp" koanf:"w_kp"`
	Progression   float64 `json:"w_prog" koanf:"w_prog"`
	Dribbles      float64 `json:"w_drib" koanf:"w_drib"`
	Turnovers     float64 `json:"w_to" koanf:"w_to"`
	Shots         float64 `json:"w_shot" koanf:"w_shot"`
	ShotsOnTarget float64 `json:"w_sot" koanf:"w_sot"`
	PassPct       float64 `json:"w_pass_pct" koanf:"w_pass_pct"`
	FinalThird    float64 `json:"w_final_third" koanf:"w_final_third"`
	ProgReceives  float64 `json:"w_prog_rec" koanf:"w_prog_rec"`
	CarryFactor   float64 `json:"carry_factor" koanf:"carry_factor"`

	// Defensive.
	TacklesInts float64 `json:"w_ti" koanf:"w_ti"`
	Blocks      float64 `json:"w_blk" koanf:"w_blk"`
	Aerials     float64 `json:"w_air" koanf:"w_air"`
	TacklesDef  float64 `json:"w_tkl_def" koanf:"w_tkl_def"`
	TacklesMid  float64 `json:"w_tkl_mid" koanf:"w_tkl_mid"`
	TacklesAtt  float64 `json:"w_tkl_att" koanf:"w_tkl_att"`
}

// DefaultWeights returns the reference coefficients.
func DefaultWeights() Weights {
	return Weights{
		Goals:         1.20,
		Penalties:     0.30,
		Assists:       0.80,
		XGResidual:    0.50,
		XAResidual:    0.40,
		KeyPasses:     0.20,
		Progression:   0.08,
		Dribbles:      0.06,
		Turnovers:     0.10,
		Shots:         0.03,
		ShotsOnTarget: 0.05,
		PassPct:       0.02,
		FinalThird:    0.04,
		ProgReceives:  0.05,
		CarryFactor:   0.70,

		TacklesInts: 0.12,
		Blocks:      0.08,
		Aerials:     0.05,
		TacklesDef:  0.04,
		TacklesMid:  0.02,
		TacklesAtt:  0.01,
	}
}

func (w *Weights) fields() map[string]*float64 {
	return map[string]*float64{
		"w_g":           &w.Goals,
		"w_pk":          &w.Penalties,
		"w_a":           &w.Assists,
		"w_xg":          &w.XGResidual,
		"w_xa":          &w.XAResidual,
		"w_kp":          &w.KeyPasses,
		"w_prog":        &w.Progression,
		"w_drib":        &w.Dribbles,
		"w_to":          &w.Turnovers,
		"w_shot":        &w.Shots,
		"w_sot":         &w.ShotsOnTarget,
		"w_pass_pct":    &w.PassPct,
		"w_final_third": &w.FinalThird,
		"w_prog_rec":    &w.ProgReceives,
		"carry_factor":  &w.CarryFactor,
		"w_ti":          &w.TacklesInts,
		"w_blk":         &w.Blocks,
		"w_air":         &w.Aerials,
		"w_tkl_def":     &w.TacklesDef,
		"w_tkl_mid":     &w.TacklesMid,
		"w_tkl_att":     &w.TacklesAtt,
	}
}

// WeightNames returns every coefficient name, sorted.
func WeightNames() []string {
	var w Weights
	names := make([]string, 0, 21)
	for n := range w.fields() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Override returns a copy of w with the named coefficients replaced.
// Any numeric value is accepted, including zero and negatives.
func (w Weights) Override(values map[string]float64) (Weights, error) {
	out := w
	fields := out.fields()
	for name, v := range values {
		p, ok := fields[name]
		if !ok {
			return w, fmt.Errorf("%w: %q", ErrUnknownWeight, name)
		}
		*p = v
	}
	return out, nil
}

// Map returns the coefficients keyed by name.
func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, 21)
	for n, p := range w.fields() {
		out[n] = *p
	}
	return out
}
