package pele

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	standardCenter = 50.0
	standardScale  = 10.0

	// Spreads below this fraction of the largest magnitude are summation noise.
	relativeSpreadFloor = 1e-12
)

// Standardize maps raw scores to 50 + 10·z using the population mean and
// standard deviation of the slice. With zero spread every score is 50 and ok
// is false. The zero test is relative to the largest |raw|, so a cohort and
// any positive rescaling of it standardize alike.
func Standardize(raw []float64) (scores []float64, mean, std float64, ok bool) {
	scores = make([]float64, len(raw))
	if len(raw) == 0 {
		return scores, 0, 0, false
	}
	mean, std = stat.PopMeanStdDev(raw, nil)
	var peak float64
	for _, v := range raw {
		peak = math.Max(peak, math.Abs(v))
	}
	if math.IsNaN(std) || std <= relativeSpreadFloor*peak {
		for i := range scores {
			scores[i] = standardCenter
		}
		return scores, mean, 0, false
	}
	for i, v := range raw {
		scores[i] = standardCenter + standardScale*(v-mean)/std
	}
	return scores, mean, std, true
}
