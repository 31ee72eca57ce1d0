// Package stats implements the online batch summary statistics folded over
// each batch's rewards.
package stats

import "github.com/arrowbench/banditbench/types"

// SummaryStats is n, mean, sample variance, min, max for one batch of
// observations.
type SummaryStats struct {
	N        int
	Mean     float64
	Variance float64
	Min      float64
	Max      float64
}

// FromObservations computes SummaryStats over xs using Welford's one-pass
// algorithm for numerical stability. Sample variance uses divisor n-1 when
// n>1, else 0.
func FromObservations(xs []float64) SummaryStats {
	if len(xs) == 0 {
		return SummaryStats{}
	}

	s := SummaryStats{Min: xs[0], Max: xs[0]}
	var m2 float64

	for i, x := range xs {
		n := i + 1
		delta := x - s.Mean
		s.Mean += delta / float64(n)
		delta2 := x - s.Mean
		m2 += delta * delta2

		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}

	s.N = len(xs)
	if s.N > 1 {
		s.Variance = m2 / float64(s.N-1)
	}
	return s
}

// ToTypes converts to the wire-level types.Stats shape used by Result.
func (s SummaryStats) ToTypes() types.Stats {
	return types.Stats{N: s.N, Mean: s.Mean, Variance: s.Variance, Min: s.Min, Max: s.Max}
}
