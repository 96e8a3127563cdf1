package montecarlo

import (
	"math"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// Percentile implements the canonical nearest-rank-interpolation method:
// index = (p/100)*(n-1), linear interpolation between floor and ceil.
// p is on the 0-100 scale; sorted must already be sorted ascending. Passing
// a 0-1 fraction here is the historically audited defect this function
// exists to prevent -- there is deliberately no 0-1 variant anywhere in this
// package.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch n {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}
	idx := (p / 100) * float64(n-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// bandOf computes the standard P10/P25/P50/P75/P90 band. sorted must already
// be sorted ascending.
func bandOf(sorted []float64) domain.PercentileBand {
	return domain.PercentileBand{
		P10: Percentile(sorted, 10),
		P25: Percentile(sorted, 25),
		P50: Percentile(sorted, 50),
		P75: Percentile(sorted, 75),
		P90: Percentile(sorted, 90),
	}
}
