// Package sell implements the counterfactual "sell assets to fund
// withdrawal" strategy, replayed against the same market paths the BBD
// engine produced so the two strategies can be compared on identical
// realizations rather than independent resamplings.
package sell

import "github.com/onedigerati/bbd-sim/internal/domain"

// Scenario is one of the nine market-path replays: the five BBD percentile
// bands (P10, P25, P50, P75, P90) plus four 50%-weighted interpolations
// between consecutive percentiles.
type Scenario struct {
	Label   string
	Returns []float64 // one implied growth rate per simulated year
}

// DeriveScenarios builds the nine scenarios from the BBD run's
// yearlyPercentiles. yearlyPercentiles[0] is t=0 (the initial portfolio
// value); yearlyPercentiles[y] is t=y. The implied return for year y is the
// year-over-year growth of the chosen percentile's portfolio-value band --
// this is what ties the sell simulation to "the same market realizations"
// the BBD run experienced.
func DeriveScenarios(yearlyPercentiles []domain.YearlyPercentiles) []Scenario {
	p10 := extractPath(yearlyPercentiles, func(b domain.PercentileBand) float64 { return b.P10 })
	p25 := extractPath(yearlyPercentiles, func(b domain.PercentileBand) float64 { return b.P25 })
	p50 := extractPath(yearlyPercentiles, func(b domain.PercentileBand) float64 { return b.P50 })
	p75 := extractPath(yearlyPercentiles, func(b domain.PercentileBand) float64 { return b.P75 })
	p90 := extractPath(yearlyPercentiles, func(b domain.PercentileBand) float64 { return b.P90 })

	return []Scenario{
		{Label: "P10", Returns: impliedReturns(p10)},
		{Label: "P10-P25", Returns: impliedReturns(interpolate(p10, p25, 0.5))},
		{Label: "P25", Returns: impliedReturns(p25)},
		{Label: "P25-P50", Returns: impliedReturns(interpolate(p25, p50, 0.5))},
		{Label: "P50", Returns: impliedReturns(p50)},
		{Label: "P50-P75", Returns: impliedReturns(interpolate(p50, p75, 0.5))},
		{Label: "P75", Returns: impliedReturns(p75)},
		{Label: "P75-P90", Returns: impliedReturns(interpolate(p75, p90, 0.5))},
		{Label: "P90", Returns: impliedReturns(p90)},
	}
}

func extractPath(yearlyPercentiles []domain.YearlyPercentiles, pick func(domain.PercentileBand) float64) []float64 {
	path := make([]float64, len(yearlyPercentiles))
	for i, yp := range yearlyPercentiles {
		path[i] = pick(yp.PortfolioValue)
	}
	return path
}

func interpolate(a, b []float64, weight float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + weight*(b[i]-a[i])
	}
	return out
}

// impliedReturns converts a path of portfolio values (length timeHorizon+1)
// into timeHorizon year-over-year growth rates.
func impliedReturns(path []float64) []float64 {
	if len(path) < 2 {
		return nil
	}
	out := make([]float64, len(path)-1)
	for y := 1; y < len(path); y++ {
		prev := path[y-1]
		if prev <= 0 {
			out[y-1] = 0
			continue
		}
		out[y-1] = path[y]/prev - 1
	}
	return out
}
