// Package report formats a completed run's SimulationOutput, MetricsSummary,
// and strategy comparison into a human-readable console report and a JSON
// export, for the CLI driver. Currency values are rounded through
// shopspring/decimal at the presentation boundary only -- the core per-year
// math in internal/sbloc and internal/sell stays float64 throughout to
// preserve IEEE-754 determinism. This mirrors rgehrsitz-rpgo's
// pkg/decimal.Money wrapper, used the same way: never in the simulation
// hot path, only when a number is about to be printed.
package report

import "github.com/shopspring/decimal"

// Money rounds a float64 to cents with shopspring/decimal's Round, which
// rounds halves away from zero (79365.085 becomes "79365.09").
func Money(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// Percent formats a decimal rate (e.g. 0.074) as a percentage string with
// two fractional digits (e.g. "7.40%").
func Percent(rate float64) string {
	return decimal.NewFromFloat(rate*100).Round(2).StringFixed(2) + "%"
}
