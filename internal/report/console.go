package report

import (
	"fmt"
	"io"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// Run bundles everything a console or JSON report needs: the Monte Carlo
// output, its derived metrics, the sell-strategy counterfactual, and the
// estate comparison -- the same four pieces the engine's public API
// produces.
type Run struct {
	Config     *domain.SimulationConfig
	Output     *domain.SimulationOutput
	Metrics    domain.MetricsSummary
	Sell       domain.SellStrategyOutput
	Comparison domain.BBDComparison
}

// WriteConsole prints a human-readable summary, the way a CLI report would
// be read at a glance: run header first, then terminal net-worth statistics,
// risk metrics, margin-call risk, and the sell-strategy comparison. Per-year
// bands are not printed.
func WriteConsole(w io.Writer, r *Run) error {
	fmt.Fprintf(w, "Buy-Borrow-Die simulation %s\n", r.Output.RunID)
	fmt.Fprintf(w, "  iterations:        %d\n", r.Config.Iterations)
	fmt.Fprintf(w, "  time horizon:      %d years\n", r.Config.TimeHorizon)
	fmt.Fprintf(w, "  initial value:     $%s\n", Money(r.Config.InitialValue))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Terminal net worth (portfolio - loan):")
	fmt.Fprintf(w, "  mean:              $%s\n", Money(r.Output.Statistics.Mean))
	fmt.Fprintf(w, "  median:            $%s\n", Money(r.Output.Statistics.Median))
	fmt.Fprintf(w, "  stddev:            $%s\n", Money(r.Output.Statistics.StdDev))
	fmt.Fprintf(w, "  min / max:         $%s / $%s\n", Money(r.Output.Statistics.Min), Money(r.Output.Statistics.Max))
	fmt.Fprintf(w, "  success rate:      %s\n", Percent(r.Output.Statistics.SuccessRate/100))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Risk metrics:")
	fmt.Fprintf(w, "  CAGR:              %s\n", Percent(r.Metrics.CAGR))
	fmt.Fprintf(w, "  TWRR:              %s\n", Percent(r.Metrics.TWRR))
	fmt.Fprintf(w, "  annualized vol:    %s\n", Percent(r.Metrics.AnnualizedVolatility))
	if r.Metrics.SalaryEquivalent != nil {
		fmt.Fprintf(w, "  salary equivalent: $%s (tax savings $%s)\n",
			Money(r.Metrics.SalaryEquivalent.SalaryEquivalent), Money(r.Metrics.SalaryEquivalent.TaxSavings))
	}
	fmt.Fprintln(w)

	if n := len(r.Output.MarginCallStats); n > 0 {
		last := r.Output.MarginCallStats[n-1]
		fmt.Fprintf(w, "Margin-call risk over %d years: cumulative %s\n", n, Percent(last.CumulativeProbability/100))
	}

	fmt.Fprintln(w, "Sell-strategy comparison:")
	fmt.Fprintf(w, "  depletion probability: %s\n", Percent(r.Sell.DepletionProbability/100))
	fmt.Fprintf(w, "  BBD net estate:        $%s\n", Money(r.Comparison.BBDNetEstate))
	fmt.Fprintf(w, "  sell net estate:       $%s\n", Money(r.Comparison.SellNetEstate))
	fmt.Fprintf(w, "  BBD advantage:         $%s\n", Money(r.Comparison.BBDAdvantage))

	return nil
}
