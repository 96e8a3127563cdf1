package montecarlo

import (
	"math"
	"sort"

	"github.com/onedigerati/bbd-sim/internal/domain"
	"github.com/onedigerati/bbd-sim/internal/metrics"
)

// yearColumns accumulates, for each simulation year, every iteration's
// portfolio value, loan balance, and LTV -- the cross-sections percentiles
// are computed over. Pre-sized once up front so workers never reallocate
// while writing their iterations' results.
type yearColumns struct {
	portfolio [][]float64 // [year][iteration]
	loan      [][]float64
	ltv       [][]float64
	interest  [][]float64
	withdraw  [][]float64
}

func newYearColumns(timeHorizon, iterations int) *yearColumns {
	yc := &yearColumns{
		portfolio: make([][]float64, timeHorizon),
		loan:      make([][]float64, timeHorizon),
		ltv:       make([][]float64, timeHorizon),
		interest:  make([][]float64, timeHorizon),
		withdraw:  make([][]float64, timeHorizon),
	}
	for y := 0; y < timeHorizon; y++ {
		yc.portfolio[y] = make([]float64, iterations)
		yc.loan[y] = make([]float64, iterations)
		yc.ltv[y] = make([]float64, iterations)
		yc.interest[y] = make([]float64, iterations)
		yc.withdraw[y] = make([]float64, iterations)
	}
	return yc
}

// record writes iteration i's year-y snapshot into the pre-sized columns.
// Safe to call concurrently for disjoint (year, iteration) cells, since each
// iteration owns its own column index across all workers.
func (yc *yearColumns) record(i, y int, snap domain.YearSnapshot, cumInterest, cumWithdrawals float64) {
	yc.portfolio[y][i] = snap.PortfolioValue
	yc.loan[y][i] = snap.LoanBalance
	yc.ltv[y][i] = snap.CurrentLTV
	yc.interest[y][i] = cumInterest
	yc.withdraw[y][i] = cumWithdrawals
}

func (yc *yearColumns) yearlyPercentiles() []domain.YearlyPercentiles {
	out := make([]domain.YearlyPercentiles, len(yc.portfolio))
	for y := range yc.portfolio {
		p := sortedCopy(yc.portfolio[y])
		l := sortedCopy(yc.loan[y])
		v := sortedCopy(yc.ltv[y])
		out[y] = domain.YearlyPercentiles{
			PortfolioValue: bandOf(p),
			LoanBalance:    bandOf(l),
			LTV:            bandOf(v),
		}
	}
	return out
}

func (yc *yearColumns) sblocTrajectory() domain.SBLOCTrajectory {
	n := len(yc.loan)
	traj := domain.SBLOCTrajectory{
		LoanBalance:           make([]domain.PercentileBand, n),
		CumulativeInterest:    make([]domain.PercentileBand, n),
		CumulativeWithdrawals: make([]domain.PercentileBand, n),
	}
	for y := 0; y < n; y++ {
		traj.LoanBalance[y] = bandOf(sortedCopy(yc.loan[y]))
		traj.CumulativeInterest[y] = bandOf(sortedCopy(yc.interest[y]))
		traj.CumulativeWithdrawals[y] = bandOf(sortedCopy(yc.withdraw[y]))
	}
	return traj
}

func sortedCopy(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	sort.Float64s(out)
	return out
}

// computeStatistics reduces terminalValues into the run's summary
// statistics. successRate uses a strict greater-than: breaking even is not
// success.
func computeStatistics(terminalValues []float64, initialValue float64, invariantViolations int) domain.Statistics {
	n := len(terminalValues)
	if n == 0 {
		return domain.Statistics{}
	}
	sorted := sortedCopy(terminalValues)

	sum := 0.0
	successes := 0
	min, max := sorted[0], sorted[n-1]
	for _, v := range terminalValues {
		sum += v
		if v > initialValue {
			successes++
		}
	}
	mean := sum / float64(n)

	variance := 0.0
	if n > 1 {
		for _, v := range terminalValues {
			d := v - mean
			variance += d * d
		}
		variance /= float64(n - 1)
	}

	return domain.Statistics{
		Mean:                mean,
		Median:              Percentile(sorted, 50),
		StdDev:              math.Sqrt(variance),
		Min:                 min,
		Max:                 max,
		SuccessRate:         100 * float64(successes) / float64(n),
		InvariantViolations: invariantViolations,
	}
}

// marginCallStats builds per-year liquidation probability and cumulative
// probability. The driver delegates to the public
// internal/metrics.AggregateMarginCallEvents so the same reduction is
// available standalone through the package's public API.
func marginCallStats(liquidationYears [][]int, timeHorizon, iterations int) []domain.MarginCallYearStat {
	return metrics.AggregateMarginCallEvents(liquidationYears, timeHorizon, iterations)
}
