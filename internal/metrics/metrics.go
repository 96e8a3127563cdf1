// Package metrics implements the pure reduction functions over a completed
// run: CAGR, annualized volatility, TWRR, salary equivalent, estate
// analysis, and the BBD-vs-Sell comparison. Every function here is a pure
// computation over already-produced outputs -- none of them run a
// simulation.
package metrics

import (
	"math"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// CAGR computes the compound annual growth rate from start to end over the
// given number of years. Defined only for years > 0 and start > 0; returns
// -1 when end <= 0 (total loss).
func CAGR(start, end float64, years int) (float64, error) {
	if years <= 0 {
		return 0, domain.ConfigError("years", "must be > 0, got %d", years)
	}
	if start <= 0 {
		return 0, domain.ConfigError("start", "must be > 0, got %v", start)
	}
	if end <= 0 {
		return -1, nil
	}
	return math.Pow(end/start, 1.0/float64(years)) - 1, nil
}

// AnnualizedVolatility is the sample standard deviation, across iterations,
// of each iteration's annualized return (terminal/initial)^(1/years) - 1.
// This is a cross-sectional spread measure, not a period-return std-dev.
func AnnualizedVolatility(terminalValues []float64, initialValue float64, years int) float64 {
	n := len(terminalValues)
	if n < 2 || years <= 0 || initialValue <= 0 {
		return 0
	}
	annualized := make([]float64, n)
	sum := 0.0
	for i, tv := range terminalValues {
		ar := 0.0
		if tv > 0 {
			ar = math.Pow(tv/initialValue, 1.0/float64(years)) - 1
		} else {
			ar = -1
		}
		annualized[i] = ar
		sum += ar
	}
	mean := sum / float64(n)
	variance := 0.0
	for _, ar := range annualized {
		d := ar - mean
		variance += d * d
	}
	variance /= float64(n - 1)
	return math.Sqrt(variance)
}

// TWRR computes the time-weighted rate of return from a sequence of period
// returns: cumulative = prod(1+r_i) - 1, annualized = (1+cumulative)^(1/k) - 1.
func TWRR(periodReturns []float64) float64 {
	k := len(periodReturns)
	if k == 0 {
		return 0
	}
	cumulative := 1.0
	for _, r := range periodReturns {
		cumulative *= 1 + r
	}
	return math.Pow(cumulative, 1.0/float64(k)) - 1
}

// MedianPortfolioPeriodReturns extracts year-over-year returns from the
// median (P50) portfolio-value path of a completed run, for use with TWRR.
func MedianPortfolioPeriodReturns(yearlyPercentiles []domain.YearlyPercentiles) []float64 {
	if len(yearlyPercentiles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(yearlyPercentiles)-1)
	for y := 1; y < len(yearlyPercentiles); y++ {
		prev := yearlyPercentiles[y-1].PortfolioValue.P50
		cur := yearlyPercentiles[y].PortfolioValue.P50
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, cur/prev-1)
	}
	return out
}

// CalculateSalaryEquivalent computes the pre-tax salary that would net the
// same after-tax income as annualWithdrawal. Undefined (returns an error)
// if effectiveIncomeTaxRate >= 1.
func CalculateSalaryEquivalent(annualWithdrawal, effectiveIncomeTaxRate float64) (domain.SalaryEquivalent, error) {
	if effectiveIncomeTaxRate >= 1 {
		return domain.SalaryEquivalent{}, domain.ConfigError("effectiveIncomeTaxRate", "must be < 1, got %v", effectiveIncomeTaxRate)
	}
	salary := annualWithdrawal / (1 - effectiveIncomeTaxRate)
	return domain.SalaryEquivalent{
		SalaryEquivalent: salary,
		TaxSavings:       salary - annualWithdrawal,
	}, nil
}

// CalculateEstateAnalysis computes the estate-at-death figures.
// estateTaxExemption is carried through for reference only; it is never
// subtracted here.
func CalculateEstateAnalysis(terminalPortfolio, terminalLoan, costBasis, capitalGainsRate, estateTaxExemption float64) domain.EstateAnalysis {
	embeddedGains := math.Max(0, terminalPortfolio-costBasis)
	return domain.EstateAnalysis{
		NetEstate:             terminalPortfolio - terminalLoan,
		EmbeddedGains:         embeddedGains,
		SteppedUpBasisSavings: embeddedGains * capitalGainsRate,
		EstateTaxExemption:    estateTaxExemption,
	}
}

// CalculateBBDComparison computes the BBD-vs-Sell estate comparison. A
// positive bbdAdvantage favors the BBD strategy.
func CalculateBBDComparison(terminalPortfolio, terminalLoan, costBasis, capitalGainsRate float64) domain.BBDComparison {
	bbdNetEstate := terminalPortfolio - terminalLoan
	taxIfSold := math.Max(0, terminalPortfolio-costBasis) * capitalGainsRate
	sellNetEstate := terminalPortfolio - taxIfSold
	return domain.BBDComparison{
		BBDNetEstate:  bbdNetEstate,
		SellNetEstate: sellNetEstate,
		BBDAdvantage:  bbdNetEstate - sellNetEstate,
	}
}

// AggregateMarginCallEvents converts each iteration's liquidation years into
// the per-year probability and monotone cumulative probability.
// iterationLiquidationYears holds one slice per iteration, listing the (1-based) years a liquidation occurred
// in that iteration.
func AggregateMarginCallEvents(iterationLiquidationYears [][]int, timeHorizon, iterations int) []domain.MarginCallYearStat {
	hadLiquidation := make([]int, timeHorizon)
	firstLiquidationYear := make([]int, timeHorizon)

	for _, years := range iterationLiquidationYears {
		seen := make(map[int]bool, len(years))
		minYear := 0
		for _, y := range years {
			if y >= 1 && y <= timeHorizon {
				seen[y] = true
				if minYear == 0 || y < minYear {
					minYear = y
				}
			}
		}
		for y := 1; y <= timeHorizon; y++ {
			if seen[y] {
				hadLiquidation[y-1]++
			}
		}
		if minYear > 0 {
			firstLiquidationYear[minYear-1]++
		}
	}

	out := make([]domain.MarginCallYearStat, timeHorizon)
	cumulativeCount := 0
	for y := 0; y < timeHorizon; y++ {
		cumulativeCount += firstLiquidationYear[y]
		out[y] = domain.MarginCallYearStat{
			Year:                  y + 1,
			Probability:           100 * float64(hadLiquidation[y]) / float64(iterations),
			CumulativeProbability: 100 * float64(cumulativeCount) / float64(iterations),
		}
	}
	return out
}

// Summarize composes the above into one MetricsSummary for a completed
// BBD run. CAGR is always computed from the median (P50) terminal net
// worth; there is no mean-based variant.
func Summarize(output *domain.SimulationOutput, cfg *domain.SimulationConfig) (domain.MetricsSummary, error) {
	cagr, err := CAGR(cfg.InitialValue, output.Statistics.Median, cfg.TimeHorizon)
	if err != nil {
		return domain.MetricsSummary{}, err
	}

	summary := domain.MetricsSummary{
		CAGR:                 cagr,
		AnnualizedVolatility: AnnualizedVolatility(output.TerminalValues, cfg.InitialValue, cfg.TimeHorizon),
		TWRR:                 TWRR(MedianPortfolioPeriodReturns(output.YearlyPercentiles)),
		SuccessRate:          output.Statistics.SuccessRate,
	}

	if cfg.EffectiveIncomeTaxRate < 1 {
		se, err := CalculateSalaryEquivalent(cfg.AnnualWithdrawal, cfg.EffectiveIncomeTaxRate)
		if err == nil {
			summary.SalaryEquivalent = &se
		}
	}

	if cfg.CostBasisRatio > 0 {
		terminal := output.YearlyPercentiles[len(output.YearlyPercentiles)-1]
		costBasis := cfg.InitialValue * cfg.CostBasisRatio
		estate := CalculateEstateAnalysis(terminal.PortfolioValue.P50, terminal.LoanBalance.P50, costBasis, cfg.CapitalGainsRate, cfg.EstateTaxExemption)
		summary.EstateAnalysis = &estate
	}

	return summary, nil
}
