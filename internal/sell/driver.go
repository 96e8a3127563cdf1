package sell

import (
	"math"
	"sort"

	"github.com/onedigerati/bbd-sim/internal/domain"
	"github.com/onedigerati/bbd-sim/internal/montecarlo"
)

// Run replays all nine market-path scenarios derived from a completed BBD
// run's yearlyPercentiles and aggregates them into a SellStrategyOutput.
func Run(cfg *domain.SimulationConfig, yearlyPercentiles []domain.YearlyPercentiles) domain.SellStrategyOutput {
	scenarios := DeriveScenarios(yearlyPercentiles)

	trajectories := make([]domain.SellTrajectory, len(scenarios))
	terminalValues := make([]float64, len(scenarios))
	lifetimeTaxes := make([]float64, len(scenarios))
	depletions := 0

	for i, sc := range scenarios {
		traj := runScenario(cfg, sc)
		trajectories[i] = traj
		terminalValues[i] = traj.TerminalValue()
		lifetimeTaxes[i] = traj.LifetimeTax
		if traj.Depleted {
			depletions++
		}
	}

	sortedTerminal := sortedCopy(terminalValues)
	sortedTax := sortedCopy(lifetimeTaxes)

	return domain.SellStrategyOutput{
		Trajectories:            trajectories,
		TerminalValuePercentile: bandOf(sortedTerminal),
		LifetimeTaxPercentile:   bandOf(sortedTax),
		DepletionProbability:    100 * float64(depletions) / float64(len(scenarios)),
	}
}

func runScenario(cfg *domain.SimulationConfig, sc Scenario) domain.SellTrajectory {
	state := NewState(cfg.InitialValue, cfg.CostBasisRatio)

	traj := domain.SellTrajectory{
		Scenario:  sc.Label,
		Snapshots: make([]domain.SellYearSnapshot, cfg.TimeHorizon+1),
	}
	traj.Snapshots[0] = domain.SellYearSnapshot{PortfolioValue: state.PortfolioValue, CostBasis: state.CostBasis}

	for y := 0; y < cfg.TimeHorizon; y++ {
		currentYear := y + 1
		r := sc.Returns[y]

		withdrawal := 0.0
		if currentYear >= cfg.SBLOC.StartYear {
			withdrawal = cfg.AnnualWithdrawal * math.Pow(1+cfg.AnnualWithdrawalRaise, float64(currentYear-cfg.SBLOC.StartYear))
		}

		var result YearResult
		if !traj.Depleted {
			state, result = StepYear(state, cfg, r, withdrawal)
			traj.LifetimeTax += result.DividendTax + result.CapGainsTax
			if result.Depleted {
				traj.Depleted = true
				traj.DepletedYear = currentYear
			}
		}

		traj.Snapshots[currentYear] = domain.SellYearSnapshot{PortfolioValue: state.PortfolioValue, CostBasis: state.CostBasis}
	}

	return traj
}

func sortedCopy(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	sort.Float64s(out)
	return out
}

func bandOf(sorted []float64) domain.PercentileBand {
	return domain.PercentileBand{
		P10: montecarlo.Percentile(sorted, 10),
		P25: montecarlo.Percentile(sorted, 25),
		P50: montecarlo.Percentile(sorted, 50),
		P75: montecarlo.Percentile(sorted, 75),
		P90: montecarlo.Percentile(sorted, 90),
	}
}
