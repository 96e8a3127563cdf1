package sbloc

import (
	"math"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// RunTrajectory advances a single SBLOC trajectory across a caller-supplied
// sequence of yearly returns, one entry per year of the implied horizon.
// This is the standalone engine mode: unlike the Monte Carlo driver
// (internal/montecarlo), which pre-grows the withdrawal itself year over
// year and always passes cfg.WithdrawalGrowthRate = 0, a standalone caller
// supplies a flat annualWithdrawal and lets the engine grow it internally
// via cfg.WithdrawalGrowthRate. Useful for previewing one deterministic
// path (e.g. a specific historical sequence) without paying for a full
// Monte Carlo run.
func RunTrajectory(cfg domain.SBLOCConfig, initialPortfolio, initialLoan float64, yearReturns []float64, annualWithdrawal, dividendYield, dividendTaxRate float64, withdrawMonthly bool) domain.Trajectory {
	state := domain.NewSBLOCState(initialPortfolio, initialLoan, cfg)
	horizon := len(yearReturns)

	traj := domain.Trajectory{
		Snapshots:             make([]domain.YearSnapshot, horizon+1),
		CumulativeInterest:    make([]float64, horizon+1),
		CumulativeWithdrawals: make([]float64, horizon+1),
	}
	traj.Snapshots[0] = domain.YearSnapshot{
		PortfolioValue: state.PortfolioValue,
		LoanBalance:    state.LoanBalance,
		CurrentLTV:     state.CurrentLTV,
	}

	cumInterest, cumWithdrawals := 0.0, 0.0
	for y, r := range yearReturns {
		currentYear := y + 1

		// Once a trajectory has failed, the portfolio stays wiped out and
		// the loan balance no longer moves: no further withdrawal, interest,
		// or return is applied in any later year.
		if traj.Failed {
			traj.Snapshots[currentYear] = domain.YearSnapshot{
				PortfolioValue: 0,
				LoanBalance:    state.LoanBalance,
				CurrentLTV:     frozenLTV(state.LoanBalance),
			}
			traj.CumulativeInterest[currentYear] = cumInterest
			traj.CumulativeWithdrawals[currentYear] = cumWithdrawals
			continue
		}

		withdrawal := 0.0
		if currentYear >= cfg.StartYear {
			withdrawal = annualWithdrawal * math.Pow(1+cfg.WithdrawalGrowthRate, float64(currentYear-cfg.StartYear))
		}

		var result YearResult
		if withdrawMonthly {
			state, result = stepYearMonthly(state, cfg, r, currentYear, withdrawal, dividendYield, dividendTaxRate)
		} else {
			state, result = StepYear(state, cfg, r, currentYear, withdrawal, dividendYield, dividendTaxRate)
		}

		cumInterest += result.InterestCharged
		cumWithdrawals += result.WithdrawalMade

		traj.Snapshots[currentYear] = domain.YearSnapshot{
			PortfolioValue: state.PortfolioValue,
			LoanBalance:    state.LoanBalance,
			CurrentLTV:     state.CurrentLTV,
		}
		traj.CumulativeInterest[currentYear] = cumInterest
		traj.CumulativeWithdrawals[currentYear] = cumWithdrawals

		if result.MarginCallTriggered {
			traj.MarginCalls = append(traj.MarginCalls, domain.MarginCallEvent{Year: currentYear})
		}
		if result.Liquidation != nil {
			traj.Liquidations = append(traj.Liquidations, *result.Liquidation)
		}
		if result.PortfolioFailed && !traj.Failed {
			traj.Failed = true
			traj.FailedYear = currentYear
		}
	}

	return traj
}

// frozenLTV reports the LTV of a failed trajectory's frozen state, where
// the portfolio has been wiped to zero: +Inf while the loan still carries a
// balance, 0 once it doesn't.
func frozenLTV(loanBalance float64) float64 {
	if loanBalance > 0 {
		return math.Inf(1)
	}
	return 0
}

// stepYearMonthly splits the year's return and withdrawal into twelve equal
// geometric slices, mirroring internal/montecarlo's driver-side helper of
// the same shape for the standalone entry point. Once a month reports the
// trajectory failed, the remaining months of the year are not stepped
// through: the post-liquidation state stops accruing further interest and
// withdrawals for the rest of the year, rather than compounding on a
// balance sheet that has already collapsed.
func stepYearMonthly(state domain.SBLOCState, cfg domain.SBLOCConfig, yearReturn float64, currentYear int, annualWithdrawal float64, dividendYield, dividendTaxRate float64) (domain.SBLOCState, YearResult) {
	monthlyReturn := math.Pow(1+yearReturn, 1.0/12) - 1
	monthlyWithdrawal := annualWithdrawal / 12

	var yearResult YearResult
	for month := 1; month <= 12; month++ {
		var monthResult YearResult
		state, monthResult = StepMonth(state, cfg, monthlyReturn, currentYear, monthlyWithdrawal, dividendYield, dividendTaxRate, month == 12)

		yearResult.InterestCharged += monthResult.InterestCharged
		yearResult.WithdrawalMade += monthResult.WithdrawalMade
		yearResult.DividendTaxBorrowed += monthResult.DividendTaxBorrowed
		if monthResult.MarginCallTriggered {
			yearResult.MarginCallTriggered = true
		}
		if monthResult.Liquidation != nil && yearResult.Liquidation == nil {
			yearResult.Liquidation = monthResult.Liquidation
		}
		if monthResult.PortfolioFailed {
			yearResult.PortfolioFailed = true
			if month != 12 {
				state.YearsSinceStart = currentYear
			}
			break
		}
	}
	return state, yearResult
}
