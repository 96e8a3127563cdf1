// Package sbloc implements the securities-backed line of credit state
// machine: the strict nine-step per-year transition and the forced
// liquidation algorithm. Every exported step function is pure -- inputs are
// never mutated, a fresh domain.SBLOCState is always returned -- so that
// the Monte Carlo driver can run iterations independently without
// synchronization.
package sbloc

import (
	"math"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// YearResult carries the bookkeeping the driver needs beyond the new state:
// whether a margin call fired, the liquidation it may have triggered, and
// the amounts moved this year.
type YearResult struct {
	MarginCallTriggered bool
	Liquidation         *domain.LiquidationEvent
	PortfolioFailed     bool
	InterestCharged     float64
	WithdrawalMade      float64
	DividendTaxBorrowed float64
}

// StepYear advances state by one year under market return r, following the
// strict nine-step order. withdrawal is the already inflation-adjusted
// amount for this year (0 if currentYear < startYear, decided by the
// caller). state is not mutated.
func StepYear(state domain.SBLOCState, cfg domain.SBLOCConfig, r float64, currentYear int, withdrawal float64, dividendYield, dividendTaxRate float64) (domain.SBLOCState, YearResult) {
	next := state

	// 1. Apply market return.
	next.PortfolioValue = math.Max(0, next.PortfolioValue*(1+r))

	// 2. Dividend-tax borrow (BBD advantage): paid from the loan, not the
	// portfolio.
	var result YearResult
	if dividendYield > 0 && dividendTaxRate > 0 {
		divTax := next.PortfolioValue * dividendYield * dividendTaxRate
		next.LoanBalance += divTax
		result.DividendTaxBorrowed = divTax
	}

	// 3. Withdrawal.
	if withdrawal > 0 {
		next.LoanBalance += withdrawal
		result.WithdrawalMade = withdrawal
	}

	// 4. Interest accrual.
	if next.LoanBalance > 0 && cfg.AnnualInterestRate > 0 {
		switch cfg.CompoundingFrequency {
		case domain.CompoundingMonthly:
			factor := math.Pow(1+cfg.AnnualInterestRate/12, 12)
			result.InterestCharged = next.LoanBalance * (factor - 1)
			next.LoanBalance *= factor
		default:
			result.InterestCharged = next.LoanBalance * cfg.AnnualInterestRate
			next.LoanBalance *= 1 + cfg.AnnualInterestRate
		}
	}

	// 5. Recompute LTV.
	next.CurrentLTV = computeLTV(next.PortfolioValue, next.LoanBalance)

	// 6. Margin-call detection.
	result.MarginCallTriggered = next.CurrentLTV >= cfg.MaxLTV

	// 7. Forced liquidation.
	if result.MarginCallTriggered {
		liquidated, event := liquidate(next, cfg, currentYear)
		next = liquidated
		result.Liquidation = event
	}

	// 8. Warning-zone flag.
	next.InWarningZone = computeWarningZone(next.CurrentLTV, cfg.MaintenanceMargin, cfg.MaxLTV)

	// 9. Failure check.
	if next.PortfolioValue-next.LoanBalance <= 0 {
		result.PortfolioFailed = true
	}
	next.YearsSinceStart = state.YearsSinceStart + 1

	return next, result
}

// StepMonth advances state by one of the twelve equal months of a year in
// withdrawMonthly mode. m is the month's geometric-equal portion of the
// year's return. The monthly interest rate is applied as simple interest
// for the month; compounding across the year emerges from repeated calls.
// dividendYield is the annual yield: one twelfth of its tax is borrowed per
// month. yearsSinceStart is left unchanged except on the twelfth call, which the
// caller is responsible for driving.
func StepMonth(state domain.SBLOCState, cfg domain.SBLOCConfig, m float64, currentYear int, monthlyWithdrawal float64, dividendYield, dividendTaxRate float64, isLastMonth bool) (domain.SBLOCState, YearResult) {
	next := state

	next.PortfolioValue = math.Max(0, next.PortfolioValue*(1+m))

	var result YearResult
	if dividendYield > 0 && dividendTaxRate > 0 {
		divTax := next.PortfolioValue * (dividendYield / 12) * dividendTaxRate
		next.LoanBalance += divTax
		result.DividendTaxBorrowed = divTax
	}

	if monthlyWithdrawal > 0 {
		next.LoanBalance += monthlyWithdrawal
		result.WithdrawalMade = monthlyWithdrawal
	}

	if next.LoanBalance > 0 && cfg.AnnualInterestRate > 0 {
		monthlyRate := cfg.AnnualInterestRate / 12
		result.InterestCharged = next.LoanBalance * monthlyRate
		next.LoanBalance += result.InterestCharged
	}

	next.CurrentLTV = computeLTV(next.PortfolioValue, next.LoanBalance)
	result.MarginCallTriggered = next.CurrentLTV >= cfg.MaxLTV

	if result.MarginCallTriggered {
		liquidated, event := liquidate(next, cfg, currentYear)
		next = liquidated
		result.Liquidation = event
	}

	next.InWarningZone = computeWarningZone(next.CurrentLTV, cfg.MaintenanceMargin, cfg.MaxLTV)

	if next.PortfolioValue-next.LoanBalance <= 0 {
		result.PortfolioFailed = true
	}
	if isLastMonth {
		next.YearsSinceStart = state.YearsSinceStart + 1
	}

	return next, result
}

func computeLTV(portfolioValue, loanBalance float64) float64 {
	switch {
	case portfolioValue > 0:
		return loanBalance / portfolioValue
	case loanBalance > 0:
		return math.Inf(1)
	default:
		return 0
	}
}

func computeWarningZone(ltv, maintenanceMargin, maxLTV float64) bool {
	return ltv >= maintenanceMargin && ltv < maxLTV
}
