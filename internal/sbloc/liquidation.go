package sbloc

import (
	"math"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// liquidate sells down the portfolio to bring LTV back to its target. It
// assumes the caller has already confirmed currentLTV >= maxLTV for state;
// it is not responsible for the margin-call check itself.
func liquidate(state domain.SBLOCState, cfg domain.SBLOCConfig, year int) (domain.SBLOCState, *domain.LiquidationEvent) {
	targetMultiplier := cfg.LiquidationTargetMultiplier
	if targetMultiplier <= 0 {
		targetMultiplier = domain.DefaultLiquidationTargetMultiplier
	}
	targetLTV := cfg.MaintenanceMargin * targetMultiplier
	targetLoan := state.PortfolioValue * targetLTV
	excessLoan := state.LoanBalance - targetLoan
	if excessLoan <= 0 {
		return state, nil
	}

	haircut := cfg.LiquidationHaircut
	grossAssets := excessLoan / (1 - haircut)
	grossAssets = math.Min(grossAssets, state.PortfolioValue)
	netProceeds := grossAssets * (1 - haircut)

	next := state
	next.PortfolioValue = math.Max(0, state.PortfolioValue-grossAssets)
	next.LoanBalance = math.Max(0, state.LoanBalance-netProceeds)
	next.CurrentLTV = computeLTV(next.PortfolioValue, next.LoanBalance)
	next.InWarningZone = computeWarningZone(next.CurrentLTV, cfg.MaintenanceMargin, cfg.MaxLTV)

	event := &domain.LiquidationEvent{
		Year:             year,
		AssetsLiquidated: grossAssets,
		Haircut:          grossAssets * haircut,
		LoanRepaid:       netProceeds,
		NewLoan:          next.LoanBalance,
		NewPortfolio:     next.PortfolioValue,
	}

	return next, event
}
