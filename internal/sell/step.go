package sell

import (
	"math"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// State is the sell strategy's per-scenario mutable state: no loan, just a
// portfolio and its cost basis.
type State struct {
	PortfolioValue float64
	CostBasis      float64
}

// NewState builds the initial sell-strategy state from the same
// initialValue/costBasisRatio the BBD run used, so both strategies start
// from an identical position.
func NewState(initialValue, costBasisRatio float64) State {
	return State{PortfolioValue: initialValue, CostBasis: initialValue * costBasisRatio}
}

// YearResult mirrors sbloc.YearResult's role for the sell strategy.
type YearResult struct {
	DividendTax float64
	CapGainsTax float64
	GrossSale   float64
	Depleted    bool
}

// StepYear advances state by one year under market return r, following a
// strict three-step order: dividend tax taken directly from the portfolio
// (never borrowed, unlike BBD's step 2), withdrawal with a capital-gains
// gross-up, then the market return. Dividend tax is deducted exactly once,
// here and nowhere else in the step -- the bug this guards against is a
// historical double-application defect.
func StepYear(state State, cfg *domain.SimulationConfig, r float64, withdrawal float64) (State, YearResult) {
	next := state
	var result YearResult

	if cfg.DividendYield > 0 && cfg.DividendTaxRate > 0 {
		divTax := next.PortfolioValue * cfg.DividendYield * cfg.DividendTaxRate
		next.PortfolioValue -= divTax
		result.DividendTax = divTax
		if next.PortfolioValue <= 0 {
			next.PortfolioValue = 0
			result.Depleted = true
			return next, result
		}
	}

	if withdrawal > 0 {
		portfolioBefore := next.PortfolioValue
		basisSold := 0.0
		if portfolioBefore > 0 {
			basisSold = next.CostBasis * (withdrawal / portfolioBefore)
		}
		gain := math.Max(0, withdrawal-basisSold)
		tax := gain * cfg.CapitalGainsRate
		grossSale := withdrawal + tax
		result.CapGainsTax = tax

		if grossSale >= portfolioBefore {
			next.PortfolioValue = 0
			result.GrossSale = portfolioBefore
			result.Depleted = true
			return next, result
		}

		next.PortfolioValue = portfolioBefore - grossSale
		next.CostBasis = next.CostBasis * (1 - grossSale/portfolioBefore)
		result.GrossSale = grossSale
	}

	next.PortfolioValue = math.Max(0, next.PortfolioValue*(1+r))
	return next, result
}
