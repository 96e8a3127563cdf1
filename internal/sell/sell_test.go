package sell

import (
	"math"
	"testing"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestStepYear_GrossUpExample reproduces the worked sell-strategy gross-up
// example: portfolio=1,000,000, costBasis=400,000, withdrawal=100,000,
// capitalGainsRate=0.238.
func TestStepYear_GrossUpExample(t *testing.T) {
	cfg := &domain.SimulationConfig{CapitalGainsRate: 0.238}
	state := State{PortfolioValue: 1_000_000, CostBasis: 400_000}

	next, result := StepYear(state, cfg, 0.0, 100_000)

	if !almostEqual(result.CapGainsTax, 14280, 0.01) {
		t.Errorf("capGainsTax = %v, want 14280", result.CapGainsTax)
	}
	if !almostEqual(result.GrossSale, 114280, 0.01) {
		t.Errorf("grossSale = %v, want 114280", result.GrossSale)
	}
	if !almostEqual(next.PortfolioValue, 885720, 0.01) {
		t.Errorf("portfolioValue = %v, want 885720", next.PortfolioValue)
	}
	if !almostEqual(next.CostBasis, 354288, 0.5) {
		t.Errorf("costBasis = %v, want ~354288", next.CostBasis)
	}
}

// TestStepYear_DividendTaxAppliedExactlyOnce guards the historical
// double-application defect: a single StepYear call must deduct dividend
// tax from the portfolio exactly once.
func TestStepYear_DividendTaxAppliedExactlyOnce(t *testing.T) {
	cfg := &domain.SimulationConfig{DividendYield: 0.02, DividendTaxRate: 0.15}
	state := State{PortfolioValue: 1_000_000, CostBasis: 400_000}

	next, result := StepYear(state, cfg, 0.0, 0)

	wantTax := 1_000_000 * 0.02 * 0.15
	if !almostEqual(result.DividendTax, wantTax, 0.01) {
		t.Errorf("dividendTax = %v, want %v", result.DividendTax, wantTax)
	}
	wantPortfolio := 1_000_000 - wantTax
	if !almostEqual(next.PortfolioValue, wantPortfolio, 0.01) {
		t.Errorf("portfolioValue = %v, want %v (tax deducted exactly once, not twice)", next.PortfolioValue, wantPortfolio)
	}
}

func TestStepYear_DepletesWhenGrossSaleExceedsPortfolio(t *testing.T) {
	cfg := &domain.SimulationConfig{CapitalGainsRate: 0.238}
	state := State{PortfolioValue: 50_000, CostBasis: 10_000}

	next, result := StepYear(state, cfg, 0.05, 100_000)

	if !result.Depleted {
		t.Fatal("expected depletion when gross sale exceeds portfolio")
	}
	if next.PortfolioValue != 0 {
		t.Errorf("portfolioValue = %v, want 0 on depletion", next.PortfolioValue)
	}
}

func TestStepYear_DividendTaxCanDepletePortfolio(t *testing.T) {
	cfg := &domain.SimulationConfig{DividendYield: 1.0, DividendTaxRate: 1.0}
	state := State{PortfolioValue: 1_000, CostBasis: 500}

	next, result := StepYear(state, cfg, 0.0, 0)

	if !result.Depleted {
		t.Fatal("expected depletion: a 100% dividend tax wipes out the portfolio")
	}
	if next.PortfolioValue != 0 {
		t.Errorf("portfolioValue = %v, want 0", next.PortfolioValue)
	}
}

func TestDeriveScenarios_NineScenariosInOrder(t *testing.T) {
	yp := []domain.YearlyPercentiles{
		{PortfolioValue: domain.PercentileBand{P10: 100, P25: 100, P50: 100, P75: 100, P90: 100}},
		{PortfolioValue: domain.PercentileBand{P10: 90, P25: 95, P50: 105, P75: 115, P90: 130}},
	}
	scenarios := DeriveScenarios(yp)
	if len(scenarios) != 9 {
		t.Fatalf("len(scenarios) = %d, want 9", len(scenarios))
	}
	wantLabels := []string{"P10", "P10-P25", "P25", "P25-P50", "P50", "P50-P75", "P75", "P75-P90", "P90"}
	for i, want := range wantLabels {
		if scenarios[i].Label != want {
			t.Errorf("scenarios[%d].Label = %q, want %q", i, scenarios[i].Label, want)
		}
	}
	// P10 path: 100 -> 90, implied return -10%.
	if !almostEqual(scenarios[0].Returns[0], -0.10, 1e-9) {
		t.Errorf("P10 implied return = %v, want -0.10", scenarios[0].Returns[0])
	}
	// Interpolated P10-P25 at year 1: value = 90 + 0.5*(95-90) = 92.5, return = -7.5%.
	if !almostEqual(scenarios[1].Returns[0], -0.075, 1e-9) {
		t.Errorf("P10-P25 implied return = %v, want -0.075", scenarios[1].Returns[0])
	}
}

func TestRun_AggregatesNineScenarios(t *testing.T) {
	cfg := &domain.SimulationConfig{
		InitialValue:     1_000_000,
		TimeHorizon:      5,
		AnnualWithdrawal: 50_000,
		CostBasisRatio:   0.4,
		DividendYield:    0.02,
		DividendTaxRate:  0.15,
		CapitalGainsRate: 0.238,
		SBLOC:            domain.SBLOCConfig{StartYear: 1},
	}
	yp := make([]domain.YearlyPercentiles, cfg.TimeHorizon+1)
	for y := range yp {
		growth := 1 + 0.07*float64(y)
		yp[y] = domain.YearlyPercentiles{PortfolioValue: domain.PercentileBand{
			P10: cfg.InitialValue * growth * 0.8,
			P25: cfg.InitialValue * growth * 0.9,
			P50: cfg.InitialValue * growth,
			P75: cfg.InitialValue * growth * 1.1,
			P90: cfg.InitialValue * growth * 1.2,
		}}
	}

	out := Run(cfg, yp)
	if len(out.Trajectories) != 9 {
		t.Fatalf("len(trajectories) = %d, want 9", len(out.Trajectories))
	}
	if out.DepletionProbability < 0 || out.DepletionProbability > 100 {
		t.Errorf("depletionProbability out of range: %v", out.DepletionProbability)
	}
	if out.TerminalValuePercentile.P50 <= 0 {
		t.Errorf("expected a positive median terminal value, got %v", out.TerminalValuePercentile.P50)
	}
}
