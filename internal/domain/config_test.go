package domain

import (
	"math"
	"testing"
)

func validConfig() SimulationConfig {
	return SimulationConfig{
		InitialValue:           1_000_000,
		TimeHorizon:            10,
		Iterations:             100,
		AnnualWithdrawal:       50_000,
		AnnualWithdrawalRaise:  0.03,
		CostBasisRatio:         0.5,
		DividendYield:          0.02,
		DividendTaxRate:        0.238,
		CapitalGainsRate:       0.238,
		EffectiveIncomeTaxRate: 0.35,
		Portfolio: []AssetWeight{
			{AssetClass: "stocks", Weight: 0.6},
			{AssetClass: "bonds", Weight: 0.4},
		},
		ReturnModel: ReturnModelConfig{
			Kind: ReturnModelBootstrap,
			History: map[string][]float64{
				"stocks": {0.1, 0.08, -0.05, 0.12, 0.2, 0.03},
				"bonds":  {0.03, 0.02, 0.01, 0.04, 0.02, 0.03},
			},
		},
		SBLOC: SBLOCConfig{
			AnnualInterestRate:          0.074,
			MaxLTV:                      0.65,
			MaintenanceMargin:           0.5,
			LiquidationHaircut:          0.05,
			LiquidationTargetMultiplier: 0.8,
			CompoundingFrequency:        CompoundingMonthly,
		},
	}
}

func TestSimulationConfigValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got error: %v", err)
	}
}

func TestSimulationConfigValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := validConfig()
	cfg.Portfolio[0].Weight = 0.5
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for weights not summing to 1")
	}
	var simErr *SimError
	if !asSimError(err, &simErr) || simErr.Field != "portfolio.weight" {
		t.Fatalf("expected portfolio.weight error, got %v", err)
	}
}

func TestSimulationConfigValidate_NegativeInitialValue(t *testing.T) {
	cfg := validConfig()
	cfg.InitialValue = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive initialValue")
	}
}

func TestSimulationConfigValidate_RateBoundaries(t *testing.T) {
	cfg := validConfig()
	cfg.CapitalGainsRate = 1.0 // must be < 1, not <=
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for capitalGainsRate == 1")
	}
}

func TestSimulationConfigValidate_BootstrapNeedsFiveYears(t *testing.T) {
	cfg := validConfig()
	cfg.ReturnModel.History["bonds"] = []float64{0.01, 0.02}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for insufficient history")
	}
}

func TestSBLOCConfigValidate_MaintenanceMustBeBelowMax(t *testing.T) {
	s := validConfig().SBLOC
	s.MaintenanceMargin = s.MaxLTV
	if err := s.Validate(); err == nil {
		t.Fatal("expected error when maintenanceMargin == maxLTV")
	}
}

func TestComputeLTV(t *testing.T) {
	cases := []struct {
		name                    string
		portfolio, loan, want   float64
		wantInf                 bool
	}{
		{"zero loan zero portfolio", 0, 0, 0, false},
		{"portfolio zero loan positive", 0, 100, 0, true},
		{"normal", 200, 100, 0.5, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := computeLTV(c.portfolio, c.loan)
			if c.wantInf {
				if !math.IsInf(got, 1) {
					t.Fatalf("want +Inf, got %v", got)
				}
				return
			}
			if got != c.want {
				t.Fatalf("want %v, got %v", c.want, got)
			}
		})
	}
}

func TestSBLOCStateCheckInvariants(t *testing.T) {
	cfg := validConfig().SBLOC
	s := NewSBLOCState(1_000_000, 500_000, cfg)
	if err := s.CheckInvariants(cfg); err != nil {
		t.Fatalf("expected valid state, got %v", err)
	}

	broken := s
	broken.CurrentLTV = -1
	if err := broken.CheckInvariants(cfg); err == nil {
		t.Fatal("expected invariant violation for negative LTV")
	}

	infState := NewSBLOCState(0, 100, cfg)
	if !math.IsInf(infState.CurrentLTV, 1) {
		t.Fatalf("expected +Inf LTV when portfolio=0, loan>0, got %v", infState.CurrentLTV)
	}
	if err := infState.CheckInvariants(cfg); err != nil {
		t.Fatalf("expected the portfolio=0,loan>0 +Inf case to be valid, got %v", err)
	}
}

// asSimError is a small helper mirroring errors.As without pulling in the
// errors package for a single call site in tests.
func asSimError(err error, target **SimError) bool {
	se, ok := err.(*SimError)
	if !ok {
		return false
	}
	*target = se
	return true
}
