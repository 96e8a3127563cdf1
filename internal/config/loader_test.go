package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
simulation:
  initialValue: 1000000
  timeHorizon: 10
  iterations: 100
  annualWithdrawal: 0
  annualWithdrawalRaise: 0
  initialLocBalance: 0
  costBasisRatio: 0.4
  dividendYield: 0
  dividendTaxRate: 0
  capitalGainsRate: 0.238
  effectiveIncomeTaxRate: 0.37
  withdrawMonthly: false
  portfolio:
    - assetClass: equities
      weight: 1.0
  returnModel:
    kind: bootstrap
    history:
      equities: [0.05, 0.07, -0.02, 0.12, 0.03, 0.08]
  sbloc:
    annualInterestRate: 0.074
    maxLTV: 0.65
    maintenanceMargin: 0.5
    liquidationHaircut: 0.05
    liquidationTargetMultiplier: 0.8
    compoundingFrequency: monthly
    startYear: 0
  seed: 42
`

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := writeTemp(t, "scenario.yaml", validYAML)
	cfg, err := NewLoader().LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.InitialValue != 1_000_000 {
		t.Errorf("InitialValue = %v, want 1000000", cfg.InitialValue)
	}
	if cfg.SBLOC.LiquidationTargetMultiplier != 0.8 {
		t.Errorf("LiquidationTargetMultiplier = %v, want 0.8", cfg.SBLOC.LiquidationTargetMultiplier)
	}
}

func TestLoadFromFile_DefaultsMultiplier(t *testing.T) {
	missing := `
simulation:
  initialValue: 1000000
  timeHorizon: 5
  iterations: 10
  costBasisRatio: 0.4
  capitalGainsRate: 0.15
  effectiveIncomeTaxRate: 0.3
  portfolio:
    - assetClass: equities
      weight: 1.0
  returnModel:
    kind: bootstrap
    history:
      equities: [0.05, 0.07, -0.02, 0.12, 0.03]
  sbloc:
    annualInterestRate: 0.05
    maxLTV: 0.6
    maintenanceMargin: 0.4
    liquidationHaircut: 0.05
    compoundingFrequency: annual
    startYear: 0
`
	path := writeTemp(t, "scenario.yaml", missing)
	cfg, err := NewLoader().LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.SBLOC.LiquidationTargetMultiplier != 0.8 {
		t.Errorf("LiquidationTargetMultiplier = %v, want default 0.8", cfg.SBLOC.LiquidationTargetMultiplier)
	}
}

func TestLoadFromFile_InvalidWeights(t *testing.T) {
	bad := `
simulation:
  initialValue: 1000000
  timeHorizon: 5
  iterations: 10
  costBasisRatio: 0.4
  capitalGainsRate: 0.15
  effectiveIncomeTaxRate: 0.3
  portfolio:
    - assetClass: equities
      weight: 0.5
  returnModel:
    kind: bootstrap
    history:
      equities: [0.05, 0.07, -0.02, 0.12, 0.03]
  sbloc:
    annualInterestRate: 0.05
    maxLTV: 0.6
    maintenanceMargin: 0.4
    liquidationHaircut: 0.05
    liquidationTargetMultiplier: 0.8
    compoundingFrequency: annual
    startYear: 0
`
	path := writeTemp(t, "scenario.yaml", bad)
	if _, err := NewLoader().LoadFromFile(path); err == nil {
		t.Fatal("expected validation error for weights not summing to 1")
	}
}

func TestNormalizeRows(t *testing.T) {
	rows := []HistoricalReturnRow{
		{Symbol: "VTI", AssetClass: "equities", Year: 2021, AnnualReturn: 0.25},
		{Symbol: "VTI", AssetClass: "equities", Year: 2019, AnnualReturn: 0.30},
		{Symbol: "VTI", AssetClass: "equities", Year: 2020, AnnualReturn: 0.18},
	}
	out := NormalizeRows(rows)
	got := out["equities"]
	want := []float64{0.30, 0.18, 0.25}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d = %v, want %v", i, got[i], want[i])
		}
	}
}
