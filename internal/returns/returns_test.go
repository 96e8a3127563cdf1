package returns

import (
	"math"
	"testing"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

func bootstrapConfig() *domain.SimulationConfig {
	return &domain.SimulationConfig{
		TimeHorizon: 10,
		Portfolio: []domain.AssetWeight{
			{AssetClass: "stocks", Weight: 0.7},
			{AssetClass: "bonds", Weight: 0.3},
		},
		ReturnModel: domain.ReturnModelConfig{
			Kind: domain.ReturnModelBootstrap,
			History: map[string][]float64{
				"stocks": {0.10, -0.05, 0.22, 0.08, -0.12, 0.15, 0.03, 0.18, -0.20, 0.11},
				"bonds":  {0.03, 0.02, 0.04, 0.01, 0.05, 0.02, 0.03, 0.015, 0.01, 0.025},
			},
		},
	}
}

func regimeConfig() *domain.SimulationConfig {
	return &domain.SimulationConfig{
		TimeHorizon: 20,
		Portfolio: []domain.AssetWeight{
			{AssetClass: "stocks", Weight: 0.6},
			{AssetClass: "bonds", Weight: 0.4},
		},
		CorrelationMatrix: [][]float64{
			{1.0, -0.2},
			{-0.2, 1.0},
		},
		ReturnModel: domain.ReturnModelConfig{
			Kind:          domain.ReturnModelRegimeSwitching,
			Regimes:       []string{"bull", "bear", "crash"},
			InitialRegime: "bull",
			TransitionMatrix: [][]float64{
				{0.85, 0.14, 0.01},
				{0.30, 0.60, 0.10},
				{0.20, 0.30, 0.50},
			},
			RegimeParams: map[string]domain.RegimeParams{
				"bull":  {Mean: map[string]float64{"stocks": 0.14, "bonds": 0.03}, StdDev: map[string]float64{"stocks": 0.12, "bonds": 0.04}},
				"bear":  {Mean: map[string]float64{"stocks": -0.05, "bonds": 0.02}, StdDev: map[string]float64{"stocks": 0.18, "bonds": 0.05}},
				"crash": {Mean: map[string]float64{"stocks": -0.30, "bonds": 0.01}, StdDev: map[string]float64{"stocks": 0.25, "bonds": 0.06}},
			},
		},
	}
}

func TestBootstrapModel_DeterministicPerIteration(t *testing.T) {
	cfg := bootstrapConfig()
	m, err := New(cfg, 42)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := m.SamplePath(3)
	b := m.SamplePath(3)
	for y := range a {
		if a[y] != b[y] {
			t.Fatalf("year %d: %v != %v, sampling for a fixed iteration must be deterministic", y, a[y], b[y])
		}
	}
}

func TestBootstrapModel_DifferentIterationsDiverge(t *testing.T) {
	cfg := bootstrapConfig()
	m, err := New(cfg, 42)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := m.SamplePath(1)
	b := m.SamplePath(2)
	same := true
	for y := range a {
		if a[y] != b[y] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("distinct iterations produced identical paths")
	}
}

func TestBootstrapModel_RequiresFiveYearsHistory(t *testing.T) {
	cfg := bootstrapConfig()
	cfg.ReturnModel.History["stocks"] = []float64{0.1, 0.2}
	if _, err := New(cfg, 1); err == nil {
		t.Fatal("expected error for insufficient history")
	}
}

func TestBootstrapModel_ReturnsWithinHistoricalBounds(t *testing.T) {
	cfg := bootstrapConfig()
	m, err := New(cfg, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	minStocks, maxStocks := -0.20, 0.22
	minBonds, maxBonds := 0.01, 0.05
	lower := 0.7*minStocks + 0.3*minBonds
	upper := 0.7*maxStocks + 0.3*maxBonds
	for it := 0; it < 50; it++ {
		path := m.SamplePath(it)
		for _, r := range path {
			if r < lower-1e-9 || r > upper+1e-9 {
				t.Fatalf("iteration %d: return %v outside weighted historical bounds [%v, %v]", it, r, lower, upper)
			}
		}
	}
}

func TestRegimeSwitchingModel_DeterministicPerIteration(t *testing.T) {
	cfg := regimeConfig()
	m, err := New(cfg, 99)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a := m.SamplePath(5)
	b := m.SamplePath(5)
	for y := range a {
		if a[y] != b[y] {
			t.Fatalf("year %d: %v != %v", y, a[y], b[y])
		}
	}
}

func TestRegimeSwitchingModel_RejectsNonPSDCorrelation(t *testing.T) {
	cfg := regimeConfig()
	cfg.CorrelationMatrix = [][]float64{
		{1.0, 1.5},
		{1.5, 1.0},
	}
	if _, err := New(cfg, 1); err == nil {
		t.Fatal("expected configuration error for non-PSD correlation matrix")
	}
}

func TestRegimeSwitchingModel_NoHistoryRequired(t *testing.T) {
	cfg := regimeConfig()
	if _, err := New(cfg, 1); err != nil {
		t.Fatalf("regime-switching model should not require history: %v", err)
	}
}

func TestNew_UnknownKind(t *testing.T) {
	cfg := bootstrapConfig()
	cfg.ReturnModel.Kind = "unknown"
	if _, err := New(cfg, 1); err == nil {
		t.Fatal("expected error for unknown return model kind")
	}
}

func TestNextRegime_CumulativeSelection(t *testing.T) {
	m := &regimeSwitchingModel{
		transition: [][]float64{
			{0.5, 0.3, 0.2},
		},
	}
	cases := []struct {
		draw float64
		want int
	}{
		{0.0, 0},
		{0.49, 0},
		{0.5, 1},
		{0.79, 1},
		{0.8, 2},
		{0.999, 2},
	}
	for _, c := range cases {
		got := m.nextRegime(0, c.draw)
		if got != c.want {
			t.Errorf("nextRegime(0, %v) = %d, want %d", c.draw, got, c.want)
		}
	}
}

func TestApplyCholesky_IdentityPreservesInput(t *testing.T) {
	L, err := choleskyLower(identityCorrelation(2))
	if err != nil {
		t.Fatalf("choleskyLower: %v", err)
	}
	z := []float64{1.5, -0.7}
	shocks, err := applyCholesky(L, z)
	if err != nil {
		t.Fatalf("applyCholesky: %v", err)
	}
	for i := range z {
		if math.Abs(shocks[i]-z[i]) > 1e-9 {
			t.Errorf("identity correlation should pass shocks through unchanged, got %v want %v", shocks[i], z[i])
		}
	}
}
