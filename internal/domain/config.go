package domain

import "math"

// ReturnModelKind selects which return model backs a simulation run.
type ReturnModelKind string

const (
	ReturnModelBootstrap       ReturnModelKind = "bootstrap"
	ReturnModelRegimeSwitching ReturnModelKind = "regime-switching"
)

// CompoundingFrequency selects how SBLOC interest compounds within a year.
type CompoundingFrequency string

const (
	CompoundingAnnual  CompoundingFrequency = "annual"
	CompoundingMonthly CompoundingFrequency = "monthly"
)

// AssetWeight pairs an asset class with its portfolio weight.
type AssetWeight struct {
	AssetClass string  `yaml:"assetClass" json:"assetClass"`
	Weight     float64 `yaml:"weight" json:"weight"`
}

// RegimeParams holds the per-regime, per-asset mean and stddev used by the
// regime-switching return model.
type RegimeParams struct {
	Mean   map[string]float64 `yaml:"mean" json:"mean"`
	StdDev map[string]float64 `yaml:"stddev" json:"stddev"`
}

// ReturnModelConfig configures whichever return model SimulationConfig
// selects. Only the fields relevant to the selected Kind need be populated.
type ReturnModelConfig struct {
	Kind ReturnModelKind `yaml:"kind" json:"kind"`

	// Bootstrap: a normalized {assetClass -> yearly historical returns} map,
	// at least 5 years per class (enforced by the caller).
	History map[string][]float64 `yaml:"history,omitempty" json:"history,omitempty"`

	// RegimeSwitching: regime names, their transition matrix (row-stochastic,
	// regimes[i] -> probability of transitioning to regimes[j]), starting
	// regime, and per-regime return parameters.
	Regimes           []string                `yaml:"regimes,omitempty" json:"regimes,omitempty"`
	TransitionMatrix  [][]float64             `yaml:"transitionMatrix,omitempty" json:"transitionMatrix,omitempty"`
	InitialRegime     string                  `yaml:"initialRegime,omitempty" json:"initialRegime,omitempty"`
	RegimeParams      map[string]RegimeParams `yaml:"regimeParams,omitempty" json:"regimeParams,omitempty"`
}

// SBLOCConfig configures the securities-backed line of credit mechanics.
type SBLOCConfig struct {
	AnnualInterestRate          float64               `yaml:"annualInterestRate" json:"annualInterestRate"`
	MaxLTV                      float64               `yaml:"maxLTV" json:"maxLTV"`
	MaintenanceMargin           float64               `yaml:"maintenanceMargin" json:"maintenanceMargin"`
	LiquidationHaircut          float64               `yaml:"liquidationHaircut" json:"liquidationHaircut"`
	LiquidationTargetMultiplier float64               `yaml:"liquidationTargetMultiplier" json:"liquidationTargetMultiplier"`
	CompoundingFrequency        CompoundingFrequency  `yaml:"compoundingFrequency" json:"compoundingFrequency"`
	StartYear                   int                   `yaml:"startYear" json:"startYear"`
	// WithdrawalGrowthRate is used only by the standalone stepper (the
	// Monte Carlo driver pre-grows withdrawals itself and passes 0 here).
	WithdrawalGrowthRate float64 `yaml:"withdrawalGrowthRate,omitempty" json:"withdrawalGrowthRate,omitempty"`
}

// SimulationConfig is the immutable input to a BBD simulation run.
type SimulationConfig struct {
	InitialValue           float64           `yaml:"initialValue" json:"initialValue"`
	TimeHorizon             int               `yaml:"timeHorizon" json:"timeHorizon"`
	Iterations               int               `yaml:"iterations" json:"iterations"`
	AnnualWithdrawal         float64           `yaml:"annualWithdrawal" json:"annualWithdrawal"`
	AnnualWithdrawalRaise    float64           `yaml:"annualWithdrawalRaise" json:"annualWithdrawalRaise"`
	InitialLOCBalance        float64           `yaml:"initialLocBalance" json:"initialLocBalance"`
	CostBasisRatio           float64           `yaml:"costBasisRatio" json:"costBasisRatio"`
	DividendYield            float64           `yaml:"dividendYield" json:"dividendYield"`
	DividendTaxRate          float64           `yaml:"dividendTaxRate" json:"dividendTaxRate"`
	CapitalGainsRate         float64           `yaml:"capitalGainsRate" json:"capitalGainsRate"`
	EffectiveIncomeTaxRate   float64           `yaml:"effectiveIncomeTaxRate" json:"effectiveIncomeTaxRate"`
	WithdrawMonthly          bool              `yaml:"withdrawMonthly" json:"withdrawMonthly"`
	Portfolio                []AssetWeight     `yaml:"portfolio" json:"portfolio"`
	CorrelationMatrix        [][]float64       `yaml:"correlationMatrix,omitempty" json:"correlationMatrix,omitempty"`
	ReturnModel              ReturnModelConfig `yaml:"returnModel" json:"returnModel"`
	SBLOC                    SBLOCConfig       `yaml:"sbloc" json:"sbloc"`
	Seed                     *int64            `yaml:"seed,omitempty" json:"seed,omitempty"`
	EstateTaxExemption       float64           `yaml:"estateTaxExemption,omitempty" json:"estateTaxExemption,omitempty"`
}

const weightSumTolerance = 1e-6

// Validate checks every configuration invariant at the config boundary,
// returning the first violation as a ConfigInvalid SimError naming the
// offending field.
func (c *SimulationConfig) Validate() error {
	if c.InitialValue <= 0 {
		return ConfigError("initialValue", "must be > 0, got %v", c.InitialValue)
	}
	if c.TimeHorizon < 1 {
		return ConfigError("timeHorizon", "must be >= 1, got %d", c.TimeHorizon)
	}
	if c.Iterations < 1 {
		return ConfigError("iterations", "must be >= 1, got %d", c.Iterations)
	}
	if c.AnnualWithdrawal < 0 {
		return ConfigError("annualWithdrawal", "must be >= 0, got %v", c.AnnualWithdrawal)
	}
	if c.AnnualWithdrawalRaise < -1 {
		return ConfigError("annualWithdrawalRaise", "must be >= -1, got %v", c.AnnualWithdrawalRaise)
	}
	if c.InitialLOCBalance < 0 {
		return ConfigError("initialLocBalance", "must be >= 0, got %v", c.InitialLOCBalance)
	}
	if c.CostBasisRatio <= 0 || c.CostBasisRatio > 1 {
		return ConfigError("costBasisRatio", "must be in (0, 1], got %v", c.CostBasisRatio)
	}
	if c.DividendYield < 0 || c.DividendYield > 0.2 {
		return ConfigError("dividendYield", "must be in [0, 0.2], got %v", c.DividendYield)
	}
	if err := validateUnitRate("dividendTaxRate", c.DividendTaxRate); err != nil {
		return err
	}
	if err := validateUnitRate("capitalGainsRate", c.CapitalGainsRate); err != nil {
		return err
	}
	if err := validateUnitRate("effectiveIncomeTaxRate", c.EffectiveIncomeTaxRate); err != nil {
		return err
	}
	if c.ReturnModel.Kind != ReturnModelBootstrap && c.ReturnModel.Kind != ReturnModelRegimeSwitching {
		return ConfigError("returnModel.kind", "must be %q or %q, got %q",
			ReturnModelBootstrap, ReturnModelRegimeSwitching, c.ReturnModel.Kind)
	}
	if err := c.validatePortfolio(); err != nil {
		return err
	}
	if err := c.validateCorrelationMatrix(); err != nil {
		return err
	}
	if c.ReturnModel.Kind == ReturnModelBootstrap {
		for _, aw := range c.Portfolio {
			hist, ok := c.ReturnModel.History[aw.AssetClass]
			if !ok || len(hist) < 5 {
				return ConfigError("returnModel.history",
					"asset class %q needs >= 5 years of historical returns, got %d", aw.AssetClass, len(hist))
			}
		}
	}
	if c.ReturnModel.Kind == ReturnModelRegimeSwitching {
		if err := c.validateRegimeSwitching(); err != nil {
			return err
		}
	}
	return c.SBLOC.Validate()
}

func (c *SimulationConfig) validatePortfolio() error {
	if len(c.Portfolio) == 0 {
		return ConfigError("portfolio", "must contain at least one asset class")
	}
	sum := 0.0
	for _, aw := range c.Portfolio {
		if aw.Weight < 0 {
			return ConfigError("portfolio.weight", "asset class %q has negative weight %v", aw.AssetClass, aw.Weight)
		}
		sum += aw.Weight
	}
	if math.Abs(sum-1) > weightSumTolerance {
		return ConfigError("portfolio.weight", "weights must sum to 1 (+/- %v), got %v", weightSumTolerance, sum)
	}
	return nil
}

func (c *SimulationConfig) validateCorrelationMatrix() error {
	if c.CorrelationMatrix == nil {
		return nil
	}
	n := len(c.CorrelationMatrix)
	for i, row := range c.CorrelationMatrix {
		if len(row) != n {
			return ConfigError("correlationMatrix", "must be square, row %d has %d entries, want %d", i, len(row), n)
		}
		if math.Abs(row[i]-1) > 1e-9 {
			return ConfigError("correlationMatrix", "diagonal entry [%d][%d] must be 1, got %v", i, i, row[i])
		}
		for j := 0; j < n; j++ {
			if math.Abs(row[j]-c.CorrelationMatrix[j][i]) > 1e-9 {
				return ConfigError("correlationMatrix", "not symmetric at [%d][%d]", i, j)
			}
		}
	}
	return nil
}

func (c *SimulationConfig) validateRegimeSwitching() error {
	rm := c.ReturnModel
	if len(rm.Regimes) == 0 {
		return ConfigError("returnModel.regimes", "regime-switching requires at least one regime")
	}
	n := len(rm.Regimes)
	if len(rm.TransitionMatrix) != n {
		return ConfigError("returnModel.transitionMatrix", "must have %d rows, one per regime, got %d", n, len(rm.TransitionMatrix))
	}
	for i, row := range rm.TransitionMatrix {
		if len(row) != n {
			return ConfigError("returnModel.transitionMatrix", "row %d must have %d entries, got %d", i, n, len(row))
		}
		sum := 0.0
		for _, p := range row {
			if p < 0 || p > 1 {
				return ConfigError("returnModel.transitionMatrix", "row %d has probability %v outside [0,1]", i, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > weightSumTolerance {
			return ConfigError("returnModel.transitionMatrix", "row %d must sum to 1, got %v", i, sum)
		}
	}
	found := false
	for _, r := range rm.Regimes {
		if r == rm.InitialRegime {
			found = true
			break
		}
	}
	if !found {
		return ConfigError("returnModel.initialRegime", "initial regime %q not in regimes list", rm.InitialRegime)
	}
	for _, r := range rm.Regimes {
		params, ok := rm.RegimeParams[r]
		if !ok {
			return ConfigError("returnModel.regimeParams", "missing parameters for regime %q", r)
		}
		for _, aw := range c.Portfolio {
			if _, ok := params.Mean[aw.AssetClass]; !ok {
				return ConfigError("returnModel.regimeParams", "regime %q missing mean for asset class %q", r, aw.AssetClass)
			}
			if sd, ok := params.StdDev[aw.AssetClass]; !ok || sd < 0 {
				return ConfigError("returnModel.regimeParams", "regime %q missing/invalid stddev for asset class %q", r, aw.AssetClass)
			}
		}
	}
	return nil
}

func validateUnitRate(field string, v float64) error {
	if v < 0 || v >= 1 {
		return ConfigError(field, "must be in [0, 1), got %v", v)
	}
	return nil
}

// Validate checks SBLOCConfig's invariants.
func (s *SBLOCConfig) Validate() error {
	if s.AnnualInterestRate < 0 || s.AnnualInterestRate >= 1 {
		return ConfigError("sbloc.annualInterestRate", "must be in [0, 1), got %v", s.AnnualInterestRate)
	}
	if s.MaxLTV <= 0 || s.MaxLTV > 1 {
		return ConfigError("sbloc.maxLTV", "must be in (0, 1], got %v", s.MaxLTV)
	}
	if s.MaintenanceMargin <= 0 || s.MaintenanceMargin >= s.MaxLTV {
		return ConfigError("sbloc.maintenanceMargin", "must be in (0, maxLTV=%v), got %v", s.MaxLTV, s.MaintenanceMargin)
	}
	if s.LiquidationHaircut < 0 || s.LiquidationHaircut >= 1 {
		return ConfigError("sbloc.liquidationHaircut", "must be in [0, 1), got %v", s.LiquidationHaircut)
	}
	if s.LiquidationTargetMultiplier <= 0 || s.LiquidationTargetMultiplier > 1 {
		// An invalid multiplier warrants a warning and a default, not a
		// hard failure, but we have no logger at this layer, so the caller
		// (config loader) is responsible for applying the 0.8 default
		// before Validate ever sees a zero value here.
		return ConfigError("sbloc.liquidationTargetMultiplier", "must be in (0, 1], got %v", s.LiquidationTargetMultiplier)
	}
	if s.CompoundingFrequency != CompoundingAnnual && s.CompoundingFrequency != CompoundingMonthly {
		return ConfigError("sbloc.compoundingFrequency", "must be %q or %q, got %q", CompoundingAnnual, CompoundingMonthly, s.CompoundingFrequency)
	}
	if s.StartYear < 0 {
		return ConfigError("sbloc.startYear", "must be >= 0, got %d", s.StartYear)
	}
	return nil
}

// DefaultLiquidationTargetMultiplier is applied by config loaders when the
// input value is zero or unset: warn and default to 0.8.
const DefaultLiquidationTargetMultiplier = 0.8
