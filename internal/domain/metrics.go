package domain

// MetricsSummary bundles the derived risk/return metrics computed from a
// completed SimulationOutput.
type MetricsSummary struct {
	CAGR                 float64           `json:"cagr"`
	AnnualizedVolatility float64           `json:"annualizedVolatility"`
	TWRR                 float64           `json:"twrr"`
	SuccessRate          float64           `json:"successRate"`
	SalaryEquivalent     *SalaryEquivalent `json:"salaryEquivalent,omitempty"`
	EstateAnalysis       *EstateAnalysis   `json:"estateAnalysis,omitempty"`
}
