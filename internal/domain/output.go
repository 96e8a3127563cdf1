package domain

// PercentileBand is a cross-sectional P10/P25/P50/P75/P90 summary.
type PercentileBand struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// YearlyPercentiles bundles the three cross-sectional bands tracked per
// simulated year. Index 0 is t=0 (the initial state), index y is t=y — never
// the other way around, a historically audited off-by-one.
type YearlyPercentiles struct {
	PortfolioValue PercentileBand `json:"portfolioValue"`
	LoanBalance    PercentileBand `json:"loanBalance"`
	LTV            PercentileBand `json:"ltv"`
}

// Statistics summarizes the cross-section of terminal net worth values.
type Statistics struct {
	Mean                float64 `json:"mean"`
	Median              float64 `json:"median"`
	StdDev              float64 `json:"stddev"`
	Min                 float64 `json:"min"`
	Max                 float64 `json:"max"`
	SuccessRate         float64 `json:"successRate"`
	InvariantViolations int     `json:"invariantViolations"`
}

// SBLOCTrajectory holds percentile bands, over years, of loan balance,
// cumulative interest, and cumulative withdrawals.
type SBLOCTrajectory struct {
	LoanBalance           []PercentileBand `json:"loanBalance"`
	CumulativeInterest    []PercentileBand `json:"cumulativeInterest"`
	CumulativeWithdrawals []PercentileBand `json:"cumulativeWithdrawals"`
}

// MarginCallYearStat is one year's entry in marginCallStats.
type MarginCallYearStat struct {
	Year                  int     `json:"year"`
	Probability           float64 `json:"probability"`
	CumulativeProbability float64 `json:"cumulativeProbability"`
}

// EstateAnalysis is computed when tax parameters are present.
type EstateAnalysis struct {
	NetEstate             float64 `json:"netEstate"`
	EmbeddedGains         float64 `json:"embeddedGains"`
	SteppedUpBasisSavings float64 `json:"steppedUpBasisSavings"`
	EstateTaxExemption    float64 `json:"estateTaxExemption"`
}

// SimulationOutput is the immutable result of a completed run. Estate
// analysis lives on MetricsSummary (calculateMetricsSummary's output), not
// here -- it needs cfg's cost-basis and tax-rate fields that runSimulation
// itself never touches.
type SimulationOutput struct {
	RunID             string               `json:"runId"`
	TerminalValues    []float64            `json:"terminalValues"`
	YearlyPercentiles []YearlyPercentiles  `json:"yearlyPercentiles"`
	Statistics        Statistics           `json:"statistics"`
	SBLOCTrajectory   SBLOCTrajectory      `json:"sblocTrajectory"`
	MarginCallStats   []MarginCallYearStat `json:"marginCallStats"`
}

// ProgressEvent is delivered to an optional progress callback during a run.
type ProgressEvent struct {
	Completed int
	Total     int
}
