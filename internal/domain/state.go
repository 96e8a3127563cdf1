package domain

import "math"

// SBLOCState is the mutable per-iteration state advanced one year (or month)
// at a time by the SBLOC engine. A zero SBLOCState is not valid; use
// NewSBLOCState.
type SBLOCState struct {
	LoanBalance    float64
	PortfolioValue float64
	CurrentLTV     float64
	InWarningZone  bool
	YearsSinceStart int
}

// NewSBLOCState builds the initial state for one iteration and computes its
// derived fields (I1, I2) from the raw balances.
func NewSBLOCState(portfolioValue, loanBalance float64, cfg SBLOCConfig) SBLOCState {
	s := SBLOCState{PortfolioValue: portfolioValue, LoanBalance: loanBalance}
	s.CurrentLTV = computeLTV(portfolioValue, loanBalance)
	s.InWarningZone = computeWarningZone(s.CurrentLTV, cfg.MaintenanceMargin, cfg.MaxLTV)
	return s
}

// computeLTV implements Invariant I1.
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

// computeWarningZone implements Invariant I2.
func computeWarningZone(ltv, maintenanceMargin, maxLTV float64) bool {
	return ltv >= maintenanceMargin && ltv < maxLTV
}

// CheckInvariants validates the LTV, warning-zone, and NaN/non-negativity
// invariants against cfg, returning a descriptive error on the first
// violation found. The Monte Carlo driver calls it at iteration start and
// after every year in every build; debug.go's VerboseDebug only decides
// whether a violation aborts the run or is counted.
func (s SBLOCState) CheckInvariants(cfg SBLOCConfig) error {
	if math.IsNaN(s.LoanBalance) || math.IsNaN(s.PortfolioValue) || math.IsNaN(s.CurrentLTV) {
		return invariantViolation(s, "NaN field in SBLOCState")
	}
	if s.LoanBalance < 0 {
		return invariantViolation(s, "loanBalance %v < 0", s.LoanBalance)
	}
	if s.PortfolioValue < 0 {
		return invariantViolation(s, "portfolioValue %v < 0", s.PortfolioValue)
	}
	if s.YearsSinceStart < 0 {
		return invariantViolation(s, "yearsSinceStart %d < 0", s.YearsSinceStart)
	}
	wantLTV := computeLTV(s.PortfolioValue, s.LoanBalance)
	if math.IsInf(s.CurrentLTV, 1) {
		if !(s.PortfolioValue == 0 && s.LoanBalance > 0) {
			return invariantViolation(s, "currentLTV is +Inf but portfolioValue=%v loanBalance=%v does not justify it", s.PortfolioValue, s.LoanBalance)
		}
	} else if math.IsInf(s.CurrentLTV, -1) || s.CurrentLTV < 0 {
		return invariantViolation(s, "currentLTV %v is negative or -Inf", s.CurrentLTV)
	} else if math.Abs(s.CurrentLTV-wantLTV) > 1e-9 {
		return invariantViolation(s, "currentLTV %v does not match loanBalance/portfolioValue = %v", s.CurrentLTV, wantLTV)
	}
	wantWarning := computeWarningZone(s.CurrentLTV, cfg.MaintenanceMargin, cfg.MaxLTV)
	if s.InWarningZone != wantWarning {
		return invariantViolation(s, "inWarningZone=%v but maintenanceMargin<=LTV<maxLTV evaluates to %v", s.InWarningZone, wantWarning)
	}
	return nil
}

func invariantViolation(s SBLOCState, format string, args ...any) error {
	return InvariantError(0, s.YearsSinceStart, PartialState{
		LoanBalance:    s.LoanBalance,
		PortfolioValue: s.PortfolioValue,
		CurrentLTV:     s.CurrentLTV,
	}, format, args...)
}

// MarginCallEvent records a year in which LTV reached maxLTV.
type MarginCallEvent struct {
	Year int `json:"year"`
}

// LiquidationEvent records a forced sale.
type LiquidationEvent struct {
	Year             int     `json:"year"`
	AssetsLiquidated float64 `json:"assetsLiquidated"`
	Haircut          float64 `json:"haircut"`
	LoanRepaid       float64 `json:"loanRepaid"`
	NewLoan          float64 `json:"newLoan"`
	NewPortfolio     float64 `json:"newPortfolio"`
}

// YearSnapshot is one point on a trajectory.
type YearSnapshot struct {
	PortfolioValue float64 `json:"portfolioValue"`
	LoanBalance    float64 `json:"loanBalance"`
	CurrentLTV     float64 `json:"currentLtv"`
}

// Trajectory is the full per-iteration record of a simulation run.
type Trajectory struct {
	Snapshots    []YearSnapshot     `json:"snapshots"`
	MarginCalls  []MarginCallEvent  `json:"marginCalls"`
	Liquidations []LiquidationEvent `json:"liquidations"`
	Failed       bool               `json:"failed"`
	FailedYear   int                `json:"failedYear,omitempty"`

	// CumulativeInterest and CumulativeWithdrawals track running totals per
	// year, used by the Monte Carlo driver to build sblocTrajectory bands.
	CumulativeInterest    []float64 `json:"-"`
	CumulativeWithdrawals []float64 `json:"-"`
}

// TerminalNetWorth returns max(0, portfolio - loan) at the last snapshot.
func (t *Trajectory) TerminalNetWorth() float64 {
	if len(t.Snapshots) == 0 {
		return 0
	}
	last := t.Snapshots[len(t.Snapshots)-1]
	return math.Max(0, last.PortfolioValue-last.LoanBalance)
}

// HadLiquidationInYear reports whether any liquidation occurred in year y.
func (t *Trajectory) HadLiquidationInYear(y int) bool {
	for _, l := range t.Liquidations {
		if l.Year == y {
			return true
		}
	}
	return false
}
