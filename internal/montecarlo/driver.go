// Package montecarlo orchestrates the per-iteration SBLOC trajectories into
// aggregate percentile bands and summary statistics. Iterations are
// embarrassingly parallel: each owns a disjoint rng substream and writes
// only to its own column in pre-sized output buffers, so running with one
// worker or many produces bit-identical results.
package montecarlo

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/onedigerati/bbd-sim/internal/domain"
	"github.com/onedigerati/bbd-sim/internal/returns"
	"github.com/onedigerati/bbd-sim/internal/sbloc"
)

// RunOptions configures one Monte Carlo run beyond what SimulationConfig
// already carries.
type RunOptions struct {
	// Workers caps concurrency; <= 1 runs single-threaded.
	Workers int
	// OnProgress, if set, is invoked as iterations complete. It may be
	// called from multiple goroutines and must not block.
	OnProgress func(domain.ProgressEvent)
}

// Run executes cfg.Iterations independent trajectories and reduces them to
// a domain.SimulationOutput. cfg must already have passed Validate.
func Run(ctx context.Context, cfg *domain.SimulationConfig, opts RunOptions) (*domain.SimulationOutput, error) {
	masterSeed := deriveSeed(cfg.Seed)

	model, err := returns.New(cfg, masterSeed)
	if err != nil {
		return nil, err
	}

	n := cfg.Iterations
	horizon := cfg.TimeHorizon
	// yearlyPercentiles[0] is t=0 (the initial state); yearlyPercentiles[y]
	// is t=y. Columns therefore span timeHorizon+1 points, not timeHorizon.
	columns := newYearColumns(horizon+1, n)

	terminalValues := make([]float64, n)
	trajectories := make([]domain.Trajectory, n)

	invariantViolations := newCounter()
	completed := newCounter()
	reportEvery := progressInterval(n, opts.Workers, horizon)

	runner := NewTaskRunner(opts.Workers)
	runErr := runner.Run(ctx, n, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return domain.Cancelled(completed.load(), n)
			}

			traj, terminal, violated, err := runIteration(cfg, model, i)
			if err != nil {
				return err
			}
			trajectories[i] = traj
			terminalValues[i] = terminal
			if violated {
				invariantViolations.add(1)
			}
			recordColumns(columns, i, &traj)

			done := completed.add(1)
			if opts.OnProgress != nil && done%reportEvery == 0 {
				opts.OnProgress(domain.ProgressEvent{Completed: done, Total: n})
			}
		}
		return nil
	})
	if runErr != nil {
		return nil, runErr
	}
	if opts.OnProgress != nil && completed.load() != 0 {
		opts.OnProgress(domain.ProgressEvent{Completed: n, Total: n})
	}

	liquidationYears := make([][]int, n)
	for i, traj := range trajectories {
		years := make([]int, 0, len(traj.Liquidations))
		for _, l := range traj.Liquidations {
			years = append(years, l.Year)
		}
		liquidationYears[i] = years
	}

	out := &domain.SimulationOutput{
		RunID:             uuid.NewString(),
		TerminalValues:    terminalValues,
		YearlyPercentiles: columns.yearlyPercentiles(),
		Statistics:        computeStatistics(terminalValues, cfg.InitialValue, invariantViolations.load()),
		SBLOCTrajectory:   columns.sblocTrajectory(),
		MarginCallStats:   marginCallStats(liquidationYears, horizon, n),
	}
	return out, nil
}

// runIteration advances one full trajectory and reports whether any
// CheckInvariants violation was observed. The check itself always runs --
// production and debug builds alike -- per §4.7's "state is validated at
// simulation start" and the per-year diagnostic counter; domain.VerboseDebug
// only decides what happens on a violation: a production build counts it
// and carries on (the returned bool), a debug build raises the violation as
// the iteration's error instead.
func runIteration(cfg *domain.SimulationConfig, model returns.Model, iteration int) (domain.Trajectory, float64, bool, error) {
	state := domain.NewSBLOCState(cfg.InitialValue, cfg.InitialLOCBalance, cfg.SBLOC)
	violated := false
	if err := checkState(state, cfg.SBLOC, iteration, state.YearsSinceStart, &violated); err != nil {
		return domain.Trajectory{}, 0, true, err
	}

	traj := domain.Trajectory{
		Snapshots:             make([]domain.YearSnapshot, cfg.TimeHorizon+1),
		CumulativeInterest:    make([]float64, cfg.TimeHorizon+1),
		CumulativeWithdrawals: make([]float64, cfg.TimeHorizon+1),
	}
	traj.Snapshots[0] = domain.YearSnapshot{
		PortfolioValue: state.PortfolioValue,
		LoanBalance:    state.LoanBalance,
		CurrentLTV:     state.CurrentLTV,
	}

	path := model.SamplePath(iteration)
	cumInterest, cumWithdrawals := 0.0, 0.0

	for y := 0; y < cfg.TimeHorizon; y++ {
		currentYear := y + 1

		// Once a trajectory has failed, the portfolio stays wiped out and
		// the loan balance no longer moves: no further withdrawal, interest,
		// or return is applied in any later year.
		if traj.Failed {
			traj.Snapshots[currentYear] = domain.YearSnapshot{
				PortfolioValue: 0,
				LoanBalance:    state.LoanBalance,
				CurrentLTV:     frozenLTV(state.LoanBalance),
			}
			traj.CumulativeInterest[currentYear] = cumInterest
			traj.CumulativeWithdrawals[currentYear] = cumWithdrawals
			continue
		}

		r := path[y]

		withdrawal := 0.0
		if currentYear >= cfg.SBLOC.StartYear {
			withdrawal = cfg.AnnualWithdrawal * math.Pow(1+cfg.AnnualWithdrawalRaise, float64(currentYear-cfg.SBLOC.StartYear))
		}

		var result sbloc.YearResult
		if cfg.WithdrawMonthly {
			state, result = stepYearMonthly(state, cfg, r, currentYear, withdrawal)
		} else {
			state, result = sbloc.StepYear(state, cfg.SBLOC, r, currentYear, withdrawal, cfg.DividendYield, cfg.DividendTaxRate)
		}

		cumInterest += result.InterestCharged
		cumWithdrawals += result.WithdrawalMade

		if err := checkState(state, cfg.SBLOC, iteration, currentYear, &violated); err != nil {
			return traj, 0, true, err
		}

		traj.Snapshots[currentYear] = domain.YearSnapshot{
			PortfolioValue: state.PortfolioValue,
			LoanBalance:    state.LoanBalance,
			CurrentLTV:     state.CurrentLTV,
		}
		traj.CumulativeInterest[currentYear] = cumInterest
		traj.CumulativeWithdrawals[currentYear] = cumWithdrawals

		if result.MarginCallTriggered {
			traj.MarginCalls = append(traj.MarginCalls, domain.MarginCallEvent{Year: currentYear})
		}
		if result.Liquidation != nil {
			traj.Liquidations = append(traj.Liquidations, *result.Liquidation)
		}
		if result.PortfolioFailed && !traj.Failed {
			traj.Failed = true
			traj.FailedYear = currentYear
		}
	}

	return traj, traj.TerminalNetWorth(), violated, nil
}

// checkState runs CheckInvariants unconditionally -- in every build, not
// just debug -- and sets *violated on a hit. A production build (the
// !debug tag, domain.VerboseDebug == false) only counts the violation so
// the iteration carries on to completion and the run's
// statistics.invariantViolations diagnostic reflects it. A debug build
// raises it immediately as the iteration's error, tagged with which
// iteration and year it happened in, per §7 tier 3's debug-build clause.
func checkState(state domain.SBLOCState, cfg domain.SBLOCConfig, iteration, year int, violated *bool) error {
	err := state.CheckInvariants(cfg)
	if err == nil {
		return nil
	}
	*violated = true
	if !domain.VerboseDebug {
		return nil
	}
	if se, ok := err.(*domain.SimError); ok {
		se.Iteration = iteration
		se.Year = year
		return se
	}
	return err
}

// frozenLTV reports the LTV of a failed trajectory's frozen state, where
// the portfolio has been wiped to zero: +Inf while the loan still carries a
// balance, 0 once it doesn't.
func frozenLTV(loanBalance float64) float64 {
	if loanBalance > 0 {
		return math.Inf(1)
	}
	return 0
}

// stepYearMonthly splits the year's return and withdrawal into twelve equal
// geometric slices, aggregating the YearResult back into a single per-year
// summary (first margin call and liquidation win). Once a month reports the
// trajectory failed, the remaining months of the year are not stepped
// through: the post-liquidation state stops accruing further interest and
// withdrawals for the rest of the year.
func stepYearMonthly(state domain.SBLOCState, cfg *domain.SimulationConfig, yearReturn float64, currentYear int, annualWithdrawal float64) (domain.SBLOCState, sbloc.YearResult) {
	monthlyReturn := math.Pow(1+yearReturn, 1.0/12) - 1
	monthlyWithdrawal := annualWithdrawal / 12

	var yearResult sbloc.YearResult
	for month := 1; month <= 12; month++ {
		var monthResult sbloc.YearResult
		state, monthResult = sbloc.StepMonth(state, cfg.SBLOC, monthlyReturn, currentYear, monthlyWithdrawal, cfg.DividendYield, cfg.DividendTaxRate, month == 12)

		yearResult.InterestCharged += monthResult.InterestCharged
		yearResult.WithdrawalMade += monthResult.WithdrawalMade
		yearResult.DividendTaxBorrowed += monthResult.DividendTaxBorrowed
		if monthResult.MarginCallTriggered && !yearResult.MarginCallTriggered {
			yearResult.MarginCallTriggered = true
		}
		if monthResult.Liquidation != nil && yearResult.Liquidation == nil {
			yearResult.Liquidation = monthResult.Liquidation
		}
		if monthResult.PortfolioFailed {
			yearResult.PortfolioFailed = true
			if month != 12 {
				state.YearsSinceStart = currentYear
			}
			break
		}
	}
	return state, yearResult
}

func recordColumns(columns *yearColumns, iteration int, traj *domain.Trajectory) {
	for y, snap := range traj.Snapshots {
		columns.record(iteration, y, snap, traj.CumulativeInterest[y], traj.CumulativeWithdrawals[y])
	}
}

// progressInterval bounds the number of progress callbacks so that a single
// worker reports no more than timeHorizon times across its share of the run.
func progressInterval(iterations, workers, timeHorizon int) int {
	if workers < 1 {
		workers = 1
	}
	perWorker := int(math.Ceil(float64(iterations) / float64(workers)))
	interval := int(math.Ceil(float64(perWorker) / float64(maxInt(timeHorizon, 1))))
	return maxInt(interval, 1)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// deriveSeed resolves the master seed: the configured seed if present,
// otherwise a fresh value from defaultSeedSource (see seed.go), which reads
// crypto/rand unless SetSeedSource has replaced it.
func deriveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return defaultSeedSource()
}
