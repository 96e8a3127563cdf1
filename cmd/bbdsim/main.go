// Command bbdsim runs a Buy-Borrow-Die Monte Carlo simulation from a YAML
// scenario file and prints a strategy-comparison report. This is a concrete
// runSimulation(config) entry point: the out-of-scope browser/dashboard host
// is replaced by a CLI, following the same "load config, run engine, print
// report" shape as the reference retirement-calculator's tools/ programs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/onedigerati/bbd-sim/internal/config"
	"github.com/onedigerati/bbd-sim/internal/domain"
	"github.com/onedigerati/bbd-sim/internal/logging"
	"github.com/onedigerati/bbd-sim/internal/metrics"
	"github.com/onedigerati/bbd-sim/internal/montecarlo"
	"github.com/onedigerati/bbd-sim/internal/report"
	"github.com/onedigerati/bbd-sim/internal/sell"
)

func main() {
	scenarioPath := flag.String("scenario", "", "path to a YAML scenario file (required)")
	format := flag.String("format", "console", "report format: console or json")
	workers := flag.Int("workers", 0, "worker pool size (0 = min(iterations, GOMAXPROCS))")
	quiet := flag.Bool("quiet", false, "suppress progress logging")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bbdsim -scenario scenario.yaml [-format console|json] [-workers N]")
		os.Exit(2)
	}

	logger := logging.Logger(stdLogger{quiet: *quiet})

	loader := &config.Loader{Logger: logger}
	cfg, err := loader.LoadFromFile(*scenarioPath)
	if err != nil {
		log.Fatalf("bbdsim: %v", err)
	}

	w := *workers
	if w == 0 {
		w = runtime.GOMAXPROCS(0)
		if w > cfg.Iterations {
			w = cfg.Iterations
		}
	}

	opts := montecarlo.RunOptions{Workers: w}
	if !*quiet {
		opts.OnProgress = func(ev domain.ProgressEvent) {
			logger.Infof("progress: %d/%d iterations", ev.Completed, ev.Total)
		}
	}

	output, err := montecarlo.Run(context.Background(), cfg, opts)
	if err != nil {
		log.Fatalf("bbdsim: simulation failed: %v", err)
	}

	summary, err := metrics.Summarize(output, cfg)
	if err != nil {
		log.Fatalf("bbdsim: metrics summary failed: %v", err)
	}

	sellResult := sell.Run(cfg, output.YearlyPercentiles)

	terminal := output.YearlyPercentiles[len(output.YearlyPercentiles)-1]
	costBasis := cfg.InitialValue * cfg.CostBasisRatio
	comparison := metrics.CalculateBBDComparison(
		terminal.PortfolioValue.P50, terminal.LoanBalance.P50, costBasis, cfg.CapitalGainsRate)

	run := &report.Run{
		Config:     cfg,
		Output:     output,
		Metrics:    summary,
		Sell:       sellResult,
		Comparison: comparison,
	}

	switch *format {
	case "json":
		err = report.WriteJSON(os.Stdout, run)
	default:
		err = report.WriteConsole(os.Stdout, run)
	}
	if err != nil {
		log.Fatalf("bbdsim: writing report: %v", err)
	}
}

// stdLogger adapts the standard library's log package to logging.Logger for
// the CLI driver, the only place in the engine that wants output on stderr.
type stdLogger struct{ quiet bool }

func (l stdLogger) Debugf(format string, args ...any) {
	if !l.quiet {
		log.Printf("DEBUG "+format, args...)
	}
}
func (l stdLogger) Infof(format string, args ...any) {
	if !l.quiet {
		log.Printf("INFO "+format, args...)
	}
}
func (l stdLogger) Warnf(format string, args ...any)  { log.Printf("WARN "+format, args...) }
func (l stdLogger) Errorf(format string, args ...any) { log.Printf("ERROR "+format, args...) }
