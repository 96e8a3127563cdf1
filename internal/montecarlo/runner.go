package montecarlo

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// TaskRunner partitions n independent units of work into contiguous,
// deterministic chunks and executes chunk(start, end) for each. The split
// is fixed given (n, workers) regardless of runtime scheduling, so that
// which iterations land in which chunk never affects outcomes (only the
// iteration index seeds its substream; see internal/rng).
type TaskRunner interface {
	Run(ctx context.Context, n int, chunk func(ctx context.Context, start, end int) error) error
}

// sequentialRunner executes everything on the calling goroutine. Used when
// workers <= 1 or the caller wants single-threaded, easier-to-debug runs.
type sequentialRunner struct{}

func (sequentialRunner) Run(ctx context.Context, n int, chunk func(ctx context.Context, start, end int) error) error {
	return chunk(ctx, 0, n)
}

// workerPoolRunner fans n iterations out across a bounded pool of
// goroutines via errgroup, each processing one contiguous chunk.
type workerPoolRunner struct {
	workers int
}

func (w workerPoolRunner) Run(ctx context.Context, n int, chunk func(ctx context.Context, start, end int) error) error {
	if n == 0 {
		return nil
	}
	workers := w.workers
	if workers > n {
		workers = n
	}
	chunkSize := int(math.Ceil(float64(n) / float64(workers)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error {
			return chunk(gctx, start, end)
		})
	}
	return g.Wait()
}

// NewTaskRunner selects a sequential or worker-pool runner. workers <= 1
// always runs sequentially, preserving the requirement that single-threaded
// and parallel execution produce bit-identical results.
func NewTaskRunner(workers int) TaskRunner {
	if workers <= 1 {
		return sequentialRunner{}
	}
	return workerPoolRunner{workers: workers}
}
