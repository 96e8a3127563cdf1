package montecarlo

import "sync/atomic"

// counter is a tiny atomic accumulator shared by worker goroutines for
// progress and diagnostic tallies, avoiding a mutex on the per-iteration
// hot path.
type counter struct {
	v atomic.Int64
}

func newCounter() *counter { return &counter{} }

func (c *counter) add(delta int) int {
	return int(c.v.Add(int64(delta)))
}

func (c *counter) load() int {
	return int(c.v.Load())
}
