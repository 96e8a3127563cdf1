// Package returns implements the two return-model variants: bootstrap
// resampling from historical data, and a regime-switching Markov model with
// correlated per-asset-class normal shocks. Both are represented as a single
// tagged interface rather than an inheritance hierarchy.
package returns

import (
	"github.com/onedigerati/bbd-sim/internal/domain"
	"github.com/onedigerati/bbd-sim/internal/rng"
)

// Model produces, for one iteration, the full sequence of yearly portfolio
// returns. Implementations precompute the whole path so that determinism
// does not depend on call order.
type Model interface {
	// SamplePath returns timeHorizon portfolio returns for the given
	// iteration, deterministic for a fixed (seed, iteration) pair.
	SamplePath(iteration int) []float64
}

// assetOrder returns the fixed iteration order for asset classes, taken
// directly from cfg.Portfolio. Every stochastic draw that touches more than
// one asset class must use this order -- never range over a map -- so that
// results are reproducible (mirrors the teacher's AssetClassOrder
// convention).
func assetOrder(cfg *domain.SimulationConfig) []string {
	order := make([]string, len(cfg.Portfolio))
	for i, aw := range cfg.Portfolio {
		order[i] = aw.AssetClass
	}
	return order
}

func weights(cfg *domain.SimulationConfig) []float64 {
	w := make([]float64, len(cfg.Portfolio))
	for i, aw := range cfg.Portfolio {
		w[i] = aw.Weight
	}
	return w
}

// New constructs the Model selected by cfg.ReturnModel.Kind. masterSeed
// seeds every iteration's disjoint substream (via rng.Substream); cfg must
// already have passed domain.SimulationConfig.Validate.
func New(cfg *domain.SimulationConfig, masterSeed int64) (Model, error) {
	switch cfg.ReturnModel.Kind {
	case domain.ReturnModelBootstrap:
		return newBootstrap(cfg, masterSeed)
	case domain.ReturnModelRegimeSwitching:
		return newRegimeSwitching(cfg, masterSeed)
	default:
		return nil, domain.ConfigError("returnModel.kind", "unknown kind %q", cfg.ReturnModel.Kind)
	}
}

func substreamSeed(masterSeed int64) func(iteration int) *rng.PCG32 {
	return func(iteration int) *rng.PCG32 {
		return rng.Substream(masterSeed, iteration)
	}
}
