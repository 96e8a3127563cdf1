package returns

import (
	"github.com/onedigerati/bbd-sim/internal/domain"
)

// bootstrapModel samples with replacement from a provided history of
// asset-class annual returns. Each year draws a single historical row index,
// shared across all asset classes, so cross-asset correlation present in
// history is preserved implicitly by row coupling.
type bootstrapModel struct {
	cfg        *domain.SimulationConfig
	order      []string
	weights    []float64
	history    [][]float64 // history[assetIndex][year]
	numYears   int
	horizon    int
	masterSeed int64
}

func newBootstrap(cfg *domain.SimulationConfig, masterSeed int64) (Model, error) {
	order := assetOrder(cfg)
	history := make([][]float64, len(order))
	numYears := -1
	for i, assetClass := range order {
		h, ok := cfg.ReturnModel.History[assetClass]
		if !ok || len(h) < 5 {
			return nil, domain.ConfigError("returnModel.history", "asset class %q needs >= 5 years of history", assetClass)
		}
		history[i] = h
		if numYears == -1 || len(h) < numYears {
			numYears = len(h)
		}
	}
	return &bootstrapModel{
		cfg:        cfg,
		order:      order,
		weights:    weights(cfg),
		history:    history,
		numYears:   numYears,
		horizon:    cfg.TimeHorizon,
		masterSeed: masterSeed,
	}, nil
}

func (m *bootstrapModel) SamplePath(iteration int) []float64 {
	stream := substreamSeed(m.masterSeed)(iteration)
	path := make([]float64, m.horizon)
	for y := 0; y < m.horizon; y++ {
		row := int(stream.Float64() * float64(m.numYears))
		if row >= m.numYears {
			row = m.numYears - 1 // guard against the Float64()==1 edge case
		}
		portfolioReturn := 0.0
		for i := range m.order {
			portfolioReturn += m.weights[i] * m.history[i][row]
		}
		path[y] = portfolioReturn
	}
	return path
}
