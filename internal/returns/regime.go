package returns

import (
	"github.com/onedigerati/bbd-sim/internal/domain"
)

// regimeSwitchingModel drives a discrete Markov chain over regimes (e.g.
// bull/bear/crash). Within a regime, per-asset returns are drawn from
// regime-specific normal distributions sharing the configured correlation
// structure, via a Cholesky factorization of the correlation matrix applied
// to independent standard normals.
type regimeSwitchingModel struct {
	cfg           *domain.SimulationConfig
	order         []string
	weights       []float64
	regimes       []string
	regimeIndex   map[string]int
	transition    [][]float64
	initialRegime int
	means         [][]float64 // means[regimeIdx][assetIdx]
	stddevs       [][]float64
	choleskyL     [][]float64
	horizon       int
	masterSeed    int64
}

func newRegimeSwitching(cfg *domain.SimulationConfig, masterSeed int64) (Model, error) {
	order := assetOrder(cfg)
	n := len(order)

	corr := cfg.CorrelationMatrix
	if corr == nil {
		corr = identityCorrelation(n)
	}
	L, err := choleskyLower(corr)
	if err != nil {
		return nil, err
	}

	rm := cfg.ReturnModel
	regimeIndex := make(map[string]int, len(rm.Regimes))
	for i, r := range rm.Regimes {
		regimeIndex[r] = i
	}

	means := make([][]float64, len(rm.Regimes))
	stddevs := make([][]float64, len(rm.Regimes))
	for ri, r := range rm.Regimes {
		params := rm.RegimeParams[r]
		means[ri] = make([]float64, n)
		stddevs[ri] = make([]float64, n)
		for ai, assetClass := range order {
			means[ri][ai] = params.Mean[assetClass]
			stddevs[ri][ai] = params.StdDev[assetClass]
		}
	}

	return &regimeSwitchingModel{
		cfg:           cfg,
		order:         order,
		weights:       weights(cfg),
		regimes:       rm.Regimes,
		regimeIndex:   regimeIndex,
		transition:    rm.TransitionMatrix,
		initialRegime: regimeIndex[rm.InitialRegime],
		means:         means,
		stddevs:       stddevs,
		choleskyL:     L,
		horizon:       cfg.TimeHorizon,
		masterSeed:    masterSeed,
	}, nil
}

func (m *regimeSwitchingModel) SamplePath(iteration int) []float64 {
	stream := substreamSeed(m.masterSeed)(iteration)
	path := make([]float64, m.horizon)
	regime := m.initialRegime

	for y := 0; y < m.horizon; y++ {
		if y > 0 {
			regime = m.nextRegime(regime, stream.Float64())
		}

		n := len(m.order)
		z := make([]float64, n)
		for i := 0; i < n; i++ {
			z[i] = stream.NormFloat64()
		}
		shocks, _ := applyCholesky(m.choleskyL, z)

		portfolioReturn := 0.0
		for i := range m.order {
			assetReturn := m.means[regime][i] + m.stddevs[regime][i]*shocks[i]
			portfolioReturn += m.weights[i] * assetReturn
		}
		path[y] = portfolioReturn
	}
	return path
}

// nextRegime walks the cumulative distribution of the transition row for the
// current regime and returns the first index whose cumulative probability
// exceeds draw.
func (m *regimeSwitchingModel) nextRegime(current int, draw float64) int {
	cumulative := 0.0
	row := m.transition[current]
	for i, p := range row {
		cumulative += p
		if draw < cumulative {
			return i
		}
	}
	return len(row) - 1
}
