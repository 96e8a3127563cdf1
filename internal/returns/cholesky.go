package returns

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/onedigerati/bbd-sim/internal/domain"
)

// choleskyLower factorizes a correlation matrix into its lower-triangular
// Cholesky factor L (L*L^T = corr), used to turn independent standard
// normals into correlated ones for the regime-switching model. A non-PSD
// matrix is a configuration error, surfaced at construction -- not
// discovered mid-simulation.
func choleskyLower(corr [][]float64) ([][]float64, error) {
	n := len(corr)
	flat := make([]float64, 0, n*n)
	for _, row := range corr {
		flat = append(flat, row...)
	}
	sym := mat.NewSymDense(n, flat)

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, domain.ConfigError("correlationMatrix", "matrix is not positive semi-definite")
	}

	var L mat.TriDense
	chol.LTo(&L)

	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			out[i][j] = L.At(i, j)
		}
	}
	return out, nil
}

// identityCorrelation builds an n x n identity matrix, used when the config
// omits a correlation matrix (asset classes are treated as independent).
func identityCorrelation(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	return m
}

// applyCholesky transforms independent standard normals z into correlated
// shocks using lower-triangular factor L: shocks = L * z.
func applyCholesky(L [][]float64, z []float64) ([]float64, error) {
	n := len(L)
	if len(z) != n {
		return nil, fmt.Errorf("applyCholesky: z has %d entries, want %d", len(z), n)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j <= i; j++ {
			sum += L[i][j] * z[j]
		}
		out[i] = sum
	}
	return out, nil
}
