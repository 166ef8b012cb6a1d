package risk

import (
	"fmt"
	"math"

	"stockscreener/internal/domain"

	"gonum.org/v1/gonum/mat"
)

const (
	// parityTolerance bounds the allowed deviation of each asset's risk
	// contribution from the equal share, relative to total volatility.
	parityTolerance = 1e-4

	parityMaxIterations = 1000
)

// EqualRiskContribution solves the risk-parity allocation: weights on the
// long-only simplex where every asset contributes equally to portfolio
// volatility. There is no closed form, so this runs cyclical coordinate
// descent - each pass solves the per-asset quadratic that equates that
// asset's risk contribution with the equal share, holding the others
// fixed. If the iteration cap is hit first, the best-found weights are
// returned with Converged=false rather than failing.
func EqualRiskContribution(in OptimizeInput) (*domain.PortfolioWeights, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	n := in.Covariance.Dim()
	sigma, approximate := ensurePositiveDefinite(toSym(in.Covariance))

	budget := 1.0 / float64(n)
	x := equalWeights(n)

	converged := false
	for iter := 0; iter < parityMaxIterations; iter++ {
		for i := 0; i < n; i++ {
			// (Sigma x)_i split into the own-weight term and the rest
			var cross float64
			for j := 0; j < n; j++ {
				if j != i {
					cross += sigma.At(i, j) * x[j]
				}
			}
			variance := portfolioVariance(x, sigma)

			// solve sigma_ii x_i^2 + cross x_i - budget * variance = 0
			// for the non-negative root
			discriminant := cross*cross + 4*sigma.At(i, i)*budget*variance
			x[i] = (-cross + math.Sqrt(discriminant)) / (2 * sigma.At(i, i))
		}
		x = normalizeToSimplex(x)

		if parityConverged(x, sigma) {
			converged = true
			break
		}
	}

	weights := buildWeights(x, in, sigma, approximate)
	weights.Converged = converged
	return weights, nil
}

// parityConverged checks that every asset's risk contribution sits within
// parityTolerance of the equal share, scaled by total volatility.
func parityConverged(w []float64, sigma *mat.SymDense) bool {
	contributions := riskContributions(w, sigma)
	vol := math.Sqrt(math.Max(portfolioVariance(w, sigma), 0))
	if vol == 0 {
		return false
	}

	target := vol / float64(len(w))
	for _, c := range contributions {
		if math.Abs(c-target) > parityTolerance*vol {
			return false
		}
	}
	return true
}

// RiskContributions exposes per-asset contributions for an arbitrary
// weight map over the covariance matrix's assets.
func RiskContributions(weights map[string]float64, cov domain.CovarianceMatrix) (map[string]float64, error) {
	w := make([]float64, cov.Dim())
	for i, symbol := range cov.Symbols {
		v, ok := weights[symbol]
		if !ok {
			return nil, fmt.Errorf("weights missing symbol %s", symbol)
		}
		w[i] = v
	}

	contributions := riskContributions(w, toSym(cov))
	out := make(map[string]float64, len(contributions))
	for i, symbol := range cov.Symbols {
		out[symbol] = contributions[i]
	}
	return out, nil
}
