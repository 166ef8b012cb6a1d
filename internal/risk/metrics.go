package risk

import (
	"fmt"
	"math"

	"stockscreener/internal/domain"

	"gonum.org/v1/gonum/mat"
)

func toSym(c domain.CovarianceMatrix) *mat.SymDense {
	n := c.Dim()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, c.At(i, j))
		}
	}
	return sym
}

func portfolioVariance(w []float64, sigma *mat.SymDense) float64 {
	n := len(w)
	var variance float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			variance += w[i] * w[j] * sigma.At(i, j)
		}
	}
	return variance
}

func portfolioReturn(w, mu []float64) float64 {
	var ret float64
	for i := range w {
		ret += w[i] * mu[i]
	}
	return ret
}

// riskContributions returns each asset's contribution w_i * (Sigma w)_i / vol
// to total portfolio volatility. Contributions sum to the volatility.
func riskContributions(w []float64, sigma *mat.SymDense) []float64 {
	n := len(w)
	vol := math.Sqrt(portfolioVariance(w, sigma))
	contributions := make([]float64, n)
	if vol == 0 {
		return contributions
	}
	for i := 0; i < n; i++ {
		var marginal float64
		for j := 0; j < n; j++ {
			marginal += sigma.At(i, j) * w[j]
		}
		contributions[i] = w[i] * marginal / vol
	}
	return contributions
}

// Metrics computes volatility, Sharpe ratio, and diversification ratio for
// an existing weight vector. Weights must be aligned with the covariance
// matrix's symbol order and sum to 1 within numerical tolerance.
func Metrics(weights []float64, expectedReturns []float64, cov domain.CovarianceMatrix, riskFreeRate float64) (*domain.RiskMetrics, error) {
	n := cov.Dim()
	if len(weights) != n || len(expectedReturns) != n {
		return nil, fmt.Errorf("got %d weights and %d expected returns for %d assets", len(weights), len(expectedReturns), n)
	}
	if n == 0 {
		return nil, fmt.Errorf("cannot compute metrics for empty portfolio")
	}

	sigma := toSym(cov)
	variance := portfolioVariance(weights, sigma)
	if variance < 0 {
		return nil, fmt.Errorf("covariance matrix produced negative portfolio variance %f", variance)
	}
	vol := math.Sqrt(variance)

	var weightedAvgVol float64
	for i := 0; i < n; i++ {
		weightedAvgVol += weights[i] * math.Sqrt(sigma.At(i, i))
	}

	metrics := &domain.RiskMetrics{Volatility: vol}
	if vol > 0 {
		metrics.SharpeRatio = (portfolioReturn(weights, expectedReturns) - riskFreeRate) / vol
		metrics.DiversificationRatio = weightedAvgVol / vol
	}
	return metrics, nil
}
