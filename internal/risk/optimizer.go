package risk

import (
	"fmt"
	"math"

	"stockscreener/internal/domain"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// penaltyWeight enforces the full-investment constraint (sum of weights = 1)
// in the unconstrained solvers; violations of the simplex are also clamped
// away before evaluation and again on the final solution.
const penaltyWeight = 1000.0

// OptimizeInput bundles one formula's pick set for the allocation solvers.
// ExpectedReturns are annualized and aligned with Covariance.Symbols.
type OptimizeInput struct {
	ExpectedReturns []float64
	Covariance      domain.CovarianceMatrix
	RiskFreeRate    float64
}

func (in OptimizeInput) validate() error {
	n := in.Covariance.Dim()
	if n < 2 {
		return fmt.Errorf("need at least 2 assets to optimize, got %d", n)
	}
	if len(in.ExpectedReturns) != n {
		return fmt.Errorf("got %d expected returns for %d assets", len(in.ExpectedReturns), n)
	}
	return nil
}

// ensurePositiveDefinite checks Sigma via Cholesky factorization; a
// non-positive-definite matrix (too few observations, duplicated series)
// gets a small identity multiple added so inversion-based solves stay
// stable. The returned flag marks the result approximate.
func ensurePositiveDefinite(sigma *mat.SymDense) (*mat.SymDense, bool) {
	var chol mat.Cholesky
	if chol.Factorize(sigma) {
		return sigma, false
	}

	n, _ := sigma.Dims()
	var trace float64
	for i := 0; i < n; i++ {
		trace += sigma.At(i, i)
	}
	epsilon := 1e-8 * trace / float64(n)
	if epsilon <= 0 {
		epsilon = 1e-8
	}

	regularized := mat.NewSymDense(n, nil)
	for attempt := 0; attempt < 8; attempt++ {
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := sigma.At(i, j)
				if i == j {
					v += epsilon
				}
				regularized.SetSym(i, j, v)
			}
		}
		if chol.Factorize(regularized) {
			return regularized, true
		}
		epsilon *= 10
	}
	return regularized, true
}

// clampToBounds projects raw optimizer iterates into [0,1] per asset
// (long-only, no leverage).
func clampToBounds(x []float64) []float64 {
	proj := make([]float64, len(x))
	for i := range x {
		proj[i] = math.Max(0, math.Min(1, x[i]))
	}
	return proj
}

// normalizeToSimplex clamps negatives and rescales to sum to 1.
func normalizeToSimplex(x []float64) []float64 {
	w := clampToBounds(x)
	var sum float64
	for _, v := range w {
		sum += v
	}
	if sum <= 0 {
		// degenerate solution - fall back to equal weights
		for i := range w {
			w[i] = 1.0 / float64(len(w))
		}
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

func equalWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}
	return w
}

// minimize runs BFGS first and falls back to Nelder-Mead, accepting any of
// gonum's successful convergence statuses.
func minimize(problem optimize.Problem, initial []float64) ([]float64, error) {
	accepted := map[optimize.Status]bool{
		optimize.Success:             true,
		optimize.GradientThreshold:   true,
		optimize.FunctionConvergence: true,
		optimize.StepConvergence:     true,
	}

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err == nil && accepted[result.Status] {
		return result.X, nil
	}

	result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("optimization failed: %w", err)
	}
	if !accepted[result.Status] {
		return nil, fmt.Errorf("optimization did not converge: status=%v", result.Status)
	}
	return result.X, nil
}

func buildWeights(x []float64, in OptimizeInput, sigma *mat.SymDense, approximate bool) *domain.PortfolioWeights {
	w := normalizeToSimplex(x)
	vol := math.Sqrt(math.Max(portfolioVariance(w, sigma), 0))
	ret := portfolioReturn(w, in.ExpectedReturns)

	weights := make(map[string]float64, len(w))
	for i, symbol := range in.Covariance.Symbols {
		weights[symbol] = w[i]
	}

	out := &domain.PortfolioWeights{
		Weights:        weights,
		ExpectedReturn: ret,
		Volatility:     vol,
		Approximate:    approximate,
		Converged:      true,
	}
	if vol > 0 {
		out.SharpeRatio = (ret - in.RiskFreeRate) / vol
	}
	return out
}

// MaxSharpe solves for long-only weights on the simplex maximizing the
// Sharpe ratio (mu'w - rf) / sqrt(w'Sigma w).
func MaxSharpe(in OptimizeInput) (*domain.PortfolioWeights, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	n := in.Covariance.Dim()
	mu := in.ExpectedReturns
	sigma, approximate := ensurePositiveDefinite(toSym(in.Covariance))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := clampToBounds(x)
			ret := portfolioReturn(w, mu)
			stdDev := math.Sqrt(math.Max(portfolioVariance(w, sigma), 1e-12))

			var sum float64
			for _, v := range w {
				sum += v
			}

			obj := -(ret - in.RiskFreeRate) / stdDev
			obj += penaltyWeight * (sum - 1) * (sum - 1)
			return obj
		},
		Grad: func(grad, x []float64) {
			w := clampToBounds(x)
			ret := portfolioReturn(w, mu)
			variance := math.Max(portfolioVariance(w, sigma), 1e-12)
			stdDev := math.Sqrt(variance)

			excess := ret - in.RiskFreeRate
			for i := 0; i < n; i++ {
				var dVariance float64
				for j := 0; j < n; j++ {
					dVariance += 2 * sigma.At(i, j) * w[j]
				}
				grad[i] = -mu[i]/stdDev + excess*dVariance/(2*stdDev*variance)
			}

			var sum float64
			for _, v := range w {
				sum += v
			}
			for i := 0; i < n; i++ {
				grad[i] += 2 * penaltyWeight * (sum - 1)
			}
		},
	}

	x, err := minimize(problem, equalWeights(n))
	if err != nil {
		return nil, fmt.Errorf("max sharpe: %w", err)
	}
	return buildWeights(x, in, sigma, approximate), nil
}

// MinVariance solves min w'Sigma w on the long-only simplex - the most
// conservative point on the efficient frontier.
func MinVariance(in OptimizeInput) (*domain.PortfolioWeights, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	n := in.Covariance.Dim()
	sigma, approximate := ensurePositiveDefinite(toSym(in.Covariance))

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			w := clampToBounds(x)
			obj := portfolioVariance(w, sigma)

			var sum float64
			for _, v := range w {
				sum += v
			}
			obj += penaltyWeight * (sum - 1) * (sum - 1)
			return obj
		},
		Grad: func(grad, x []float64) {
			w := clampToBounds(x)
			for i := 0; i < n; i++ {
				grad[i] = 0
				for j := 0; j < n; j++ {
					grad[i] += 2 * sigma.At(i, j) * w[j]
				}
			}

			var sum float64
			for _, v := range w {
				sum += v
			}
			for i := 0; i < n; i++ {
				grad[i] += 2 * penaltyWeight * (sum - 1)
			}
		},
	}

	x, err := minimize(problem, equalWeights(n))
	if err != nil {
		return nil, fmt.Errorf("min variance: %w", err)
	}
	return buildWeights(x, in, sigma, approximate), nil
}
