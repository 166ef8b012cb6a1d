package domain

import (
	"time"

	"github.com/google/uuid"
)

// PortfolioWeights is one solved allocation over a formula's top picks.
// Weights are long-only and sum to 1 within numerical tolerance.
type PortfolioWeights struct {
	Weights        map[string]float64
	ExpectedReturn float64
	Volatility     float64
	SharpeRatio    float64

	// Approximate is set when the covariance matrix required
	// regularization before solving.
	Approximate bool
	// Converged is false when an iterative solve hit its iteration cap;
	// the weights are then the best found approximation.
	Converged bool
}

type RiskMetrics struct {
	Volatility           float64
	SharpeRatio          float64
	DiversificationRatio float64
}

// PortfolioAnalysis is the full risk/optimization output for one formula's
// pick set.
type PortfolioAnalysis struct {
	Symbols        []string
	DroppedSymbols []string
	Observations   int

	EqualWeight RiskMetrics

	MaxSharpe   *PortfolioWeights
	MinVariance *PortfolioWeights
	EqualRisk   *PortfolioWeights
}

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusSkipped   RunStatus = "skipped"
	RunStatusTimedOut  RunStatus = "timed_out"
)

// FormulaRun pairs one formula's screening result with its optional
// portfolio analysis and the status the orchestrator assigned it.
type FormulaRun struct {
	Formula   Formula
	Status    RunStatus
	Result    *FormulaResult
	Portfolio *PortfolioAnalysis
	// Reason is set for skipped runs, e.g. an upstream fetch failure.
	Reason string
}

// ScreeningRunResult is the root aggregate of one screening run. Runs are
// listed in the configured canonical formula order.
type ScreeningRunResult struct {
	RunID        uuid.UUID
	StartedAt    time.Time
	CompletedAt  time.Time
	UniverseSize int
	EligibleSize int
	Runs         []FormulaRun
}
