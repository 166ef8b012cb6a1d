package app

import (
	"context"
	"fmt"
	"time"

	"stockscreener/internal/calculator"
	"stockscreener/internal/domain"
	"stockscreener/internal/formula"
	"stockscreener/internal/logger"
	"stockscreener/internal/risk"
	"stockscreener/internal/universe"

	"github.com/google/uuid"
)

// External collaborators. The orchestrator tolerates partially populated
// responses: missing fields exclude records per-formula, a missing symbol
// in sentiment data excludes it from Reddit Momentum only, and short price
// series trigger the estimator's drop policy.
type StockDataProvider interface {
	GetStockRecords(ctx context.Context, symbols []string) ([]domain.StockRecord, error)
}

type SentimentProvider interface {
	GetSentiment(ctx context.Context) ([]domain.SentimentRecord, error)
}

type PriceHistoryProvider interface {
	GetPriceHistory(ctx context.Context, symbols []string, lookbackDays int) (map[string][]domain.AssetPrice, error)
}

type ScreeningHandler struct {
	StockData    StockDataProvider
	Sentiment    SentimentProvider
	PriceHistory PriceHistoryProvider
}

type ScreeningInput struct {
	Symbols        []string
	UniverseFilter universe.FilterConfig

	// EnabledFormulas is the canonical reporting order as well as the
	// set of formulas to run.
	EnabledFormulas []domain.Formula
	TopN            int

	PortfolioAnalysis bool
	RiskFreeRate      float64
	LookbackDays      int

	// Timeout bounds the whole run; formulas still in flight when it
	// expires are reported as timed out, not failed.
	Timeout time.Duration
}

// Run executes every enabled formula concurrently against the same
// filtered universe snapshot and aggregates results in the configured
// formula order, independent of completion order. Scorers are pure
// functions of their input and share no mutable state, so the fan-out
// needs no locking.
func (h ScreeningHandler) Run(ctx context.Context, in ScreeningInput) (*domain.ScreeningRunResult, error) {
	log := logger.FromContext(ctx)

	if len(in.EnabledFormulas) == 0 {
		return nil, fmt.Errorf("no formulas enabled")
	}

	startedAt := time.Now().UTC()

	records, err := h.StockData.GetStockRecords(ctx, in.Symbols)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stock records: %w", err)
	}

	eligible := universe.Filter(records, in.UniverseFilter)
	log.Infow("filtered universe",
		"raw", len(records),
		"eligible", len(eligible),
	)

	// the run deadline covers everything downstream of the universe
	// snapshot, the sentiment fetch included
	if in.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.Timeout)
		defer cancel()
	}

	sentiment, sentimentErr := h.fetchSentimentIfNeeded(ctx, in.EnabledFormulas)

	resultCh := make(chan domain.FormulaRun, len(in.EnabledFormulas))
	launched := 0
	runs := map[domain.Formula]domain.FormulaRun{}
	for _, f := range in.EnabledFormulas {
		if f == domain.FormulaRedditMomentum && sentimentErr != nil {
			runs[f] = domain.FormulaRun{
				Formula: f,
				Status:  domain.RunStatusSkipped,
				Reason:  fmt.Sprintf("sentiment fetch failed: %v", sentimentErr),
			}
			continue
		}

		scorer, err := formula.ScorerFor(f, sentiment)
		if err != nil {
			runs[f] = domain.FormulaRun{
				Formula: f,
				Status:  domain.RunStatusSkipped,
				Reason:  err.Error(),
			}
			continue
		}

		launched++
		go func(f domain.Formula, scorer formula.Scorer) {
			resultCh <- h.runFormula(ctx, f, scorer, eligible, in)
		}(f, scorer)
	}

	if collectRuns(ctx, resultCh, launched, runs) {
		log.Warnw("screening run hit timeout before all formulas completed")
	}

	result := &domain.ScreeningRunResult{
		RunID:        uuid.New(),
		StartedAt:    startedAt,
		CompletedAt:  time.Now().UTC(),
		UniverseSize: len(records),
		EligibleSize: len(eligible),
	}
	for _, f := range in.EnabledFormulas {
		run, ok := runs[f]
		if !ok {
			// launched but abandoned at the deadline
			run = domain.FormulaRun{
				Formula: f,
				Status:  domain.RunStatusTimedOut,
				Reason:  "formula did not complete before run timeout",
			}
		}
		result.Runs = append(result.Runs, run)
	}

	return result, nil
}

// collectRuns gathers formula results until every launched formula has
// reported or the deadline fires, whichever comes first. Results already
// buffered when the deadline fires are still collected - a formula only
// counts as timed out when it delivered nothing.
func collectRuns(ctx context.Context, resultCh <-chan domain.FormulaRun, launched int, runs map[domain.Formula]domain.FormulaRun) bool {
	timedOut := false
collect:
	for i := 0; i < launched; i++ {
		select {
		case run := <-resultCh:
			runs[run.Formula] = run
		case <-ctx.Done():
			timedOut = true
			break collect
		}
	}
	if !timedOut {
		return false
	}

drain:
	for {
		select {
		case run := <-resultCh:
			runs[run.Formula] = run
		default:
			break drain
		}
	}
	return true
}

func (h ScreeningHandler) fetchSentimentIfNeeded(ctx context.Context, enabled []domain.Formula) ([]domain.SentimentRecord, error) {
	needed := false
	for _, f := range enabled {
		if f == domain.FormulaRedditMomentum {
			needed = true
		}
	}
	if !needed {
		return nil, nil
	}
	if h.Sentiment == nil {
		return nil, fmt.Errorf("no sentiment provider configured")
	}
	return h.Sentiment.GetSentiment(ctx)
}

func (h ScreeningHandler) runFormula(
	ctx context.Context,
	f domain.Formula,
	scorer formula.Scorer,
	eligible []domain.StockRecord,
	in ScreeningInput,
) domain.FormulaRun {
	log := logger.FromContext(ctx)

	scored := scorer.Score(eligible)
	formulaResult := &domain.FormulaResult{
		Formula:       f,
		Stocks:        formula.TopN(scored, in.TopN),
		EligibleCount: len(scored),
		GeneratedAt:   time.Now().UTC(),
	}

	run := domain.FormulaRun{
		Formula: f,
		Status:  domain.RunStatusCompleted,
		Result:  formulaResult,
	}

	if in.PortfolioAnalysis {
		analysis, err := h.analyzePortfolio(ctx, formulaResult, in)
		if err != nil {
			// portfolio failure never invalidates the screening result
			log.Warnw("portfolio analysis failed",
				"formula", f,
				"error", err,
			)
		} else {
			run.Portfolio = analysis
		}
	}

	return run
}

func (h ScreeningHandler) analyzePortfolio(ctx context.Context, result *domain.FormulaResult, in ScreeningInput) (*domain.PortfolioAnalysis, error) {
	symbols := result.Symbols()
	if len(symbols) < 2 {
		return nil, fmt.Errorf("need at least 2 picks for portfolio analysis, got %d", len(symbols))
	}
	if h.PriceHistory == nil {
		return nil, fmt.Errorf("no price history provider configured")
	}

	prices, err := h.PriceHistory.GetPriceHistory(ctx, symbols, in.LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}

	estimate, err := calculator.EstimateReturns(symbols, prices)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate returns: %w", err)
	}

	optimizeInput := risk.OptimizeInput{
		ExpectedReturns: estimate.ExpectedReturns,
		Covariance:      estimate.Covariance,
		RiskFreeRate:    in.RiskFreeRate,
	}

	analysis := &domain.PortfolioAnalysis{
		Symbols:        estimate.Symbols,
		DroppedSymbols: estimate.DroppedSymbols,
		Observations:   estimate.Observations,
	}

	equal := make([]float64, len(estimate.Symbols))
	for i := range equal {
		equal[i] = 1.0 / float64(len(equal))
	}
	metrics, err := risk.Metrics(equal, estimate.ExpectedReturns, estimate.Covariance, in.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute risk metrics: %w", err)
	}
	analysis.EqualWeight = *metrics

	log := logger.FromContext(ctx)
	if analysis.MaxSharpe, err = risk.MaxSharpe(optimizeInput); err != nil {
		log.Warnw("max sharpe solve failed", "formula", result.Formula, "error", err)
	}
	if analysis.MinVariance, err = risk.MinVariance(optimizeInput); err != nil {
		log.Warnw("min variance solve failed", "formula", result.Formula, "error", err)
	}
	if analysis.EqualRisk, err = risk.EqualRiskContribution(optimizeInput); err != nil {
		log.Warnw("equal risk contribution solve failed", "formula", result.Formula, "error", err)
	}

	return analysis, nil
}
