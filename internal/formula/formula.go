package formula

import (
	"fmt"
	"math"
	"sort"

	"stockscreener/internal/domain"
)

// Scorer is the shared contract for all formula variants: records failing
// the formula's required-field or degenerate-denominator test are silently
// dropped, never surfaced as errors. The returned slice is fully sorted -
// tie-break rules stay formula-local so selection can be a pure truncation.
type Scorer interface {
	Formula() domain.Formula
	Score(records []domain.StockRecord) []domain.ScoredStock
}

// ScorerFor builds the scorer for a formula. Sentiment records are only
// consumed by Reddit Momentum; other formulas ignore them.
func ScorerFor(f domain.Formula, sentiment []domain.SentimentRecord) (Scorer, error) {
	switch f {
	case domain.FormulaMagicFormula:
		return MagicFormula{}, nil
	case domain.FormulaPiotroski:
		return PiotroskiFScore{}, nil
	case domain.FormulaGrahamNumber:
		return GrahamNumber{}, nil
	case domain.FormulaAcquirer:
		return AcquirersMultiple{}, nil
	case domain.FormulaAltmanZScore:
		return AltmanZScore{}, nil
	case domain.FormulaRedditMomentum:
		return RedditMomentum{Sentiment: sentiment}, nil
	}
	return nil, fmt.Errorf("unknown formula %q", f)
}

// TopN truncates a scorer-ordered candidate list to its first n entries.
// Fewer than n candidates returns all of them - never padded.
func TopN(stocks []domain.ScoredStock, n int) []domain.ScoredStock {
	if n < 0 {
		n = 0
	}
	if n > len(stocks) {
		n = len(stocks)
	}
	out := make([]domain.ScoredStock, n)
	copy(out, stocks[:n])
	return out
}

func valid(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// sortDescending orders by RankKey descending, ties broken by symbol for
// determinism.
func sortDescending(stocks []domain.ScoredStock) {
	sort.Slice(stocks, func(i, j int) bool {
		if stocks[i].RankKey != stocks[j].RankKey {
			return stocks[i].RankKey > stocks[j].RankKey
		}
		return stocks[i].Symbol < stocks[j].Symbol
	})
}

// sortAscending orders by RankKey ascending, ties broken by symbol.
func sortAscending(stocks []domain.ScoredStock) {
	sort.Slice(stocks, func(i, j int) bool {
		if stocks[i].RankKey != stocks[j].RankKey {
			return stocks[i].RankKey < stocks[j].RankKey
		}
		return stocks[i].Symbol < stocks[j].Symbol
	})
}
