package formula

import (
	"math"
	"strings"

	"stockscreener/internal/domain"
)

// RedditMomentum ranks by sentiment-weighted discussion momentum:
// sentiment score x 1000 plus ln(comments+1). Sentiment dominates; the
// logarithmic comment term keeps spam volume from overwhelming genuine
// sentiment. Only Bullish-labeled tickers inside the screening universe
// are eligible.
type RedditMomentum struct {
	Sentiment []domain.SentimentRecord
}

func (RedditMomentum) Formula() domain.Formula {
	return domain.FormulaRedditMomentum
}

func (m RedditMomentum) Score(records []domain.StockRecord) []domain.ScoredStock {
	inUniverse := make(map[string]bool, len(records))
	for _, r := range records {
		inUniverse[strings.ToUpper(r.Symbol)] = true
	}

	scored := []domain.ScoredStock{}
	for _, s := range m.Sentiment {
		symbol := strings.ToUpper(s.Symbol)
		if !inUniverse[symbol] {
			continue
		}
		if s.Label != domain.SentimentBullish {
			continue
		}

		momentum := s.Score*1000 + math.Log(float64(s.Comments)+1)
		scored = append(scored, domain.ScoredStock{
			Symbol:  symbol,
			Formula: domain.FormulaRedditMomentum,
			Metrics: []domain.Metric{
				{Name: "sentiment_score", Value: s.Score},
				{Name: "comments", Value: float64(s.Comments)},
				{Name: "momentum_score", Value: momentum},
			},
			RankKey: momentum,
		})
	}

	sortDescending(scored)
	return scored
}
