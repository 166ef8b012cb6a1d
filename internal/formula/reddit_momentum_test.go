package formula

import (
	"math"
	"testing"

	"stockscreener/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_RedditMomentum(t *testing.T) {
	universe := []domain.StockRecord{
		{Symbol: "GME"},
		{Symbol: "AMC"},
		{Symbol: "AAPL"},
	}

	t.Run("sentiment dominates comment volume", func(t *testing.T) {
		scorer := RedditMomentum{Sentiment: []domain.SentimentRecord{
			{Symbol: "GME", Label: domain.SentimentBullish, Score: 0.10, Comments: 10000},
			{Symbol: "AMC", Label: domain.SentimentBullish, Score: 0.20, Comments: 5},
		}}

		scored := scorer.Score(universe)
		require.Equal(t, []string{"AMC", "GME"}, symbols(scored))

		momentum, ok := scored[1].Metric("momentum_score")
		require.True(t, ok)
		require.InDelta(t, 0.10*1000+math.Log(10001), momentum, 1e-9)
	})

	t.Run("only bullish tickers inside the universe qualify", func(t *testing.T) {
		scorer := RedditMomentum{Sentiment: []domain.SentimentRecord{
			{Symbol: "GME", Label: domain.SentimentBearish, Score: 0.5, Comments: 100},
			{Symbol: "TSLA", Label: domain.SentimentBullish, Score: 0.5, Comments: 100},
			{Symbol: "aapl", Label: domain.SentimentBullish, Score: 0.3, Comments: 10},
		}}

		scored := scorer.Score(universe)
		// casing differences between the feed and the universe are ignored
		require.Equal(t, []string{"AAPL"}, symbols(scored))
	})

	t.Run("no sentiment yields empty result", func(t *testing.T) {
		require.Empty(t, RedditMomentum{}.Score(universe))
	})
}
