package tradestie

import (
	"testing"

	"stockscreener/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func Test_mapSentiment(t *testing.T) {
	entries := []sentimentEntry{
		{Ticker: "GME", NoOfComments: 150, Sentiment: "Bullish", SentimentScore: 0.25},
		{Ticker: "BBBY", NoOfComments: 30, Sentiment: "Bearish", SentimentScore: -0.1},
		{Ticker: "", NoOfComments: 5, Sentiment: "Bullish", SentimentScore: 0.9},
	}

	got := mapSentiment(entries)
	want := []domain.SentimentRecord{
		{Symbol: "GME", Label: domain.SentimentBullish, Score: 0.25, Comments: 150},
		{Symbol: "BBBY", Label: domain.SentimentBearish, Score: -0.1, Comments: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected records (-want +got):\n%s", diff)
	}
}

func Test_mapSentiment_empty(t *testing.T) {
	require.Empty(t, mapSentiment(nil))
}
