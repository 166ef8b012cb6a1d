package tradestie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stockscreener/internal/domain"
	"stockscreener/internal/logger"
)

// apiURL serves the top ~50 tickers discussed on r/wallstreetbets with
// comment counts and a Bullish/Bearish sentiment score.
const apiURL = "https://api.tradestie.com/v1/apps/reddit"

type Client struct {
	HttpClient *http.Client
}

type sentimentEntry struct {
	Ticker         string  `json:"ticker"`
	NoOfComments   int     `json:"no_of_comments"`
	Sentiment      string  `json:"sentiment"`
	SentimentScore float64 `json:"sentiment_score"`
}

func (c Client) GetSentiment(ctx context.Context) ([]domain.SentimentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode == 429 {
		logger.Debug("hit rate limit. sleeping...")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(60 * time.Second):
		}
		return c.GetSentiment(ctx)
	} else if response.StatusCode != 200 {
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, string(responseBytes))
	}

	entries := []sentimentEntry{}
	if err := json.Unmarshal(responseBytes, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse sentiment response: %w", err)
	}

	return mapSentiment(entries), nil
}

func mapSentiment(entries []sentimentEntry) []domain.SentimentRecord {
	records := make([]domain.SentimentRecord, 0, len(entries))
	for _, e := range entries {
		if e.Ticker == "" {
			continue
		}
		records = append(records, domain.SentimentRecord{
			Symbol:   e.Ticker,
			Label:    domain.SentimentLabel(e.Sentiment),
			Score:    e.SentimentScore,
			Comments: e.NoOfComments,
		})
	}
	return records
}
