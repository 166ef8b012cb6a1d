package service

import (
	"context"
	"fmt"
	"time"

	"stockscreener/internal/domain"
	"stockscreener/internal/logger"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

type PriceHistoryService interface {
	GetPriceHistory(ctx context.Context, symbols []string, lookbackDays int) (map[string][]domain.AssetPrice, error)
}

type ChartClient interface {
	GetDailyBars(symbol string, start, end time.Time) ([]domain.AssetPrice, error)
}

type YahooChartClient struct{}

func (YahooChartClient) GetDailyBars(symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	prices := []domain.AssetPrice{}
	for iter.Next() {
		prices = append(prices, domain.AssetPrice{
			Symbol: symbol,
			Date:   time.Unix(int64(iter.Bar().Timestamp), 0).UTC(),
			Close:  iter.Bar().AdjClose,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}
	return prices, nil
}

type priceHistoryServiceHandler struct {
	Charts ChartClient
}

func NewPriceHistoryService() PriceHistoryService {
	return &priceHistoryServiceHandler{Charts: YahooChartClient{}}
}

// GetPriceHistory fetches adjusted daily closes over the lookback window.
// A symbol that fails to fetch is returned with no series so the return
// estimator's drop policy handles it; only a fully empty result is an
// error.
func (h *priceHistoryServiceHandler) GetPriceHistory(ctx context.Context, symbols []string, lookbackDays int) (map[string][]domain.AssetPrice, error) {
	log := logger.FromContext(ctx)

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	out := map[string][]domain.AssetPrice{}
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prices, err := h.Charts.GetDailyBars(symbol, start, end)
		if err != nil {
			log.Warnw("failed to fetch price history",
				"symbol", symbol,
				"error", err,
			)
			continue
		}
		out[symbol] = prices
	}

	if len(out) == 0 && len(symbols) > 0 {
		return nil, fmt.Errorf("failed to fetch price history for all %d symbols", len(symbols))
	}
	return out, nil
}
