package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stockscreener/internal/domain"
	"stockscreener/internal/universe"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 {
	return &v
}

type fakeStockData struct {
	records []domain.StockRecord
	err     error
}

func (s fakeStockData) GetStockRecords(ctx context.Context, symbols []string) ([]domain.StockRecord, error) {
	return s.records, s.err
}

type fakeSentiment struct {
	records []domain.SentimentRecord
	err     error
}

func (s fakeSentiment) GetSentiment(ctx context.Context) ([]domain.SentimentRecord, error) {
	return s.records, s.err
}

// blockingSentiment only returns once its context dies, the way a hung
// upstream would behave.
type blockingSentiment struct{}

func (blockingSentiment) GetSentiment(ctx context.Context) ([]domain.SentimentRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakePriceHistory struct {
	prices map[string][]domain.AssetPrice
	err    error
	delay  time.Duration
}

func (s fakePriceHistory) GetPriceHistory(ctx context.Context, symbols []string, lookbackDays int) (map[string][]domain.AssetPrice, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.prices, s.err
}

func grahamRecord(symbol string, price float64) domain.StockRecord {
	return domain.StockRecord{
		Symbol:            symbol,
		Price:             price,
		Sector:            "Technology",
		Exchange:          "NYSE",
		MarketCap:         f(1e10),
		EPS:               f(2),
		BookValuePerShare: f(20),
	}
}

func dailyPrices(symbol string, n int, growth float64) []domain.AssetPrice {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := make([]domain.AssetPrice, 0, n)
	price := 100.0
	for i := 0; i < n; i++ {
		prices = append(prices, domain.AssetPrice{
			Symbol: symbol,
			Date:   start.AddDate(0, 0, i),
			Close:  decimal.NewFromFloat(price),
		})
		price *= 1 + growth
	}
	return prices
}

func openFilter() universe.FilterConfig {
	return universe.FilterConfig{
		AllowedExchanges: []string{"NYSE", "NASDAQ"},
	}
}

func runStatuses(result *domain.ScreeningRunResult) map[domain.Formula]domain.RunStatus {
	out := map[domain.Formula]domain.RunStatus{}
	for _, run := range result.Runs {
		out[run.Formula] = run.Status
	}
	return out
}

func Test_ScreeningHandler_Run(t *testing.T) {
	ctx := context.Background()

	records := []domain.StockRecord{
		grahamRecord("AAA", 15),
		grahamRecord("BBB", 21),
		grahamRecord("CCC", 29),
	}

	t.Run("reports formulas in configured order regardless of completion order", func(t *testing.T) {
		handler := ScreeningHandler{
			StockData: fakeStockData{records: records},
			Sentiment: fakeSentiment{records: []domain.SentimentRecord{
				{Symbol: "AAA", Label: domain.SentimentBullish, Score: 0.4, Comments: 50},
			}},
		}

		// goroutine scheduling varies run to run; the ordering must not
		for attempt := 0; attempt < 10; attempt++ {
			result, err := handler.Run(ctx, ScreeningInput{
				UniverseFilter:  openFilter(),
				EnabledFormulas: domain.AllFormulas(),
				TopN:            5,
			})
			require.NoError(t, err)

			got := make([]domain.Formula, 0, len(result.Runs))
			for _, run := range result.Runs {
				got = append(got, run.Formula)
			}
			if diff := cmp.Diff(domain.AllFormulas(), got); diff != "" {
				t.Fatalf("run order mismatch (-want +got):\n%s", diff)
			}
		}
	})

	t.Run("ranks and truncates per formula", func(t *testing.T) {
		handler := ScreeningHandler{StockData: fakeStockData{records: records}}

		result, err := handler.Run(ctx, ScreeningInput{
			UniverseFilter:  openFilter(),
			EnabledFormulas: []domain.Formula{domain.FormulaGrahamNumber},
			TopN:            2,
		})
		require.NoError(t, err)
		require.Len(t, result.Runs, 1)

		run := result.Runs[0]
		require.Equal(t, domain.RunStatusCompleted, run.Status)
		require.Equal(t, 3, run.Result.EligibleCount)
		require.Equal(t, []string{"AAA", "BBB"}, run.Result.Symbols())
		require.Equal(t, 3, result.UniverseSize)
		require.Equal(t, 3, result.EligibleSize)
	})

	t.Run("zero enabled formulas errors", func(t *testing.T) {
		handler := ScreeningHandler{StockData: fakeStockData{records: records}}
		_, err := handler.Run(ctx, ScreeningInput{UniverseFilter: openFilter()})
		require.Error(t, err)
	})

	t.Run("stock data failure is fatal", func(t *testing.T) {
		handler := ScreeningHandler{StockData: fakeStockData{err: fmt.Errorf("upstream down")}}
		_, err := handler.Run(ctx, ScreeningInput{
			UniverseFilter:  openFilter(),
			EnabledFormulas: []domain.Formula{domain.FormulaGrahamNumber},
			TopN:            5,
		})
		require.Error(t, err)
	})

	t.Run("sentiment failure skips only reddit momentum", func(t *testing.T) {
		handler := ScreeningHandler{
			StockData: fakeStockData{records: records},
			Sentiment: fakeSentiment{err: fmt.Errorf("feed down")},
		}

		result, err := handler.Run(ctx, ScreeningInput{
			UniverseFilter:  openFilter(),
			EnabledFormulas: domain.AllFormulas(),
			TopN:            5,
		})
		require.NoError(t, err)

		statuses := runStatuses(result)
		require.Equal(t, domain.RunStatusSkipped, statuses[domain.FormulaRedditMomentum])
		for _, formula := range domain.AllFormulas() {
			if formula == domain.FormulaRedditMomentum {
				continue
			}
			require.Equal(t, domain.RunStatusCompleted, statuses[formula], "formula %s", formula)
		}
	})

	t.Run("formula with no eligible stocks still completes", func(t *testing.T) {
		bare := []domain.StockRecord{{
			Symbol: "AAA", Price: 10, Sector: "Technology", Exchange: "NYSE", MarketCap: f(1e10),
		}}
		handler := ScreeningHandler{StockData: fakeStockData{records: bare}}

		result, err := handler.Run(ctx, ScreeningInput{
			UniverseFilter:  openFilter(),
			EnabledFormulas: []domain.Formula{domain.FormulaGrahamNumber},
			TopN:            5,
		})
		require.NoError(t, err)
		require.Equal(t, domain.RunStatusCompleted, result.Runs[0].Status)
		require.Empty(t, result.Runs[0].Result.Stocks)
		require.Zero(t, result.Runs[0].Result.EligibleCount)
	})

	t.Run("slow formulas are reported as timed out", func(t *testing.T) {
		handler := ScreeningHandler{
			StockData:    fakeStockData{records: records},
			PriceHistory: fakePriceHistory{delay: 500 * time.Millisecond},
		}

		result, err := handler.Run(ctx, ScreeningInput{
			UniverseFilter:    openFilter(),
			EnabledFormulas:   []domain.Formula{domain.FormulaGrahamNumber},
			TopN:              5,
			PortfolioAnalysis: true,
			Timeout:           20 * time.Millisecond,
		})
		require.NoError(t, err)
		require.Equal(t, domain.RunStatusTimedOut, result.Runs[0].Status)
		require.NotEmpty(t, result.Runs[0].Reason)
	})

	t.Run("run timeout bounds the sentiment fetch", func(t *testing.T) {
		handler := ScreeningHandler{
			StockData: fakeStockData{records: records},
			Sentiment: blockingSentiment{},
		}

		result, err := handler.Run(ctx, ScreeningInput{
			UniverseFilter:  openFilter(),
			EnabledFormulas: domain.AllFormulas(),
			TopN:            5,
			Timeout:         30 * time.Millisecond,
		})
		require.NoError(t, err)
		require.Equal(t, domain.RunStatusSkipped, runStatuses(result)[domain.FormulaRedditMomentum])
	})

	t.Run("results buffered at the deadline are not marked timed out", func(t *testing.T) {
		expired, cancel := context.WithCancel(ctx)
		cancel()

		resultCh := make(chan domain.FormulaRun, 2)
		resultCh <- domain.FormulaRun{
			Formula: domain.FormulaGrahamNumber,
			Status:  domain.RunStatusCompleted,
			Result:  &domain.FormulaResult{Formula: domain.FormulaGrahamNumber},
		}

		runs := map[domain.Formula]domain.FormulaRun{}
		require.True(t, collectRuns(expired, resultCh, 2, runs))

		require.Equal(t, domain.RunStatusCompleted, runs[domain.FormulaGrahamNumber].Status)
		_, reported := runs[domain.FormulaMagicFormula]
		require.False(t, reported)
	})

	t.Run("portfolio analysis attaches to completed runs", func(t *testing.T) {
		handler := ScreeningHandler{
			StockData: fakeStockData{records: records},
			PriceHistory: fakePriceHistory{prices: map[string][]domain.AssetPrice{
				"AAA": dailyPrices("AAA", 40, 0.01),
				"BBB": dailyPrices("BBB", 40, -0.005),
				"CCC": dailyPrices("CCC", 40, 0.002),
			}},
		}

		result, err := handler.Run(ctx, ScreeningInput{
			UniverseFilter:    openFilter(),
			EnabledFormulas:   []domain.Formula{domain.FormulaGrahamNumber},
			TopN:              3,
			PortfolioAnalysis: true,
			RiskFreeRate:      0.02,
		})
		require.NoError(t, err)

		run := result.Runs[0]
		require.Equal(t, domain.RunStatusCompleted, run.Status)
		require.NotNil(t, run.Portfolio)
		require.Equal(t, []string{"AAA", "BBB", "CCC"}, run.Portfolio.Symbols)
		require.Equal(t, 39, run.Portfolio.Observations)
		require.NotNil(t, run.Portfolio.MinVariance)
		require.NotNil(t, run.Portfolio.EqualRisk)
	})

	t.Run("portfolio failure leaves the screening result intact", func(t *testing.T) {
		handler := ScreeningHandler{
			StockData:    fakeStockData{records: records},
			PriceHistory: fakePriceHistory{err: fmt.Errorf("chart api down")},
		}

		result, err := handler.Run(ctx, ScreeningInput{
			UniverseFilter:    openFilter(),
			EnabledFormulas:   []domain.Formula{domain.FormulaGrahamNumber},
			TopN:              3,
			PortfolioAnalysis: true,
		})
		require.NoError(t, err)
		require.Equal(t, domain.RunStatusCompleted, result.Runs[0].Status)
		require.Nil(t, result.Runs[0].Portfolio)
	})
}
