package universe

import (
	"testing"

	"stockscreener/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 {
	return &v
}

func Test_Filter(t *testing.T) {
	cfg := FilterConfig{
		MinMarketCap:     100_000_000,
		ExcludedSectors:  []string{"Financial Services", "Utilities"},
		AllowedExchanges: []string{"NYSE", "NASDAQ"},
	}

	t.Run("keeps eligible records in input order", func(t *testing.T) {
		records := []domain.StockRecord{
			{Symbol: "ZZZ", Sector: "Technology", Exchange: "NASDAQ", MarketCap: f(5e9)},
			{Symbol: "AAA", Sector: "Energy", Exchange: "NYSE", MarketCap: f(2e8)},
		}

		got := Filter(records, cfg)
		require.Len(t, got, 2)
		if diff := cmp.Diff([]string{"ZZZ", "AAA"}, []string{got[0].Symbol, got[1].Symbol}); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("excludes by each criterion", func(t *testing.T) {
		records := []domain.StockRecord{
			{Symbol: "SMALL", Sector: "Technology", Exchange: "NYSE", MarketCap: f(5e7)},
			{Symbol: "BANK", Sector: "Financial Services", Exchange: "NYSE", MarketCap: f(1e10)},
			{Symbol: "OTC", Sector: "Technology", Exchange: "OTC", MarketCap: f(1e10)},
		}
		require.Empty(t, Filter(records, cfg))
	})

	t.Run("fails closed on missing fields", func(t *testing.T) {
		records := []domain.StockRecord{
			{Symbol: "NOCAP", Sector: "Technology", Exchange: "NYSE"},
			{Symbol: "NOSECTOR", Exchange: "NYSE", MarketCap: f(1e10)},
			{Symbol: "NOVENUE", Sector: "Technology", MarketCap: f(1e10)},
		}
		require.Empty(t, Filter(records, cfg))
	})

	t.Run("boundary market cap is eligible", func(t *testing.T) {
		records := []domain.StockRecord{
			{Symbol: "EDGE", Sector: "Technology", Exchange: "NYSE", MarketCap: f(100_000_000)},
		}
		require.Len(t, Filter(records, cfg), 1)
	})
}
