package formula

import (
	"testing"

	"stockscreener/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_AltmanZScore(t *testing.T) {
	safe := domain.StockRecord{
		Symbol:           "SAFE",
		TotalAssets:      f(100),
		TotalLiabilities: f(50),
		WorkingCapital:   f(20),
		RetainedEarnings: f(30),
		EBIT:             f(15),
		MarketCap:        f(100),
		Revenue:          f(80),
	}

	t.Run("computes the weighted score", func(t *testing.T) {
		scored := AltmanZScore{}.Score([]domain.StockRecord{safe})
		require.Len(t, scored, 1)

		// 1.2*0.2 + 1.4*0.3 + 3.3*0.15 + 0.6*2.0 + 1.0*0.8
		z, ok := scored[0].Metric("zscore")
		require.True(t, ok)
		require.InDelta(t, 3.155, z, 1e-9)
	})

	t.Run("grey and distress zones are excluded", func(t *testing.T) {
		grey := safe
		grey.Symbol = "GREY"
		grey.MarketCap = f(25) // z drops to 2.255

		distress := safe
		distress.Symbol = "BAD"
		distress.MarketCap = f(25)
		distress.RetainedEarnings = f(-100) // z goes negative

		scored := AltmanZScore{}.Score([]domain.StockRecord{safe, grey, distress})
		require.Equal(t, []string{"SAFE"}, symbols(scored))
	})

	t.Run("any missing component excludes the record", func(t *testing.T) {
		for _, clear := range []func(r *domain.StockRecord){
			func(r *domain.StockRecord) { r.WorkingCapital = nil },
			func(r *domain.StockRecord) { r.RetainedEarnings = nil },
			func(r *domain.StockRecord) { r.EBIT = nil },
			func(r *domain.StockRecord) { r.MarketCap = nil },
			func(r *domain.StockRecord) { r.Revenue = nil },
			func(r *domain.StockRecord) { r.TotalAssets = f(0) },
			func(r *domain.StockRecord) { r.TotalLiabilities = f(0) },
		} {
			r := safe
			clear(&r)
			require.Empty(t, AltmanZScore{}.Score([]domain.StockRecord{r}))
		}
	})
}

func Test_RiskZone(t *testing.T) {
	require.Equal(t, "Safe", RiskZone(3.0))
	require.Equal(t, "Grey", RiskZone(2.99))
	require.Equal(t, "Grey", RiskZone(1.82))
	require.Equal(t, "Distress", RiskZone(1.81))
	require.Equal(t, "Distress", RiskZone(-1.0))
}
