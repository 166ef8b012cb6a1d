package formula

import (
	"testing"

	"stockscreener/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_GrahamNumber(t *testing.T) {
	t.Run("computes intrinsic value and margin of safety", func(t *testing.T) {
		records := []domain.StockRecord{
			// sqrt(22.5 * 2 * 20) = 30
			{Symbol: "AAA", Price: 21, EPS: f(2), BookValuePerShare: f(20)},
		}

		scored := GrahamNumber{}.Score(records)
		require.Len(t, scored, 1)

		gn, ok := scored[0].Metric("graham_number")
		require.True(t, ok)
		require.InDelta(t, 30.0, gn, 1e-9)

		margin, ok := scored[0].Metric("margin_of_safety")
		require.True(t, ok)
		require.InDelta(t, 0.30, margin, 1e-9)
	})

	t.Run("ranks deepest discount first", func(t *testing.T) {
		records := []domain.StockRecord{
			{Symbol: "FAIR", Price: 30, EPS: f(2), BookValuePerShare: f(20)},
			{Symbol: "CHEAP", Price: 15, EPS: f(2), BookValuePerShare: f(20)},
			{Symbol: "RICH", Price: 45, EPS: f(2), BookValuePerShare: f(20)},
		}

		scored := GrahamNumber{}.Score(records)
		require.Equal(t, []string{"CHEAP", "FAIR", "RICH"}, symbols(scored))

		// overvalued stocks stay ranked with a negative margin
		margin, ok := scored[2].Metric("margin_of_safety")
		require.True(t, ok)
		require.InDelta(t, -0.5, margin, 1e-9)
	})

	t.Run("excludes non-positive earnings or book value", func(t *testing.T) {
		records := []domain.StockRecord{
			{Symbol: "LOSS", Price: 10, EPS: f(-1), BookValuePerShare: f(20)},
			{Symbol: "NOBOOK", Price: 10, EPS: f(2), BookValuePerShare: f(0)},
			{Symbol: "MISSING", Price: 10, EPS: f(2)},
		}
		require.Empty(t, GrahamNumber{}.Score(records))
	})
}
