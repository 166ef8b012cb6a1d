package formula

import (
	"testing"

	"stockscreener/internal/domain"

	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 {
	return &v
}

func symbols(scored []domain.ScoredStock) []string {
	out := make([]string, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Symbol)
	}
	return out
}

func Test_ScorerFor(t *testing.T) {
	t.Run("every formula has a scorer", func(t *testing.T) {
		for _, formula := range domain.AllFormulas() {
			scorer, err := ScorerFor(formula, nil)
			require.NoError(t, err)
			require.Equal(t, formula, scorer.Formula())
		}
	})

	t.Run("unknown formula errors", func(t *testing.T) {
		_, err := ScorerFor(domain.Formula("dividend_discount"), nil)
		require.Error(t, err)
	})
}

func Test_TopN(t *testing.T) {
	scored := []domain.ScoredStock{
		{Symbol: "AAA"},
		{Symbol: "BBB"},
		{Symbol: "CCC"},
	}

	t.Run("truncates to n", func(t *testing.T) {
		require.Equal(t, []string{"AAA", "BBB"}, symbols(TopN(scored, 2)))
	})

	t.Run("returns all when fewer than n", func(t *testing.T) {
		require.Equal(t, []string{"AAA", "BBB", "CCC"}, symbols(TopN(scored, 10)))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		top := TopN(scored, 1)
		top[0].Symbol = "ZZZ"
		require.Equal(t, "AAA", scored[0].Symbol)
	})

	t.Run("negative n yields empty", func(t *testing.T) {
		require.Empty(t, TopN(scored, -1))
	})
}
