package formula

import (
	"sort"

	"stockscreener/internal/domain"
)

// MagicFormula implements Greenblatt's two-factor ranking: earnings yield
// (EBIT/EV, the "cheap" metric) and return on capital (EBIT/capital
// employed, the "good" metric). Each eligible stock is ranked once per
// metric and the two integer ranks are summed; the lowest combined rank
// sorts first.
type MagicFormula struct{}

func (MagicFormula) Formula() domain.Formula {
	return domain.FormulaMagicFormula
}

type magicCandidate struct {
	symbol        string
	earningsYield float64
	returnOnCap   float64
	rankEY        int
	rankROC       int
}

func (m MagicFormula) Score(records []domain.StockRecord) []domain.ScoredStock {
	candidates := []*magicCandidate{}
	for _, r := range records {
		if !valid(r.EBIT) || !valid(r.EnterpriseValue) || !valid(r.TotalAssets) || !valid(r.CurrentLiabilities) {
			continue
		}
		if *r.EnterpriseValue <= 0 {
			continue
		}
		capitalEmployed := *r.TotalAssets - *r.CurrentLiabilities
		if capitalEmployed <= 0 {
			continue
		}
		candidates = append(candidates, &magicCandidate{
			symbol:        r.Symbol,
			earningsYield: *r.EBIT / *r.EnterpriseValue,
			returnOnCap:   *r.EBIT / capitalEmployed,
		})
	}

	// two-pass ranking: rank 1 goes to the highest value on each metric,
	// ties resolved by symbol so repeated runs produce identical ranks
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].earningsYield != candidates[j].earningsYield {
			return candidates[i].earningsYield > candidates[j].earningsYield
		}
		return candidates[i].symbol < candidates[j].symbol
	})
	for i, c := range candidates {
		c.rankEY = i + 1
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].returnOnCap != candidates[j].returnOnCap {
			return candidates[i].returnOnCap > candidates[j].returnOnCap
		}
		return candidates[i].symbol < candidates[j].symbol
	})
	for i, c := range candidates {
		c.rankROC = i + 1
	}

	scored := make([]domain.ScoredStock, 0, len(candidates))
	for _, c := range candidates {
		combined := c.rankEY + c.rankROC
		scored = append(scored, domain.ScoredStock{
			Symbol:  c.symbol,
			Formula: domain.FormulaMagicFormula,
			Metrics: []domain.Metric{
				{Name: "earnings_yield", Value: c.earningsYield},
				{Name: "return_on_capital", Value: c.returnOnCap},
				{Name: "magic_score", Value: float64(combined)},
			},
			RankKey: float64(combined),
		})
	}

	sortAscending(scored)
	return scored
}
