package formula

import (
	"stockscreener/internal/domain"
)

// AcquirersMultiple ranks by EV/EBIT ascending - Carlisle's deep value
// metric. Cheapest first. Negative or zero EBIT makes the multiple
// meaningless and excludes the record, as does a negative enterprise value
// (usually a data issue).
type AcquirersMultiple struct{}

func (AcquirersMultiple) Formula() domain.Formula {
	return domain.FormulaAcquirer
}

func (a AcquirersMultiple) Score(records []domain.StockRecord) []domain.ScoredStock {
	scored := []domain.ScoredStock{}
	for _, r := range records {
		if !valid(r.EBIT) || *r.EBIT <= 0 {
			continue
		}
		if !valid(r.EnterpriseValue) || *r.EnterpriseValue < 0 {
			continue
		}

		multiple := *r.EnterpriseValue / *r.EBIT
		scored = append(scored, domain.ScoredStock{
			Symbol:  r.Symbol,
			Formula: domain.FormulaAcquirer,
			Metrics: []domain.Metric{
				{Name: "acquirers_multiple", Value: multiple},
			},
			RankKey: multiple,
		})
	}

	sortAscending(scored)
	return scored
}
