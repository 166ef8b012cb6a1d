package formula

import (
	"math"

	"stockscreener/internal/domain"
)

// GrahamNumber estimates intrinsic value as sqrt(22.5 * EPS * BVPS) - the
// 22.5 multiplier being Graham's maximum 15x P/E times his maximum 1.5x
// P/B - and ranks by margin of safety, the fraction below intrinsic value
// the stock currently trades at.
type GrahamNumber struct{}

func (GrahamNumber) Formula() domain.Formula {
	return domain.FormulaGrahamNumber
}

func (g GrahamNumber) Score(records []domain.StockRecord) []domain.ScoredStock {
	scored := []domain.ScoredStock{}
	for _, r := range records {
		// negative earnings or negative book value make the number
		// undefined, not merely unattractive
		if !valid(r.EPS) || *r.EPS <= 0 {
			continue
		}
		if !valid(r.BookValuePerShare) || *r.BookValuePerShare <= 0 {
			continue
		}

		grahamNumber := math.Sqrt(22.5 * *r.EPS * *r.BookValuePerShare)
		marginOfSafety := (grahamNumber - r.Price) / grahamNumber

		scored = append(scored, domain.ScoredStock{
			Symbol:  r.Symbol,
			Formula: domain.FormulaGrahamNumber,
			Metrics: []domain.Metric{
				{Name: "graham_number", Value: grahamNumber},
				{Name: "margin_of_safety", Value: marginOfSafety},
			},
			RankKey: marginOfSafety,
		})
	}

	sortDescending(scored)
	return scored
}
