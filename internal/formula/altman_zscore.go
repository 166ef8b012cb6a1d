package formula

import (
	"stockscreener/internal/domain"
)

// Altman Z-Score zone thresholds.
const (
	safeZoneThreshold = 2.99
	greyZoneThreshold = 1.81
)

// AltmanZScore combines five weighted balance-sheet ratios into Altman's
// bankruptcy-risk score. Only Safe Zone stocks (Z > 2.99) are retained for
// ranking; Grey and Distress zone stocks carry too much risk to screen in.
type AltmanZScore struct{}

func (AltmanZScore) Formula() domain.Formula {
	return domain.FormulaAltmanZScore
}

func (a AltmanZScore) Score(records []domain.StockRecord) []domain.ScoredStock {
	scored := []domain.ScoredStock{}
	for _, r := range records {
		if !valid(r.TotalAssets) || *r.TotalAssets <= 0 {
			continue
		}
		if !valid(r.TotalLiabilities) || *r.TotalLiabilities <= 0 {
			continue
		}
		if !valid(r.WorkingCapital) || !valid(r.RetainedEarnings) || !valid(r.EBIT) ||
			!valid(r.MarketCap) || !valid(r.Revenue) {
			continue
		}

		z := 1.2*(*r.WorkingCapital / *r.TotalAssets) +
			1.4*(*r.RetainedEarnings / *r.TotalAssets) +
			3.3*(*r.EBIT / *r.TotalAssets) +
			0.6*(*r.MarketCap / *r.TotalLiabilities) +
			1.0*(*r.Revenue / *r.TotalAssets)

		if z <= safeZoneThreshold {
			continue
		}

		scored = append(scored, domain.ScoredStock{
			Symbol:  r.Symbol,
			Formula: domain.FormulaAltmanZScore,
			Metrics: []domain.Metric{
				{Name: "zscore", Value: z},
			},
			RankKey: z,
		})
	}

	sortDescending(scored)
	return scored
}

// RiskZone classifies a Z-Score into Altman's bands.
func RiskZone(z float64) string {
	switch {
	case z > safeZoneThreshold:
		return "Safe"
	case z > greyZoneThreshold:
		return "Grey"
	default:
		return "Distress"
	}
}
