package formula

import (
	"stockscreener/internal/domain"
)

// PiotroskiFScore sums nine boolean signals of financial strength:
// profitability (4), leverage/liquidity (3), and operating efficiency (2).
// A sub-test missing its prior-period data scores zero rather than
// excluding the record; only records without current total assets and
// without either net income or operating cash flow are dropped entirely.
type PiotroskiFScore struct{}

func (PiotroskiFScore) Formula() domain.Formula {
	return domain.FormulaPiotroski
}

func (p PiotroskiFScore) Score(records []domain.StockRecord) []domain.ScoredStock {
	scored := []domain.ScoredStock{}
	for _, r := range records {
		if !valid(r.TotalAssets) || *r.TotalAssets == 0 {
			continue
		}
		if !valid(r.NetIncome) && !valid(r.OperatingCashFlow) {
			continue
		}

		score := 0
		score += scorePositiveROA(r)
		score += scorePositiveCFO(r)
		score += scoreROAImprovement(r)
		score += scoreAccrualQuality(r)
		score += scoreDeleveraging(r)
		score += scoreLiquidityImprovement(r)
		score += scoreNoDilution(r)
		score += scoreMarginImprovement(r)
		score += scoreTurnoverImprovement(r)

		scored = append(scored, domain.ScoredStock{
			Symbol:  r.Symbol,
			Formula: domain.FormulaPiotroski,
			Metrics: []domain.Metric{
				{Name: "fscore", Value: float64(score)},
			},
			RankKey: float64(score),
		})
	}

	sortDescending(scored)
	return scored
}

func scorePositiveROA(r domain.StockRecord) int {
	if !valid(r.NetIncome) || !valid(r.TotalAssets) || *r.TotalAssets == 0 {
		return 0
	}
	if *r.NetIncome / *r.TotalAssets > 0 {
		return 1
	}
	return 0
}

func scorePositiveCFO(r domain.StockRecord) int {
	if valid(r.OperatingCashFlow) && *r.OperatingCashFlow > 0 {
		return 1
	}
	return 0
}

func scoreROAImprovement(r domain.StockRecord) int {
	if valid(r.ReturnOnAssets) && valid(r.ReturnOnAssetsPrev) && *r.ReturnOnAssets > *r.ReturnOnAssetsPrev {
		return 1
	}
	return 0
}

// cash flow should support reported income
func scoreAccrualQuality(r domain.StockRecord) int {
	if valid(r.OperatingCashFlow) && valid(r.NetIncome) && *r.OperatingCashFlow > *r.NetIncome {
		return 1
	}
	return 0
}

// compares the long-term-debt-to-assets ratio year over year; missing debt
// is treated as zero debt, but both years' assets are required
func scoreDeleveraging(r domain.StockRecord) int {
	if !valid(r.TotalAssets) || *r.TotalAssets == 0 {
		return 0
	}
	if !valid(r.TotalAssetsPrev) || *r.TotalAssetsPrev == 0 {
		return 0
	}
	debt := 0.0
	if valid(r.LongTermDebt) {
		debt = *r.LongTermDebt
	}
	debtPrev := 0.0
	if valid(r.LongTermDebtPrev) {
		debtPrev = *r.LongTermDebtPrev
	}
	if debt / *r.TotalAssets < debtPrev / *r.TotalAssetsPrev {
		return 1
	}
	return 0
}

func scoreLiquidityImprovement(r domain.StockRecord) int {
	if valid(r.CurrentRatio) && valid(r.CurrentRatioPrev) && *r.CurrentRatio > *r.CurrentRatioPrev {
		return 1
	}
	return 0
}

func scoreNoDilution(r domain.StockRecord) int {
	if valid(r.SharesOutstanding) && valid(r.SharesOutstandingPrev) && *r.SharesOutstanding <= *r.SharesOutstandingPrev {
		return 1
	}
	return 0
}

func scoreMarginImprovement(r domain.StockRecord) int {
	if valid(r.GrossMargin) && valid(r.GrossMarginPrev) && *r.GrossMargin > *r.GrossMarginPrev {
		return 1
	}
	return 0
}

func scoreTurnoverImprovement(r domain.StockRecord) int {
	if valid(r.AssetTurnover) && valid(r.AssetTurnoverPrev) && *r.AssetTurnover > *r.AssetTurnoverPrev {
		return 1
	}
	return 0
}
