package domain

import (
	"time"
)

type Formula string

const (
	FormulaMagicFormula   Formula = "magic_formula"
	FormulaPiotroski      Formula = "piotroski_fscore"
	FormulaGrahamNumber   Formula = "graham_number"
	FormulaAcquirer       Formula = "acquirers_multiple"
	FormulaAltmanZScore   Formula = "altman_zscore"
	FormulaRedditMomentum Formula = "reddit_momentum"
)

// AllFormulas is the canonical formula ordering. Aggregated run results
// always report formulas in this order, regardless of completion order.
func AllFormulas() []Formula {
	return []Formula{
		FormulaMagicFormula,
		FormulaPiotroski,
		FormulaGrahamNumber,
		FormulaAcquirer,
		FormulaAltmanZScore,
		FormulaRedditMomentum,
	}
}

func (f Formula) DisplayName() string {
	switch f {
	case FormulaMagicFormula:
		return "Magic Formula"
	case FormulaPiotroski:
		return "Piotroski F-Score"
	case FormulaGrahamNumber:
		return "Graham Number"
	case FormulaAcquirer:
		return "Acquirer's Multiple"
	case FormulaAltmanZScore:
		return "Altman Z-Score"
	case FormulaRedditMomentum:
		return "Reddit Momentum"
	}
	return string(f)
}

// StockRecord holds one screening run's snapshot of a single equity.
// Fundamental fields are pointers - a nil value means the upstream source
// did not report it. Formulas drop records missing their required subset
// instead of erroring.
type StockRecord struct {
	Symbol      string
	CompanyName string
	Price       float64
	Sector      string
	Exchange    string
	MarketCap   *float64

	EBIT               *float64
	EnterpriseValue    *float64
	TotalAssets        *float64
	TotalAssetsPrev    *float64
	CurrentLiabilities *float64
	TotalLiabilities   *float64
	WorkingCapital     *float64
	RetainedEarnings   *float64
	Revenue            *float64

	EPS               *float64
	BookValuePerShare *float64

	NetIncome             *float64
	OperatingCashFlow     *float64
	ReturnOnAssets        *float64
	ReturnOnAssetsPrev    *float64
	LongTermDebt          *float64
	LongTermDebtPrev      *float64
	CurrentRatio          *float64
	CurrentRatioPrev      *float64
	AssetTurnover         *float64
	AssetTurnoverPrev     *float64
	GrossMargin           *float64
	GrossMarginPrev       *float64
	SharesOutstanding     *float64
	SharesOutstandingPrev *float64
}

type SentimentLabel string

const (
	SentimentBullish SentimentLabel = "Bullish"
	SentimentBearish SentimentLabel = "Bearish"
)

type SentimentRecord struct {
	Symbol   string
	Label    SentimentLabel
	Score    float64
	Comments int
}

type Metric struct {
	Name  string
	Value float64
}

// ScoredStock is one formula's verdict on one stock. RankKey is the scalar
// the scorer ordered on; Metrics carries the formula-specific values in a
// fixed order for display.
type ScoredStock struct {
	Symbol  string
	Formula Formula
	Metrics []Metric
	RankKey float64
}

func (s ScoredStock) Metric(name string) (float64, bool) {
	for _, m := range s.Metrics {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// FormulaResult is immutable once produced by ranking/selection.
type FormulaResult struct {
	Formula       Formula
	Stocks        []ScoredStock
	EligibleCount int
	GeneratedAt   time.Time
}

func (r FormulaResult) Symbols() []string {
	symbols := make([]string, 0, len(r.Stocks))
	for _, s := range r.Stocks {
		symbols = append(symbols, s.Symbol)
	}
	return symbols
}
