package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssetPrice struct {
	Symbol string
	Date   time.Time
	Close  decimal.Decimal
}

// ReturnSeries holds periodic simple returns for one symbol. All series
// belonging to one portfolio computation share the same date alignment.
type ReturnSeries struct {
	Symbol  string
	Dates   []time.Time
	Returns []float64
}

// CovarianceMatrix is a symmetric, annualized covariance matrix over the
// symbols it was estimated from. It is owned by a single portfolio
// computation and never mutated after construction.
type CovarianceMatrix struct {
	Symbols []string
	Values  [][]float64
}

func (c CovarianceMatrix) Dim() int {
	return len(c.Symbols)
}

func (c CovarianceMatrix) At(i, j int) float64 {
	return c.Values[i][j]
}
