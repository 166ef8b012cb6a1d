package calculator

import (
	"fmt"
	"sort"
	"time"

	"stockscreener/internal/domain"

	"github.com/montanaflynn/stats"
)

const (
	// TradingDaysPerYear annualizes daily means and covariances.
	TradingDaysPerYear = 252

	// MinObservations is the minimum number of aligned return
	// observations a symbol needs to participate in the covariance
	// estimate. Shorter series are dropped and reported, not silently
	// included with degenerate statistics.
	MinObservations = 20
)

// EstimateResult carries per-symbol return series plus annualized expected
// returns and the annualized sample covariance matrix, all aligned on the
// intersection of trading dates. Returns are simple (arithmetic) daily
// returns.
type EstimateResult struct {
	Symbols        []string
	DroppedSymbols []string
	Observations   int
	Series         map[string]domain.ReturnSeries

	// ExpectedReturns[i] corresponds to Symbols[i].
	ExpectedReturns []float64
	Covariance      domain.CovarianceMatrix
}

// EstimateReturns converts daily close histories into aligned simple-return
// series and an annualized covariance matrix. Trading dates are intersected
// across symbols before returns are computed; symbols with fewer than
// MinObservations aligned returns, no history at all, or a zero close
// (which would make a return undefined) are dropped.
func EstimateReturns(symbols []string, prices map[string][]domain.AssetPrice) (*EstimateResult, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("cannot estimate returns with 0 symbols")
	}

	kept := []string{}
	dropped := []string{}
	closesBySymbol := map[string]map[time.Time]float64{}
	for _, symbol := range symbols {
		series := prices[symbol]
		// need one more price than MinObservations returns
		if len(series) < MinObservations+1 {
			dropped = append(dropped, symbol)
			continue
		}
		closes := make(map[time.Time]float64, len(series))
		for _, p := range series {
			closes[p.Date.UTC().Truncate(24*time.Hour)] = p.Close.InexactFloat64()
		}
		if hasZeroClose(closes) {
			dropped = append(dropped, symbol)
			continue
		}
		closesBySymbol[symbol] = closes
		kept = append(kept, symbol)
	}

	if len(kept) < 2 {
		return nil, fmt.Errorf("only %d of %d symbols have usable price history", len(kept), len(symbols))
	}

	dates := alignedDates(kept, closesBySymbol)
	if len(dates) < MinObservations+1 {
		return nil, fmt.Errorf("only %d aligned trading dates across %d symbols, need %d", len(dates), len(kept), MinObservations+1)
	}

	seriesBySymbol := map[string]domain.ReturnSeries{}
	returnsBySymbol := map[string][]float64{}
	for _, symbol := range kept {
		closes := closesBySymbol[symbol]
		returns := make([]float64, 0, len(dates)-1)
		for i := 1; i < len(dates); i++ {
			returns = append(returns, closes[dates[i]]/closes[dates[i-1]]-1)
		}
		returnsBySymbol[symbol] = returns
		seriesBySymbol[symbol] = domain.ReturnSeries{
			Symbol:  symbol,
			Dates:   dates[1:],
			Returns: returns,
		}
	}

	expected := make([]float64, len(kept))
	for i, symbol := range kept {
		mean, err := stats.Mean(returnsBySymbol[symbol])
		if err != nil {
			return nil, fmt.Errorf("failed to compute mean return for %s: %w", symbol, err)
		}
		expected[i] = mean * TradingDaysPerYear
	}

	cov, err := covarianceMatrix(kept, returnsBySymbol)
	if err != nil {
		return nil, err
	}

	return &EstimateResult{
		Symbols:         kept,
		DroppedSymbols:  dropped,
		Observations:    len(dates) - 1,
		Series:          seriesBySymbol,
		ExpectedReturns: expected,
		Covariance:      cov,
	}, nil
}

func hasZeroClose(closes map[time.Time]float64) bool {
	for _, c := range closes {
		if c == 0 {
			return true
		}
	}
	return false
}

// alignedDates returns the sorted intersection of available dates across
// all symbols.
func alignedDates(symbols []string, closesBySymbol map[string]map[time.Time]float64) []time.Time {
	counts := map[time.Time]int{}
	for _, symbol := range symbols {
		for date := range closesBySymbol[symbol] {
			counts[date]++
		}
	}

	dates := []time.Time{}
	for date, n := range counts {
		if n == len(symbols) {
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

func covarianceMatrix(symbols []string, returnsBySymbol map[string][]float64) (domain.CovarianceMatrix, error) {
	n := len(symbols)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov, err := stats.Covariance(returnsBySymbol[symbols[i]], returnsBySymbol[symbols[j]])
			if err != nil {
				return domain.CovarianceMatrix{}, fmt.Errorf("failed to compute covariance of %s/%s: %w", symbols[i], symbols[j], err)
			}
			annualized := cov * TradingDaysPerYear
			values[i][j] = annualized
			values[j][i] = annualized
		}
	}

	return domain.CovarianceMatrix{Symbols: symbols, Values: values}, nil
}
