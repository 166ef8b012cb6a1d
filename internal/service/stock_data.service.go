package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"stockscreener/internal/domain"
	"stockscreener/internal/logger"
	"stockscreener/pkg/datajockey"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
)

type StockDataService interface {
	GetStockRecords(ctx context.Context, symbols []string) ([]domain.StockRecord, error)
}

type FundamentalsClient interface {
	GetFinancials(ctx context.Context, symbol string) (*datajockey.FinancialResponse, error)
}

type QuoteClient interface {
	GetEquity(symbol string) (*finance.Equity, error)
}

type YahooQuoteClient struct{}

func (YahooQuoteClient) GetEquity(symbol string) (*finance.Equity, error) {
	return equity.Get(symbol)
}

type stockDataServiceHandler struct {
	Fundamentals FundamentalsClient
	Quotes       QuoteClient
	// SectorBySymbol supplies the sector classification quotes lack.
	SectorBySymbol map[string]string
}

func NewStockDataService(apiKey string, sectorBySymbol map[string]string) StockDataService {
	return &stockDataServiceHandler{
		Fundamentals: datajockey.Client{
			HttpClient: http.DefaultClient,
			ApiKey:     apiKey,
		},
		Quotes:         YahooQuoteClient{},
		SectorBySymbol: sectorBySymbol,
	}
}

// GetStockRecords assembles one record per symbol from a live quote plus
// two fiscal years of fundamentals. A symbol whose upstream fetch fails
// is logged and skipped so one delisted ticker cannot sink the run; the
// fetch as a whole fails only when the context dies or nothing resolves.
func (h *stockDataServiceHandler) GetStockRecords(ctx context.Context, symbols []string) ([]domain.StockRecord, error) {
	log := logger.FromContext(ctx)

	records := make([]domain.StockRecord, 0, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := h.buildRecord(ctx, symbol)
		if err != nil {
			log.Warnw("skipping symbol",
				"symbol", symbol,
				"error", err,
			)
			continue
		}
		records = append(records, *record)
	}

	if len(records) == 0 && len(symbols) > 0 {
		return nil, fmt.Errorf("failed to build records for all %d symbols", len(symbols))
	}
	return records, nil
}

func (h *stockDataServiceHandler) buildRecord(ctx context.Context, symbol string) (*domain.StockRecord, error) {
	q, err := h.Quotes.GetEquity(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if q == nil {
		return nil, fmt.Errorf("no quote returned")
	}

	financials, err := h.Fundamentals.GetFinancials(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get financials: %w", err)
	}
	annual := financials.FinancialData.Annual

	record := &domain.StockRecord{
		Symbol:      symbol,
		CompanyName: q.ShortName,
		Price:       q.RegularMarketPrice,
		Sector:      h.SectorBySymbol[symbol],
		Exchange:    normalizeExchange(q.ExchangeID),

		EBIT:               datajockey.Latest(annual.OperatingIncome),
		TotalAssets:        datajockey.Latest(annual.TotalAssets),
		TotalAssetsPrev:    datajockey.Prior(annual.TotalAssets),
		CurrentLiabilities: datajockey.Latest(annual.TotalCurrentLiabilities),
		TotalLiabilities:   datajockey.Latest(annual.TotalLiabilities),
		RetainedEarnings:   datajockey.Latest(annual.RetainedEarnings),
		Revenue:            datajockey.Latest(annual.Revenue),

		NetIncome:             datajockey.Latest(annual.NetIncome),
		OperatingCashFlow:     datajockey.Latest(annual.OperatingCashFlow),
		LongTermDebt:          datajockey.Latest(annual.LongTermDebt),
		LongTermDebtPrev:      datajockey.Prior(annual.LongTermDebt),
		SharesOutstanding:     datajockey.Latest(annual.SharesOutstandingBasic),
		SharesOutstandingPrev: datajockey.Prior(annual.SharesOutstandingBasic),
	}

	if q.MarketCap > 0 {
		record.MarketCap = ptr(float64(q.MarketCap))
	}

	record.WorkingCapital = diff(
		datajockey.Latest(annual.TotalCurrentAssets),
		datajockey.Latest(annual.TotalCurrentLiabilities),
	)
	record.EnterpriseValue = enterpriseValue(
		record.MarketCap,
		datajockey.Latest(annual.LongTermDebt),
		datajockey.Latest(annual.CashOnHand),
	)

	record.EPS = ptr(q.EpsTrailingTwelveMonths)
	if q.EpsTrailingTwelveMonths == 0 {
		record.EPS = datajockey.Latest(annual.EpsBasic)
	}
	record.BookValuePerShare = ptr(q.BookValue)
	if q.BookValue == 0 {
		record.BookValuePerShare = ratio(
			datajockey.Latest(annual.ShareholderEquity),
			datajockey.Latest(annual.SharesOutstandingBasic),
		)
	}

	record.ReturnOnAssets = ratio(datajockey.Latest(annual.NetIncome), datajockey.Latest(annual.TotalAssets))
	record.ReturnOnAssetsPrev = ratio(datajockey.Prior(annual.NetIncome), datajockey.Prior(annual.TotalAssets))
	record.CurrentRatio = ratio(datajockey.Latest(annual.TotalCurrentAssets), datajockey.Latest(annual.TotalCurrentLiabilities))
	record.CurrentRatioPrev = ratio(datajockey.Prior(annual.TotalCurrentAssets), datajockey.Prior(annual.TotalCurrentLiabilities))
	record.AssetTurnover = ratio(datajockey.Latest(annual.Revenue), datajockey.Latest(annual.TotalAssets))
	record.AssetTurnoverPrev = ratio(datajockey.Prior(annual.Revenue), datajockey.Prior(annual.TotalAssets))
	record.GrossMargin = ratio(datajockey.Latest(annual.GrossProfit), datajockey.Latest(annual.Revenue))
	record.GrossMarginPrev = ratio(datajockey.Prior(annual.GrossProfit), datajockey.Prior(annual.Revenue))

	return record, nil
}

// normalizeExchange maps Yahoo exchange codes to the venue names used in
// universe filter configuration.
func normalizeExchange(exchangeID string) string {
	switch strings.ToUpper(exchangeID) {
	case "NMS", "NGM", "NCM":
		return "NASDAQ"
	case "NYQ":
		return "NYSE"
	case "ASE":
		return "AMEX"
	}
	return strings.ToUpper(exchangeID)
}

func enterpriseValue(marketCap, longTermDebt, cash *float64) *float64 {
	if marketCap == nil {
		return nil
	}
	ev := *marketCap
	if longTermDebt != nil {
		ev += *longTermDebt
	}
	if cash != nil {
		ev -= *cash
	}
	return &ev
}

func ratio(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	v := *numerator / *denominator
	return &v
}

func diff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a - *b
	return &v
}

func ptr(v float64) *float64 {
	return &v
}
