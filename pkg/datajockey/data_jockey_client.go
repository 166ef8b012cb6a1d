package datajockey

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"stockscreener/internal/logger"
)

type Client struct {
	HttpClient *http.Client
	ApiKey     string
}

// Fields maps fiscal period labels (e.g. "2023") to reported values.
// Annual statements give us the current and prior fiscal year the delta
// signals need.
type Fields struct {
	Revenue                 map[string]float64 `json:"revenue"`
	GrossProfit             map[string]float64 `json:"gross_profit"`
	OperatingIncome         map[string]float64 `json:"operating_income"`
	NetIncome               map[string]float64 `json:"net_income"`
	TotalAssets             map[string]float64 `json:"total_assets"`
	TotalCurrentAssets      map[string]float64 `json:"total_current_assets"`
	TotalCurrentLiabilities map[string]float64 `json:"total_current_liabilities"`
	TotalLiabilities        map[string]float64 `json:"total_liabilities"`
	LongTermDebt            map[string]float64 `json:"long_term_debt"`
	RetainedEarnings        map[string]float64 `json:"retained_earnings"`
	ShareholderEquity       map[string]float64 `json:"shareholder_equity"`
	SharesOutstandingBasic  map[string]float64 `json:"shares_outstanding_basic"`
	EpsBasic                map[string]float64 `json:"eps_basic"`
	OperatingCashFlow       map[string]float64 `json:"operating_cash_flow"`
	CashOnHand              map[string]float64 `json:"cash_on_hand"`
}

type FinancialResponse struct {
	Currency    string `json:"currency"`
	CompanyInfo struct {
		CIK    string `json:"cik"`
		Ticker string `json:"ticker"`
		Name   string `json:"name"`
	} `json:"company_info"`
	FinancialData struct {
		Quarterly Fields `json:"quarterly"`
		Annual    Fields `json:"annual"`
	} `json:"financial_data"`
}

// Latest returns the value for the most recent fiscal period in a field
// map, or nil when the field was not reported.
func Latest(field map[string]float64) *float64 {
	return nthMostRecent(field, 0)
}

// Prior returns the value for the fiscal period before the most recent
// one.
func Prior(field map[string]float64) *float64 {
	return nthMostRecent(field, 1)
}

func nthMostRecent(field map[string]float64, n int) *float64 {
	if len(field) <= n {
		return nil
	}
	periods := make([]string, 0, len(field))
	for period := range field {
		periods = append(periods, period)
	}
	// period labels are fiscal year strings - lexical descending order
	// is chronological descending order
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	v := field[periods[n]]
	return &v
}

func (c Client) GetFinancials(ctx context.Context, symbol string) (*FinancialResponse, error) {
	url := fmt.Sprintf("https://api.datajockey.io/v0/company/financials?apikey=%s&ticker=%s&period=A", c.ApiKey, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode == 429 {
		logger.Debug("hit rate limit. sleeping...")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(60 * time.Second):
		}
		return c.GetFinancials(ctx, symbol)
	} else if response.StatusCode != 200 {
		type errResponse struct {
			Error string `json:"error"`
		}
		errJson := errResponse{}
		err = json.Unmarshal(responseBytes, &errJson)
		if err != nil {
			return nil, fmt.Errorf("received status code %d and failed to read error: %w", response.StatusCode, err)
		}
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, errJson.Error)
	}

	var responseJson FinancialResponse
	err = json.Unmarshal(responseBytes, &responseJson)
	if err != nil {
		return nil, err
	}

	return &responseJson, nil
}
