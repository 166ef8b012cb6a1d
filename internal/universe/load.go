package universe

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// Entry is one row of a universe file. Sector comes from the universe file
// because the quote API does not report it.
type Entry struct {
	Symbol string `csv:"symbol"`
	Sector string `csv:"sector"`
}

func LoadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open universe file %s: %w", path, err)
	}
	defer f.Close()

	entries := []Entry{}
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		return nil, fmt.Errorf("could not parse universe file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("universe file %s contains no symbols", path)
	}

	return entries, nil
}

// DefaultEntries is the baked-in US large-cap universe, used when no
// universe file is configured.
func DefaultEntries() []Entry {
	build := func(sector string, symbols ...string) []Entry {
		out := make([]Entry, 0, len(symbols))
		for _, s := range symbols {
			out = append(out, Entry{Symbol: s, Sector: sector})
		}
		return out
	}

	entries := []Entry{}
	entries = append(entries, build("Technology",
		"AAPL", "MSFT", "GOOGL", "META", "NVDA", "AVGO", "ORCL", "CRM", "ADBE", "AMD",
		"INTC", "CSCO", "IBM", "QCOM", "TXN", "NOW", "INTU", "AMAT", "MU", "LRCX")...)
	entries = append(entries, build("Healthcare",
		"UNH", "JNJ", "LLY", "PFE", "ABBV", "MRK", "TMO", "ABT", "DHR", "BMY",
		"AMGN", "GILD", "VRTX", "REGN", "ISRG", "MDT", "SYK", "ZTS", "BDX", "CI")...)
	entries = append(entries, build("Consumer Cyclical",
		"AMZN", "TSLA", "HD", "MCD", "NKE", "SBUX", "LOW", "TJX", "COST", "TGT")...)
	entries = append(entries, build("Consumer Defensive",
		"PG", "KO", "PEP", "PM", "MO", "CL", "EL", "GIS", "K", "KHC")...)
	entries = append(entries, build("Industrials",
		"CAT", "DE", "UNP", "UPS", "RTX", "HON", "BA", "LMT", "GE", "MMM")...)
	entries = append(entries, build("Energy",
		"XOM", "CVX", "COP", "SLB", "EOG", "MPC", "PSX", "VLO", "OXY", "HAL")...)
	entries = append(entries, build("Communication Services",
		"GOOG", "DIS", "NFLX", "CMCSA", "VZ", "T", "TMUS", "CHTR")...)

	return entries
}

func Symbols(entries []Entry) []string {
	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		symbols = append(symbols, e.Symbol)
	}
	return symbols
}

func SectorsBySymbol(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Symbol] = e.Sector
	}
	return out
}
