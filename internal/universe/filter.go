package universe

import (
	"stockscreener/internal/domain"
)

type FilterConfig struct {
	MinMarketCap     float64
	ExcludedSectors  []string
	AllowedExchanges []string
}

// Filter narrows raw records to the eligible screening set. Records missing
// market cap, sector, or exchange are excluded (fail-closed). Input order
// is preserved.
func Filter(records []domain.StockRecord, cfg FilterConfig) []domain.StockRecord {
	excluded := make(map[string]bool, len(cfg.ExcludedSectors))
	for _, s := range cfg.ExcludedSectors {
		excluded[s] = true
	}
	allowed := make(map[string]bool, len(cfg.AllowedExchanges))
	for _, e := range cfg.AllowedExchanges {
		allowed[e] = true
	}

	out := []domain.StockRecord{}
	for _, r := range records {
		if r.MarketCap == nil || r.Sector == "" || r.Exchange == "" {
			continue
		}
		if *r.MarketCap < cfg.MinMarketCap {
			continue
		}
		if excluded[r.Sector] {
			continue
		}
		if !allowed[r.Exchange] {
			continue
		}
		out = append(out, r)
	}
	return out
}
