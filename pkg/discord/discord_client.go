package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"stockscreener/internal/domain"
)

const embedColor = 3447003 // blue

type Client struct {
	HttpClient *http.Client
	WebhookURL string
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendRunResult posts one embed per formula run to the webhook. Discord
// caps payloads at 10 embeds, which covers every formula plus a summary.
func (c Client) SendRunResult(ctx context.Context, result *domain.ScreeningRunResult) error {
	payload := webhookPayload{
		Content: fmt.Sprintf(
			"Screening run `%s` - %d/%d stocks passed the universe filter",
			result.RunID, result.EligibleSize, result.UniverseSize,
		),
	}
	for _, run := range result.Runs {
		payload.Embeds = append(payload.Embeds, formatRun(run))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post discord webhook: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusNoContent && response.StatusCode != http.StatusOK {
		return fmt.Errorf("discord webhook failed with status code %d", response.StatusCode)
	}
	return nil
}

func formatRun(run domain.FormulaRun) embed {
	e := embed{
		Title: fmt.Sprintf("📈 %s", run.Formula.DisplayName()),
		Color: embedColor,
	}

	if run.Status != domain.RunStatusCompleted {
		e.Description = fmt.Sprintf("%s: %s", run.Status, run.Reason)
		return e
	}
	if len(run.Result.Stocks) == 0 {
		e.Description = "no eligible stocks this run"
		return e
	}

	for i, stock := range run.Result.Stocks {
		e.Fields = append(e.Fields, embedField{
			Name:  fmt.Sprintf("%s %d. %s", medal(i+1), i+1, stock.Symbol),
			Value: formatMetrics(stock),
		})
	}

	if run.Portfolio != nil {
		e.Fields = append(e.Fields, embedField{
			Name:  "Suggested allocations",
			Value: formatPortfolio(run.Portfolio),
		})
	}
	return e
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return "🏅"
}

func formatMetrics(stock domain.ScoredStock) string {
	parts := make([]string, 0, len(stock.Metrics))
	for _, m := range stock.Metrics {
		parts = append(parts, fmt.Sprintf("%s: %.2f", strings.ReplaceAll(m.Name, "_", " "), m.Value))
	}
	return strings.Join(parts, " | ")
}

func formatPortfolio(p *domain.PortfolioAnalysis) string {
	lines := []string{}
	for name, weights := range map[string]*domain.PortfolioWeights{
		"max sharpe":   p.MaxSharpe,
		"min variance": p.MinVariance,
		"risk parity":  p.EqualRisk,
	} {
		if weights == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"**%s** (vol %.1f%%, sharpe %.2f): %s",
			name, weights.Volatility*100, weights.SharpeRatio, formatWeights(weights.Weights),
		))
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		return "no allocations solved"
	}
	return strings.Join(lines, "\n")
}

func formatWeights(weights map[string]float64) string {
	symbols := make([]string, 0, len(weights))
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	parts := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		parts = append(parts, fmt.Sprintf("%s %.0f%%", symbol, weights[symbol]*100))
	}
	return strings.Join(parts, ", ")
}
