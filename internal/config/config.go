package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"stockscreener/internal/domain"

	"github.com/joho/godotenv"
)

// Config is the explicit configuration struct handed to the orchestrator -
// no process-wide mutable flags.
type Config struct {
	DiscordWebhookURL string
	DataJockeyAPIKey  string

	UniverseFile     string
	MinMarketCap     float64
	ExcludedSectors  []string
	TargetExchanges  []string
	TopN             int
	EnabledFormulas  []domain.Formula

	PortfolioAnalysis bool
	RiskFreeRate      float64
	LookbackDays      int

	RunTimeout   time.Duration
	CronSchedule string
}

// Load reads configuration from the environment, honoring a .env file when
// present. Malformed values are rejected rather than silently replaced with
// defaults.
func Load() (*Config, error) {
	// missing .env is fine - plain env vars still apply
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		DataJockeyAPIKey:  os.Getenv("DATAJOCKEY_API_KEY"),
		UniverseFile:      os.Getenv("UNIVERSE_FILE"),
		MinMarketCap:      env.Float("MIN_MARKET_CAP", 100_000_000),
		ExcludedSectors:   env.List("EXCLUDED_SECTORS", []string{"Financial Services", "Utilities"}),
		TargetExchanges:   env.List("TARGET_EXCHANGES", []string{"NYSE", "NASDAQ"}),
		TopN:              env.Int("TOP_N_STOCKS", 5),
		PortfolioAnalysis: env.Bool("PORTFOLIO_ANALYSIS", true),
		RiskFreeRate:      env.Float("RISK_FREE_RATE", 0.02),
		LookbackDays:      env.Int("LOOKBACK_DAYS", 365),
		RunTimeout:        env.Duration("RUN_TIMEOUT", 10*time.Minute),
		CronSchedule:      env.String("CRON_SCHEDULE", "0 13 * * 1-5"),
	}
	if env.err != nil {
		return nil, env.err
	}

	formulas, err := parseFormulas(os.Getenv("ENABLED_FORMULAS"))
	if err != nil {
		return nil, err
	}
	cfg.EnabledFormulas = formulas

	return cfg, nil
}

// Validate enforces run preconditions. Zero enabled formulas is the only
// configuration that makes a screening run impossible.
func (c *Config) Validate() error {
	missing := []string{}
	if c.DiscordWebhookURL == "" {
		missing = append(missing, "DISCORD_WEBHOOK_URL")
	}
	if c.DataJockeyAPIKey == "" {
		missing = append(missing, "DATAJOCKEY_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(c.EnabledFormulas) == 0 {
		return fmt.Errorf("no formulas enabled")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("TOP_N_STOCKS must be positive, got %d", c.TopN)
	}
	return nil
}

func parseFormulas(raw string) ([]domain.Formula, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.AllFormulas(), nil
	}

	known := map[domain.Formula]bool{}
	for _, f := range domain.AllFormulas() {
		known[f] = true
	}

	out := []domain.Formula{}
	for _, part := range strings.Split(raw, ",") {
		f := domain.Formula(strings.TrimSpace(strings.ToLower(part)))
		if f == "" {
			continue
		}
		if !known[f] {
			return nil, fmt.Errorf("unknown formula %q in ENABLED_FORMULAS", part)
		}
		out = append(out, f)
	}
	return out, nil
}

// envReader parses typed environment values, recording the first malformed
// one so Load can reject the configuration instead of quietly running with
// a default the operator never chose.
type envReader struct {
	err error
}

func (r *envReader) fail(key, raw string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
}

func (r *envReader) String(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (r *envReader) List(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (r *envReader) Int(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(key, raw, err)
		return fallback
	}
	return v
}

func (r *envReader) Float(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(key, raw, err)
		return fallback
	}
	return v
}

func (r *envReader) Bool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(key, raw, err)
		return fallback
	}
	return v
}

func (r *envReader) Duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.fail(key, raw, err)
		return fallback
	}
	return v
}
