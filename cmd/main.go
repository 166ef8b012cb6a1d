package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stockscreener/internal/app"
	"stockscreener/internal/config"
	"stockscreener/internal/domain"
	"stockscreener/internal/logger"
	"stockscreener/internal/service"
	"stockscreener/internal/universe"
	"stockscreener/pkg/discord"
	"stockscreener/pkg/tradestie"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:          "stockscreener",
		Short:        "Run value screening formulas and post results to Discord",
		SilenceUsage: true,
	}
	root.AddCommand(runCmd(), scheduleCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one screening run and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return executeRun(cmd.Context(), cfg)
		},
	}
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the screener on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logger.New()
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			scheduler := cron.New()
			_, err = scheduler.AddFunc(cfg.CronSchedule, func() {
				if err := executeRun(ctx, cfg); err != nil {
					log.Errorw("scheduled screening run failed", "error", err)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid cron schedule %q: %w", cfg.CronSchedule, err)
			}

			log.Infow("scheduler started", "schedule", cfg.CronSchedule)
			scheduler.Start()
			<-ctx.Done()

			stopCtx := scheduler.Stop()
			<-stopCtx.Done()
			log.Info("scheduler stopped")
			return nil
		},
	}
}

func executeRun(ctx context.Context, cfg *config.Config) error {
	log := logger.New()
	ctx = context.WithValue(ctx, logger.ContextKey, log)

	entries, err := loadUniverse(cfg)
	if err != nil {
		return err
	}

	handler := app.ScreeningHandler{
		StockData:    service.NewStockDataService(cfg.DataJockeyAPIKey, universe.SectorsBySymbol(entries)),
		Sentiment:    tradestie.Client{HttpClient: http.DefaultClient},
		PriceHistory: service.NewPriceHistoryService(),
	}

	result, err := handler.Run(ctx, app.ScreeningInput{
		Symbols: universe.Symbols(entries),
		UniverseFilter: universe.FilterConfig{
			MinMarketCap:     cfg.MinMarketCap,
			ExcludedSectors:  cfg.ExcludedSectors,
			AllowedExchanges: cfg.TargetExchanges,
		},
		EnabledFormulas:   cfg.EnabledFormulas,
		TopN:              cfg.TopN,
		PortfolioAnalysis: cfg.PortfolioAnalysis,
		RiskFreeRate:      cfg.RiskFreeRate,
		LookbackDays:      cfg.LookbackDays,
		Timeout:           cfg.RunTimeout,
	})
	if err != nil {
		return fmt.Errorf("screening run failed: %w", err)
	}

	logRunSummary(log, result)

	notifier := discord.Client{
		HttpClient: http.DefaultClient,
		WebhookURL: cfg.DiscordWebhookURL,
	}
	if err := notifier.SendRunResult(ctx, result); err != nil {
		return fmt.Errorf("failed to deliver results: %w", err)
	}
	return nil
}

func loadUniverse(cfg *config.Config) ([]universe.Entry, error) {
	if cfg.UniverseFile != "" {
		entries, err := universe.LoadEntries(cfg.UniverseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load universe file %s: %w", cfg.UniverseFile, err)
		}
		return entries, nil
	}
	return universe.DefaultEntries(), nil
}

func logRunSummary(log *zap.SugaredLogger, result *domain.ScreeningRunResult) {
	for _, run := range result.Runs {
		fields := []interface{}{
			"runId", result.RunID,
			"formula", run.Formula,
			"status", run.Status,
		}
		if run.Result != nil {
			fields = append(fields, "picks", run.Result.Symbols(), "eligible", run.Result.EligibleCount)
		}
		if run.Reason != "" {
			fields = append(fields, "reason", run.Reason)
		}
		log.Infow("formula run finished", fields...)
	}
}
