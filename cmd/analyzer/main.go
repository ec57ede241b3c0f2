package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stockmaster/internal/analyze"
	"stockmaster/internal/api/alphavantage"
	"stockmaster/internal/config"
	"stockmaster/internal/database"
	"stockmaster/internal/notifier"
	"stockmaster/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.LogLevel)
	log.Info().Strs("symbols", cfg.Symbols).Msg("Starting stock analyzer")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r, err := newRunner(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer r.close()

	if cfg.Schedule == "" {
		r.runAll(ctx)
		return
	}

	// Scheduled mode: run immediately, then on every cron tick until a
	// shutdown signal arrives.
	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { r.runAll(ctx) }); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Schedule).Msg("Invalid cron schedule")
	}
	r.runAll(ctx)
	c.Start()
	log.Info().Str("schedule", cfg.Schedule).Msg("Scheduler started")

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received, stopping scheduler")
	<-c.Stop().Done()
}

// runner wires the data source, the engine and the optional sinks.
type runner struct {
	cfg      *config.Config
	client   *alphavantage.Client
	db       *database.DB
	telegram *notifier.Telegram
}

func newRunner(cfg *config.Config) (*runner, error) {
	r := &runner{
		cfg: cfg,
		client: alphavantage.NewClient(alphavantage.ClientOptions{
			APIKey:         cfg.AlphaVantageAPIKey,
			RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		}),
	}

	if cfg.DatabaseURL != "" {
		db, err := database.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		r.db = db
		log.Info().Msg("Postgres sync enabled")
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("connecting to telegram: %w", err)
		}
		r.telegram = tg
		log.Info().Int64("chat_id", cfg.TelegramChatID).Msg("Telegram push enabled")
	}

	return r, nil
}

func (r *runner) close() {
	if r.db != nil {
		r.db.Close()
	}
}

// runAll analyzes every configured symbol. Failures are logged per symbol
// so one bad ticker never blocks the rest of the batch.
func (r *runner) runAll(ctx context.Context) {
	for _, symbol := range r.cfg.Symbols {
		if ctx.Err() != nil {
			return
		}
		if err := r.runOne(ctx, symbol); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("Analysis failed")
		}
	}
}

func (r *runner) runOne(ctx context.Context, symbol string) error {
	candles, err := r.client.Daily(ctx, symbol, r.cfg.OutputSize)
	if err != nil {
		return fmt.Errorf("fetching candles: %w", err)
	}

	result, err := analyze.Run(symbol, candles, r.cfg)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	fmt.Println(report.Format(result))
	log.Info().
		Str("symbol", symbol).
		Int("score", result.Score).
		Str("recommendation", result.Recommendation).
		Msg("Analysis complete")

	if r.db != nil {
		if err := r.db.SaveReport(ctx, result); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("Postgres sync failed")
		}
	}
	if r.telegram != nil {
		if err := r.telegram.Send(report.Summary(result)); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("Telegram push failed")
		}
	}
	return nil
}

func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
