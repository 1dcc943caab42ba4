package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"maya-studio/internal/anthropic"
	"maya-studio/internal/config"
	"maya-studio/internal/gateway"
	"maya-studio/internal/gemini"
	"maya-studio/internal/handlers"
	"maya-studio/internal/httpclient"
	"maya-studio/internal/mediagroup"
	"maya-studio/internal/replicate"
	"maya-studio/internal/telegram"
	"maya-studio/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	gw := newGateway(cfg, httpClient, logger)

	machine := workflow.NewMachine(workflow.Options{
		Gateway:      gw,
		MaxRevisions: cfg.MaxRevisions,
		Logger:       logger,
	})

	handler := handlers.New(handlers.Options{
		Telegram: tg,
		Machine:  machine,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	onGroupFlush := func(group mediagroup.Group) {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		go func() {
			defer func() { <-sem }()

			reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
			defer cancel()

			handler.HandleMediaGroup(reqCtx, group)
		}()
	}

	aggregator := mediagroup.New(mediagroup.Options{
		Debounce: cfg.MediaGroupDebounce,
		OnFlush:  onGroupFlush,
	})
	handler.SetMediaGroupAggregator(aggregator)

	logger.Info("bot started", "username", tg.Username())

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
			}(update)
		}
	}
}

// newGateway wires whichever providers have credentials; the rest stay nil and
// the gateway serves placeholders for them.
func newGateway(cfg config.Config, httpClient *http.Client, logger *slog.Logger) *gateway.Gateway {
	opts := gateway.Options{Logger: logger}

	if cfg.ReplicateAPIToken != "" {
		opts.Image = replicate.New(replicate.Options{
			APIToken:     cfg.ReplicateAPIToken,
			BaseURL:      cfg.ReplicateBaseURL,
			Model:        cfg.ReplicateModel,
			PollInterval: cfg.ReplicatePollInterval,
			PollAttempts: cfg.ReplicatePollAttempts,
			HTTPClient:   httpClient,
			Logger:       logger,
		})
	} else {
		logger.Info("REPLICATE_API_TOKEN not set, image generation uses placeholders")
	}

	if cfg.AnthropicAPIKey != "" {
		opts.Caption = anthropic.New(anthropic.Options{
			APIKey:     cfg.AnthropicAPIKey,
			BaseURL:    cfg.AnthropicBaseURL,
			Model:      cfg.AnthropicModel,
			HTTPClient: httpClient,
			Logger:     logger,
		})
	} else {
		logger.Info("ANTHROPIC_API_KEY not set, captions use the fallback set")
	}

	if cfg.GoogleAIAPIKey != "" {
		opts.Vision = gateway.NewGeminiVision(gemini.New(gemini.Options{
			APIKey:     cfg.GoogleAIAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			Model:      cfg.GeminiModel,
			HTTPClient: httpClient,
			Logger:     logger,
		}))
	} else {
		logger.Info("GOOGLE_AI_API_KEY not set, inspiration analysis is disabled")
	}

	return gateway.New(opts)
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
