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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"maya-studio/internal/anthropic"
	"maya-studio/internal/api"
	"maya-studio/internal/config"
	"maya-studio/internal/gateway"
	"maya-studio/internal/gemini"
	"maya-studio/internal/httpclient"
	"maya-studio/internal/replicate"
	"maya-studio/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	gw := newGateway(cfg, httpClient, logger)

	machine := workflow.NewMachine(workflow.Options{
		Gateway:      gw,
		MaxRevisions: cfg.MaxRevisions,
		Logger:       logger,
	})

	handler := api.New(api.Options{
		Machine: machine,
		Gateway: gw,
		Logger:  logger,
	})

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(requestLogger(logger))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("web started", "addr", cfg.WebAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
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

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("http", "method", r.Method, "path", r.URL.Path, "dur_ms", time.Since(start).Milliseconds())
		})
	}
}
