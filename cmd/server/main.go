package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/replydesk/replydesk-backend/internal/api"
	"github.com/replydesk/replydesk-backend/internal/classifier"
	"github.com/replydesk/replydesk-backend/internal/config"
	"github.com/replydesk/replydesk-backend/internal/database"
	"github.com/replydesk/replydesk-backend/internal/events"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/rules"
)

func main() {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting replydesk backend")
	cfg.LogConfig(logger)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}

	cls, composer, source := buildClassifier(cfg, logger)

	hub := events.NewHub(logger)
	go hub.Run()

	e := api.NewRouter(&api.RouterConfig{
		DB:             db,
		Classifier:     cls,
		Composer:       composer,
		Source:         source,
		Evaluator:      rules.NewEvaluator(cfg.ConfidenceThreshold),
		Hub:            hub,
		Logger:         logger,
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.AllowedOrigins,
		AppEnv:         cfg.AppEnv,
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		logger.Info("http server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

// buildClassifier wires the configured provider. Reply composition is only
// available with the OpenAI provider and only when enabled.
func buildClassifier(cfg *config.Config, logger *slog.Logger) (classifier.Classifier, classifier.ReplyComposer, models.SuggestionSource) {
	switch cfg.ClassifierProvider {
	case config.ProviderOpenAI:
		oc := classifier.NewOpenAIClassifier(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
		var composer classifier.ReplyComposer
		if cfg.ComposeReplies {
			composer = oc
		}
		return oc, composer, models.SourceAI
	default:
		return classifier.NewKeywordClassifier(), nil, models.SourceKeyword
	}
}
