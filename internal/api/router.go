package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/replydesk/replydesk-backend/internal/api/handlers"
	"github.com/replydesk/replydesk-backend/internal/api/middleware"
	"github.com/replydesk/replydesk-backend/internal/classifier"
	"github.com/replydesk/replydesk-backend/internal/events"
	"github.com/replydesk/replydesk-backend/internal/models"
	"github.com/replydesk/replydesk-backend/internal/repository"
	"github.com/replydesk/replydesk-backend/internal/rules"
	"github.com/replydesk/replydesk-backend/internal/services"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB         *gorm.DB
	Classifier classifier.Classifier
	Composer   classifier.ReplyComposer // optional, nil means template draft bodies
	Source     models.SuggestionSource
	Evaluator  *rules.Evaluator
	Hub        *events.Hub // optional, nil disables websocket events
	Logger     *slog.Logger
	// Security configuration
	APIKey         string  // API key for authentication (empty = disabled)
	AllowedOrigins string  // Comma-separated CORS origins
	AppEnv         string  // Deployment environment
	RateLimit      float64 // Requests per second
	RateBurst      int     // Burst size for rate limiter
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware, outermost first
	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.AppEnv))
	e.Use(middleware.RateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Logger))
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Repositories
	threadRepo := repository.NewThreadRepository(cfg.DB)
	suggestionRepo := repository.NewSuggestionRepository(cfg.DB)
	decisionRepo := repository.NewDecisionRepository(cfg.DB)
	draftRepo := repository.NewDraftRepository(cfg.DB)

	// Services; a nil hub must stay a nil notifier interface
	var notifier events.Notifier
	if cfg.Hub != nil {
		notifier = cfg.Hub
	}
	triageService := services.NewTriageService(threadRepo, suggestionRepo, cfg.Classifier, cfg.Evaluator, cfg.Source, notifier, cfg.Logger)
	decisionService := services.NewDecisionService(decisionRepo, suggestionRepo, threadRepo, cfg.Composer, notifier, cfg.Logger)
	draftService := services.NewDraftService(draftRepo, decisionRepo, suggestionRepo, threadRepo, notifier, cfg.Logger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	threadHandler := handlers.NewThreadHandler(triageService, threadRepo)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionRepo, threadRepo)
	decisionHandler := handlers.NewDecisionHandler(decisionService, draftService)
	draftHandler := handlers.NewDraftHandler(draftService)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// Websocket events
	if cfg.Hub != nil {
		upgrader := events.NewSecureUpgrader(cfg.AllowedOrigins, cfg.Logger)
		wsHandler := handlers.NewWSHandler(cfg.Hub, upgrader, cfg.Logger)
		e.GET("/ws", wsHandler.Serve)
	}

	// API routes
	api := e.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.APIKey, cfg.Logger))

	// Thread routes
	threads := api.Group("/threads")
	threads.POST("/ingest", threadHandler.Ingest)
	threads.GET("", threadHandler.List)
	threads.GET("/:id", threadHandler.Get)
	threads.DELETE("/:id", threadHandler.Delete)

	// Suggestion routes (nested under messages)
	messages := api.Group("/messages")
	messages.GET("/:message_id/suggestions", suggestionHandler.ListByMessage)

	// Suggestion routes (standalone)
	suggestions := api.Group("/suggestions")
	suggestions.GET("/:id", suggestionHandler.Get)
	suggestions.POST("/:suggestion_id/decisions", decisionHandler.Create)
	suggestions.GET("/:suggestion_id/decisions", decisionHandler.ListBySuggestion)

	// Decision routes
	decisions := api.Group("/decisions")
	decisions.GET("/:id", decisionHandler.Get)
	decisions.POST("/:id/draft", decisionHandler.CreateDraft)

	// Draft routes
	drafts := api.Group("/drafts")
	drafts.GET("", draftHandler.List)
	drafts.GET("/:id", draftHandler.Get)
	drafts.PATCH("/:id", draftHandler.Update)
	drafts.POST("/:id/send", draftHandler.Send)

	return e
}
