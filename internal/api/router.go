package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/shipit-ai/shipit-api/internal/api/handler"
	customMiddleware "github.com/shipit-ai/shipit-api/internal/api/middleware"
	"github.com/shipit-ai/shipit-api/internal/config"
	"github.com/shipit-ai/shipit-api/internal/identity"
	"github.com/shipit-ai/shipit-api/internal/ingest"
	"github.com/shipit-ai/shipit-api/internal/llm"
	"github.com/shipit-ai/shipit-api/internal/llm/anthropic"
	"github.com/shipit-ai/shipit-api/internal/llm/deepseek"
	"github.com/shipit-ai/shipit-api/internal/llm/gemini"
	"github.com/shipit-ai/shipit-api/internal/llm/ollama"
	"github.com/shipit-ai/shipit-api/internal/llm/openai"
	"github.com/shipit-ai/shipit-api/internal/repository/postgres"
	"github.com/shipit-ai/shipit-api/internal/repository/redis"
	"github.com/shipit-ai/shipit-api/internal/service"
	"github.com/shipit-ai/shipit-api/internal/storage"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Refresh-Token"},
		ExposedHeaders:   []string{"X-Request-ID", "New-Access-Token", "New-Refresh-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// External collaborators
	identityClient := identity.NewClient(cfg.Auth)
	authGateway := identity.NewGateway(identityClient, cfg.Auth.AllowRefresh)
	objectStore := storage.NewClient(cfg.Storage)

	// Repositories
	conversationRepo := postgres.NewConversationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	// Rate limiter
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	// Completion router
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	log.Info().Msgf("Initializing completion providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		llmRouter.RegisterProvider(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
	}
	if cfg.LLM.DeepSeek.APIKey != "" {
		llmRouter.RegisterProvider(deepseek.NewProvider(cfg.LLM.DeepSeek.APIKey, cfg.LLM.DeepSeek.Model))
	}
	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}
	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini))
	}

	// Services
	ingestCoordinator := ingest.NewCoordinator(objectStore)
	conversationService := service.NewConversationService(
		conversationRepo,
		messageRepo,
		ingestCoordinator,
		llmRouter,
	)

	// Handlers
	conversationHandler := handler.NewConversationHandler(conversationService)

	// Middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(authGateway)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.List)
				r.Post("/", conversationHandler.Create)
				r.Get("/{conversationID}", conversationHandler.Get)
			})
		})
	})

	return r
}
