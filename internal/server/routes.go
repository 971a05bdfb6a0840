package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/ai"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/handler"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/middleware"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/pipeline"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/schema"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/security"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/store"
)

// setupRoutes returns (router, pool, error) so the pool can be closed on
// shutdown.
func (s *Server) setupRoutes(ctx context.Context) (http.Handler, *pgxpool.Pool, error) {
	cfg := s.cfg

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AnthropicAPIKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - model calls will fail")
	}
	collab := ai.NewClient(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL)

	sc := schema.Default()
	validator := security.NewValidator(sc, cfg.StrictTimezone)
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)
	executor := store.NewExecutor(pool)
	settings := store.NewSettingsCache(pool, store.TenantSettings{
		Currency: cfg.DefaultCurrency,
		Timezone: cfg.DefaultTimezone,
	})

	pipe := pipeline.New(collab, executor, settings, validator, sc, auditLogger, pipeline.Options{
		RowCap:           cfg.RowCap,
		ClassifyTimeout:  cfg.ClassifyTimeout(),
		GenerateTimeout:  cfg.GenerateTimeout(),
		ExecuteTimeout:   cfg.ExecuteTimeout(),
		InterpretTimeout: cfg.InterpretTimeout(),
	})

	log.Info().
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Bool("strict_timezone", cfg.StrictTimezone).
		Int("row_cap", cfg.RowCap).
		Msg("service configuration")
	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("auth enabled but no API keys configured - all API requests will be rejected")
	}

	healthH := handler.NewHealthHandler(pool)
	askH := handler.NewAskHandler(pipe, cfg.MaxQuestionLength)

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute, cfg.APIKeyHeader),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/ask", askH.Ask)
		})
	})

	return r, pool, nil
}
