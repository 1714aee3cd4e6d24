package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/wishwall/wishwall/internal/metrics"
	"github.com/wishwall/wishwall/internal/middleware"
)

// RouterConfig carries the handlers and middleware settings for NewRouter.
type RouterConfig struct {
	Info      *Handler
	Health    *HealthHandler
	Metrics   *MetricsHandler
	Messages  *MessageHandler
	Admin     *AdminHandler
	Countdown *CountdownHandler
	Analytics *AnalyticsHandler

	Gate    middleware.Authorizer
	Visitor middleware.VisitorTracker

	RateLimit   middleware.RateLimitConfig
	CORS        middleware.CORSConfig
	Security    middleware.SecurityConfig
	MaxBodySize int64

	// DevTools registers force-unlock and reset. Never set in production.
	DevTools      bool
	SecureCookies bool
	Verbose       bool

	TracerProvider trace.TracerProvider
	Recorder       metrics.Recorder
	Logger         *slog.Logger
}

// NewRouter wires every route and the global middleware chain.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Tracing(cfg.TracerProvider))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger, cfg.Recorder))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.Verbose))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Probes and service info
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/metrics", cfg.Metrics.Metrics)
	r.Get("/", cfg.Info.Info)

	requireAdmin := middleware.RequireAdmin(cfg.Gate, cfg.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/countdown", cfg.Countdown.Get)

		// Public wishes; moderation shares the path with PATCH
		r.With(middleware.IdentifyAdmin(cfg.Gate)).Get("/messages", cfg.Messages.List)
		r.With(middleware.RateLimitSubmissions(cfg.RateLimit)).Post("/messages", cfg.Messages.Submit)
		r.With(requireAdmin).Patch("/messages", cfg.Messages.Moderate)

		r.With(middleware.VisitorSession(cfg.Visitor, cfg.SecureCookies)).
			Post("/analytics/pageview", cfg.Analytics.PageView)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", cfg.Admin.Login)
			r.Get("/session", cfg.Admin.Session)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)

				r.Post("/logout", cfg.Admin.Logout)
				r.Post("/session/extend", cfg.Admin.ExtendSession)
				r.Get("/dashboard", cfg.Admin.Dashboard)

				r.Get("/analytics", cfg.Analytics.Summary)
				r.Post("/analytics/reset", cfg.Analytics.Reset)

				r.Put("/countdown", cfg.Countdown.SetTarget)
				r.Post("/countdown/music", cfg.Countdown.ToggleMusic)
				if cfg.DevTools {
					r.Post("/countdown/unlock", cfg.Countdown.ForceUnlock)
					r.Post("/countdown/reset", cfg.Countdown.Reset)
				}
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(cfg.Info.NotFound)
	r.MethodNotAllowed(cfg.Info.MethodNotAllowed)

	return r
}
