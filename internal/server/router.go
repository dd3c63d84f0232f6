package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/quillpost/quillpost/internal/handler"
	"github.com/quillpost/quillpost/internal/middleware"
)

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	Logger *slog.Logger

	Root    *handler.Handler
	Health  *handler.HealthHandler
	Metrics *handler.MetricsHandler
	Auth    *handler.AuthHandler
	Posts   *handler.PostHandler

	Authorizer middleware.Authorizer

	IsDevelopment      bool
	AllowedOrigins     []string
	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	r.Get("/health", cfg.Health.Readyz)
	r.Get("/metrics", cfg.Metrics.Metrics)

	// Root info endpoint
	r.Get("/", cfg.Root.Hello)

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:     cfg.Logger,
		Authorizer: cfg.Authorizer,
	})

	limitBody := middleware.MaxBodySize(cfg.MaxRequestBodySize)

	r.Route("/auth", func(r chi.Router) {
		r.With(limitBody).Post("/signup", cfg.Auth.Signup)
		r.With(limitBody).Post("/login", cfg.Auth.Login)
		r.With(requireAuth).Get("/me", cfg.Auth.Me)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Use(limitBody)
		r.Use(requireAuth)

		r.Post("/", cfg.Posts.Create)
		r.Get("/", cfg.Posts.List)
		r.Delete("/{id}", cfg.Posts.Delete)
	})

	// 404 and 405 handlers
	r.NotFound(cfg.Root.NotFound)
	r.MethodNotAllowed(cfg.Root.MethodNotAllowed)

	return r
}
