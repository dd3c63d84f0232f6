// Package main is the entrypoint for the Quillpost API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/cache"
	"github.com/quillpost/quillpost/internal/config"
	"github.com/quillpost/quillpost/internal/handler"
	"github.com/quillpost/quillpost/internal/metrics"
	"github.com/quillpost/quillpost/internal/repository"
	"github.com/quillpost/quillpost/internal/server"
	"github.com/quillpost/quillpost/internal/service"
)

const (
	appName    = "Quillpost API"
	appVersion = "1.0.0"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Credentials and tokens, built before any connection is opened
	hasher, tokens, err := newCredentials(cfg)
	if err != nil {
		logger.Error("invalid credential configuration", "error", err)
		return 1
	}

	// Apply schema migrations
	if cfg.DBAutoMigrate {
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return 1
		}
		logger.Info("database migrations applied")
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return 1
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.WithPostTTL(cfg.PostsCacheTTL))
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		return 1
	}
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	authService := service.NewAuthService(service.AuthServiceConfig{
		Users:   repo,
		Hasher:  hasher,
		Tokens:  tokens,
		Logger:  logger,
		Metrics: metricsRecorder,
	})
	postService := service.NewPostService(repository.NewPostStore(nil), cacheClient, logger, metricsRecorder)

	// Setup router
	router := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		Root:               handler.New(appName, appVersion),
		Health:             handler.NewHealthHandler(repo, cacheClient, logger),
		Metrics:            handler.NewMetricsHandler(metricsRecorder),
		Auth:               handler.NewAuthHandler(authService, logger),
		Posts:              handler.NewPostHandler(postService, logger),
		Authorizer:         authService,
		IsDevelopment:      cfg.IsDevelopment(),
		AllowedOrigins:     cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	// Create and run server
	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"posts_cache_ttl", cfg.PostsCacheTTL,
		"access_token_ttl", cfg.AccessTokenTTL,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

// newCredentials builds the password hasher and token codec from cfg.
func newCredentials(cfg *config.Config) (*auth.Hasher, *auth.TokenCodec, error) {
	hasher, err := auth.NewHasher(cfg.HashParams())
	if err != nil {
		return nil, nil, fmt.Errorf("password hashing parameters: %w", err)
	}
	tokens, err := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.AccessTokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("token configuration: %w", err)
	}
	return hasher, tokens, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "quillpost")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
