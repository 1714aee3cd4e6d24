// Package main is the entrypoint for the wishwall API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/wishwall/wishwall/internal/analytics"
	"github.com/wishwall/wishwall/internal/auth"
	"github.com/wishwall/wishwall/internal/cache"
	"github.com/wishwall/wishwall/internal/config"
	"github.com/wishwall/wishwall/internal/countdown"
	"github.com/wishwall/wishwall/internal/handler"
	"github.com/wishwall/wishwall/internal/messages"
	"github.com/wishwall/wishwall/internal/metrics"
	"github.com/wishwall/wishwall/internal/middleware"
	"github.com/wishwall/wishwall/internal/notify"
	"github.com/wishwall/wishwall/internal/repository"
	"github.com/wishwall/wishwall/internal/server"
	"github.com/wishwall/wishwall/internal/service"
	"github.com/wishwall/wishwall/internal/session"
	"github.com/wishwall/wishwall/internal/statestore"
	"github.com/wishwall/wishwall/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTELEndpoint, cfg.OTELServiceName, version)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Wish document store
	var (
		docs     messages.Documents
		storeDep = handler.Dependency{Name: "store"}
		repo     *repository.Repository
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		repo, err = repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		docs = repository.NewWishDocuments(repo)
		storeDep.Checker = repo
		logger.Info("connected to database")
	default:
		docs = messages.NewMemoryDocuments()
		logger.Warn("using in-memory wish store; wishes are lost on restart")
	}

	// Persisted state, token revocation and submission limiting
	var (
		state    statestore.Store
		revoker  auth.Revoker
		limiter  middleware.IPLimiter
		stateDep = handler.Dependency{Name: "state"}
		rdb      *cache.Cache
	)
	switch cfg.StateDriver {
	case config.DriverRedis:
		rdb, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		state, revoker, limiter = rdb, rdb, rdb
		stateDep.Checker = rdb
		logger.Info("connected to Redis")
	default:
		state = statestore.NewMemory()
		limiter = cache.NewLocalLimiter()
		logger.Warn("using in-memory state; counters and sessions are lost on restart")
	}

	now := time.Now
	recorder := metrics.NewInMemory()

	tracker := analytics.New(ctx, state, analytics.Options{
		Enabled:  cfg.AnalyticsEnabled,
		Location: time.Local,
	}, now, logger)

	target, err := cfg.TargetTime(time.Local)
	if err != nil {
		logger.Error("invalid TARGET_DATE", "error", err)
		os.Exit(1)
	}
	devTools := !cfg.IsProduction()
	machine := countdown.New(ctx, state, countdown.Options{
		TargetDate:   target,
		MusicEnabled: cfg.MusicEnabled,
		DevTools:     devTools,
	}, now, logger)

	provider := auth.NewLocalProvider(auth.LocalConfig{
		Email:        cfg.AdminEmail,
		Name:         cfg.AdminName,
		PasswordHash: cfg.AdminPasswordHash,
		Secret:       []byte(cfg.SessionSecret),
		SessionTTL:   cfg.SessionTokenTTL,
	}, revoker, now, logger)
	gate := session.New(ctx, provider, state, session.Config{
		SessionTTL:   cfg.SessionTTL,
		MaxAttempts:  cfg.LoginMaxAttempts,
		Window:       cfg.LoginWindow,
		CheckRetries: cfg.SessionCheckRetries,
	}, now, logger)

	wishService := service.NewWishService(messages.New(docs, cfg.WishPageSize, logger), tracker, recorder, logger)

	var notifier *notify.Notifier
	if cfg.NotifyWebhookURL != "" {
		if err := notify.ValidateTargetURL(cfg.NotifyWebhookURL, cfg.IsDevelopment()); err != nil {
			logger.Error("invalid NOTIFY_WEBHOOK_URL", "error", err, "host", notify.ExtractHost(cfg.NotifyWebhookURL))
			os.Exit(1)
		}
		notifier = notify.New(notify.Config{
			TargetURL:   cfg.NotifyWebhookURL,
			Secret:      cfg.NotifyWebhookSecret,
			MaxAttempts: cfg.NotifyMaxAttempts,
		}, recorder, now, logger)
		wishService.SetNotifier(notifier)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := handler.NewRouter(handler.RouterConfig{
		Info:      handler.New(version),
		Health:    handler.NewHealthHandler(logger, storeDep, stateDep),
		Metrics:   handler.NewMetricsHandler(recorder),
		Messages:  handler.NewMessageHandler(wishService, logger),
		Admin:     handler.NewAdminHandler(gate, wishService, tracker, recorder, logger),
		Countdown: handler.NewCountdownHandler(machine, time.Local, logger),
		Analytics: handler.NewAnalyticsHandler(tracker),
		Gate:      gate,
		Visitor:   tracker,
		RateLimit: middleware.RateLimitConfig{
			Enabled:  cfg.RateLimitSubmitEnabled,
			RPS:      float64(cfg.RateLimitSubmitRPS),
			Burst:    cfg.RateLimitSubmitBurst,
			Limiter:  limiter,
			Logger:   logger,
			Recorder: recorder,
		},
		CORS:          cors,
		Security:      middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		MaxBodySize:   cfg.MaxRequestBodySize,
		DevTools:      devTools,
		SecureCookies: !cfg.IsDevelopment(),
		Verbose:       cfg.IsDevelopment(),
		Recorder:      recorder,
		Logger:        logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.Go("countdown", machine.Run)
	if notifier != nil {
		srv.Go("notify", notifier.Run)
	}

	// LIFO: tracing flushes last.
	srv.OnShutdown("tracing", func(ctx context.Context) error {
		return shutdownTracing(ctx)
	})
	if repo != nil {
		srv.OnShutdown("database", func(context.Context) error {
			repo.Close()
			return nil
		})
	}
	if rdb != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return rdb.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
		"store", cfg.StoreDriver,
		"state", cfg.StateDriver,
		"target_date", target,
		"dev_tools", devTools,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
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

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
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
