package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"

	"github.com/strazyuk/ProjectSpara/internal/bargains"
	"github.com/strazyuk/ProjectSpara/internal/classifier"
	"github.com/strazyuk/ProjectSpara/internal/config"
	"github.com/strazyuk/ProjectSpara/internal/database"
	"github.com/strazyuk/ProjectSpara/internal/detector"
	"github.com/strazyuk/ProjectSpara/internal/handlers"
	"github.com/strazyuk/ProjectSpara/internal/knowledge"
	"github.com/strazyuk/ProjectSpara/internal/logging"
	"github.com/strazyuk/ProjectSpara/internal/middleware"
	"github.com/strazyuk/ProjectSpara/internal/repository"
	"github.com/strazyuk/ProjectSpara/internal/routes"
	"github.com/strazyuk/ProjectSpara/internal/scheduler"
)

func main() {
	cfg := config.Load()

	// Money goes out as JSON numbers, matching the reasoning service payloads.
	decimal.MarshalJSONWithoutQuotes = true

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))
	logger := slog.Default()

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		slog.Error("reasoning service setup failed", "provider", cfg.AIProvider, "error", err)
		os.Exit(1)
	}
	client := classifier.NewClient(completer, logger)
	store := repository.New(db)

	// Pipelines
	subscriptionDetector := detector.New(store, client, logger, detector.WithWindow(cfg.DetectionWindow))
	knowledgeManager := knowledge.NewManager(store, client, logger, knowledge.WithFreshness(cfg.KnowledgeFreshness))
	matcher := bargains.NewMatcher(store, knowledgeManager, client, logger)
	hunter := bargains.NewHunter(store, matcher, logger, bargains.WithCacheTTL(cfg.BargainCacheTTL))

	if cfg.SeedBenchmarks {
		knowledgeManager.Seed(ctx, knowledge.SeedCatalogue)
	}

	refresher := scheduler.NewRefresher(store, hunter, cfg.BargainRefreshAge, logger)
	if err := refresher.Start(ctx, cfg.BargainRefreshSchedule); err != nil {
		slog.Error("bargain refresher not started", "error", err)
		os.Exit(1)
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler(func() error { return database.Ping(db) }, cfg.AIProvider)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionDetector, store)
	bargainHandler := handlers.NewBargainHandler(hunter)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
		// Detection blocks on one reasoning call per candidate.
		WriteTimeout: 5 * time.Minute,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg, healthHandler, subscriptionHandler, bargainHandler)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "ai_provider", completer.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	refresher.Stop()

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func newCompleter(ctx context.Context, cfg *config.Config) (classifier.Completer, error) {
	if cfg.AIProvider == config.ProviderGemini {
		return classifier.NewGeminiCompleter(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.AITimeout)
	}
	return classifier.NewOpenAICompleter(cfg.GroqAPIKey, cfg.GroqAPIURL, cfg.GroqModel, cfg.AITimeout), nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
