package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/strazyuk/ProjectSpara/internal/config"
	"github.com/strazyuk/ProjectSpara/internal/handlers"
	"github.com/strazyuk/ProjectSpara/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	bargainHandler *handlers.BargainHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Detection and bargain misses call the reasoning service once per
	// candidate, so both are limited per user as well.
	perUser := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      userKey,
	})

	subs := api.Group("/subscriptions", middleware.JWTProtected(cfg))
	subs.Get("/", subscriptionHandler.List)
	subs.Post("/detect", perUser, subscriptionHandler.Detect)

	api.Get("/bargains", middleware.JWTProtected(cfg), perUser, bargainHandler.List)
}

func userKey(c *fiber.Ctx) string {
	if id, err := middleware.UserID(c); err == nil {
		return id.String()
	}
	return c.IP()
}
