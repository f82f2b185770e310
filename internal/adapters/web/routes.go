package web

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures the application routes.
func SetupRoutes(app *fiber.App, handlers *Handlers, rateLimiter *RateLimiter) {
	app.Get("/healthz", handlers.Healthz)
	app.Get("/stats", handlers.Stats)

	// Archive reads
	app.Get("/tweets", handlers.ListTweets)
	app.Get("/tweets/:id", handlers.GetTweet)

	// Thread resolution can call out to the service, so it sits
	// behind the per-IP limiter.
	app.Get("/threads/:id", rateLimiter.Middleware(), handlers.GetThread)
}
