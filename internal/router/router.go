package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/algorank/algorank-api/internal/config"
	"github.com/algorank/algorank-api/internal/handler"
	"github.com/algorank/algorank-api/internal/middleware"
	"github.com/algorank/algorank-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProblemHandler         *handler.ProblemHandler
	SubmissionHandler      *handler.SubmissionHandler
	ContestHandler         *handler.ContestHandler
	StandingsStreamHandler *handler.StandingsStreamHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.ProblemHandler != nil {
		deps.ProblemHandler.Register(api.Group("/problems"))
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions")
		deps.SubmissionHandler.Register(submissions,
			middleware.RateLimit("submit", cfg.SubmitRateLimit, cfg.SubmitRateWindow))
	}

	if deps.ContestHandler != nil {
		contests := api.Group("/contests")
		deps.ContestHandler.Register(contests)

		if deps.StandingsStreamHandler != nil {
			deps.StandingsStreamHandler.Register(contests)
		}
	}
}
