package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/halward/procsight/internal/config"
	"github.com/halward/procsight/internal/handler"
	"github.com/halward/procsight/internal/observability"
	"github.com/halward/procsight/pkg/llm"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Provider          llm.Provider
	SubmissionHandler *handler.SubmissionHandler
	AssessmentHandler *handler.AssessmentHandler
	SessionHandler    *handler.SessionHandler
	ModelsHandler     *handler.ModelsHandler
	RubricHandler     *handler.RubricHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	api.Get("/health", handler.HealthCheck(cfg, deps.Provider))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions"))
	}

	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(api.Group("/assessments"))
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/sessions"))
	}

	if deps.ModelsHandler != nil {
		deps.ModelsHandler.Register(api.Group("/models"))
	}

	if deps.RubricHandler != nil {
		deps.RubricHandler.Register(api.Group("/rubric"))
	}
}
