package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Config carries the shared dependencies the middleware chain needs.
type Config struct {
	Logger *zerolog.Logger
}

// Register attaches the common middleware chain. Order matters: panics must
// be recovered before anything else, and the correlation ID has to exist
// before the observability layer logs it.
func Register(app *fiber.App, cfg Config) {
	app.Use(recover.New())
	app.Use(CorrelationID())
	if cfg.Logger != nil {
		app.Use(Observability(cfg.Logger))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Correlation-ID, X-Request-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
}
