package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/halward/procsight/internal/middleware"
)

// requestLogger binds the request's correlation identifier to a logger.
func requestLogger(c *fiber.Ctx, base zerolog.Logger) *zerolog.Logger {
	l := base.With().Str("correlation_id", middleware.GetCorrelationID(c)).Logger()
	return &l
}

func isValidationError(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// idParam reads a positive numeric path parameter.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
