package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/halward/procsight/internal/observability"
)

// Observability records request metrics and emits a structured log line for
// every handled request. Latency is measured around the downstream handler
// chain so middleware registered after it is included.
func Observability(logger *zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		method := c.Method()
		route := routeTemplate(c)
		statusLabel := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(method, route, statusLabel).Inc()
		observability.HTTPLatency().WithLabelValues(method, route).Observe(elapsed.Seconds())
		if status >= fiber.StatusInternalServerError {
			observability.HTTPErrors().WithLabelValues(method, route, statusLabel).Inc()
		}

		event := logger.Info()
		if status >= fiber.StatusInternalServerError {
			event = logger.Error()
		} else if status >= fiber.StatusBadRequest {
			event = logger.Warn()
		}
		event.
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("latency_bucket", latencyBucket(elapsed)).
			Str("correlation_id", GetCorrelationID(c)).
			Msg("request handled")

		return err
	}
}

// routeTemplate prefers the registered route pattern over the raw path so
// metrics cardinality stays bounded.
func routeTemplate(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
		return route.Path
	}
	return c.Path()
}

func latencyBucket(d time.Duration) string {
	switch {
	case d < 50*time.Millisecond:
		return "fast"
	case d < 500*time.Millisecond:
		return "normal"
	case d < 5*time.Second:
		return "slow"
	default:
		return "very_slow"
	}
}
