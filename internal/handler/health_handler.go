package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/halward/procsight/internal/config"
	"github.com/halward/procsight/internal/utils"
	"github.com/halward/procsight/pkg/llm"
)

// HealthResponse reports service liveness and inference backend reachability.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
	LLMProvider string `json:"llm_provider"`
	LLMOnline   *bool  `json:"llm_online,omitempty"`
}

// HealthCheck returns the health endpoint handler. The inference check is
// best effort; a down model server degrades the payload, not the status code.
func HealthCheck(cfg config.Config, provider llm.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			LLMProvider: cfg.LLMProvider,
		}

		if pinger, ok := provider.(llm.Pinger); ok {
			online := pinger.Ping(c.UserContext())
			resp.LLMOnline = &online
		}

		return utils.SendSuccess(c, "service healthy", resp)
	}
}
