package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/halward/procsight/internal/utils"
	"github.com/halward/procsight/pkg/llm"
)

// ModelsHandler lists the models available on the inference backend.
type ModelsHandler struct {
	provider     llm.Provider
	defaultModel string
	log          zerolog.Logger
}

// NewModelsHandler wires the handler.
func NewModelsHandler(provider llm.Provider, defaultModel string, logger zerolog.Logger) *ModelsHandler {
	return &ModelsHandler{
		provider:     provider,
		defaultModel: defaultModel,
		log:          logger.With().Str("component", "models_handler").Logger(),
	}
}

// Register mounts the model routes on the given router group.
func (h *ModelsHandler) Register(router fiber.Router) {
	router.Get("/", h.List)
}

// List enumerates installed models when the provider supports it.
func (h *ModelsHandler) List(c *fiber.Ctx) error {
	lister, ok := h.provider.(llm.ModelLister)
	if !ok {
		return utils.SendSuccess(c, "model listing not supported by provider", fiber.Map{
			"models":        []llm.ModelInfo{},
			"default_model": h.defaultModel,
		})
	}

	models, err := lister.ListModels(c.UserContext())
	if err != nil {
		requestLogger(c, h.log).Error().Err(err).Msg("model listing failed")
		return utils.SendError(c, fiber.StatusBadGateway, "inference server unavailable")
	}

	return utils.SendSuccess(c, "models retrieved", fiber.Map{
		"models":        models,
		"default_model": h.defaultModel,
	})
}
