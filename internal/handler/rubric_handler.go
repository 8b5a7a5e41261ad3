package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/halward/procsight/internal/rubric"
	"github.com/halward/procsight/internal/utils"
)

// RubricHandler serves the active scoring rubric and previews parsed uploads.
type RubricHandler struct {
	active rubric.Rubric
	log    zerolog.Logger
}

// NewRubricHandler wires the handler.
func NewRubricHandler(active rubric.Rubric, logger zerolog.Logger) *RubricHandler {
	return &RubricHandler{
		active: active,
		log:    logger.With().Str("component", "rubric_handler").Logger(),
	}
}

// Register mounts the rubric routes on the given router group.
func (h *RubricHandler) Register(router fiber.Router) {
	router.Get("/", h.Get)
	router.Post("/parse", h.Parse)
}

// Get returns the rubric runs are scored against.
func (h *RubricHandler) Get(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "rubric retrieved", h.active)
}

type rubricParseRequest struct {
	Content string `json:"content"`
}

// Parse converts an uploaded rubric markdown document to structured form so
// instructors can preview it before adopting it.
func (h *RubricHandler) Parse(c *fiber.Ctx) error {
	var req rubricParseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Content == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "content is required")
	}

	parsed, err := rubric.ParseMarkdown(req.Content)
	if err != nil {
		return utils.SendErrorWithDetail(c, fiber.StatusUnprocessableEntity, "rubric could not be parsed", err.Error())
	}

	warnings := []string{}
	if err := parsed.Validate(); err != nil {
		warnings = append(warnings, err.Error())
	}

	return utils.SendSuccess(c, "rubric parsed", fiber.Map{
		"rubric":   parsed,
		"warnings": warnings,
	})
}
