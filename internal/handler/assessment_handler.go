package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/service"
	"github.com/halward/procsight/internal/utils"
)

// AssessmentHandler exposes run management endpoints: start, poll, fetch.
type AssessmentHandler struct {
	assessments service.AssessmentService
	log         zerolog.Logger
}

// NewAssessmentHandler wires the handler.
func NewAssessmentHandler(assessments service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessments: assessments,
		log:         logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register mounts the assessment routes on the given router group.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Post("/", h.Start)
	router.Get("/:runId/status", h.Status)
	router.Get("/:runId", h.Result)
	router.Get("/submission/:id", h.ListBySubmission)
}

// Start kicks off a background scoring run and returns its identifier.
func (h *AssessmentHandler) Start(c *fiber.Ctx) error {
	var req dto.AssessmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.assessments.Start(c.UserContext(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(c, h.log).Info().
		Str("run_id", resp.RunID).
		Uint("submission_id", resp.SubmissionID).
		Msg("assessment started")

	return utils.SendAccepted(c, "assessment started", resp)
}

// Status reports run progress for polling clients.
func (h *AssessmentHandler) Status(c *fiber.Ctx) error {
	resp, err := h.assessments.Status(c.UserContext(), c.Params("runId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "run status retrieved", resp)
}

// Result returns the stored outcome of a finished run.
func (h *AssessmentHandler) Result(c *fiber.Ctx) error {
	resp, err := h.assessments.Result(c.UserContext(), c.Params("runId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "run retrieved", resp)
}

// ListBySubmission returns every run recorded for one submission.
func (h *AssessmentHandler) ListBySubmission(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	resp, err := h.assessments.ListBySubmission(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "runs retrieved", resp)
}

func (h *AssessmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrRunNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assessment run not found")
	case errors.Is(err, service.ErrRunAlreadyActive):
		return utils.SendError(c, fiber.StatusConflict, "an assessment is already running for this submission")
	case isValidationError(err):
		return utils.SendErrorWithDetail(c, fiber.StatusBadRequest, "validation failed", err.Error())
	default:
		requestLogger(c, h.log).Error().Err(err).Msg("assessment request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
