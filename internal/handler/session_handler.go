package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/service"
	"github.com/halward/procsight/internal/utils"
)

// SessionHandler exposes writing session capture endpoints.
type SessionHandler struct {
	sessions service.SessionService
	log      zerolog.Logger
}

// NewSessionHandler wires the handler.
func NewSessionHandler(sessions service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		log:      logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register mounts the session routes on the given router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("/", h.Save)
	router.Get("/", h.List)
	router.Get("/:sessionId", h.Get)
}

// Save upserts a full session capture from the writing interface.
func (h *SessionHandler) Save(c *fiber.Ctx) error {
	var req dto.SessionSaveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.sessions.Save(c.UserContext(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session saved", resp)
}

// List returns recent sessions.
func (h *SessionHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	resp, err := h.sessions.List(c.UserContext(), limit, offset)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "sessions retrieved", resp)
}

// Get returns one full session capture including events and chat.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	session, err := h.sessions.Get(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "session retrieved", session)
}

func (h *SessionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "writing session not found")
	case isValidationError(err):
		return utils.SendErrorWithDetail(c, fiber.StatusBadRequest, "validation failed", err.Error())
	default:
		requestLogger(c, h.log).Error().Err(err).Msg("session request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
