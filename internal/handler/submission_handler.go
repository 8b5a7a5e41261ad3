package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/service"
	"github.com/halward/procsight/internal/utils"
)

// SubmissionHandler exposes submission intake and browsing endpoints.
type SubmissionHandler struct {
	submissions service.SubmissionService
	log         zerolog.Logger
}

// NewSubmissionHandler wires the handler.
func NewSubmissionHandler(submissions service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		log:         logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register mounts the submission routes on the given router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/", h.Create)
	router.Get("/", h.List)
	router.Get("/:id", h.Get)
	router.Delete("/:id", h.Delete)
}

// Create accepts a new essay plus chat transcript. Multipart uploads carry
// the files as raw bytes, which keeps binary formats (PDF, DOCX) intact;
// JSON bodies are limited to plain-text content.
func (h *SubmissionHandler) Create(c *fiber.Ctx) error {
	var req dto.SubmissionCreateRequest
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		parsed, err := submissionFromMultipart(c)
		if err != nil {
			return utils.SendErrorWithDetail(c, fiber.StatusBadRequest, "invalid multipart form", err.Error())
		}
		req = parsed
	} else if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.submissions.Create(c.UserContext(), req)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "submission created", resp)
}

// submissionFromMultipart reads the uploaded files and form fields. The essay
// and transcript each accept a file part or a plain-text field.
func submissionFromMultipart(c *fiber.Ctx) (dto.SubmissionCreateRequest, error) {
	req := dto.SubmissionCreateRequest{
		EssayText:         c.FormValue("essay_text"),
		ChatHistory:       c.FormValue("chat_history"),
		StudentIdentifier: c.FormValue("student_identifier"),
		AssignmentContext: c.FormValue("assignment_context"),
		ProcessReflection: c.FormValue("process_reflection"),
		SessionID:         c.FormValue("session_id"),
	}

	if file, err := c.FormFile("essay_file"); err == nil {
		content, err := readUpload(file)
		if err != nil {
			return dto.SubmissionCreateRequest{}, err
		}
		req.EssayText = string(content)
		req.EssayFilename = file.Filename
	}

	if file, err := c.FormFile("chat_file"); err == nil {
		content, err := readUpload(file)
		if err != nil {
			return dto.SubmissionCreateRequest{}, err
		}
		req.ChatHistory = string(content)
		req.ChatFilename = file.Filename
	}

	return req, nil
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// List returns a filtered page of submissions.
func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	var filter dto.SubmissionFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	resp, err := h.submissions.List(c.UserContext(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", resp)
}

// Get returns one submission with its content and runs.
func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	resp, err := h.submissions.Get(c.UserContext(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", resp)
}

// Delete removes a submission and its assessment runs.
func (h *SubmissionHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	if err := h.submissions.Delete(c.UserContext(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission deleted", nil)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrEmptyChatHistory):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "chat history contains no usable exchanges")
	case isValidationError(err):
		return utils.SendErrorWithDetail(c, fiber.StatusBadRequest, "validation failed", err.Error())
	default:
		requestLogger(c, h.log).Error().Err(err).Msg("submission request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
