package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/service"
)

type fakeAssessmentService struct {
	startResp  dto.AssessmentCreateResponse
	statusResp dto.AssessmentStatusResponse
	err        error
}

func (f *fakeAssessmentService) Start(context.Context, dto.AssessmentCreateRequest) (dto.AssessmentCreateResponse, error) {
	return f.startResp, f.err
}

func (f *fakeAssessmentService) Status(context.Context, string) (dto.AssessmentStatusResponse, error) {
	return f.statusResp, f.err
}

func (f *fakeAssessmentService) Result(context.Context, string) (dto.AssessmentResponse, error) {
	return dto.AssessmentResponse{}, f.err
}

func (f *fakeAssessmentService) ListBySubmission(context.Context, uint) ([]dto.AssessmentResponse, error) {
	return nil, f.err
}

func assessmentApp(svc service.AssessmentService) *fiber.App {
	app := fiber.New()
	h := NewAssessmentHandler(svc, zerolog.Nop())
	h.Register(app.Group("/api/v1/assessments"))
	return app
}

func TestAssessmentStartReturnsAccepted(t *testing.T) {
	svc := &fakeAssessmentService{
		startResp: dto.AssessmentCreateResponse{RunID: "run-1", SubmissionID: 4, Status: "running"},
	}
	app := assessmentApp(svc)

	body, _ := json.Marshal(dto.AssessmentCreateRequest{SubmissionID: 4})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var payload struct {
		Data dto.AssessmentCreateResponse `json:"data"`
	}
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "run-1", payload.Data.RunID)
}

func TestAssessmentStartMapsConflict(t *testing.T) {
	app := assessmentApp(&fakeAssessmentService{err: service.ErrRunAlreadyActive})

	body, _ := json.Marshal(dto.AssessmentCreateRequest{SubmissionID: 4})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAssessmentStatusMapsNotFound(t *testing.T) {
	app := assessmentApp(&fakeAssessmentService{err: service.ErrRunNotFound})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/assessments/run-x/status", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
