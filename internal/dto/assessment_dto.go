package dto

import (
	"time"

	"github.com/halward/procsight/internal/models"
)

// AssessmentCreateRequest starts a scoring run over a stored submission.
type AssessmentCreateRequest struct {
	SubmissionID      uint   `json:"submission_id" validate:"required,gt=0"`
	ModelName         string `json:"model_name" validate:"omitempty,min=1"`
	AuthenticityCheck *bool  `json:"authenticity_check"`
	AuthenticityMode  string `json:"authenticity_mode" validate:"omitempty,oneof=conservative aggressive"`
}

// AssessmentCreateResponse acknowledges a started run.
type AssessmentCreateResponse struct {
	RunID        string `json:"run_id"`
	SubmissionID uint   `json:"submission_id"`
	Status       string `json:"status"`
}

// AssessmentStatusResponse reports run progress for polling clients.
type AssessmentStatusResponse struct {
	RunID   string `json:"run_id"`
	Status  string `json:"status"`
	Label   string `json:"label,omitempty"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Error   string `json:"error,omitempty"`
}

// AssessmentResponse is the stored outcome of one run.
type AssessmentResponse struct {
	RunID                 string         `json:"run_id"`
	SubmissionID          uint           `json:"submission_id"`
	ModelName             string         `json:"model_name"`
	Status                string         `json:"status"`
	TotalScore            float64        `json:"total_score"`
	TotalPossible         int            `json:"total_possible"`
	Result                map[string]any `json:"result,omitempty"`
	Error                 string         `json:"error,omitempty"`
	ProcessingTimeSeconds float64        `json:"processing_time_seconds"`
	CreatedAt             time.Time      `json:"created_at"`
	CompletedAt           *time.Time     `json:"completed_at,omitempty"`
}

// NewAssessmentResponse maps a stored run to its API shape.
func NewAssessmentResponse(run models.AssessmentRun) AssessmentResponse {
	return AssessmentResponse{
		RunID:                 run.RunID,
		SubmissionID:          run.SubmissionID,
		ModelName:             run.ModelName,
		Status:                run.Status,
		TotalScore:            run.TotalScore,
		TotalPossible:         run.TotalPossible,
		Result:                run.Result,
		Error:                 run.Error,
		ProcessingTimeSeconds: run.ProcessingTimeSeconds,
		CreatedAt:             run.CreatedAt,
		CompletedAt:           run.CompletedAt,
	}
}

// NewAssessmentResponseSlice maps a list of stored runs.
func NewAssessmentResponseSlice(runs []models.AssessmentRun) []AssessmentResponse {
	out := make([]AssessmentResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, NewAssessmentResponse(run))
	}
	return out
}
