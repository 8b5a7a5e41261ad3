package dto

import (
	"time"

	"github.com/halward/procsight/internal/models"
)

// SubmissionCreateRequest carries a new submission. Essay and chat history
// arrive as raw file content; parsing happens server side.
type SubmissionCreateRequest struct {
	EssayText         string `json:"essay_text" validate:"required,min=1"`
	EssayFilename     string `json:"essay_filename"`
	ChatHistory       string `json:"chat_history" validate:"required,min=1"`
	ChatFilename      string `json:"chat_filename"`
	StudentIdentifier string `json:"student_identifier"`
	AssignmentContext string `json:"assignment_context"`
	ProcessReflection string `json:"process_reflection"`
	// SessionID links the submission back to a captured writing session.
	SessionID string `json:"session_id"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	Status *string `query:"status" validate:"omitempty,oneof=pending analyzing reviewed finalized"`
	Limit  int     `query:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset int     `query:"offset" validate:"omitempty,gte=0"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                uint                 `json:"id"`
	StudentIdentifier string               `json:"student_identifier,omitempty"`
	EssayFilename     string               `json:"essay_filename,omitempty"`
	EssayWordCount    int                  `json:"essay_word_count"`
	ChatPlatform      string               `json:"chat_platform"`
	ChatExchangeCount int                  `json:"chat_exchange_count"`
	AssignmentContext string               `json:"assignment_context,omitempty"`
	Status            string               `json:"status"`
	Assessments       []AssessmentResponse `json:"assessments,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// SubmissionDetailResponse additionally carries the essay text and the
// canonical parsed transcript.
type SubmissionDetailResponse struct {
	SubmissionResponse
	EssayText         string `json:"essay_text"`
	ChatHistoryParsed string `json:"chat_history_parsed"`
	ProcessReflection string `json:"process_reflection,omitempty"`
}

// SubmissionListResponse wraps a page of submissions.
type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Total       int64                `json:"total"`
}

// NewSubmissionResponse maps a stored submission to its API shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                submission.ID,
		StudentIdentifier: submission.StudentIdentifier,
		EssayFilename:     submission.EssayFilename,
		EssayWordCount:    submission.EssayWordCount,
		ChatPlatform:      submission.ChatPlatform,
		ChatExchangeCount: submission.ChatExchangeCount,
		AssignmentContext: submission.AssignmentContext,
		Status:            submission.Status,
		Assessments:       NewAssessmentResponseSlice(submission.Assessments),
		CreatedAt:         submission.CreatedAt,
		UpdatedAt:         submission.UpdatedAt,
	}
}

// NewSubmissionResponseSlice maps a list of stored submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		out = append(out, NewSubmissionResponse(submission))
	}
	return out
}

// NewSubmissionDetailResponse maps a stored submission including content.
func NewSubmissionDetailResponse(submission models.Submission) SubmissionDetailResponse {
	return SubmissionDetailResponse{
		SubmissionResponse: NewSubmissionResponse(submission),
		EssayText:          submission.EssayText,
		ChatHistoryParsed:  submission.ChatHistoryParsed,
		ProcessReflection:  submission.ProcessReflection,
	}
}
