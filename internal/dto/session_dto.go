package dto

import (
	"encoding/json"
	"time"

	"github.com/halward/procsight/internal/models"
)

// SessionEvent is a single captured editor event from the writing interface.
// Timestamps are Unix milliseconds assigned by the frontend.
type SessionEvent struct {
	ID           string          `json:"id" validate:"required"`
	Timestamp    int64           `json:"timestamp" validate:"required"`
	SessionID    string          `json:"sessionId"`
	EventType    string          `json:"eventType" validate:"required"`
	Position     json.RawMessage `json:"position,omitempty"`
	Content      string          `json:"content,omitempty"`
	AIProvider   string          `json:"aiProvider,omitempty"`
	PromptTokens int             `json:"promptTokens,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// SessionChatMessage is one chat message captured during a session.
type SessionChatMessage struct {
	ID           string `json:"id" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=user assistant"`
	Content      string `json:"content" validate:"required"`
	Timestamp    int64  `json:"timestamp" validate:"required"`
	SelectedText string `json:"selectedText,omitempty"`
}

// SessionDocument is the document state at save time.
type SessionDocument struct {
	ID                string `json:"id" validate:"required"`
	Title             string `json:"title" validate:"required"`
	Content           string `json:"content"`
	WordCount         int    `json:"wordCount"`
	AssignmentContext string `json:"assignmentContext,omitempty"`
	CreatedAt         int64  `json:"createdAt"`
	UpdatedAt         int64  `json:"updatedAt"`
}

// SessionSaveRequest persists a full writing session capture.
type SessionSaveRequest struct {
	SessionID        string               `json:"sessionId" validate:"required"`
	SessionStartTime int64                `json:"sessionStartTime" validate:"required"`
	SessionEndTime   *int64               `json:"sessionEndTime"`
	Document         SessionDocument      `json:"document" validate:"required"`
	Events           []SessionEvent       `json:"events"`
	ChatMessages     []SessionChatMessage `json:"chatMessages"`
	AIProvider       string               `json:"aiProvider,omitempty"`
	AIModel          string               `json:"aiModel,omitempty"`
}

// SessionResponse summarizes a stored session.
type SessionResponse struct {
	SessionID        string    `json:"session_id"`
	DocumentTitle    string    `json:"document_title"`
	WordCount        int       `json:"word_count"`
	SessionStartTime int64     `json:"session_start_time"`
	SessionEndTime   *int64    `json:"session_end_time,omitempty"`
	TotalEvents      int       `json:"total_events"`
	AIRequestCount   int       `json:"ai_request_count"`
	Status           string    `json:"status"`
	SubmissionID     *uint     `json:"submission_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// SessionListResponse wraps a page of sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int64             `json:"total"`
}

// NewSessionResponse maps a stored session to its API shape.
func NewSessionResponse(session models.WritingSession) SessionResponse {
	return SessionResponse{
		SessionID:        session.SessionID,
		DocumentTitle:    session.DocumentTitle,
		WordCount:        session.WordCount,
		SessionStartTime: session.SessionStartTime,
		SessionEndTime:   session.SessionEndTime,
		TotalEvents:      session.TotalEvents,
		AIRequestCount:   session.AIRequestCount,
		Status:           session.Status,
		SubmissionID:     session.SubmissionID,
		CreatedAt:        session.CreatedAt,
	}
}

// NewSessionResponseSlice maps a list of stored sessions.
func NewSessionResponseSlice(sessions []models.WritingSession) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, NewSessionResponse(session))
	}
	return out
}
