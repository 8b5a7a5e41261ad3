package models

import (
	"time"

	"gorm.io/datatypes"
)

// Writing session statuses.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusExported  = "exported"
)

// WritingSession is a capture from the live writing interface: the document,
// the chat messages, and every editor event, with stats precomputed at save
// time. Session times are Unix milliseconds supplied by the frontend.
type WritingSession struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID string `gorm:"size:36;uniqueIndex;not null" json:"session_id"`

	DocumentTitle     string `gorm:"size:255;not null" json:"document_title"`
	DocumentContent   string `gorm:"type:text;not null" json:"document_content"`
	AssignmentContext string `gorm:"type:text" json:"assignment_context,omitempty"`
	WordCount         int    `json:"word_count"`

	SessionStartTime int64  `gorm:"not null" json:"session_start_time"`
	SessionEndTime   *int64 `json:"session_end_time,omitempty"`

	EventsJSON       datatypes.JSON `json:"events,omitempty"`
	ChatMessagesJSON datatypes.JSON `json:"chat_messages,omitempty"`

	TotalEvents     int `json:"total_events"`
	AIRequestCount  int `json:"ai_request_count"`
	AIAcceptCount   int `json:"ai_accept_count"`
	AIRejectCount   int `json:"ai_reject_count"`
	TextInsertCount int `json:"text_insert_count"`
	TextDeleteCount int `json:"text_delete_count"`

	AIProvider string `gorm:"size:50" json:"ai_provider,omitempty"`
	AIModel    string `gorm:"size:255" json:"ai_model,omitempty"`

	Status       string    `gorm:"size:50;not null;default:active" json:"status"`
	SubmissionID *uint     `json:"submission_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
