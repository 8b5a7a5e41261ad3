package models

import "time"

// Submission statuses track the review lifecycle of a student submission.
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusAnalyzing = "analyzing"
	SubmissionStatusReviewed  = "reviewed"
	SubmissionStatusFinalized = "finalized"
)

// Submission holds a student's essay together with the chat transcript it
// was written with. The raw chat file is kept alongside the canonical parse
// so transcripts can be reparsed when the parser improves.
type Submission struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	StudentIdentifier string `gorm:"size:255" json:"student_identifier,omitempty"`

	EssayText      string `gorm:"type:text;not null" json:"essay_text"`
	EssayFilename  string `gorm:"size:255" json:"essay_filename,omitempty"`
	EssayWordCount int    `json:"essay_word_count"`

	ChatHistoryRaw    string `gorm:"type:text" json:"-"`
	ChatHistoryParsed string `gorm:"type:text;not null" json:"-"`
	ChatPlatform      string `gorm:"size:50;default:unknown" json:"chat_platform"`
	ChatExchangeCount int    `json:"chat_exchange_count"`
	ChatFilename      string `gorm:"size:255" json:"chat_filename,omitempty"`

	AssignmentContext string `gorm:"type:text" json:"assignment_context,omitempty"`
	ProcessReflection string `gorm:"type:text" json:"process_reflection,omitempty"`

	Status    string    `gorm:"size:50;not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assessments []AssessmentRun `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assessments,omitempty"`
}

// IsTerminal reports whether the submission has left the review pipeline.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusFinalized
}
