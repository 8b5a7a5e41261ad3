package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assessment run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)

// AssessmentRun is one scoring pass over a submission. The full result
// document (criterion scores, summary, authenticity, errors) is stored as
// JSON; the scalar columns exist for listing and filtering without
// unpacking it.
type AssessmentRun struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RunID        string `gorm:"size:36;uniqueIndex;not null" json:"run_id"`
	SubmissionID uint   `gorm:"not null;index" json:"submission_id"`

	ModelName        string `gorm:"size:255;not null" json:"model_name"`
	AuthenticityMode string `gorm:"size:20" json:"authenticity_mode,omitempty"`

	TotalScore    float64 `json:"total_score"`
	TotalPossible int     `json:"total_possible"`

	Status string `gorm:"size:50;not null;default:running" json:"status"`
	Error  string `gorm:"type:text" json:"error,omitempty"`

	Result datatypes.JSONMap `json:"result,omitempty"`

	InstructorReviewed bool   `json:"instructor_reviewed"`
	InstructorNotes    string `gorm:"type:text" json:"instructor_notes,omitempty"`

	ProcessingTimeSeconds float64    `json:"processing_time_seconds"`
	CreatedAt             time.Time  `json:"created_at"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
}

// IsFinished reports whether the run has stopped, successfully or not.
func (r AssessmentRun) IsFinished() bool {
	return r.Status == RunStatusComplete || r.Status == RunStatusFailed
}
