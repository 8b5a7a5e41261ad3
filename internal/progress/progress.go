package progress

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no progress snapshot exists for the run.
var ErrNotFound = errors.New("progress not found")

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Snapshot is the latest observed state of one assessment run.
type Snapshot struct {
	RunID     string    `json:"run_id"`
	Label     string    `json:"label"`
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists run progress so status endpoints can poll it. Snapshots
// are short-lived; implementations may expire them after the run ends.
type Store interface {
	Set(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, runID string) (Snapshot, error)
	Delete(ctx context.Context, runID string) error
}
