package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/halward/procsight/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}, &models.AssessmentRun{}, &models.WritingSession{}))
	return db
}

func TestSubmissionRepositoryListFiltersAndSorts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	older := models.Submission{EssayText: "first essay", ChatHistoryParsed: "{}", Status: models.SubmissionStatusPending, CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.Submission{EssayText: "second essay", ChatHistoryParsed: "{}", Status: models.SubmissionStatusReviewed, CreatedAt: time.Now().Add(-1 * time.Hour)}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	status := models.SubmissionStatusPending
	submissions, total, err := repo.List(context.Background(), SubmissionFilter{Status: &status, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, submissions, 1)
	require.Equal(t, "first essay", submissions[0].EssayText)

	submissions, total, err = repo.List(context.Background(), SubmissionFilter{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "second essay", submissions[0].EssayText, "expected newest record first")
}

func TestSubmissionRepositoryStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	submission := models.Submission{EssayText: "essay", ChatHistoryParsed: "{}", Status: models.SubmissionStatusPending}
	require.NoError(t, repo.Create(context.Background(), &submission))

	require.NoError(t, repo.UpdateStatus(context.Background(), submission.ID, models.SubmissionStatusAnalyzing))

	got, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAnalyzing, got.Status)
}

func TestAssessmentRepositoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)

	submission := models.Submission{EssayText: "essay", ChatHistoryParsed: "{}", Status: models.SubmissionStatusPending}
	require.NoError(t, db.Create(&submission).Error)

	run := models.AssessmentRun{
		RunID:        "run-abc",
		SubmissionID: submission.ID,
		ModelName:    "gpt-oss:latest",
		Status:       models.RunStatusRunning,
	}
	require.NoError(t, repo.Create(context.Background(), &run))

	run.TotalScore = 71
	run.TotalPossible = 100
	require.NoError(t, repo.MarkComplete(context.Background(), &run))

	got, err := repo.GetByRunID(context.Background(), "run-abc")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusComplete, got.Status)
	require.NotNil(t, got.CompletedAt)
	require.True(t, got.IsFinished())

	runs, err := repo.ListBySubmission(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestAssessmentRepositoryMarkFailed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)

	run := models.AssessmentRun{RunID: "run-err", SubmissionID: 1, ModelName: "gpt-oss:latest", Status: models.RunStatusRunning}
	require.NoError(t, repo.Create(context.Background(), &run))

	require.NoError(t, repo.MarkFailed(context.Background(), "run-err", "generate summary: model unavailable"))

	got, err := repo.GetByRunID(context.Background(), "run-err")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusFailed, got.Status)
	require.Contains(t, got.Error, "model unavailable")
}

func TestSessionRepositoryUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)

	session := models.WritingSession{
		SessionID:        "sess-1",
		DocumentTitle:    "Draft",
		DocumentContent:  "text",
		SessionStartTime: 1700000000000,
		Status:           models.SessionStatusActive,
	}
	require.NoError(t, repo.Upsert(context.Background(), &session))

	updated := models.WritingSession{
		SessionID:        "sess-1",
		DocumentTitle:    "Draft v2",
		DocumentContent:  "more text",
		SessionStartTime: 1700000000000,
		Status:           models.SessionStatusCompleted,
	}
	require.NoError(t, repo.Upsert(context.Background(), &updated))

	got, err := repo.GetBySessionID(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "Draft v2", got.DocumentTitle)
	require.Equal(t, session.ID, got.ID, "upsert must not create a second row")

	_, total, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}
