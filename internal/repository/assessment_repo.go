package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/halward/procsight/internal/models"
)

// AssessmentRepository defines data operations for assessment runs.
type AssessmentRepository interface {
	Create(ctx context.Context, run *models.AssessmentRun) error
	GetByRunID(ctx context.Context, runID string) (models.AssessmentRun, error)
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.AssessmentRun, error)
	MarkComplete(ctx context.Context, run *models.AssessmentRun) error
	MarkFailed(ctx context.Context, runID string, cause string) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates the repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, run *models.AssessmentRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *assessmentRepository) GetByRunID(ctx context.Context, runID string) (models.AssessmentRun, error) {
	var run models.AssessmentRun
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		First(&run).Error; err != nil {
		return models.AssessmentRun{}, err
	}

	return run, nil
}

func (r *assessmentRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.AssessmentRun, error) {
	var runs []models.AssessmentRun
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		Find(&runs).Error; err != nil {
		return nil, err
	}

	return runs, nil
}

func (r *assessmentRepository) MarkComplete(ctx context.Context, run *models.AssessmentRun) error {
	now := time.Now().UTC()
	run.Status = models.RunStatusComplete
	run.CompletedAt = &now
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *assessmentRepository) MarkFailed(ctx context.Context, runID string, cause string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.AssessmentRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"status":       models.RunStatusFailed,
			"error":        cause,
			"completed_at": now,
		}).Error
}
