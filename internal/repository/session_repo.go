package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/halward/procsight/internal/models"
)

// SessionRepository defines data operations for writing sessions.
type SessionRepository interface {
	Upsert(ctx context.Context, session *models.WritingSession) error
	GetBySessionID(ctx context.Context, sessionID string) (models.WritingSession, error)
	List(ctx context.Context, limit, offset int) ([]models.WritingSession, int64, error)
	LinkSubmission(ctx context.Context, sessionID string, submissionID uint) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Upsert saves a session, replacing any previous capture with the same
// frontend session identifier. The writer resends the full session on save.
func (r *sessionRepository) Upsert(ctx context.Context, session *models.WritingSession) error {
	var existing models.WritingSession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", session.SessionID).
		First(&existing).Error

	if err == nil {
		session.ID = existing.ID
		session.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(session).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetBySessionID(ctx context.Context, sessionID string) (models.WritingSession, error) {
	var session models.WritingSession
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&session).Error; err != nil {
		return models.WritingSession{}, err
	}

	return session, nil
}

func (r *sessionRepository) List(ctx context.Context, limit, offset int) ([]models.WritingSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WritingSession{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}

	var sessions []models.WritingSession
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *sessionRepository) LinkSubmission(ctx context.Context, sessionID string, submissionID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.WritingSession{}).
		Where("session_id = ?", sessionID).
		Update("submission_id", submissionID).Error
}
