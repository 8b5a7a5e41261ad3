package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/halward/procsight/internal/models"
	"github.com/halward/procsight/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uint]models.Submission
	nextID      uint
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1}
}

func (r *fakeSubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Submission
	for _, s := range r.submissions {
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	submission.ID = r.nextID
	r.nextID++
	r.submissions[submission.ID] = *submission
	return nil
}

func (r *fakeSubmissionRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	r.submissions[id] = s
	return nil
}

func (r *fakeSubmissionRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.submissions, id)
	return nil
}

func (r *fakeSubmissionRepo) status(id uint) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submissions[id].Status
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs map[string]models.AssessmentRun
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[string]models.AssessmentRun)}
}

func (r *fakeRunRepo) Create(_ context.Context, run *models.AssessmentRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run.ID = uint(len(r.runs) + 1)
	r.runs[run.RunID] = *run
	return nil
}

func (r *fakeRunRepo) GetByRunID(_ context.Context, runID string) (models.AssessmentRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[runID]
	if !ok {
		return models.AssessmentRun{}, gorm.ErrRecordNotFound
	}
	return run, nil
}

func (r *fakeRunRepo) ListBySubmission(_ context.Context, submissionID uint) ([]models.AssessmentRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.AssessmentRun
	for _, run := range r.runs {
		if run.SubmissionID == submissionID {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *fakeRunRepo) MarkComplete(_ context.Context, run *models.AssessmentRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run.Status = models.RunStatusComplete
	r.runs[run.RunID] = *run
	return nil
}

func (r *fakeRunRepo) MarkFailed(_ context.Context, runID string, cause string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[runID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	run.Status = models.RunStatusFailed
	run.Error = cause
	r.runs[runID] = run
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.WritingSession
	linked   map[string]uint
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[string]models.WritingSession),
		linked:   make(map[string]uint),
	}
}

func (r *fakeSessionRepo) Upsert(_ context.Context, session *models.WritingSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[session.SessionID]; ok {
		session.ID = existing.ID
	} else {
		session.ID = uint(len(r.sessions) + 1)
	}
	r.sessions[session.SessionID] = *session
	return nil
}

func (r *fakeSessionRepo) GetBySessionID(_ context.Context, sessionID string) (models.WritingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return models.WritingSession{}, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (r *fakeSessionRepo) List(_ context.Context, limit, offset int) ([]models.WritingSession, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.WritingSession
	for _, session := range r.sessions {
		out = append(out, session)
	}
	return out, int64(len(out)), nil
}

func (r *fakeSessionRepo) LinkSubmission(_ context.Context, sessionID string, submissionID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.linked[sessionID] = submissionID
	return nil
}
