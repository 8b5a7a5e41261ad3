package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/halward/procsight/internal/assessment"
	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/models"
	"github.com/halward/procsight/internal/observability"
	"github.com/halward/procsight/internal/parsing"
	"github.com/halward/procsight/internal/progress"
	"github.com/halward/procsight/internal/repository"
	"github.com/halward/procsight/internal/rubric"
	"github.com/halward/procsight/pkg/llm"
)

// Assessment service errors.
var (
	ErrRunNotFound      = errors.New("assessment run not found")
	ErrRunAlreadyActive = errors.New("an assessment is already running for this submission")
)

// runTimeout bounds a full background run, including every model call.
const runTimeout = 30 * time.Minute

// AssessmentConfig carries the engine defaults the service applies per run.
type AssessmentConfig struct {
	DefaultModel     string
	EmbeddingModel   string
	TopK             int
	MinScore         float64
	AuthenticityMode string
}

// AssessmentService starts scoring runs and reports on them. Runs execute in
// the background; clients poll Status until the run finishes, then fetch the
// stored result.
type AssessmentService interface {
	Start(ctx context.Context, req dto.AssessmentCreateRequest) (dto.AssessmentCreateResponse, error)
	Status(ctx context.Context, runID string) (dto.AssessmentStatusResponse, error)
	Result(ctx context.Context, runID string) (dto.AssessmentResponse, error)
	ListBySubmission(ctx context.Context, submissionID uint) ([]dto.AssessmentResponse, error)
}

type assessmentService struct {
	submissions repository.SubmissionRepository
	runs        repository.AssessmentRepository
	store       progress.Store
	provider    llm.Provider
	rubric      rubric.Rubric
	cfg         AssessmentConfig
	validate    *validator.Validate
	log         zerolog.Logger

	mu     sync.Mutex
	active map[uint]string
}

// NewAssessmentService wires the assessment service.
func NewAssessmentService(
	submissions repository.SubmissionRepository,
	runs repository.AssessmentRepository,
	store progress.Store,
	provider llm.Provider,
	r rubric.Rubric,
	cfg AssessmentConfig,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssessmentService {
	observability.RegisterMetrics()

	return &assessmentService{
		submissions: submissions,
		runs:        runs,
		store:       store,
		provider:    provider,
		rubric:      r,
		cfg:         cfg,
		validate:    validate,
		log:         logger.With().Str("component", "assessment_service").Logger(),
		active:      make(map[uint]string),
	}
}

func (s *assessmentService) Start(ctx context.Context, req dto.AssessmentCreateRequest) (dto.AssessmentCreateResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.AssessmentCreateResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentCreateResponse{}, ErrSubmissionNotFound
		}
		return dto.AssessmentCreateResponse{}, fmt.Errorf("get submission: %w", err)
	}

	model := req.ModelName
	if model == "" {
		model = s.cfg.DefaultModel
	}
	mode := req.AuthenticityMode
	if mode == "" {
		mode = s.cfg.AuthenticityMode
	}
	runAuthenticity := true
	if req.AuthenticityCheck != nil {
		runAuthenticity = *req.AuthenticityCheck
	}

	runID := uuid.NewString()

	s.mu.Lock()
	if activeID, ok := s.active[submission.ID]; ok {
		s.mu.Unlock()
		s.log.Warn().
			Uint("submission_id", submission.ID).
			Str("active_run_id", activeID).
			Msg("assessment already running")
		return dto.AssessmentCreateResponse{}, ErrRunAlreadyActive
	}
	s.active[submission.ID] = runID
	s.mu.Unlock()

	run := models.AssessmentRun{
		RunID:            runID,
		SubmissionID:     submission.ID,
		ModelName:        model,
		AuthenticityMode: mode,
		Status:           models.RunStatusRunning,
	}
	if err := s.runs.Create(ctx, &run); err != nil {
		s.release(submission.ID)
		return dto.AssessmentCreateResponse{}, fmt.Errorf("store run: %w", err)
	}

	if err := s.store.Set(ctx, progress.Snapshot{
		RunID:     runID,
		Label:     "Queued",
		Status:    progress.StatusRunning,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID).Msg("progress snapshot write failed")
	}

	if err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusAnalyzing); err != nil {
		s.log.Warn().Err(err).Uint("submission_id", submission.ID).Msg("status update failed")
	}

	go s.execute(submission, run, runAuthenticity, mode)

	return dto.AssessmentCreateResponse{
		RunID:        runID,
		SubmissionID: submission.ID,
		Status:       models.RunStatusRunning,
	}, nil
}

// execute runs the engine to completion in the background. The request context
// is deliberately not inherited; the run outlives the HTTP request.
func (s *assessmentService) execute(submission models.Submission, run models.AssessmentRun, runAuthenticity bool, mode string) {
	defer s.release(submission.ID)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	log := s.log.With().Str("run_id", run.RunID).Uint("submission_id", submission.ID).Logger()
	start := time.Now()

	engine := assessment.NewEngine(assessment.EngineConfig{
		Provider:         s.provider,
		Rubric:           s.rubric,
		Model:            run.ModelName,
		EmbeddingModel:   s.cfg.EmbeddingModel,
		TopK:             s.cfg.TopK,
		MinScore:         s.cfg.MinScore,
		AuthenticityMode: mode,
		Logger:           s.log,
	})

	conv := s.conversation(submission)
	essay := parsing.Essay{Text: submission.EssayText, WordCount: submission.EssayWordCount}

	result, err := engine.Assess(ctx, conv, essay, assessment.RunOptions{
		SubmissionID:      fmt.Sprintf("%d", submission.ID),
		AssignmentContext: submission.AssignmentContext,
		RunAuthenticity:   runAuthenticity,
		Progress: func(label string, current, total int) {
			snapErr := s.store.Set(ctx, progress.Snapshot{
				RunID:     run.RunID,
				Label:     label,
				Current:   current,
				Total:     total,
				Status:    progress.StatusRunning,
				UpdatedAt: time.Now().UTC(),
			})
			if snapErr != nil {
				log.Warn().Err(snapErr).Msg("progress snapshot write failed")
			}
		},
	})

	elapsed := time.Since(start)
	observability.AssessmentRunDuration().WithLabelValues(run.ModelName).Observe(elapsed.Seconds())

	if err != nil {
		observability.AssessmentRuns().WithLabelValues(models.RunStatusFailed).Inc()
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("assessment run failed")
		s.finishFailed(ctx, run.RunID, submission.ID, err)
		return
	}

	doc, err := resultDocument(result)
	if err != nil {
		observability.AssessmentRuns().WithLabelValues(models.RunStatusFailed).Inc()
		log.Error().Err(err).Msg("result encoding failed")
		s.finishFailed(ctx, run.RunID, submission.ID, err)
		return
	}

	run.TotalScore = result.TotalScore
	run.TotalPossible = result.TotalPossible
	run.Result = doc
	run.ProcessingTimeSeconds = result.ProcessingTimeSeconds
	if err := s.runs.MarkComplete(ctx, &run); err != nil {
		observability.AssessmentRuns().WithLabelValues(models.RunStatusFailed).Inc()
		log.Error().Err(err).Msg("result persistence failed")
		s.finishFailed(ctx, run.RunID, submission.ID, err)
		return
	}

	observability.AssessmentRuns().WithLabelValues(models.RunStatusComplete).Inc()

	if err := s.store.Set(ctx, progress.Snapshot{
		RunID:     run.RunID,
		Label:     "Complete",
		Current:   s.rubric.CriteriaCount() + 3,
		Total:     s.rubric.CriteriaCount() + 3,
		Status:    progress.StatusComplete,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		log.Warn().Err(err).Msg("progress snapshot write failed")
	}

	if err := s.submissions.UpdateStatus(ctx, submission.ID, models.SubmissionStatusReviewed); err != nil {
		log.Warn().Err(err).Msg("status update failed")
	}

	log.Info().
		Float64("total_score", result.TotalScore).
		Int("total_possible", result.TotalPossible).
		Int("stage_errors", len(result.Errors)).
		Dur("elapsed", elapsed).
		Msg("assessment run complete")
}

func (s *assessmentService) finishFailed(ctx context.Context, runID string, submissionID uint, cause error) {
	if err := s.runs.MarkFailed(ctx, runID, cause.Error()); err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("failure persistence failed")
	}
	if err := s.store.Set(ctx, progress.Snapshot{
		RunID:     runID,
		Label:     "Failed",
		Status:    progress.StatusFailed,
		Error:     cause.Error(),
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID).Msg("progress snapshot write failed")
	}
	if err := s.submissions.UpdateStatus(ctx, submissionID, models.SubmissionStatusPending); err != nil {
		s.log.Warn().Err(err).Uint("submission_id", submissionID).Msg("status update failed")
	}
}

func (s *assessmentService) release(submissionID uint) {
	s.mu.Lock()
	delete(s.active, submissionID)
	s.mu.Unlock()
}

// conversation restores the canonical parse stored at submission time,
// falling back to reparsing the raw transcript.
func (s *assessmentService) conversation(submission models.Submission) parsing.Conversation {
	var conv parsing.Conversation
	if err := json.Unmarshal([]byte(submission.ChatHistoryParsed), &conv); err == nil && conv.TotalExchanges() > 0 {
		return conv
	}
	return parsing.ParseChat(submission.ChatHistoryRaw)
}

func resultDocument(result *assessment.FullAssessment) (datatypes.JSONMap, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode assessment: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode assessment document: %w", err)
	}

	return datatypes.JSONMap(doc), nil
}

func (s *assessmentService) Status(ctx context.Context, runID string) (dto.AssessmentStatusResponse, error) {
	snap, err := s.store.Get(ctx, runID)
	if err == nil {
		return dto.AssessmentStatusResponse{
			RunID:   snap.RunID,
			Status:  snap.Status,
			Label:   snap.Label,
			Current: snap.Current,
			Total:   snap.Total,
			Error:   snap.Error,
		}, nil
	}
	if !errors.Is(err, progress.ErrNotFound) {
		return dto.AssessmentStatusResponse{}, fmt.Errorf("get progress: %w", err)
	}

	// The snapshot may have expired; the stored run is the durable record.
	run, err := s.runs.GetByRunID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentStatusResponse{}, ErrRunNotFound
		}
		return dto.AssessmentStatusResponse{}, fmt.Errorf("get run: %w", err)
	}

	return dto.AssessmentStatusResponse{
		RunID:  run.RunID,
		Status: run.Status,
		Error:  run.Error,
	}, nil
}

func (s *assessmentService) Result(ctx context.Context, runID string) (dto.AssessmentResponse, error) {
	run, err := s.runs.GetByRunID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponse{}, ErrRunNotFound
		}
		return dto.AssessmentResponse{}, fmt.Errorf("get run: %w", err)
	}

	return dto.NewAssessmentResponse(run), nil
}

func (s *assessmentService) ListBySubmission(ctx context.Context, submissionID uint) ([]dto.AssessmentResponse, error) {
	if _, err := s.submissions.GetByID(ctx, submissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	runs, err := s.runs.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return dto.NewAssessmentResponseSlice(runs), nil
}
