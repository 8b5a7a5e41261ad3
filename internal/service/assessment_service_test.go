package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/models"
	"github.com/halward/procsight/internal/parsing"
	"github.com/halward/procsight/internal/progress"
	"github.com/halward/procsight/internal/rubric"
	"github.com/halward/procsight/pkg/llm"
)

type scriptedProvider struct {
	generateErr error
}

func (p *scriptedProvider) Generate(_ context.Context, req llm.GenerateRequest) (string, error) {
	if p.generateErr != nil {
		return "", p.generateErr
	}

	switch {
	case strings.HasPrefix(req.Prompt, "SUMMARY ASSESSMENT TASK:"):
		return `{"summary_paragraphs": ["Solid process."], "overall_quality": "proficient", "recommended_grade": "B"}`, nil
	case strings.HasPrefix(req.Prompt, "AUTHENTICITY ANALYSIS TASK:"):
		return `{"authenticity_score": 80, "confidence": "high", "overall_assessment": "Appears authentic."}`, nil
	default:
		return `{"points_earned": 8, "level": "proficient", "reasoning": "ok", "feedback": "ok", "confidence": "high"}`, nil
	}
}

func (p *scriptedProvider) Embed(_ context.Context, texts []string, _ string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i := range vectors {
		vectors[i] = []float64{1, 0.5, 0.25}
	}
	return vectors, nil
}

func serviceRubric() rubric.Rubric {
	return rubric.Rubric{
		Name:        "Process Rubric",
		TotalPoints: 10,
		Categories: []rubric.Category{{
			Name:   "AI Collaboration Process",
			Weight: 10,
			Criteria: []rubric.Criterion{{
				Name:   "Prompting Strategy",
				Points: 10,
				Levels: []rubric.Level{
					{Name: rubric.LevelInadequate, MinPoints: 0, MaxPoints: 4},
					{Name: rubric.LevelDeveloping, MinPoints: 5, MaxPoints: 6},
					{Name: rubric.LevelProficient, MinPoints: 7, MaxPoints: 8},
					{Name: rubric.LevelExemplary, MinPoints: 9, MaxPoints: 10},
				},
			}},
		}},
	}
}

func seedSubmission(t *testing.T, subs *fakeSubmissionRepo) models.Submission {
	t.Helper()

	conv := parsing.Conversation{
		Platform: "plain_text",
		Format:   parsing.FormatPlainText,
		Exchanges: []parsing.Exchange{
			{Number: 1, StudentPrompt: "How do I sharpen my thesis?", AIResponse: "Narrow the claim."},
			{Number: 2, StudentPrompt: "Is this version better?", AIResponse: "Yes, it is specific now."},
		},
	}
	parsed, err := json.Marshal(conv)
	require.NoError(t, err)

	submission := models.Submission{
		EssayText:         "The final essay text.",
		ChatHistoryParsed: string(parsed),
		ChatExchangeCount: 2,
		Status:            models.SubmissionStatusPending,
	}
	require.NoError(t, subs.Create(context.Background(), &submission))
	return submission
}

func newTestAssessmentService(subs *fakeSubmissionRepo, runs *fakeRunRepo, store progress.Store, provider llm.Provider) AssessmentService {
	return NewAssessmentService(
		subs, runs, store, provider, serviceRubric(),
		AssessmentConfig{
			DefaultModel:     "gpt-oss:latest",
			EmbeddingModel:   "bge-m3",
			TopK:             5,
			MinScore:         0.25,
			AuthenticityMode: "conservative",
		},
		validator.New(validator.WithRequiredStructEnabled()),
		testLogger(),
	)
}

func TestAssessmentRunsToCompletion(t *testing.T) {
	subs := newFakeSubmissionRepo()
	runs := newFakeRunRepo()
	store := progress.NewMemoryStore()
	svc := newTestAssessmentService(subs, runs, store, &scriptedProvider{})

	submission := seedSubmission(t, subs)

	resp, err := svc.Start(context.Background(), dto.AssessmentCreateRequest{SubmissionID: submission.ID})
	require.NoError(t, err)
	require.Equal(t, models.RunStatusRunning, resp.Status)
	require.NotEmpty(t, resp.RunID)

	require.Eventually(t, func() bool {
		run, err := runs.GetByRunID(context.Background(), resp.RunID)
		return err == nil && run.IsFinished()
	}, 5*time.Second, 10*time.Millisecond)

	result, err := svc.Result(context.Background(), resp.RunID)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusComplete, result.Status)
	require.Equal(t, 8.0, result.TotalScore)
	require.Equal(t, 10, result.TotalPossible)
	require.NotEmpty(t, result.Result)

	status, err := svc.Status(context.Background(), resp.RunID)
	require.NoError(t, err)
	require.Equal(t, progress.StatusComplete, status.Status)
	require.Equal(t, status.Total, status.Current)

	require.Equal(t, models.SubmissionStatusReviewed, subs.status(submission.ID))
}

func TestAssessmentRunFailureIsRecorded(t *testing.T) {
	subs := newFakeSubmissionRepo()
	runs := newFakeRunRepo()
	store := progress.NewMemoryStore()
	provider := &scriptedProvider{generateErr: context.DeadlineExceeded}
	svc := newTestAssessmentService(subs, runs, store, provider)

	submission := seedSubmission(t, subs)

	resp, err := svc.Start(context.Background(), dto.AssessmentCreateRequest{SubmissionID: submission.ID})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		run, err := runs.GetByRunID(context.Background(), resp.RunID)
		return err == nil && run.Status == models.RunStatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	status, err := svc.Status(context.Background(), resp.RunID)
	require.NoError(t, err)
	require.Equal(t, progress.StatusFailed, status.Status)
	require.Contains(t, status.Error, "generate summary")

	// A failed run returns the submission to the queue.
	require.Equal(t, models.SubmissionStatusPending, subs.status(submission.ID))
}

func TestAssessmentStartUnknownSubmission(t *testing.T) {
	svc := newTestAssessmentService(newFakeSubmissionRepo(), newFakeRunRepo(), progress.NewMemoryStore(), &scriptedProvider{})

	_, err := svc.Start(context.Background(), dto.AssessmentCreateRequest{SubmissionID: 99})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestAssessmentStartRejectsSecondActiveRun(t *testing.T) {
	subs := newFakeSubmissionRepo()
	svc := newTestAssessmentService(subs, newFakeRunRepo(), progress.NewMemoryStore(), &scriptedProvider{})
	submission := seedSubmission(t, subs)

	inner := svc.(*assessmentService)
	inner.mu.Lock()
	inner.active[submission.ID] = "existing-run"
	inner.mu.Unlock()

	_, err := svc.Start(context.Background(), dto.AssessmentCreateRequest{SubmissionID: submission.ID})
	require.ErrorIs(t, err, ErrRunAlreadyActive)
}

func TestAssessmentStatusFallsBackToStoredRun(t *testing.T) {
	runs := newFakeRunRepo()
	svc := newTestAssessmentService(newFakeSubmissionRepo(), runs, progress.NewMemoryStore(), &scriptedProvider{})

	require.NoError(t, runs.Create(context.Background(), &models.AssessmentRun{
		RunID:  "run-old",
		Status: models.RunStatusComplete,
	}))

	status, err := svc.Status(context.Background(), "run-old")
	require.NoError(t, err)
	require.Equal(t, models.RunStatusComplete, status.Status)

	_, err = svc.Status(context.Background(), "run-missing")
	require.ErrorIs(t, err, ErrRunNotFound)
}
