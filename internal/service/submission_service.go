package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/models"
	"github.com/halward/procsight/internal/parsing"
	"github.com/halward/procsight/internal/repository"
)

// Submission service errors.
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrEmptyChatHistory   = errors.New("chat history contains no usable exchanges")
)

// SubmissionService manages stored submissions, parsing the essay and chat
// transcript on intake.
type SubmissionService interface {
	Create(ctx context.Context, req dto.SubmissionCreateRequest) (dto.SubmissionDetailResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) (dto.SubmissionListResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionDetailResponse, error)
	Delete(ctx context.Context, id uint) error
}

type submissionService struct {
	repo     repository.SubmissionRepository
	sessions repository.SessionRepository
	validate *validator.Validate
	log      zerolog.Logger
}

// NewSubmissionService wires the submission service.
func NewSubmissionService(
	repo repository.SubmissionRepository,
	sessions repository.SessionRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		repo:     repo,
		sessions: sessions,
		validate: validate,
		log:      logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Create(ctx context.Context, req dto.SubmissionCreateRequest) (dto.SubmissionDetailResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.SubmissionDetailResponse{}, err
	}

	essay, err := parsing.ParseEssay([]byte(req.EssayText), req.EssayFilename)
	if err != nil {
		return dto.SubmissionDetailResponse{}, fmt.Errorf("parse essay: %w", err)
	}

	conv := parsing.ParseChat(req.ChatHistory)
	if conv.TotalExchanges() == 0 {
		return dto.SubmissionDetailResponse{}, ErrEmptyChatHistory
	}

	parsed, err := json.Marshal(conv)
	if err != nil {
		return dto.SubmissionDetailResponse{}, fmt.Errorf("encode parsed transcript: %w", err)
	}

	submission := models.Submission{
		StudentIdentifier: req.StudentIdentifier,
		EssayText:         essay.Text,
		EssayFilename:     req.EssayFilename,
		EssayWordCount:    essay.WordCount,
		ChatHistoryRaw:    req.ChatHistory,
		ChatHistoryParsed: string(parsed),
		ChatPlatform:      conv.Platform,
		ChatExchangeCount: conv.TotalExchanges(),
		ChatFilename:      req.ChatFilename,
		AssignmentContext: req.AssignmentContext,
		ProcessReflection: req.ProcessReflection,
		Status:            models.SubmissionStatusPending,
	}

	if err := s.repo.Create(ctx, &submission); err != nil {
		return dto.SubmissionDetailResponse{}, fmt.Errorf("store submission: %w", err)
	}

	if req.SessionID != "" {
		if err := s.sessions.LinkSubmission(ctx, req.SessionID, submission.ID); err != nil {
			s.log.Warn().Err(err).
				Str("session_id", req.SessionID).
				Uint("submission_id", submission.ID).
				Msg("could not link writing session")
		}
	}

	s.log.Info().
		Uint("submission_id", submission.ID).
		Str("platform", conv.Platform).
		Int("exchanges", conv.TotalExchanges()).
		Int("essay_words", essay.WordCount).
		Msg("submission created")

	return dto.NewSubmissionDetailResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) (dto.SubmissionListResponse, error) {
	if err := s.validate.Struct(filter); err != nil {
		return dto.SubmissionListResponse{}, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	submissions, total, err := s.repo.List(ctx, repository.SubmissionFilter{
		Status: filter.Status,
		Limit:  limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return dto.SubmissionListResponse{}, fmt.Errorf("list submissions: %w", err)
	}

	return dto.SubmissionListResponse{
		Submissions: dto.NewSubmissionResponseSlice(submissions),
		Total:       total,
	}, nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionDetailResponse, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionDetailResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionDetailResponse{}, fmt.Errorf("get submission: %w", err)
	}

	return dto.NewSubmissionDetailResponse(submission), nil
}

func (s *submissionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("get submission: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}

	return nil
}
