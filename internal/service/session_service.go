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
	"github.com/halward/procsight/internal/repository"
)

// ErrSessionNotFound indicates no writing session exists for the identifier.
var ErrSessionNotFound = errors.New("writing session not found")

// SessionService persists writing session captures from the live editor.
type SessionService interface {
	Save(ctx context.Context, req dto.SessionSaveRequest) (dto.SessionResponse, error)
	Get(ctx context.Context, sessionID string) (models.WritingSession, error)
	List(ctx context.Context, limit, offset int) (dto.SessionListResponse, error)
}

type sessionService struct {
	repo     repository.SessionRepository
	validate *validator.Validate
	log      zerolog.Logger
}

// NewSessionService wires the session service.
func NewSessionService(repo repository.SessionRepository, validate *validator.Validate, logger zerolog.Logger) SessionService {
	return &sessionService{
		repo:     repo,
		validate: validate,
		log:      logger.With().Str("component", "session_service").Logger(),
	}
}

// Save upserts the full capture. The editor resends the whole session on each
// save, so event stats are recomputed from scratch every time.
func (s *sessionService) Save(ctx context.Context, req dto.SessionSaveRequest) (dto.SessionResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.SessionResponse{}, err
	}

	eventsJSON, err := json.Marshal(req.Events)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("encode events: %w", err)
	}
	chatJSON, err := json.Marshal(req.ChatMessages)
	if err != nil {
		return dto.SessionResponse{}, fmt.Errorf("encode chat messages: %w", err)
	}

	status := models.SessionStatusActive
	if req.SessionEndTime != nil {
		status = models.SessionStatusCompleted
	}

	session := models.WritingSession{
		SessionID:         req.SessionID,
		DocumentTitle:     req.Document.Title,
		DocumentContent:   req.Document.Content,
		AssignmentContext: req.Document.AssignmentContext,
		WordCount:         req.Document.WordCount,
		SessionStartTime:  req.SessionStartTime,
		SessionEndTime:    req.SessionEndTime,
		EventsJSON:        eventsJSON,
		ChatMessagesJSON:  chatJSON,
		AIProvider:        req.AIProvider,
		AIModel:           req.AIModel,
		Status:            status,
	}
	applyEventStats(&session, req.Events, req.ChatMessages)

	if err := s.repo.Upsert(ctx, &session); err != nil {
		return dto.SessionResponse{}, fmt.Errorf("store session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.SessionID).
		Int("events", session.TotalEvents).
		Int("ai_requests", session.AIRequestCount).
		Str("status", session.Status).
		Msg("writing session saved")

	return dto.NewSessionResponse(session), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (models.WritingSession, error) {
	session, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.WritingSession{}, ErrSessionNotFound
		}
		return models.WritingSession{}, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

func (s *sessionService) List(ctx context.Context, limit, offset int) (dto.SessionListResponse, error) {
	sessions, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return dto.SessionListResponse{}, fmt.Errorf("list sessions: %w", err)
	}

	return dto.SessionListResponse{
		Sessions: dto.NewSessionResponseSlice(sessions),
		Total:    total,
	}, nil
}

// applyEventStats fills the precomputed counters. AI requests are counted
// from chat activity as well as explicit request events so captures from
// older frontends still report usage.
func applyEventStats(session *models.WritingSession, events []dto.SessionEvent, chat []dto.SessionChatMessage) {
	session.TotalEvents = len(events)

	for _, ev := range events {
		switch ev.EventType {
		case "ai_request":
			session.AIRequestCount++
		case "ai_accept", "suggestion_accepted":
			session.AIAcceptCount++
		case "ai_reject", "suggestion_rejected":
			session.AIRejectCount++
		case "text_insert", "insert":
			session.TextInsertCount++
		case "text_delete", "delete":
			session.TextDeleteCount++
		}
	}

	if session.AIRequestCount == 0 {
		for _, msg := range chat {
			if msg.Role == "user" {
				session.AIRequestCount++
			}
		}
	}
}
