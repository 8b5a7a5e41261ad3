package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/models"
)

func newSessionTestService(repo *fakeSessionRepo) SessionService {
	return NewSessionService(repo, validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func saveRequest() dto.SessionSaveRequest {
	return dto.SessionSaveRequest{
		SessionID:        "sess-9",
		SessionStartTime: 1700000000000,
		Document: dto.SessionDocument{
			ID:        "doc-1",
			Title:     "Draft",
			Content:   "essay in progress",
			WordCount: 3,
		},
		Events: []dto.SessionEvent{
			{ID: "e1", Timestamp: 1700000001000, EventType: "text_insert"},
			{ID: "e2", Timestamp: 1700000002000, EventType: "ai_request"},
			{ID: "e3", Timestamp: 1700000003000, EventType: "suggestion_accepted"},
			{ID: "e4", Timestamp: 1700000004000, EventType: "text_delete"},
		},
		ChatMessages: []dto.SessionChatMessage{
			{ID: "m1", Role: "user", Content: "help me rephrase", Timestamp: 1700000002000},
			{ID: "m2", Role: "assistant", Content: "try this", Timestamp: 1700000002500},
		},
	}
}

func TestSessionSaveComputesEventStats(t *testing.T) {
	repo := newFakeSessionRepo()
	svc := newSessionTestService(repo)

	resp, err := svc.Save(context.Background(), saveRequest())
	require.NoError(t, err)

	require.Equal(t, 4, resp.TotalEvents)
	require.Equal(t, 1, resp.AIRequestCount)
	require.Equal(t, models.SessionStatusActive, resp.Status)

	stored, err := svc.Get(context.Background(), "sess-9")
	require.NoError(t, err)
	require.Equal(t, 1, stored.AIAcceptCount)
	require.Equal(t, 1, stored.TextInsertCount)
	require.Equal(t, 1, stored.TextDeleteCount)
	require.NotEmpty(t, stored.EventsJSON)
}

func TestSessionSaveCountsChatWhenNoRequestEvents(t *testing.T) {
	svc := newSessionTestService(newFakeSessionRepo())

	req := saveRequest()
	req.Events = nil
	end := int64(1700000100000)
	req.SessionEndTime = &end

	resp, err := svc.Save(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, resp.AIRequestCount, "user chat messages stand in for request events")
	require.Equal(t, models.SessionStatusCompleted, resp.Status)
}

func TestSessionSaveValidatesRequest(t *testing.T) {
	svc := newSessionTestService(newFakeSessionRepo())

	req := saveRequest()
	req.SessionID = ""
	_, err := svc.Save(context.Background(), req)
	require.Error(t, err)
}

func TestSessionGetNotFound(t *testing.T) {
	svc := newSessionTestService(newFakeSessionRepo())

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
