package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/halward/procsight/internal/dto"
	"github.com/halward/procsight/internal/models"
)

const labeledTranscript = "User: How should I structure my argument?\nAI: Start with your strongest claim.\n\nUser: Can you critique my thesis?\nAI: It is too broad, narrow the scope."

func newSubmissionService(subs *fakeSubmissionRepo, sessions *fakeSessionRepo) SubmissionService {
	return NewSubmissionService(subs, sessions, validator.New(validator.WithRequiredStructEnabled()), testLogger())
}

func TestSubmissionCreateParsesEssayAndChat(t *testing.T) {
	subs := newFakeSubmissionRepo()
	sessions := newFakeSessionRepo()
	svc := newSubmissionService(subs, sessions)

	resp, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		EssayText:   "This essay argues a narrow thesis.\n\nIt has two paragraphs.",
		ChatHistory: labeledTranscript,
		SessionID:   "sess-1",
	})
	require.NoError(t, err)

	require.Equal(t, "plain_text", resp.ChatPlatform)
	require.Equal(t, 2, resp.ChatExchangeCount)
	require.Equal(t, 10, resp.EssayWordCount)
	require.Equal(t, models.SubmissionStatusPending, resp.Status)
	require.Contains(t, resp.ChatHistoryParsed, "How should I structure my argument?")

	require.Equal(t, resp.ID, sessions.linked["sess-1"])
}

func TestSubmissionCreateRejectsEmptyTranscript(t *testing.T) {
	svc := newSubmissionService(newFakeSubmissionRepo(), newFakeSessionRepo())

	// An LM Studio export with no user messages parses to zero exchanges.
	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		EssayText:   "essay",
		ChatHistory: `{"messages":[{"versions":[{"role":"system"}]}]}`,
	})
	require.ErrorIs(t, err, ErrEmptyChatHistory)
}

func TestSubmissionCreateValidatesRequest(t *testing.T) {
	svc := newSubmissionService(newFakeSubmissionRepo(), newFakeSessionRepo())

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{ChatHistory: labeledTranscript})
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestSubmissionGetNotFound(t *testing.T) {
	svc := newSubmissionService(newFakeSubmissionRepo(), newFakeSessionRepo())

	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), 42), ErrSubmissionNotFound)
}
