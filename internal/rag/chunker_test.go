package rag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halward/procsight/internal/parsing"
)

func testConversation(n int) parsing.Conversation {
	conv := parsing.Conversation{
		Platform: "claude",
		Format:   parsing.FormatGenericJSON,
	}
	for i := 1; i <= n; i++ {
		conv.Exchanges = append(conv.Exchanges, parsing.Exchange{
			Number:        i,
			StudentPrompt: fmt.Sprintf("prompt %d", i),
			AIResponse:    fmt.Sprintf("response %d", i),
		})
	}
	return conv
}

func TestChunkConversationOneChunkPerExchange(t *testing.T) {
	for _, n := range []int{1, 2, 5, 12} {
		for _, w := range []int{0, 1, 2, 4} {
			chunks := ChunkConversation(testConversation(n), w)
			require.Len(t, chunks, n)

			for i, c := range chunks {
				require.Equal(t, i+1, c.ExchangeNumber)
				require.Len(t, c.ContextBefore, min(w, i))
				require.Len(t, c.ContextAfter, min(w, n-1-i))
			}
		}
	}
}

func TestChunkConversationSingleExchange(t *testing.T) {
	chunks := ChunkConversation(testConversation(1), 2)
	require.Len(t, chunks, 1)
	require.Empty(t, chunks[0].ContextBefore)
	require.Empty(t, chunks[0].ContextAfter)
}

func TestChunkConversationIdentifiers(t *testing.T) {
	chunks := ChunkConversation(testConversation(3), 1)
	require.Equal(t, "chat_claude_1", chunks[0].ID)
	require.Equal(t, "chat_claude_3", chunks[2].ID)
	require.Equal(t, "[CHAT:2]", chunks[1].CitationRef())
}

func TestChunkConversationIdempotent(t *testing.T) {
	conv := testConversation(6)
	first := ChunkConversation(conv, 2)
	second := ChunkConversation(conv, 2)
	require.Equal(t, first, second)
}

func TestChunkCharCount(t *testing.T) {
	chunks := ChunkConversation(testConversation(1), 0)
	// "prompt 1" + "response 1"
	require.Equal(t, 18, chunks[0].CharCount)
}

func TestChunkPrimaryText(t *testing.T) {
	chunks := ChunkConversation(testConversation(1), 0)
	require.Equal(t, "Student: prompt 1\n\nAI Response: response 1", chunks[0].PrimaryText())
}

func TestChunkFullTextWithContext(t *testing.T) {
	chunks := ChunkConversation(testConversation(3), 1)
	text := chunks[1].FullTextWithContext()
	require.Contains(t, text, "=== Previous Context ===")
	require.Contains(t, text, "[Exchange 1]")
	require.Contains(t, text, "=== Exchange 2 (Primary) ===")
	require.Contains(t, text, "=== Following Context ===")
	require.Contains(t, text, "[Exchange 3]")
}

func TestGroupedChunks(t *testing.T) {
	chunks := GroupedChunks(testConversation(7), 3)
	require.Len(t, chunks, 3)
	require.Equal(t, "topic_claude_1", chunks[0].ID)
	require.Equal(t, 1, chunks[0].ExchangeNumber)
	require.Equal(t, 7, chunks[2].ExchangeNumber)
	require.Contains(t, chunks[0].StudentPrompt, "[1] prompt 1")
	require.Contains(t, chunks[0].StudentPrompt, "[3] prompt 3")
}
