package rag

import (
	"fmt"
	"strings"

	"github.com/halward/procsight/internal/parsing"
)

// Chunk is one exchange promoted to a retrieval candidate. The embedding is
// nil until the adapter attaches one; a chunk without an embedding is never
// admitted to the index.
type Chunk struct {
	ID             string             `json:"chunk_id"`
	ExchangeNumber int                `json:"exchange_number"`
	StudentPrompt  string             `json:"student_prompt"`
	AIResponse     string             `json:"ai_response"`
	ContextBefore  []parsing.Exchange `json:"-"`
	ContextAfter   []parsing.Exchange `json:"-"`
	ModelName      string             `json:"model_name,omitempty"`
	Timestamp      string             `json:"timestamp,omitempty"`
	CharCount      int                `json:"char_count"`
	Embedding      []float64          `json:"-"`
}

// PrimaryText renders the chunk's own exchange for embedding.
func (c *Chunk) PrimaryText() string {
	return fmt.Sprintf("Student: %s\n\nAI Response: %s", c.StudentPrompt, c.AIResponse)
}

// FullTextWithContext renders the chunk together with its surrounding
// exchanges, each context exchange truncated to keep the text bounded.
func (c *Chunk) FullTextWithContext() string {
	var parts []string

	if len(c.ContextBefore) > 0 {
		parts = append(parts, "=== Previous Context ===")
		for _, ex := range c.ContextBefore {
			parts = append(parts,
				fmt.Sprintf("[Exchange %d]", ex.Number),
				fmt.Sprintf("Student: %s...", truncate(ex.StudentPrompt, 500)),
				fmt.Sprintf("AI: %s...", truncate(ex.AIResponse, 500)),
			)
		}
		parts = append(parts, "")
	}

	parts = append(parts,
		fmt.Sprintf("=== Exchange %d (Primary) ===", c.ExchangeNumber),
		fmt.Sprintf("Student: %s", c.StudentPrompt),
		fmt.Sprintf("AI Response: %s", c.AIResponse),
	)

	if len(c.ContextAfter) > 0 {
		parts = append(parts, "", "=== Following Context ===")
		for _, ex := range c.ContextAfter {
			parts = append(parts,
				fmt.Sprintf("[Exchange %d]", ex.Number),
				fmt.Sprintf("Student: %s...", truncate(ex.StudentPrompt, 500)),
				fmt.Sprintf("AI: %s...", truncate(ex.AIResponse, 500)),
			)
		}
	}

	return strings.Join(parts, "\n")
}

// CitationRef is the locator used in evidence citations.
func (c *Chunk) CitationRef() string {
	return fmt.Sprintf("[CHAT:%d]", c.ExchangeNumber)
}

// EmbeddingText selects the text submitted to the embedding model.
func (c *Chunk) EmbeddingText(includeContext bool) string {
	if includeContext {
		return c.FullTextWithContext()
	}
	return c.PrimaryText()
}

// ChunkConversation produces one chunk per exchange, in exchange order.
// contextWindow controls how many surrounding exchanges each chunk carries
// on either side; fewer are kept at the conversation edges.
func ChunkConversation(conv parsing.Conversation, contextWindow int) []*Chunk {
	exchanges := conv.Exchanges
	chunks := make([]*Chunk, 0, len(exchanges))

	for i, ex := range exchanges {
		var before, after []parsing.Exchange
		if contextWindow > 0 {
			start := i - contextWindow
			if start < 0 {
				start = 0
			}
			before = exchanges[start:i]

			end := i + contextWindow + 1
			if end > len(exchanges) {
				end = len(exchanges)
			}
			after = exchanges[i+1 : end]
		}

		chunks = append(chunks, &Chunk{
			ID:             fmt.Sprintf("chat_%s_%d", conv.Platform, ex.Number),
			ExchangeNumber: ex.Number,
			StudentPrompt:  ex.StudentPrompt,
			AIResponse:     ex.AIResponse,
			ContextBefore:  before,
			ContextAfter:   after,
			ModelName:      ex.ModelName,
			Timestamp:      ex.Timestamp,
			CharCount:      ex.CharCount(),
		})
	}

	return chunks
}

// GroupedChunks collapses fixed-size windows of consecutive exchanges into
// single chunks. Broader than per-exchange chunking; not on the primary
// scoring path.
func GroupedChunks(conv parsing.Conversation, exchangesPerChunk int) []*Chunk {
	if exchangesPerChunk <= 0 {
		exchangesPerChunk = 3
	}

	exchanges := conv.Exchanges
	var chunks []*Chunk

	for i := 0; i < len(exchanges); i += exchangesPerChunk {
		end := i + exchangesPerChunk
		if end > len(exchanges) {
			end = len(exchanges)
		}
		group := exchanges[i:end]

		prompts := make([]string, 0, len(group))
		responses := make([]string, 0, len(group))
		for _, ex := range group {
			prompts = append(prompts, fmt.Sprintf("[%d] %s", ex.Number, ex.StudentPrompt))
			responses = append(responses, fmt.Sprintf("[%d] %s", ex.Number, ex.AIResponse))
		}

		chunk := &Chunk{
			ID:             fmt.Sprintf("topic_%s_%d", conv.Platform, i/exchangesPerChunk+1),
			ExchangeNumber: group[0].Number,
			StudentPrompt:  strings.Join(prompts, "\n\n"),
			AIResponse:     strings.Join(responses, "\n\n"),
			ModelName:      group[0].ModelName,
		}
		chunk.CharCount = len(chunk.StudentPrompt) + len(chunk.AIResponse)
		chunks = append(chunks, chunk)
	}

	return chunks
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
