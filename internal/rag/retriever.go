package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// RetrievalResult is one matched chunk with its similarity score and a
// 1-indexed rank within the query's result list. Produced fresh per query.
type RetrievalResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// A zero-magnitude vector on either side yields 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		magA += v * v
	}
	for _, v := range b {
		magB += v * v
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Retriever is an append-only in-memory index of embedded chunks. It is
// populated once per assessment run and read-only afterwards; it is not safe
// for concurrent mutation.
type Retriever struct {
	chunks   []*Chunk
	embedder Embedder
	log      zerolog.Logger
}

func NewRetriever(embedder Embedder, logger zerolog.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		log:      logger.With().Str("component", "retriever").Logger(),
	}
}

// Add appends vector-bearing chunks to the index. Chunks without an
// embedding are refused; duplicate identifiers are tolerated.
func (r *Retriever) Add(chunks []*Chunk) {
	for _, c := range chunks {
		if c.Embedding != nil {
			r.chunks = append(r.chunks, c)
		}
	}
}

// Len reports the number of indexed chunks.
func (r *Retriever) Len() int { return len(r.chunks) }

// Clear removes all indexed chunks.
func (r *Retriever) Clear() { r.chunks = nil }

// Search embeds the query and returns the top-k most similar chunks with
// score >= minScore, sorted by score descending. An empty index or a failed
// query embedding yields an empty list, not an error; absence of evidence is
// an expected state.
func (r *Retriever) Search(ctx context.Context, query string, topK int, minScore float64) []RetrievalResult {
	if len(r.chunks) == 0 {
		return nil
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.log.Warn().Err(err).Str("query", truncate(query, 80)).Msg("query embedding failed")
		return nil
	}

	return r.SearchByVector(vector, topK, minScore)
}

// SearchByVector searches with a pre-computed query vector. Score ties keep
// insertion order, which makes results reproducible across runs.
func (r *Retriever) SearchByVector(vector []float64, topK int, minScore float64) []RetrievalResult {
	if len(r.chunks) == 0 || len(vector) == 0 {
		return nil
	}

	type scored struct {
		chunk *Chunk
		score float64
	}

	matches := make([]scored, 0, len(r.chunks))
	for _, c := range r.chunks {
		score := CosineSimilarity(vector, c.Embedding)
		if score >= minScore {
			matches = append(matches, scored{chunk: c, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]RetrievalResult, len(matches))
	for i, m := range matches {
		results[i] = RetrievalResult{Chunk: m.chunk, Score: m.score, Rank: i + 1}
	}
	return results
}

// ChunksByExchange returns indexed chunks matching any of the given
// exchange numbers.
func (r *Retriever) ChunksByExchange(numbers []int) []*Chunk {
	wanted := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		wanted[n] = true
	}

	var out []*Chunk
	for _, c := range r.chunks {
		if wanted[c.ExchangeNumber] {
			out = append(out, c)
		}
	}
	return out
}

// ContextWindow returns all chunks whose exchange number falls within
// [center-before, center+after], sorted by exchange number. Used to
// reconstruct local context around a cited exchange without a similarity
// query.
func (r *Retriever) ContextWindow(center, before, after int) []*Chunk {
	lo := center - before
	hi := center + after

	var out []*Chunk
	for _, c := range r.chunks {
		if c.ExchangeNumber >= lo && c.ExchangeNumber <= hi {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ExchangeNumber < out[j].ExchangeNumber
	})
	return out
}

// FormatForPrompt renders retrieval results for inclusion in a scoring
// prompt, truncating oversized exchanges to keep the prompt bounded.
func FormatForPrompt(results []RetrievalResult, maxCharsPerChunk int) string {
	if len(results) == 0 {
		return "No relevant chat history found."
	}
	if maxCharsPerChunk <= 0 {
		maxCharsPerChunk = 2000
	}

	parts := make([]string, 0, len(results))
	for _, res := range results {
		prompt := res.Chunk.StudentPrompt
		response := res.Chunk.AIResponse

		if len(prompt)+len(response) > maxCharsPerChunk {
			budget := maxCharsPerChunk / 2
			if len(prompt) > budget {
				prompt = prompt[:budget] + "..."
			}
			if len(response) > budget {
				response = response[:budget] + "..."
			}
		}

		parts = append(parts, fmt.Sprintf(
			"\n--- %s (Relevance: %.2f) ---\nSTUDENT PROMPT:\n%s\n\nAI RESPONSE:\n%s\n",
			res.Chunk.CitationRef(), res.Score, prompt, response,
		))
	}

	return strings.Join(parts, "\n")
}
