package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/halward/procsight/pkg/llm"
)

// ErrEmbeddingFailed wraps any provider failure during bulk embedding. A
// failed batch fails the whole call; no partial vectors are returned.
var ErrEmbeddingFailed = errors.New("embedding generation failed")

const (
	defaultBatchSize  = 10
	defaultBatchPause = 100 * time.Millisecond
)

// Embedder converts chunk and query text into vectors.
type Embedder interface {
	EmbedChunks(ctx context.Context, chunks []*Chunk) error
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
}

type embedder struct {
	provider       llm.Provider
	model          string
	batchSize      int
	batchPause     time.Duration
	includeContext bool
	log            zerolog.Logger
}

// EmbedderConfig configures a chunk embedder. Zero values fall back to a
// batch size of 10 and a 100ms pause between batches.
type EmbedderConfig struct {
	Provider       llm.Provider
	Model          string
	BatchSize      int
	BatchPause     time.Duration
	IncludeContext bool
	Logger         zerolog.Logger
}

func NewEmbedder(cfg EmbedderConfig) Embedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchPause <= 0 {
		cfg.BatchPause = defaultBatchPause
	}

	return &embedder{
		provider:       cfg.Provider,
		model:          cfg.Model,
		batchSize:      cfg.BatchSize,
		batchPause:     cfg.BatchPause,
		includeContext: cfg.IncludeContext,
		log:            cfg.Logger.With().Str("component", "embedder").Logger(),
	}
}

// EmbedChunks embeds every chunk's text and attaches the vectors in order.
// Texts are sent in fixed-size batches with a short pause between batches so
// the inference service is not saturated by one large burst.
func (e *embedder) EmbedChunks(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.EmbeddingText(e.includeContext)
	}

	vectors, err := e.embedBatched(ctx, texts)
	if err != nil {
		return err
	}

	for i, c := range chunks {
		c.Embedding = vectors[i]
	}

	e.log.Debug().Int("chunks", len(chunks)).Str("model", e.model).Msg("chunks embedded")
	return nil
}

// EmbedQuery embeds a single retrieval query.
func (e *embedder) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	vectors, err := e.provider.Embed(ctx, []string{query}, e.model)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrEmbeddingFailed, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: query: provider returned no vector", ErrEmbeddingFailed)
	}
	return vectors[0], nil
}

func (e *embedder) embedBatched(ctx context.Context, texts []string) ([][]float64, error) {
	all := make([][]float64, 0, len(texts))

	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := e.provider.Embed(ctx, texts[i:end], e.model)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d: %v", ErrEmbeddingFailed, i/e.batchSize+1, err)
		}
		if len(batch) != end-i {
			return nil, fmt.Errorf("%w: batch %d: got %d vectors for %d texts",
				ErrEmbeddingFailed, i/e.batchSize+1, len(batch), end-i)
		}
		all = append(all, batch...)

		if end < len(texts) {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, ctx.Err())
			case <-time.After(e.batchPause):
			}
		}
	}

	return all, nil
}
