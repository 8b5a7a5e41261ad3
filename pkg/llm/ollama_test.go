package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerateReturnsCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var payload ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "test-model", payload.Model)
		require.Equal(t, "json", payload.Format)
		require.False(t, payload.Stream)

		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: `{"ok":true}`})
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	completion, err := client.Generate(context.Background(), GenerateRequest{
		Model:  "test-model",
		Prompt: "hello",
		System: "system",
		Format: "json",
	})
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, completion)
}

func TestOllamaGenerateRetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "ok"})
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Logger: zerolog.Nop()})
	client.retry = retryConfig{maxAttempts: 3, initialDelay: time.Millisecond, maxDelay: time.Millisecond, factor: 1}

	completion, err := client.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "ok", completion)
	require.Equal(t, 2, attempts)
}

func TestOllamaGenerateDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Logger: zerolog.Nop()})
	client.retry = retryConfig{maxAttempts: 3, initialDelay: time.Millisecond, maxDelay: time.Millisecond, factor: 1}

	_, err := client.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestOllamaEmbedPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)

		var payload ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		vectors := make([][]float64, len(payload.Input))
		for i := range payload.Input {
			vectors[i] = []float64{float64(i)}
		}
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: vectors})
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	vectors, err := client.Embed(context.Background(), []string{"a", "b", "c"}, "embed-model")
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.Equal(t, []float64{0}, vectors[0])
	require.Equal(t, []float64{2}, vectors[2])
}

func TestOllamaEmbedRejectsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float64{{1}}})
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	_, err := client.Embed(context.Background(), []string{"a", "b"}, "embed-model")
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected 2 vectors")
}

func TestOllamaPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Logger: zerolog.Nop()})
	require.True(t, client.Ping(context.Background()))

	server.Close()
	require.False(t, client.Ping(context.Background()))
}

func TestOllamaListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[
			{"name":"zeta","size":2147483648,"modified_at":"2025-01-01T00:00:00Z","details":{"family":"llama","parameter_size":"7B","quantization_level":"Q4_0"}},
			{"name":"alpha","size":1024,"modified_at":"2025-01-02T00:00:00Z","details":{}}
		]}`))
	}))
	defer server.Close()

	client := NewOllamaClient(OllamaConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	require.Equal(t, "alpha", models[0].Name)
	require.Equal(t, "1.0 KB", models[0].SizeHuman)
	require.Equal(t, "zeta", models[1].Name)
	require.Equal(t, "2.0 GB", models[1].SizeHuman)
	require.Equal(t, "7B", models[1].ParameterSize)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad payload")

	err := withRetry(context.Background(), retryConfig{maxAttempts: 5, initialDelay: time.Millisecond, maxDelay: time.Millisecond, factor: 1}, func() error {
		calls++
		return permanent(sentinel)
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, calls)
}

func TestWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withRetry(ctx, defaultRetryConfig(), func() error { return errors.New("transient") })
	require.ErrorIs(t, err, context.Canceled)
}
