package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	llmDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "procsight",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Duration of inference server requests",
	}, []string{"operation", "model"})

	llmFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procsight",
		Subsystem: "llm",
		Name:      "request_failures_total",
		Help:      "Number of failed inference server requests",
	}, []string{"operation", "model"})
)

// OllamaConfig defines configuration options for the Ollama client.
type OllamaConfig struct {
	BaseURL         string
	GenerateTimeout time.Duration
	EmbedTimeout    time.Duration
	Logger          zerolog.Logger
}

// OllamaClient talks to a local Ollama server over its native HTTP API.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	genTimeout time.Duration
	embTimeout time.Duration
	retry      retryConfig
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewOllamaClient builds a client for the given base URL.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:11434"
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 120 * time.Second
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 30 * time.Second
	}

	return &OllamaClient{
		baseURL:    base,
		httpClient: &http.Client{},
		genTimeout: cfg.GenerateTimeout,
		embTimeout: cfg.EmbedTimeout,
		retry:      defaultRetryConfig(),
		tracer:     otel.Tracer("github.com/halward/procsight/pkg/llm/ollama"),
		logger:     cfg.Logger.With().Str("component", "ollama_client").Logger(),
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Format string `json:"format,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name       string `json:"name"`
		Size       int64  `json:"size"`
		ModifiedAt string `json:"modified_at"`
		Details    struct {
			Family            string `json:"family"`
			ParameterSize     string `json:"parameter_size"`
			QuantizationLevel string `json:"quantization_level"`
		} `json:"details"`
	} `json:"models"`
}

// Generate requests a single non-streaming completion. Transient transport
// failures are retried with exponential backoff; a malformed completion body
// is returned as-is for the caller to normalize.
func (c *OllamaClient) Generate(parent context.Context, req GenerateRequest) (string, error) {
	ctx, span := c.tracer.Start(parent, "ollama.generate", trace.WithAttributes(
		attribute.String("model", req.Model),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.genTimeout)
	defer cancel()

	payload := ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		System: req.System,
		Format: req.Format,
		Stream: false,
	}

	start := time.Now()
	var completion string
	err := withRetry(ctx, c.retry, func() error {
		var parsed ollamaGenerateResponse
		if err := c.post(ctx, "/api/generate", payload, &parsed); err != nil {
			return err
		}
		if parsed.Error != "" {
			return permanent(fmt.Errorf("ollama generate: %s", parsed.Error))
		}
		completion = parsed.Response
		return nil
	})
	llmDuration.WithLabelValues("generate", req.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		llmFailures.WithLabelValues("generate", req.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return completion, nil
}

// Embed returns one vector per input text, in input order.
func (c *OllamaClient) Embed(parent context.Context, texts []string, model string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, span := c.tracer.Start(parent, "ollama.embed", trace.WithAttributes(
		attribute.String("model", model),
		attribute.Int("texts", len(texts)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.embTimeout)
	defer cancel()

	payload := ollamaEmbedRequest{Model: model, Input: texts}

	start := time.Now()
	var vectors [][]float64
	err := withRetry(ctx, c.retry, func() error {
		var parsed ollamaEmbedResponse
		if err := c.post(ctx, "/api/embed", payload, &parsed); err != nil {
			return err
		}
		if parsed.Error != "" {
			return permanent(fmt.Errorf("ollama embed: %s", parsed.Error))
		}
		vectors = parsed.Embeddings
		return nil
	})
	llmDuration.WithLabelValues("embed", model).Observe(time.Since(start).Seconds())
	if err != nil {
		llmFailures.WithLabelValues("embed", model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	if len(vectors) != len(texts) {
		err := fmt.Errorf("ollama embed: expected %d vectors, got %d", len(texts), len(vectors))
		llmFailures.WithLabelValues("embed", model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return vectors, nil
}

// ListModels returns the models installed on the server, sorted by name.
func (c *OllamaClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.embTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create tags request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: unexpected status %s", resp.Status)
	}

	var parsed ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode tags response: %w", err)
	}

	models := make([]ModelInfo, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		models = append(models, ModelInfo{
			Name:          m.Name,
			Size:          m.Size,
			SizeHuman:     humanSize(m.Size),
			ModifiedAt:    m.ModifiedAt,
			Family:        m.Details.Family,
			ParameterSize: m.Details.ParameterSize,
			Quantization:  m.Details.QuantizationLevel,
		})
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })

	return models, nil
}

// Ping reports whether the inference server is reachable.
func (c *OllamaClient) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *OllamaClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return permanent(fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s returned status %s", path, resp.Status)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return permanent(fmt.Errorf("%s returned status %s: %s", path, resp.Status, strings.TrimSpace(string(data))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return permanent(fmt.Errorf("decode %s response: %w", path, err))
	}

	return nil
}

func humanSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f PB", value)
}
