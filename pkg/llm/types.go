package llm

import "context"

// GenerateRequest describes a single non-streaming completion request.
type GenerateRequest struct {
	Model  string
	Prompt string
	System string
	// Format hints the desired response shape ("json"). The server is not
	// guaranteed to honour it strictly, so callers must tolerate prose
	// around the payload.
	Format string
}

// ModelInfo describes a model available on the inference server.
type ModelInfo struct {
	Name          string `json:"name"`
	Size          int64  `json:"size"`
	SizeHuman     string `json:"size_human"`
	ModifiedAt    string `json:"modified_at"`
	Family        string `json:"family,omitempty"`
	ParameterSize string `json:"parameter_size,omitempty"`
	Quantization  string `json:"quantization,omitempty"`
}

// Provider is an inference backend capable of text generation and embedding.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Embed(ctx context.Context, texts []string, model string) ([][]float64, error)
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Pinger is implemented by providers that support cheap reachability checks.
type Pinger interface {
	Ping(ctx context.Context) bool
}
