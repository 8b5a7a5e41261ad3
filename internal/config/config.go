package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	DatabaseURL string
	RedisURL    string

	LLMProvider     string
	OllamaBaseURL   string
	OpenAIBaseURL   string
	OpenAIAPIKey    string
	AnalysisModel   string
	EmbeddingModel  string
	GenerateTimeout time.Duration
	EmbedTimeout    time.Duration

	RetrievalTopK     int
	RetrievalMinScore float64
	AuthenticityMode  string

	ProgressTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PROCSIGHT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ProcSight API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("llm.analysis_model", "gpt-oss:latest")
	v.SetDefault("llm.embedding_model", "bge-m3")
	v.SetDefault("llm.generate_timeout", "120s")
	v.SetDefault("llm.embed_timeout", "30s")
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.min_score", 0.25)
	v.SetDefault("authenticity.mode", "conservative")
	v.SetDefault("progress.ttl", "1h")

	generateTimeout, err := time.ParseDuration(v.GetString("llm.generate_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid generate timeout: %w", err)
	}

	embedTimeout, err := time.ParseDuration(v.GetString("llm.embed_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid embed timeout: %w", err)
	}

	progressTTL, err := time.ParseDuration(v.GetString("progress.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid progress ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		LLMProvider:       strings.ToLower(v.GetString("llm.provider")),
		OllamaBaseURL:     v.GetString("ollama.base_url"),
		OpenAIBaseURL:     v.GetString("openai.base_url"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		AnalysisModel:     v.GetString("llm.analysis_model"),
		EmbeddingModel:    v.GetString("llm.embedding_model"),
		GenerateTimeout:   generateTimeout,
		EmbedTimeout:      embedTimeout,
		RetrievalTopK:     v.GetInt("retrieval.top_k"),
		RetrievalMinScore: v.GetFloat64("retrieval.min_score"),
		AuthenticityMode:  strings.ToLower(v.GetString("authenticity.mode")),
		ProgressTTL:       progressTTL,
	}

	if cfg.LLMProvider != "ollama" && cfg.LLMProvider != "openai" {
		return Config{}, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}

	if cfg.AuthenticityMode != "conservative" && cfg.AuthenticityMode != "aggressive" {
		return Config{}, fmt.Errorf("unsupported authenticity mode %q", cfg.AuthenticityMode)
	}

	if cfg.RetrievalTopK <= 0 {
		cfg.RetrievalTopK = 5
	}

	// An explicit zero disables the relevance cutoff; the engine reads any
	// negative min score as "no cutoff", while zero means "use the default".
	if cfg.RetrievalMinScore == 0 {
		cfg.RetrievalMinScore = -1
	} else if cfg.RetrievalMinScore < 0 || cfg.RetrievalMinScore >= 1 {
		cfg.RetrievalMinScore = 0.25
	}

	return cfg, nil
}
