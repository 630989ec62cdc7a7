// Package llm provides a small unified client for the LLM providers the bot
// talks to: Gemini (primary) and OpenAI-compatible endpoints. It covers text
// generation with JSON mode, batch embeddings, automatic retries, and cost
// estimation.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider identifies an LLM backend.
type Provider string

const (
	Gemini Provider = "gemini"
	OpenAI Provider = "openai"
)

// Config holds configuration for an LLM client.
type Config struct {
	Provider    Provider      `yaml:"provider" json:"provider"`
	Model       string        `yaml:"model" json:"model"`
	EmbedModel  string        `yaml:"embed_model" json:"embed_model"`
	APIKey      string        `yaml:"api_key" json:"api_key"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	MaxRetries  int           `yaml:"max_retries" json:"max_retries"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64       `yaml:"temperature" json:"temperature"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:    Gemini,
		Model:       "gemini-2.0-flash",
		EmbedModel:  "text-embedding-004",
		MaxRetries:  3,
		Timeout:     60 * time.Second,
		MaxTokens:   8192,
		Temperature: 0.3,
	}
}

// Client is the unified interface for text generation.
type Client interface {
	// Generate sends a prompt and returns the response.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GenerateJSON sends a prompt in JSON mode and unmarshals the response
	// into out.
	GenerateJSON(ctx context.Context, req *Request, out any) error

	// Provider returns the backend name.
	Provider() Provider

	// Close releases any resources held by the client.
	Close() error
}

// Embedder produces vector embeddings for batches of text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Close() error
}

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Request holds the parameters for one generation call.
type Request struct {
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	JSONMode    bool      `json:"json_mode,omitempty"`
}

// Response holds the result of one generation call.
type Response struct {
	Content      string  `json:"content"`
	FinishReason string  `json:"finish_reason,omitempty"`
	TokensIn     int     `json:"tokens_in"`
	TokensOut    int     `json:"tokens_out"`
	Cost         float64 `json:"cost"`
	Model        string  `json:"model"`
	LatencyMs    int64   `json:"latency_ms"`
}

// NewClient creates a generation client for the configured provider.
func NewClient(cfg Config) (Client, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case Gemini:
		return newGeminiClient(cfg)
	case OpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewEmbedder creates an embedding client for the configured provider.
func NewEmbedder(cfg Config) (Embedder, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case Gemini:
		return newGeminiEmbedder(cfg)
	case OpenAI:
		return newOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
