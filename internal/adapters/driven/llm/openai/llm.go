// Package openai provides an LLM service adapter for OpenAI-compatible chat
// completion APIs. It serves both OpenAI and Groq.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/openaicompat"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = openaicompat.OpenAIBaseURL
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI-compatible LLM service.
type LLMConfig struct {
	// Name prefixes errors and defaults to "openai".
	Name string

	// APIKey is the provider API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Groq uses https://api.groq.com/openai/v1.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using an OpenAI-compatible API.
type LLMService struct {
	client *openai.Client
	name   string
	model  string
}

// NewLLMService creates a new OpenAI-compatible LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w: API key is required", cfg.Name, domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: openaicompat.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		name:   cfg.Name,
		model:  cfg.Model,
	}, nil
}

// NewGroqService creates an LLM service for Groq's OpenAI-compatible endpoint.
func NewGroqService(apiKey, model string, timeout time.Duration) (*LLMService, error) {
	return NewLLMService(LLMConfig{
		Name:    "groq",
		APIKey:  apiKey,
		BaseURL: openaicompat.GroqBaseURL,
		Model:   model,
		Timeout: timeout,
	})
}

// Generate produces text completion from a prompt, sent as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: temperature(opts.Temperature),
		Stop:        opts.StopWords,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", openaicompat.Classify(s.name, err, domain.ErrLLMUnavailable)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(s.name + ": no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// temperature maps 0 to the smallest positive float32 because the client
// omits a zero temperature and the server would apply its default of 1.
func temperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
// This validates authentication without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return openaicompat.Classify(s.name, err, domain.ErrLLMUnavailable)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
