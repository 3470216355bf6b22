// Package openaicompat builds go-openai clients for OpenAI-compatible APIs
// (OpenAI itself and Groq) and maps their errors onto domain errors.
package openaicompat

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Known base URLs.
const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"
)

// NewClient returns a client for the given key. An empty baseURL keeps the
// library default (api.openai.com).
func NewClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// Classify wraps err with the domain error matching its HTTP status.
// unavailable is the sentinel used for auth and missing-model failures.
func Classify(provider string, err error, unavailable error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %w", provider, domain.ErrRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w: invalid API key: %w", provider, unavailable, err)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w: unknown model: %w", provider, unavailable, err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}
