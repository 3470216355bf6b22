package openai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

type completionRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionServer(t *testing.T, got *completionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
		case "/chat/completions":
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"The answer."},"finish_reason":"stop"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	_, err = NewGroqService("", "", 0)
	assert.ErrorContains(t, err, "groq:")
}

func TestGenerate(t *testing.T) {
	var got completionRequest
	server := completionServer(t, &got)
	defer server.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: server.URL, Model: "llama-3.3-70b-versatile"})
	require.NoError(t, err)

	answer, err := s.Generate(context.Background(), "question", driven.GenerateOptions{Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "The answer.", answer)

	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "question", got.Messages[0].Content)
}

func TestGenerate_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"tokens"}}`))
	}))
	defer server.Close()

	s, err := NewLLMService(LLMConfig{Name: "groq", APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.ErrorContains(t, err, "groq:")
}

func TestTemperature(t *testing.T) {
	assert.Equal(t, float32(math.SmallestNonzeroFloat32), temperature(0))
	assert.Equal(t, float32(2), temperature(2))
}

func TestPing(t *testing.T) {
	var got completionRequest
	server := completionServer(t, &got)
	defer server.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
