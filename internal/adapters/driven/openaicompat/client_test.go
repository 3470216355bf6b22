package openaicompat

import (
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"rate limited", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, domain.ErrRateLimited},
		{"unauthorized", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, domain.ErrLLMUnavailable},
		{"model missing", &openai.RequestError{HTTPStatusCode: 404, Err: errors.New("nope")}, domain.ErrLLMUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("groq", tt.err, domain.ErrLLMUnavailable)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), "groq:")
		})
	}
}

func TestClassify_Other(t *testing.T) {
	cause := errors.New("connection reset")
	err := Classify("openai", cause, domain.ErrEmbeddingUnavailable)

	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, "openai: connection reset", err.Error())
}

func TestNewClient(t *testing.T) {
	assert.NotNil(t, NewClient("key", "", 0))
	assert.NotNil(t, NewClient("key", GroqBaseURL, 0))
}
