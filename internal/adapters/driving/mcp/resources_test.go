package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid history URI",
			uri:      "sercha-rag://sessions/abc-123/history",
			expected: "abc-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://sessions/abc-123/history",
			expected: "",
		},
		{
			name:     "missing history suffix",
			uri:      "sercha-rag://sessions/abc-123",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "sercha-rag://sessions/a/b/history",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSessionID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleHistoryResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns transcript as JSON", func(t *testing.T) {
		sessions := newMockSessionService("s1")
		sessions.history = []domain.Turn{
			{Role: domain.RoleUser, Text: "hi", CreatedAt: time.Unix(0, 0).UTC()},
			{Role: domain.RoleAssistant, Text: "hello", CreatedAt: time.Unix(1, 0).UTC()},
		}
		server, _, _ := newTestServer(t, sessions)

		uri := "sercha-rag://sessions/s1/history"
		result, err := server.handleHistoryResource(ctx, makeReadResourceRequest(uri))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, uri, result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var turns []domain.Turn
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &turns))
		assert.Equal(t, sessions.history, turns)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		server, _, _ := newTestServer(t, newMockSessionService())

		_, err := server.handleHistoryResource(ctx, makeReadResourceRequest("sercha-rag://sessions/nope/history"))

		assert.Error(t, err)
	})

	t.Run("invalid URI is not found", func(t *testing.T) {
		server, _, _ := newTestServer(t, newMockSessionService())

		_, err := server.handleHistoryResource(ctx, makeReadResourceRequest("sercha-rag://invalid"))

		assert.Error(t, err)
	})
}

func TestServer_handleFormatsResource(t *testing.T) {
	server, _, _ := newTestServer(t, newMockSessionService())

	result, err := server.handleFormatsResource(context.Background(), makeReadResourceRequest("sercha-rag://formats"))

	require.NoError(t, err)
	var types []string
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &types))
	assert.Contains(t, types, "application/pdf")
}
