package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func embedServer(t *testing.T, requests *[]embedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embed":
			var req embedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			*requests = append(*requests, req)

			resp := embedResponse{}
			for i := range req.Input {
				resp.Embeddings = append(resp.Embeddings, []float64{float64(i), 0.5, 1})
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, "all-minilm", s.ModelName())
	assert.Equal(t, 384, s.Dimensions())
	assert.Equal(t, DefaultBatchSize, s.batchSize)
}

func TestEmbed(t *testing.T) {
	var requests []embedRequest
	server := embedServer(t, &requests)
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL, Model: "custom-model"})

	v, err := s.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5, 1}, v)
	require.Len(t, requests, 1)
	assert.Equal(t, "custom-model", requests[0].Model)
	assert.Equal(t, []string{"hello"}, requests[0].Input)
	assert.Equal(t, 3, s.Dimensions(), "unknown model learns its dimensions")
}

func TestEmbedBatch_SplitsRequests(t *testing.T) {
	var requests []embedRequest
	server := embedServer(t, &requests)
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL, BatchSize: 2})

	vectors, err := s.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, vectors, 5)
	assert.Len(t, requests, 3)
	assert.Equal(t, []string{"e"}, requests[2].Input)
}

func TestEmbed_ModelMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"all-minilm\" not found"}`))
	}))
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := s.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "ollama pull")
}

func TestEmbed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := s.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestEmbed_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	s := NewEmbeddingService(Config{BaseURL: url})

	_, err := s.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestPing(t *testing.T) {
	var requests []embedRequest
	server := embedServer(t, &requests)
	defer server.Close()

	s := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}
