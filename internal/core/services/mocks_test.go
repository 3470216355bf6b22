package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// mockIndex is a test double for driven.EmbeddingIndex.
type mockIndex struct {
	BuildFunc   func(ctx context.Context, chunks []domain.Chunk, handle domain.IndexHandle) error
	ConnectFunc func(ctx context.Context, handle domain.IndexHandle) (driven.IndexConnection, error)
	RemoveFunc  func(ctx context.Context, handle domain.IndexHandle) error

	connects int
	removed  []domain.IndexHandle
	built    []domain.IndexHandle
}

func (m *mockIndex) Build(ctx context.Context, chunks []domain.Chunk, handle domain.IndexHandle) error {
	m.built = append(m.built, handle)
	if m.BuildFunc != nil {
		return m.BuildFunc(ctx, chunks, handle)
	}
	return nil
}

func (m *mockIndex) Connect(ctx context.Context, handle domain.IndexHandle) (driven.IndexConnection, error) {
	m.connects++
	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx, handle)
	}
	return &mockConnection{handle: handle}, nil
}

func (m *mockIndex) Remove(ctx context.Context, handle domain.IndexHandle) error {
	m.removed = append(m.removed, handle)
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, handle)
	}
	return nil
}

// mockConnection is a test double for driven.IndexConnection.
type mockConnection struct {
	QueryFunc func(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error)
	CountFunc func(ctx context.Context) (int, error)

	handle  domain.IndexHandle
	queries []int
	closed  int
}

func (m *mockConnection) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	m.queries = append(m.queries, k)
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, text, k)
	}
	return nil, nil
}

func (m *mockConnection) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *mockConnection) Handle() domain.IndexHandle { return m.handle }

func (m *mockConnection) Close() error {
	m.closed++
	return nil
}

// mockLLM is a test double for driven.LLMService.
type mockLLM struct {
	GenerateFunc func(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error)

	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, opts)
	}
	return "generated answer", nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPromptStore is a test double for driven.PromptStore.
type mockPromptStore struct {
	LoadFunc func(name string) (string, error)
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(name)
	}
	return driven.DefaultRAGAnswerPrompt, nil
}

func (m *mockPromptStore) Reload() {}

// mockNormalisers is a test double for driven.NormaliserRegistry.
type mockNormalisers struct {
	NormaliseFunc func(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)

	calls int
}

func (m *mockNormalisers) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	m.calls++
	if m.NormaliseFunc != nil {
		return m.NormaliseFunc(ctx, raw)
	}
	return &domain.Document{ID: "doc-1", Name: raw.Name, Content: string(raw.Content)}, nil
}

func (m *mockNormalisers) Register(_ driven.Normaliser) {}

func (m *mockNormalisers) SupportedMIMETypes() []string {
	return []string{"application/pdf", "text/plain", "text/markdown"}
}

// mockSplitter splits on blank lines.
type mockSplitter struct {
	SplitFunc func(doc *domain.Document) ([]domain.Chunk, error)
}

func (m *mockSplitter) Split(doc *domain.Document) ([]domain.Chunk, error) {
	if m.SplitFunc != nil {
		return m.SplitFunc(doc)
	}
	var chunks []domain.Chunk
	for i, part := range strings.Split(doc.Content, "\n\n") {
		chunks = append(chunks, domain.Chunk{ID: doc.ID + "-" + string(rune('a'+i)), DocumentID: doc.ID, Content: part, Position: i})
	}
	return chunks, nil
}

// staticSettings returns fixed settings.
type staticSettings struct {
	settings domain.AppSettings
	err      error
}

func (s *staticSettings) Get() (*domain.AppSettings, error) {
	if s.err != nil {
		return nil, s.err
	}
	settings := s.settings
	return &settings, nil
}

func defaultSettings() *staticSettings {
	return &staticSettings{settings: domain.DefaultAppSettings()}
}

func scored(texts ...string) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, len(texts))
	for i, t := range texts {
		out[i] = domain.ScoredChunk{Chunk: domain.Chunk{ID: t, Content: t, Position: i}, Similarity: 1 - float64(i)/10}
	}
	return out
}
