package upload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type mockDocumentService struct {
	got       domain.RawDocument
	sessionID string
	err       error
}

func (m *mockDocumentService) Process(
	_ context.Context, sessionID string, raw domain.RawDocument,
) (*domain.ProcessResult, error) {
	m.got = raw
	m.sessionID = sessionID
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ProcessResult{SessionID: sessionID, DocumentName: raw.Name, ChunkCount: 1}, nil
}

func (m *mockDocumentService) SupportedTypes() []string {
	return []string{"text/plain"}
}

func newTestView(docs *mockDocumentService) *View {
	v := NewView(nil, nil, docs, "s1")
	v.SetDimensions(100, 30)
	return v
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestView_ProcessFile(t *testing.T) {
	docs := &mockDocumentService{}
	v := newTestView(docs)
	path := writeFile(t, "report.txt", "quarterly numbers")
	v.SetPath(path)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Processing())
	assert.Contains(t, v.View(), "Processing document...")

	msg, ok := v.process(path)().(messages.DocumentProcessed)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, "report.txt", msg.Result.DocumentName)
	assert.Equal(t, "s1", docs.sessionID)
	assert.Equal(t, "quarterly numbers", string(docs.got.Content))

	v.Update(msg)
	assert.False(t, v.Processing())
	assert.NoError(t, v.Err())
}

func TestView_MissingFile(t *testing.T) {
	v := newTestView(&mockDocumentService{})

	msg, ok := v.process(filepath.Join(t.TempDir(), "nope.pdf"))().(messages.DocumentProcessed)

	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, domain.ErrStorageIO)
}

func TestView_ProcessError(t *testing.T) {
	v := newTestView(&mockDocumentService{err: domain.ErrUnsupportedType})
	path := writeFile(t, "image.png", "\x89PNG")

	msg := v.process(path)().(messages.DocumentProcessed)
	v.Update(msg)

	assert.ErrorIs(t, v.Err(), domain.ErrUnsupportedType)
	assert.Contains(t, v.View(), "Error: unsupported type")
}

func TestView_NoDocumentService(t *testing.T) {
	v := NewView(nil, nil, nil, "s1")

	msg := v.process("/tmp/x")().(messages.DocumentProcessed)

	assert.ErrorIs(t, msg.Err, ErrNoDocumentService)
}

func TestView_EmptyPathIgnored(t *testing.T) {
	v := newTestView(&mockDocumentService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Processing())
}

func TestView_EscReturnsToChat(t *testing.T) {
	v := newTestView(&mockDocumentService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewChat}, cmd())
}

func TestView_Reset(t *testing.T) {
	v := newTestView(&mockDocumentService{})
	v.SetPath("/some/path")
	v.Update(messages.DocumentProcessed{Err: domain.ErrStorageIO})

	v.Reset()

	assert.NoError(t, v.Err())
	assert.False(t, v.Processing())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "docs/a.pdf"), expandHome("~/docs/a.pdf"))
	assert.Equal(t, "/abs/a.pdf", expandHome("/abs/a.pdf"))
}
