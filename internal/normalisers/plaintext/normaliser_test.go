package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/markdown")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		Name:     "meeting_notes-2024.txt",
		MIMEType: "text/plain",
		Content:  []byte("This is plain text content."),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "meeting_notes-2024.txt", doc.Name)
	assert.Equal(t, "meeting notes 2024", doc.Title)
	assert.Equal(t, "This is plain text content.", doc.Content)
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestNormalise_MIMEFromExtension(t *testing.T) {
	raw := &domain.RawDocument{
		Name:    "README.md",
		Content: []byte("intro\n\n# Project Guide\n\nbody"),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "text/markdown", doc.Metadata["mime_type"])
	assert.Equal(t, "Project Guide", doc.Title)
	assert.Contains(t, doc.Content, "# Project Guide")
}

func TestNormalise_MarkdownWithoutHeading(t *testing.T) {
	raw := &domain.RawDocument{
		Name:    "notes.md",
		Content: []byte("just some text"),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "notes", doc.Title)
}

func TestNormalise_StripsBOM(t *testing.T) {
	raw := &domain.RawDocument{
		Name:    "bom.txt",
		Content: []byte("\uFEFFhello"),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	doc, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	raw := &domain.RawDocument{
		Name:    "binary.txt",
		Content: []byte{0xff, 0xfe, 0xfd},
	}

	doc, err := New().Normalise(context.Background(), raw)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Nil(t, doc)
}

func TestNormalise_EmptyContent(t *testing.T) {
	raw := &domain.RawDocument{Name: "empty.txt"}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
}

func TestTitleFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"/path/to/file.txt", "file"},
		{"my_document.txt", "my document"},
		{"my-document.txt", "my document"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, titleFromName(tt.name))
		})
	}
}
