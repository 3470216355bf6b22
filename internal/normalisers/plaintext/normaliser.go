package plaintext

import (
	"context"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text and Markdown uploads.
// Markdown is indexed as-is; the markup is kept in the chunk text.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/x-markdown",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw upload to a document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrUnsupportedType
	}

	content := strings.TrimPrefix(string(raw.Content), "\uFEFF")
	mimeType := raw.DetectMIMEType()

	return &domain.Document{
		ID:      uuid.New().String(),
		Name:    raw.Name,
		Title:   extractTitle(content, raw.Name, mimeType),
		Content: content,
		Metadata: map[string]any{
			"mime_type": mimeType,
		},
		CreatedAt: time.Now(),
	}, nil
}

// extractTitle takes the first Markdown H1 when present, otherwise the filename.
func extractTitle(content, name, mimeType string) string {
	if strings.Contains(mimeType, "markdown") {
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "# ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "#"))
			}
		}
	}
	return titleFromName(name)
}

// titleFromName extracts a human-readable title from a filename.
func titleFromName(name string) string {
	filename := filepath.Base(name)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
