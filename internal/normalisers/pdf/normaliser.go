// Package pdf extracts text from PDF uploads using ledongthuc/pdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleLength bounds the first-line title heuristic.
const maxTitleLength = 200

// Extractor turns PDF bytes into plain text and a page count.
type Extractor func(content []byte) (text string, pages int, err error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract Extractor
}

// New creates a new PDF normaliser backed by ledongthuc/pdf.
func New() *Normaliser {
	return &Normaliser{extract: extractText}
}

// NewWithExtractor creates a normaliser with a custom extractor (for testing).
func NewWithExtractor(extract Extractor) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page into a single document.
// Extraction failures wrap domain.ErrStorageIO.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, pages, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: reading pdf %s: %v", domain.ErrStorageIO, raw.Name, err)
	}

	return &domain.Document{
		ID:      uuid.New().String(),
		Name:    raw.Name,
		Title:   extractTitle(text, raw.Name),
		Content: text,
		Metadata: map[string]any{
			"mime_type": "application/pdf",
			"format":    "pdf",
			"pages":     pages,
		},
		CreatedAt: time.Now(),
	}, nil
}

// extractText reads every page in order. The pdf library panics on some
// malformed inputs, so panics are turned into errors.
func extractText(content []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	if len(content) == 0 {
		return "", 0, fmt.Errorf("empty pdf")
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", 0, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", 0, err
	}

	return strings.TrimSpace(buf.String()), reader.NumPage(), nil
}

// extractTitle takes the first short non-empty line, falling back to the filename.
func extractTitle(content, name string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.Trim(line, "\x00"))
		if line != "" && len(line) <= maxTitleLength {
			return line
		}
	}

	filename := filepath.Base(name)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
