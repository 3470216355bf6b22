package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService turns an upload into a session's searchable index.
type DocumentService struct {
	sessions    *SessionStore
	normalisers driven.NormaliserRegistry
	splitter    driven.Splitter
	index       driven.EmbeddingIndex
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	sessions *SessionStore,
	normalisers driven.NormaliserRegistry,
	splitter driven.Splitter,
	index driven.EmbeddingIndex,
) *DocumentService {
	return &DocumentService{
		sessions:    sessions,
		normalisers: normalisers,
		splitter:    splitter,
		index:       index,
	}
}

// SupportedTypes returns the MIME types that can be processed.
func (s *DocumentService) SupportedTypes() []string {
	return s.normalisers.SupportedMIMETypes()
}

// Process extracts, chunks and indexes raw, replacing the session's previous
// document and transcript. The session is untouched when extraction fails.
func (s *DocumentService) Process(
	ctx context.Context,
	sessionID string,
	raw domain.RawDocument,
) (*domain.ProcessResult, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	mime := raw.DetectMIMEType()
	if !slices.Contains(s.SupportedTypes(), mime) {
		return nil, fmt.Errorf("%w: %q is not a PDF, text or Markdown file", domain.ErrUnsupportedType, raw.Name)
	}
	raw.MIMEType = mime

	session.mu.Lock()
	defer session.mu.Unlock()

	logger.Section("Process " + raw.Name)

	doneExtract := logger.Timed("extract")
	doc, err := s.normalisers.Normalise(ctx, &raw)
	doneExtract()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("%w: %s contains no extractable text", domain.ErrInvalidInput, raw.Name)
	}

	if err := s.sessions.Reset(ctx, session); err != nil {
		// Build removes the directory again before writing.
		logger.Warn("%v", err)
	}

	chunks, err := s.splitter.Split(doc)
	if err != nil {
		return nil, err
	}
	logger.Debug("split %s into %d chunks", raw.Name, len(chunks))

	handle := s.sessions.HandleFor(session.id)
	if err := s.index.Build(ctx, chunks, handle); err != nil {
		return nil, err
	}

	session.markProcessed(handle, raw.Name, len(chunks))
	logger.Info("processed %d chunks from %s", len(chunks), raw.Name)

	return &domain.ProcessResult{
		SessionID:    session.id,
		DocumentName: raw.Name,
		ChunkCount:   len(chunks),
	}, nil
}
