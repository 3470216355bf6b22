package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentService ingests uploads into a session's index.
type DocumentService interface {
	// Process extracts, chunks, embeds and indexes raw for the session.
	// Any previous document of the session is replaced.
	Process(ctx context.Context, sessionID string, raw domain.RawDocument) (*domain.ProcessResult, error)

	// SupportedTypes returns the MIME types that can be processed.
	SupportedTypes() []string
}
