package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ChatService answers questions about a session's document.
type ChatService interface {
	// Ask runs one question through retrieval and generation.
	// The returned Answer is non-nil whenever the session exists; on failure
	// it carries the assistant turn that was recorded and err categorises
	// the cause (domain.ErrRetrievalUnavailable, domain.ErrGeneration).
	Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error)
}
