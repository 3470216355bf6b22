package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SessionService manages the lifecycle of user sessions.
// UI hosts hold a session ID and pass it to every call.
type SessionService interface {
	// Start creates a new session and returns its ID.
	Start() string

	// Resume binds an ID whose index survives on disk from an earlier run.
	// Returns domain.ErrNotFound if no index exists for the ID.
	Resume(ctx context.Context, id string) error

	// Status returns a snapshot of the session.
	Status(id string) (*domain.SessionStatus, error)

	// History returns the transcript in display order.
	History(id string) ([]domain.Turn, error)

	// ClearHistory resets the session: transcript, processed flag and index.
	ClearHistory(ctx context.Context, id string) error
}
