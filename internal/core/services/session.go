package services

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService exposes session lifecycle to UI hosts.
type SessionService struct {
	sessions  *SessionStore
	retriever *RetrieverService
}

// NewSessionService creates a new session service.
func NewSessionService(sessions *SessionStore, retriever *RetrieverService) *SessionService {
	return &SessionService{
		sessions:  sessions,
		retriever: retriever,
	}
}

// Start creates a new session.
func (s *SessionService) Start() string {
	return s.sessions.Create().ID()
}

// Resume reconnects to the index a previous run left on disk.
// A session already known to this process is left as is. Concurrent
// resumes of the same id wait for the first and share its outcome.
func (s *SessionService) Resume(ctx context.Context, id string) error {
	session, created, err := s.sessions.Attach(id)
	if err != nil {
		return err
	}
	if !created {
		session.mu.Lock()
		defer session.mu.Unlock()
		return session.resumeErr
	}
	defer session.mu.Unlock()

	conn, err := s.retriever.Get(ctx, session)
	if err != nil {
		session.processed = false
		session.handle = domain.IndexHandle{}
		session.resumeErr = err
		s.sessions.Forget(id)
		return err
	}

	count, err := conn.Count(ctx)
	if err != nil {
		logger.Warn("counting chunks for session %s: %v", id, err)
	}
	session.chunkCount = count

	logger.Info("resumed session %s (%d chunks)", id, count)
	return nil
}

// Status returns a snapshot of the session.
func (s *SessionService) Status(id string) (*domain.SessionStatus, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.status(), nil
}

// History returns a copy of the transcript.
func (s *SessionService) History(id string) ([]domain.Turn, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.ledger.AsDisplayList(), nil
}

// ClearHistory resets the session. Follow-up questions need a new upload.
func (s *SessionService) ClearHistory(ctx context.Context, id string) error {
	session, err := s.sessions.Get(id)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	logger.Debug("clearing session %s", id)
	return s.sessions.Reset(ctx, session)
}
