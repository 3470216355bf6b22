package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Session is the state of one user's conversation about one document.
// Fields are guarded by mu; services lock it for the whole of an operation
// so calls on the same session apply in issue order.
type Session struct {
	mu sync.Mutex

	id           string
	ledger       *domain.Ledger
	processed    bool
	handle       domain.IndexHandle
	documentName string
	chunkCount   int
	conn         driven.IndexConnection

	// resumeErr is set when attaching to an on-disk index failed and the
	// session was dropped from the store.
	resumeErr error
}

func newSession(id string) *Session {
	return &Session{id: id, ledger: domain.NewLedger()}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// status returns a snapshot. Caller holds s.mu.
func (s *Session) status() *domain.SessionStatus {
	return &domain.SessionStatus{
		ID:           s.id,
		Processed:    s.processed,
		DocumentName: s.documentName,
		ChunkCount:   s.chunkCount,
		TurnCount:    s.ledger.Len(),
	}
}

// markProcessed binds the session to its index. Caller holds s.mu.
func (s *Session) markProcessed(handle domain.IndexHandle, documentName string, chunkCount int) {
	s.processed = true
	s.handle = handle
	s.documentName = documentName
	s.chunkCount = chunkCount
}

// SessionStore is the process-wide registry of sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	root     string
	index    driven.EmbeddingIndex
}

// NewSessionStore creates a store whose sessions keep their indexes under root.
func NewSessionStore(root string, index driven.EmbeddingIndex) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		root:     root,
		index:    index,
	}
}

// Create makes a new session with a fresh ID.
func (st *SessionStore) Create() *Session {
	s := newSession(uuid.New().String())

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()

	logger.Debug("session %s created", s.id)
	return s
}

// Get returns an existing session.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return s, nil
}

// Attach registers id as a processed session whose index already exists.
// No connection is opened; the retriever connects on first use.
// A created session is published with s.mu held and the caller must unlock it;
// an already-known session is returned unlocked with created set to false.
func (st *SessionStore) Attach(id string) (s *Session, created bool, err error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, id)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if existing, ok := st.sessions[id]; ok {
		return existing, false, nil
	}

	s = newSession(id)
	s.processed = true
	s.handle = st.HandleFor(id)
	s.mu.Lock()
	st.sessions[id] = s

	logger.Debug("session %s attached to %s", id, s.handle.Path)
	return s, true, nil
}

// Forget drops a session from the registry without touching its index.
func (st *SessionStore) Forget(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// HandleFor derives the index handle of a session.
func (st *SessionStore) HandleFor(id string) domain.IndexHandle {
	return domain.NewIndexHandle(st.root, id)
}

// Reset returns s to the fresh state and deletes its prior collection.
// The in-memory state is always cleared; the returned error only reports
// a failed deletion. Caller holds s.mu.
func (st *SessionStore) Reset(ctx context.Context, s *Session) error {
	prior := s.handle

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			logger.Warn("closing index for session %s: %v", s.id, err)
		}
		s.conn = nil
	}

	s.ledger.Clear()
	s.processed = false
	s.handle = domain.IndexHandle{}
	s.documentName = ""
	s.chunkCount = 0

	if prior.IsZero() || st.index == nil {
		return nil
	}
	if err := st.index.Remove(ctx, prior); err != nil {
		return fmt.Errorf("reset session %s: %w", s.id, err)
	}
	return nil
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
