package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// RetrieverService hands out the index connection of a session.
// It connects lazily and never rebuilds an index.
type RetrieverService struct {
	index driven.EmbeddingIndex
}

// NewRetrieverService creates a retriever over index.
func NewRetrieverService(index driven.EmbeddingIndex) *RetrieverService {
	return &RetrieverService{index: index}
}

// Get returns the session's connection, or nil when nothing was processed.
// Caller holds s.mu.
func (r *RetrieverService) Get(ctx context.Context, s *Session) (driven.IndexConnection, error) {
	if !s.processed {
		return nil, nil
	}
	if s.conn != nil {
		return s.conn, nil
	}

	conn, err := r.index.Connect(ctx, s.handle)
	if err != nil {
		logger.Warn("connecting to index for session %s: %v", s.id, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalUnavailable, err)
	}

	logger.Debug("connected to %s", s.handle.Collection)
	s.conn = conn
	return conn, nil
}

// Invalidate closes and drops the cached connection. Caller holds s.mu.
func (r *RetrieverService) Invalidate(s *Session) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		logger.Warn("closing index for session %s: %v", s.id, err)
	}
	s.conn = nil
}
