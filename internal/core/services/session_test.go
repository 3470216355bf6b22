package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

const testSessionID = "0d5f9c3a-6a43-4a4f-8d0e-2f0f4a1c9b77"

func TestSessionService_StartStatusHistory(t *testing.T) {
	store := NewSessionStore("/idx", &mockIndex{})
	service := NewSessionService(store, NewRetrieverService(&mockIndex{}))

	id := service.Start()
	require.NotEmpty(t, id)

	status, err := service.Status(id)
	require.NoError(t, err)
	assert.Equal(t, &domain.SessionStatus{ID: id}, status)

	s, err := store.Get(id)
	require.NoError(t, err)
	require.NoError(t, s.ledger.Append(domain.RoleUser, "hi"))
	s.markProcessed(store.HandleFor(id), "doc.pdf", 7)

	status, err = service.Status(id)
	require.NoError(t, err)
	assert.True(t, status.Processed)
	assert.Equal(t, "doc.pdf", status.DocumentName)
	assert.Equal(t, 7, status.ChunkCount)
	assert.Equal(t, 1, status.TurnCount)

	history, err := service.History(id)
	require.NoError(t, err)
	require.Len(t, history, 1)

	history[0].Text = "mutated"
	again, err := service.History(id)
	require.NoError(t, err)
	assert.Equal(t, "hi", again[0].Text)
}

func TestSessionService_UnknownSession(t *testing.T) {
	service := NewSessionService(NewSessionStore("/idx", &mockIndex{}), NewRetrieverService(&mockIndex{}))

	_, err := service.Status("x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = service.History("x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, service.ClearHistory(context.Background(), "x"), domain.ErrNotFound)
}

func TestSessionService_ClearHistory(t *testing.T) {
	index := &mockIndex{}
	store := NewSessionStore("/idx", index)
	service := NewSessionService(store, NewRetrieverService(index))

	id := service.Start()
	s, err := store.Get(id)
	require.NoError(t, err)
	require.NoError(t, s.ledger.Append(domain.RoleUser, "hi"))
	s.markProcessed(store.HandleFor(id), "doc.pdf", 7)

	require.NoError(t, service.ClearHistory(context.Background(), id))

	status, err := service.Status(id)
	require.NoError(t, err)
	assert.False(t, status.Processed)
	assert.Zero(t, status.TurnCount)
	assert.Len(t, index.removed, 1)
}

func TestSessionService_Resume(t *testing.T) {
	conn := &mockConnection{CountFunc: func(context.Context) (int, error) { return 42, nil }}
	index := &mockIndex{ConnectFunc: func(_ context.Context, h domain.IndexHandle) (driven.IndexConnection, error) {
		conn.handle = h
		return conn, nil
	}}
	store := NewSessionStore("/idx", index)
	service := NewSessionService(store, NewRetrieverService(index))

	require.NoError(t, service.Resume(context.Background(), testSessionID))

	status, err := service.Status(testSessionID)
	require.NoError(t, err)
	assert.True(t, status.Processed)
	assert.Equal(t, 42, status.ChunkCount)
	assert.Equal(t, store.HandleFor(testSessionID), conn.handle)
	assert.Empty(t, index.built)

	// Resuming a live session does not reconnect.
	require.NoError(t, service.Resume(context.Background(), testSessionID))
	assert.Equal(t, 1, index.connects)
}

func TestSessionService_ResumeMissingIndex(t *testing.T) {
	index := &mockIndex{ConnectFunc: func(context.Context, domain.IndexHandle) (driven.IndexConnection, error) {
		return nil, fmt.Errorf("%w: no index", domain.ErrNotFound)
	}}
	store := NewSessionStore("/idx", index)
	service := NewSessionService(store, NewRetrieverService(index))

	err := service.Resume(context.Background(), testSessionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, store.Len(), "failed resume leaves no session behind")
}

func TestSessionService_ConcurrentResumeWaitsForFailure(t *testing.T) {
	var once sync.Once
	entered := make(chan struct{})
	release := make(chan struct{})
	index := &mockIndex{ConnectFunc: func(context.Context, domain.IndexHandle) (driven.IndexConnection, error) {
		once.Do(func() { close(entered) })
		<-release
		return nil, fmt.Errorf("%w: no index", domain.ErrNotFound)
	}}
	store := NewSessionStore("/idx", index)
	service := NewSessionService(store, NewRetrieverService(index))
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- service.Resume(ctx, testSessionID) }()
	<-entered

	second := make(chan error, 1)
	go func() { second <- service.Resume(ctx, testSessionID) }()

	select {
	case err := <-second:
		t.Fatalf("second resume returned %v before the first finished", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	assert.ErrorIs(t, <-first, domain.ErrNotFound)
	assert.ErrorIs(t, <-second, domain.ErrNotFound)
	assert.Zero(t, store.Len())
}

func TestSessionService_ResumeInvalidID(t *testing.T) {
	service := NewSessionService(NewSessionStore("/idx", &mockIndex{}), NewRetrieverService(&mockIndex{}))

	err := service.Resume(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
