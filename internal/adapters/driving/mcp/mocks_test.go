package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	nextID    string
	known     map[string]*domain.SessionStatus
	history   []domain.Turn
	resumeErr error
	clearErr  error

	resumed []string
	cleared []string
}

func newMockSessionService(ids ...string) *mockSessionService {
	m := &mockSessionService{nextID: "new-session", known: map[string]*domain.SessionStatus{}}
	for _, id := range ids {
		m.known[id] = &domain.SessionStatus{ID: id}
	}
	return m
}

func (m *mockSessionService) Start() string {
	m.known[m.nextID] = &domain.SessionStatus{ID: m.nextID}
	return m.nextID
}

func (m *mockSessionService) Resume(_ context.Context, id string) error {
	m.resumed = append(m.resumed, id)
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.known[id] = &domain.SessionStatus{ID: id, Processed: true}
	return nil
}

func (m *mockSessionService) Status(id string) (*domain.SessionStatus, error) {
	status, ok := m.known[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return status, nil
}

func (m *mockSessionService) History(id string) ([]domain.Turn, error) {
	if _, ok := m.known[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return m.history, nil
}

func (m *mockSessionService) ClearHistory(_ context.Context, id string) error {
	m.cleared = append(m.cleared, id)
	return m.clearErr
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	err error
	got []domain.RawDocument
}

func (m *mockDocumentService) Process(
	_ context.Context,
	sessionID string,
	raw domain.RawDocument,
) (*domain.ProcessResult, error) {
	m.got = append(m.got, raw)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ProcessResult{SessionID: sessionID, DocumentName: raw.Name, ChunkCount: 3}, nil
}

func (m *mockDocumentService) SupportedTypes() []string {
	return []string{"application/pdf", "text/markdown", "text/plain"}
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer *domain.Answer
	err    error
}

func (m *mockChatService) Ask(_ context.Context, _, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func newTestPorts(sessions *mockSessionService) (*Ports, *mockDocumentService, *mockChatService) {
	docs := &mockDocumentService{}
	chat := &mockChatService{}
	return &Ports{Session: sessions, Document: docs, Chat: chat}, docs, chat
}
