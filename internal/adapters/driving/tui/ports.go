// Package tui provides an interactive terminal user interface for sercha-rag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session creates and resets the chat session.
	Session driving.SessionService

	// Document indexes uploads into the session.
	Document driving.DocumentService

	// Chat answers questions.
	Chat driving.ChatService

	// SessionID is the session to open. A new one is started when empty.
	SessionID string

	// PromptChanges reports prompt templates edited on disk. May be nil.
	PromptChanges <-chan string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	session driving.SessionService,
	document driving.DocumentService,
	chat driving.ChatService,
) *Ports {
	return &Ports{
		Session:  session,
		Document: document,
		Chat:     chat,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSessionService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
