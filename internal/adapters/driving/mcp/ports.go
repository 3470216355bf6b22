package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session creates, resumes and resets sessions.
	Session driving.SessionService

	// Document indexes uploads into a session.
	Document driving.DocumentService

	// Chat answers questions against a session's document.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	switch {
	case p.Session == nil:
		return ErrMissingSessionService
	case p.Document == nil:
		return ErrMissingDocumentService
	case p.Chat == nil:
		return ErrMissingChatService
	}
	return nil
}
