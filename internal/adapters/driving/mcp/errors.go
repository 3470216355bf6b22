// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-rag.
// It lets AI assistants upload a document into a session and ask questions about it.
package mcp

import "errors"

// Errors returned when required ports are not provided.
var (
	ErrMissingSessionService  = errors.New("mcp: session service is required")
	ErrMissingDocumentService = errors.New("mcp: document service is required")
	ErrMissingChatService     = errors.New("mcp: chat service is required")
)

// errNoDocumentInput is returned by process_document without a path or text.
var errNoDocumentInput = errors.New("either path or text is required")
