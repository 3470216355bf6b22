package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// maxExcerpt bounds the source excerpt returned with an answer.
const maxExcerpt = 300

// ProcessInput is the input schema for the process_document tool.
type ProcessInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"existing session to replace the document of; a new session is created when empty"`
	Path      string `json:"path,omitempty" jsonschema:"local path of a .pdf, .txt or .md file"`
	Name      string `json:"name,omitempty" jsonschema:"file name for inline text, used to pick the format (default document.txt)"`
	Text      string `json:"text,omitempty" jsonschema:"inline document text, used when path is empty"`
}

// ProcessOutput is the output schema for the process_document tool.
type ProcessOutput struct {
	SessionID    string `json:"session_id"`
	DocumentName string `json:"document_name"`
	ChunkCount   int    `json:"chunk_count"`
	Message      string `json:"message"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	SessionID string `json:"session_id" jsonschema:"session returned by process_document"`
	Question  string `json:"question" jsonschema:"question about the processed document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	State   string         `json:"state"`
	Reason  string         `json:"reason,omitempty"`
	Sources []SourceOutput `json:"sources,omitempty"`
}

// SourceOutput is a retrieved passage used as context.
type SourceOutput struct {
	Position   int     `json:"position"`
	Similarity float64 `json:"similarity"`
	Excerpt    string  `json:"excerpt"`
}

// SessionInput identifies a session.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the session id"`
}

// StatusOutput is the output schema for the session_status tool.
type StatusOutput struct {
	SessionID    string `json:"session_id"`
	Processed    bool   `json:"processed"`
	DocumentName string `json:"document_name,omitempty"`
	ChunkCount   int    `json:"chunk_count"`
	TurnCount    int    `json:"turn_count"`
}

// ClearOutput is the output schema for the clear_history tool.
type ClearOutput struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_document",
		Description: "Index a PDF, text or markdown document into a chat session",
	}, s.handleProcess)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about the document processed in a session",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "session_status",
		Description: "Report whether a session has a processed document and how long its transcript is",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_history",
		Description: "Clear a session's transcript and drop its indexed document",
	}, s.handleClear)
}

// handleProcess handles the process_document tool invocation.
func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessInput,
) (*mcp.CallToolResult, ProcessOutput, error) {
	raw, err := rawDocument(input)
	if err != nil {
		return nil, ProcessOutput{}, err
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = s.ports.Session.Start()
	} else if err := s.ensureSession(ctx, sessionID); err != nil {
		return nil, ProcessOutput{}, err
	}

	result, err := s.ports.Document.Process(ctx, sessionID, raw)
	if err != nil {
		return nil, ProcessOutput{}, err
	}

	return nil, ProcessOutput{
		SessionID:    result.SessionID,
		DocumentName: result.DocumentName,
		ChunkCount:   result.ChunkCount,
		Message:      fmt.Sprintf("Processed %d chunks", result.ChunkCount),
	}, nil
}

func rawDocument(input ProcessInput) (domain.RawDocument, error) {
	if input.Path != "" {
		content, err := os.ReadFile(input.Path)
		if err != nil {
			return domain.RawDocument{}, fmt.Errorf("%w: read %s: %w", domain.ErrStorageIO, input.Path, err)
		}
		return domain.RawDocument{Name: filepath.Base(input.Path), Content: content}, nil
	}
	if input.Text == "" {
		return domain.RawDocument{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errNoDocumentInput)
	}
	name := input.Name
	if name == "" {
		name = "document.txt"
	}
	return domain.RawDocument{Name: name, Content: []byte(input.Text)}, nil
}

// handleAsk handles the ask tool invocation.
// Retrieval and generation failures are answers, not tool errors: the
// assistant turn that was recorded is returned with state "failed".
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if err := s.ensureSession(ctx, input.SessionID); err != nil {
		return nil, AskOutput{}, err
	}

	answer, err := s.ports.Chat.Ask(ctx, input.SessionID, input.Question)
	if answer == nil {
		return nil, AskOutput{}, err
	}
	if err != nil && domain.Classify(err).IsBanner() {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer: answer.Text,
		State:  string(answer.State),
		Reason: answer.Reason,
	}
	for _, c := range answer.Chunks {
		output.Sources = append(output.Sources, SourceOutput{
			Position:   c.Position,
			Similarity: c.Similarity,
			Excerpt:    excerpt(c.Content),
		})
	}

	return nil, output, nil
}

// handleStatus handles the session_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	if err := s.ensureSession(ctx, input.SessionID); err != nil {
		return nil, StatusOutput{}, err
	}

	status, err := s.ports.Session.Status(input.SessionID)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	return nil, StatusOutput{
		SessionID:    status.ID,
		Processed:    status.Processed,
		DocumentName: status.DocumentName,
		ChunkCount:   status.ChunkCount,
		TurnCount:    status.TurnCount,
	}, nil
}

// handleClear handles the clear_history tool invocation.
func (s *Server) handleClear(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, ClearOutput, error) {
	if err := s.ensureSession(ctx, input.SessionID); err != nil {
		return nil, ClearOutput{}, err
	}

	if err := s.ports.Session.ClearHistory(ctx, input.SessionID); err != nil {
		return nil, ClearOutput{}, err
	}

	return nil, ClearOutput{SessionID: input.SessionID, Cleared: true}, nil
}

// ensureSession makes a session known to this process, resuming it from
// disk when it was created by an earlier run.
func (s *Server) ensureSession(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}
	if _, err := s.ports.Session.Status(id); err == nil {
		return nil
	}
	return s.ports.Session.Resume(ctx, id)
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxExcerpt {
		return text
	}
	return string(runes[:maxExcerpt]) + "…"
}
