// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the transcript and question input.
	ViewChat
	// ViewUpload asks for a document path.
	ViewUpload
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewUpload:
		return "upload"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// AnswerReceived carries the outcome of a question back to the model.
// Answer is nil when the question was rejected before reaching the pipeline.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// DocumentProcessed carries the result of indexing an upload.
type DocumentProcessed struct {
	Result *domain.ProcessResult
	Err    error
}

// HistoryCleared signals the session was reset.
type HistoryCleared struct {
	Err error
}

// PromptReloaded signals a prompt template was edited on disk.
type PromptReloaded struct {
	Name string
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
