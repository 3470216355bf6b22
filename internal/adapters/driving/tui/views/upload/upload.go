// Package upload provides the document upload view for the TUI.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service is required")

// View asks for a document path and indexes it into the session.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	input   *input.PromptInput
	spinner spinner.Model

	documentService driving.DocumentService
	sessionID       string
	ctx             context.Context

	processing bool
	err        error
	width      int
	height     int
	ready      bool
}

// NewView creates a new upload view for the session.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	documentService driving.DocumentService,
	sessionID string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewPromptInput(s, "Path", "/path/to/document.pdf"),
		spinner:         sp,
		documentService: documentService,
		sessionID:       sessionID,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the upload view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentProcessed:
		v.processing = false
		v.err = msg.Err
		return v, v.input.Focus()

	case spinner.TickMsg:
		if !v.processing {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.processing {
		return v, nil
	}

	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	case keymap.Matches(keyStr, v.keymap.Send):
		path := strings.TrimSpace(v.input.Value())
		if path == "" {
			return v, nil
		}
		v.processing = true
		v.err = nil
		v.input.Blur()
		return v, tea.Batch(v.spinner.Tick, v.process(path))
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// process reads the file and indexes it.
func (v *View) process(path string) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentProcessed{Err: ErrNoDocumentService}
		}

		path = expandHome(path)
		content, err := os.ReadFile(path)
		if err != nil {
			return messages.DocumentProcessed{Err: fmt.Errorf("%w: %w", domain.ErrStorageIO, err)}
		}

		result, err := v.documentService.Process(v.ctx, v.sessionID, domain.RawDocument{
			Name:    filepath.Base(path),
			Content: content,
		})
		return messages.DocumentProcessed{Result: result, Err: err}
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// View renders the upload view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections,
		v.styles.Title.Render("Upload Document"),
		"",
		v.styles.Muted.Render("PDF, text and Markdown files are supported. The current document and chat history are replaced."),
		"",
		v.input.View(),
		"",
	)

	switch {
	case v.processing:
		sections = append(sections, v.spinner.View()+" "+v.styles.Muted.Render("Processing document..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}

	sections = append(sections, "", v.styles.Help.Render("[Enter] Process  [Esc] Back to chat"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
}

// Reset clears the path and any previous error.
func (v *View) Reset() {
	v.input.Reset()
	v.input.Focus()
	v.err = nil
	v.processing = false
}

// Processing reports whether an upload is in flight.
func (v *View) Processing() bool {
	return v.processing
}

// Err returns the last upload error, if any.
func (v *View) Err() error {
	return v.err
}

// SetPath sets the path input value.
func (v *View) SetPath(path string) {
	v.input.SetValue(path)
}
