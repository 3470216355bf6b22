// Package chat provides the chat view for the TUI: the transcript, the
// question input and a spinner while an answer is generated.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// reservedRows is the height taken by the header, pending line, input and status bar.
const reservedRows = 8

// View represents the chat view.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.PromptInput
	transcript *transcript.Transcript
	spinner    spinner.Model
	statusbar  *status.Bar

	chatService    driving.ChatService
	sessionService driving.SessionService
	sessionID      string
	ctx            context.Context

	// pending is the question in flight. Input is disabled while set.
	pending string

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view for the session.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	chatService driving.ChatService,
	sessionService driving.SessionService,
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
		styles:         s,
		keymap:         km,
		input:          input.NewPromptInput(s, "Ask", "Ask a question about the document..."),
		transcript:     transcript.New(s),
		spinner:        sp,
		statusbar:      status.NewBar(s, km),
		chatService:    chatService,
		sessionService: sessionService,
		sessionID:      sessionID,
		ctx:            context.Background(),
		width:          80,
		height:         24,
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

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, v.input.Focus()

	case messages.DocumentProcessed:
		v.handleProcessed(msg)
		return v, nil

	case messages.HistoryCleared:
		v.handleCleared(msg)
		return v, nil

	case messages.PromptReloaded:
		if !v.Busy() {
			v.statusbar.SetState(status.StateReady)
		}
		v.statusbar.SetMessage(fmt.Sprintf("Prompt %s reloaded", msg.Name))
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil

	case spinner.TickMsg:
		if !v.Busy() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.transcript, cmd = v.transcript.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	// Scrolling works while an answer is generated
	switch {
	case keymap.Matches(keyStr, v.keymap.ScrollUp):
		v.transcript.ScrollUp()
		return v, nil
	case keymap.Matches(keyStr, v.keymap.ScrollDown):
		v.transcript.ScrollDown()
		return v, nil
	}

	if v.Busy() {
		return v, nil
	}

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(keyStr, v.keymap.Upload):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewUpload}
		}
	case keymap.Matches(keyStr, v.keymap.Clear):
		return v, v.clearHistory()
	case keymap.Matches(keyStr, v.keymap.Send):
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.pending = question
		v.input.Reset()
		v.input.Blur()
		v.err = nil
		v.statusbar.SetMessage("")
		v.statusbar.SetState(status.StateThinking)
		return v, tea.Batch(v.spinner.Tick, v.ask(question))
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs the question through the pipeline.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.chatService == nil {
			return messages.AnswerReceived{Err: ErrNoChatService}
		}
		answer, err := v.chatService.Ask(v.ctx, v.sessionID, question)
		return messages.AnswerReceived{Answer: answer, Err: err}
	}
}

// clearHistory resets the session.
func (v *View) clearHistory() tea.Cmd {
	return func() tea.Msg {
		if v.sessionService == nil {
			return messages.HistoryCleared{}
		}
		return messages.HistoryCleared{Err: v.sessionService.ClearHistory(v.ctx, v.sessionID)}
	}
}

// handleAnswer records the outcome. Turns only appear once the ledger
// holds them; rejected questions become a banner.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	question := v.pending
	v.pending = ""
	v.statusbar.SetState(status.StateReady)

	if msg.Answer != nil {
		v.transcript.AppendTurn(domain.RoleUser, question)
		if msg.Answer.Failed() {
			v.transcript.AppendFailed(msg.Answer.Text)
		} else {
			v.transcript.AppendTurn(domain.RoleAssistant, msg.Answer.Text)
		}
	}

	if msg.Err != nil && (msg.Answer == nil || domain.Classify(msg.Err).IsBanner()) {
		v.transcript.AppendBanner(msg.Err.Error())
		v.setError(msg.Err)
	}
}

func (v *View) handleProcessed(msg messages.DocumentProcessed) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	// Processing resets the ledger.
	v.transcript.Reset()
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetDocument(msg.Result.DocumentName, msg.Result.ChunkCount)
	v.statusbar.SetMessage(fmt.Sprintf("Processed %d chunks", msg.Result.ChunkCount))
}

func (v *View) handleCleared(msg messages.HistoryCleared) {
	if msg.Err != nil {
		v.transcript.AppendBanner(msg.Err.Error())
		v.setError(msg.Err)
		return
	}
	v.transcript.Reset()
	v.err = nil
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetDocument("", 0)
	v.statusbar.SetMessage("Chat history cleared")
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	// Header
	sections = append(sections, v.styles.Title.Render("Sercha RAG"), "")

	// Transcript
	sections = append(sections, v.transcript.View(), "")

	// Question in flight
	if v.Busy() {
		pending := v.styles.UserTurn.Render("You") + " " + v.pending
		sections = append(sections, pending, v.spinner.View()+" "+v.styles.Muted.Render("Thinking..."))
	} else {
		sections = append(sections, v.input.View())
	}

	// Status bar at bottom
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.transcript.SetDimensions(width, height-reservedRows)
	v.statusbar.SetWidth(width)
}

// SetDocument shows an already processed document, e.g. after a resume.
func (v *View) SetDocument(name string, chunkCount int) {
	v.statusbar.SetDocument(name, chunkCount)
}

// Busy reports whether a question is in flight.
func (v *View) Busy() bool {
	return v.pending != ""
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Entries returns the rendered transcript entries.
func (v *View) Entries() []transcript.Entry {
	return v.transcript.Entries()
}

// Input returns the question input value.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput sets the question input value.
func (v *View) SetInput(value string) {
	v.input.SetValue(value)
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}
