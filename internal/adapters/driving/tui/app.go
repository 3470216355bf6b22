package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/views/upload"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the global keybindings.
	keymap *keymap.KeyMap

	// sessionID is the session all views act on.
	sessionID string

	// menuView is the main navigation menu.
	menuView *menu.View

	// chatView shows the transcript and takes questions.
	chatView *chat.View

	// uploadView takes a document path.
	uploadView *upload.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// A session that already holds a document opens in the chat view.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	sessionID := ports.SessionID
	if sessionID == "" {
		sessionID = ports.Session.Start()
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	app := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		sessionID:   sessionID,
		menuView:    menu.NewView(s, km),
		chatView:    chat.NewView(s, km, ports.Chat, ports.Session, sessionID),
		uploadView:  upload.NewView(s, km, ports.Document, sessionID),
		currentView: messages.ViewMenu, // Start with menu
	}

	if status, err := ports.Session.Status(sessionID); err == nil && status.Processed {
		app.chatView.SetDocument(status.DocumentName, status.ChunkCount)
		app.menuView.SetDocument(status.DocumentName, status.ChunkCount)
		app.currentView = messages.ViewChat
	}

	return app, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.uploadView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("sercha-rag"),
		a.chatView.Init(),
		a.waitForPromptChange(),
	)
}

// waitForPromptChange delivers the next prompt edit as a message.
func (a *App) waitForPromptChange() tea.Cmd {
	ch := a.ports.PromptChanges
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		name, ok := <-ch
		if !ok {
			return nil
		}
		return messages.PromptReloaded{Name: name}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		// Forward to all views for proper sizing
		a.menuView.SetDimensions(msg.Width, msg.Height)
		a.chatView.SetDimensions(msg.Width, msg.Height)
		a.uploadView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if keymap.Matches(msg.String(), a.keymap.Help) && a.currentView != messages.ViewHelp {
			a.currentView = messages.ViewHelp
			return a, nil
		}

		// Forward key messages to active view
		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case messages.ViewUpload:
			a.uploadView, cmd = a.uploadView.Update(msg)
		case messages.ViewHelp:
			// Esc from help goes to menu
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		// Initialise views when switching to them
		switch msg.View {
		case messages.ViewUpload:
			a.uploadView.Reset()
			return a, a.uploadView.Init()
		case messages.ViewChat:
			return a, a.chatView.Init()
		case messages.ViewMenu, messages.ViewHelp:
			// Other views don't need special initialisation
		}
		return a, nil

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		return a, cmd

	case messages.HistoryCleared:
		a.chatView, cmd = a.chatView.Update(msg)
		a.err = a.chatView.Err()
		if msg.Err == nil {
			a.menuView.SetDocument("", 0)
		}
		return a, cmd

	case messages.DocumentProcessed:
		a.uploadView, cmd = a.uploadView.Update(msg)
		if msg.Err != nil {
			a.err = msg.Err
			return a, cmd
		}
		a.err = nil
		a.menuView.SetDocument(msg.Result.DocumentName, msg.Result.ChunkCount)
		a.chatView, _ = a.chatView.Update(msg)
		a.currentView = messages.ViewChat
		return a, tea.Batch(cmd, a.chatView.Init())

	case messages.PromptReloaded:
		a.chatView, _ = a.chatView.Update(msg)
		return a, a.waitForPromptChange()

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		// Ticks stop once the view is idle
		if a.chatView.Busy() {
			a.chatView, cmd = a.chatView.Update(msg)
		} else if a.uploadView.Processing() {
			a.uploadView, cmd = a.uploadView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewUpload:
		a.uploadView, cmd = a.uploadView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewMenu:
		return a.menuView.View()
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewUpload:
		return a.uploadView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Navigation:
  esc         Back
  f1          Help
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  c / u / ?   Chat, upload, help
  q           Quit

Chat:
  (type)      Enter a question
  enter       Send
  ctrl+o      Upload a document
  ctrl+l      Clear history and document
  pgup/pgdn   Scroll transcript

Upload:
  (type)      Path to a PDF, text or Markdown file
  enter       Process

Prompt templates in ~/.sercha-rag/prompts are reloaded when edited.

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// SessionID returns the session the app acts on.
func (a *App) SessionID() string {
	return a.sessionID
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// ChatView returns the chat view.
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// UploadView returns the upload view.
func (a *App) UploadView() *upload.View {
	return a.uploadView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.uploadView.SetDimensions(width, height)
}
