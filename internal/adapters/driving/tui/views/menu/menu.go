// Package menu provides the start menu of the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

// Item is a menu entry. Shortcut selects it directly.
type Item struct {
	Label    string
	Hint     string
	Shortcut string
	View     messages.ViewType
	Quit     bool
}

// View lists the things a session can do and shows which document is loaded.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	items    []Item
	selected int

	document   string
	chunkCount int

	width  int
	height int
	ready  bool
}

// NewView creates the menu.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles: s,
		keymap: km,
		items: []Item{
			{Label: "Chat", Hint: "ask questions about the document", Shortcut: "c", View: messages.ViewChat},
			{Label: "Upload document", Hint: "PDF, text or Markdown", Shortcut: "u", View: messages.ViewUpload},
			{Label: "Help", Hint: "keys and prompt files", Shortcut: "?", View: messages.ViewHelp},
			{Label: "Quit", Shortcut: "q", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		switch {
		case keymap.Matches(keyStr, v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
			return v, nil
		case keymap.Matches(keyStr, v.keymap.Down):
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			return v, nil
		case keymap.Matches(keyStr, v.keymap.Select):
			return v, v.choose(v.items[v.selected])
		}

		for i, item := range v.items {
			if keyStr == item.Shortcut {
				v.selected = i
				return v, v.choose(item)
			}
		}
	}

	return v, nil
}

// choose opens the item's view. Chat without a document opens the upload
// view instead, since there is nothing to ask about yet.
func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	target := item.View
	if target == messages.ViewChat && v.document == "" {
		target = messages.ViewUpload
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: target}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Sercha RAG"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Chat with your documents"))
	b.WriteString("\n\n")

	if v.document == "" {
		b.WriteString(v.styles.Muted.Render("No document loaded"))
	} else {
		b.WriteString(v.styles.Success.Render(fmt.Sprintf("%s · %d chunks", v.document, v.chunkCount)))
	}
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("[%s] %s", item.Shortcut, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if item.Hint != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [f1] Help  [ctrl+c] Quit"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// SetDocument records the loaded document. An empty name means none.
func (v *View) SetDocument(name string, chunkCount int) {
	v.document = name
	v.chunkCount = chunkCount
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}
