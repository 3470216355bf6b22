// Package transcript renders the chat transcript in a scrollable viewport.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Kind distinguishes transcript turns from banners.
type Kind int

const (
	// KindTurn is a ledger turn.
	KindTurn Kind = iota
	// KindFailed is an assistant turn recorded for a failed query.
	KindFailed
	// KindBanner is a notice that is not part of the ledger.
	KindBanner
)

// Entry is one rendered block.
type Entry struct {
	Kind Kind
	Role domain.Role
	Text string
}

// Transcript displays entries in order, newest at the bottom.
type Transcript struct {
	entries  []Entry
	viewport viewport.Model
	styles   *styles.Styles
	width    int
	height   int
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Transcript{
		viewport: viewport.New(80, 10),
		styles:   s,
		width:    80,
		height:   10,
	}
}

// Update forwards scrolling keys and mouse events to the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	if len(t.entries) == 0 {
		return t.styles.Muted.Render("Upload a document, then ask a question about it.")
	}
	return t.viewport.View()
}

// AppendTurn adds a ledger turn.
func (t *Transcript) AppendTurn(role domain.Role, text string) {
	t.append(Entry{Kind: KindTurn, Role: role, Text: text})
}

// AppendFailed adds the assistant turn of a failed query.
func (t *Transcript) AppendFailed(text string) {
	t.append(Entry{Kind: KindFailed, Role: domain.RoleAssistant, Text: text})
}

// AppendBanner adds a notice such as a configuration or I/O error.
func (t *Transcript) AppendBanner(text string) {
	t.append(Entry{Kind: KindBanner, Text: text})
}

// Reset removes all entries.
func (t *Transcript) Reset() {
	t.entries = nil
	t.refresh()
}

// Entries returns the entries in display order.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// SetDimensions resizes the viewport.
func (t *Transcript) SetDimensions(width, height int) {
	if height < 1 {
		height = 1
	}
	t.width = width
	t.height = height
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

// ScrollUp pages the viewport up.
func (t *Transcript) ScrollUp() {
	t.viewport.HalfViewUp()
}

// ScrollDown pages the viewport down.
func (t *Transcript) ScrollDown() {
	t.viewport.HalfViewDown()
}

func (t *Transcript) append(e Entry) {
	t.entries = append(t.entries, e)
	t.refresh()
	t.viewport.GotoBottom()
}

func (t *Transcript) refresh() {
	blocks := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		blocks = append(blocks, t.render(e))
	}
	t.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (t *Transcript) render(e Entry) string {
	wrap := lipgloss.NewStyle().Width(t.width)

	switch e.Kind {
	case KindBanner:
		return t.styles.Banner.Render(e.Text)
	case KindFailed:
		label := t.styles.AssistantTurn.Render("Assistant")
		return label + "\n" + wrap.Inherit(t.styles.FailedTurn).Render(e.Text)
	default:
		label := t.styles.AssistantTurn.Render("Assistant")
		if e.Role == domain.RoleUser {
			label = t.styles.UserTurn.Render("You")
		}
		return label + "\n" + wrap.Render(e.Text)
	}
}
