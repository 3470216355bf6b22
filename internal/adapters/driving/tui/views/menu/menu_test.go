package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.NotNil(t, view.keymap)
	assert.Len(t, view.items, 4)
	assert.Equal(t, 0, view.Selected())
}

func TestView_Init(t *testing.T) {
	assert.Nil(t, NewView(nil, nil).Init())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
}

func TestView_Update_Navigate(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		key      tea.KeyMsg
		expected int
	}{
		{"down", 0, tea.KeyMsg{Type: tea.KeyDown}, 1},
		{"j", 0, runes("j"), 1},
		{"up", 2, tea.KeyMsg{Type: tea.KeyUp}, 1},
		{"k", 2, runes("k"), 1},
		{"up at top stays", 0, tea.KeyMsg{Type: tea.KeyUp}, 0},
		{"down at bottom stays", 3, tea.KeyMsg{Type: tea.KeyDown}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView(nil, nil)
			view.selected = tt.start

			_, cmd := view.Update(tt.key)

			assert.Nil(t, cmd)
			assert.Equal(t, tt.expected, view.Selected())
		})
	}
}

func TestView_Select(t *testing.T) {
	tests := []struct {
		name     string
		document string
		key      tea.KeyMsg
		selected int
		expected messages.ViewType
	}{
		{"enter on chat with document", "a.pdf", tea.KeyMsg{Type: tea.KeyEnter}, 0, messages.ViewChat},
		{"enter on chat without document", "", tea.KeyMsg{Type: tea.KeyEnter}, 0, messages.ViewUpload},
		{"enter on upload", "", tea.KeyMsg{Type: tea.KeyEnter}, 1, messages.ViewUpload},
		{"enter on help", "", tea.KeyMsg{Type: tea.KeyEnter}, 2, messages.ViewHelp},
		{"c shortcut", "a.pdf", runes("c"), 0, messages.ViewChat},
		{"u shortcut", "a.pdf", runes("u"), 0, messages.ViewUpload},
		{"? shortcut", "", runes("?"), 0, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewView(nil, nil)
			view.SetDocument(tt.document, 1)
			view.selected = tt.selected

			_, cmd := view.Update(tt.key)

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.expected}, cmd())
		})
	}
}

func TestView_Quit(t *testing.T) {
	t.Run("quit item", func(t *testing.T) {
		view := NewView(nil, nil)
		view.selected = 3

		_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	})

	t.Run("q key", func(t *testing.T) {
		view := NewView(nil, nil)

		_, cmd := view.Update(runes("q"))

		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
		assert.Equal(t, 3, view.Selected())
	})
}

func TestView_UnknownKeyIgnored(t *testing.T) {
	view := NewView(nil, nil)

	_, cmd := view.Update(runes("x"))

	assert.Nil(t, cmd)
}

func TestView_View(t *testing.T) {
	t.Run("not ready", func(t *testing.T) {
		assert.Equal(t, "Initialising...", NewView(nil, nil).View())
	})

	t.Run("no document", func(t *testing.T) {
		view := NewView(nil, nil)
		view.SetDimensions(80, 24)

		output := view.View()

		assert.Contains(t, output, "Sercha RAG")
		assert.Contains(t, output, "Chat with your documents")
		assert.Contains(t, output, "No document loaded")
		assert.Contains(t, output, "> ")
		assert.Contains(t, output, "[u] Upload document")
		assert.Contains(t, output, "[q] Quit")
	})

	t.Run("document loaded", func(t *testing.T) {
		view := NewView(nil, nil)
		view.SetDimensions(80, 24)
		view.SetDocument("report.pdf", 12)

		assert.Contains(t, view.View(), "report.pdf · 12 chunks")
	})
}
