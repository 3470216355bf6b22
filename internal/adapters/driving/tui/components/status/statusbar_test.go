package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := NewBar(s, km)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	name, count := bar.Document()
	assert.Empty(t, name)
	assert.Zero(t, count)
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains string
	}{
		{"no document", func(_ *Bar) {}, "No document"},
		{"document loaded", func(b *Bar) { b.SetDocument("report.pdf", 12) }, "report.pdf · 12 chunks"},
		{"thinking", func(b *Bar) { b.SetState(StateThinking) }, "Thinking..."},
		{"processing", func(b *Bar) { b.SetState(StateProcessing) }, "Processing document..."},
		{"error with message", func(b *Bar) {
			b.SetState(StateError)
			b.SetMessage("boom")
		}, "Error: boom"},
		{"error without message", func(b *Bar) { b.SetState(StateError) }, "Error"},
		{"help", func(b *Bar) { b.SetState(StateHelp) }, "Help"},
		{"ready message", func(b *Bar) { b.SetMessage("Processed 3 chunks") }, "Processed 3 chunks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			tt.setup(bar)

			assert.Contains(t, bar.View(), tt.contains)
		})
	}
}

func TestStatusBar_HintsFollowState(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	assert.Contains(t, bar.View(), "ctrl+o: upload")

	bar.SetState(StateThinking)
	view := bar.View()
	assert.NotContains(t, view, "ctrl+o: upload")
	assert.Contains(t, view, "ctrl+c: quit")
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetDocument("a.txt", 2)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	name, count := bar.Document()
	assert.Equal(t, "a.txt", name)
	assert.Equal(t, 2, count)
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
	assert.Equal(t, 5, bar.Width())
}
