package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_AppendAndPromptHistory(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append(RoleUser, "What is RAG?"))
	require.NoError(t, l.Append(RoleAssistant, "Retrieval-augmented generation."))
	require.NoError(t, l.Append(RoleUser, "Thanks"))

	want := "Human: What is RAG?\nAI: Retrieval-augmented generation.\nHuman: Thanks\n"
	assert.Equal(t, want, l.AsPromptHistory())
	assert.Equal(t, 3, l.Len())
}

func TestLedger_EmptyHistory(t *testing.T) {
	assert.Empty(t, NewLedger().AsPromptHistory())
}

func TestLedger_RejectsInvalidTurns(t *testing.T) {
	l := NewLedger()

	assert.ErrorIs(t, l.Append(Role("system"), "hi"), ErrInvalidInput)
	assert.ErrorIs(t, l.Append(RoleUser, "   "), ErrInvalidInput)
	assert.Equal(t, 0, l.Len())
}

func TestLedger_AllowsEmptyAssistantTurn(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append(RoleAssistant, ""))
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "AI: \n", l.AsPromptHistory())
}

func TestLedger_DisplayListIsCopy(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append(RoleUser, "first"))

	turns := l.AsDisplayList()
	require.Len(t, turns, 1)
	turns[0].Text = "mutated"

	assert.Equal(t, "first", l.AsDisplayList()[0].Text)
}

func TestLedger_Clear(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Append(RoleUser, "first"))
	l.Clear()

	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.AsDisplayList())
}
