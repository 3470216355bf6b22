package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestAskCmd_RequiresFileOrSession(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("ask", "what?")

	assert.EqualError(t, err, "either --file or --session is required")
}

func TestAskCmd_UnknownTranscriptFormat(t *testing.T) {
	_, cleanup := setupTestServices("abc")
	defer cleanup()

	_, _, err := execute("ask", "-s", "abc", "--transcript", "xml", "what?")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown transcript format "xml"`)
}

func TestAskCmd_WithFile(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := execute("ask", "--file", writeDoc(t, "doc.txt", "body"), "What is it?")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Processed 3 chunks")
	assert.Contains(t, stdout, "echo: What is it?")
	assert.Equal(t, []string{"What is it?"}, ts.chat.asked)
}

func TestAskCmd_JSONTranscript(t *testing.T) {
	_, cleanup := setupTestServices("abc")
	defer cleanup()

	stdout, _, err := execute("ask", "-s", "abc", "--transcript", "json", "Who?")

	require.NoError(t, err)
	start := strings.Index(stdout, "[")
	require.GreaterOrEqual(t, start, 0)
	var turns []domain.Turn
	require.NoError(t, json.Unmarshal([]byte(stdout[start:]), &turns))
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "echo: Who?", turns[1].Text)
}

func TestAskCmd_YAMLTranscript(t *testing.T) {
	_, cleanup := setupTestServices("abc")
	defer cleanup()

	stdout, _, err := execute("ask", "-s", "abc", "--transcript", "yaml", "Who?")

	require.NoError(t, err)
	start := strings.Index(stdout, "- role:")
	require.GreaterOrEqual(t, start, 0)
	var turns []domain.Turn
	require.NoError(t, yaml.Unmarshal([]byte(stdout[start:]), &turns))
	assert.Len(t, turns, 2)
}

func TestAskCmd_FailedAnswer(t *testing.T) {
	ts, cleanup := setupTestServices("abc")
	defer cleanup()
	ts.chat.answer = &domain.Answer{Text: domain.RetrievalFailedMessage, State: domain.AnswerStateFailed}
	ts.chat.err = fmt.Errorf("%w: index closed", domain.ErrRetrievalUnavailable)

	stdout, _, err := execute("ask", "-s", "abc", "Why?")

	assert.ErrorIs(t, err, errAnswerFailed)
	assert.Contains(t, stdout, domain.RetrievalFailedMessage)
}

func TestAskCmd_BannerError(t *testing.T) {
	ts, cleanup := setupTestServices("abc")
	defer cleanup()
	ts.chat.err = fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrLLMUnavailable)

	stdout, _, err := execute("ask", "-s", "abc", "Hello?")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Empty(t, stdout)
}
