package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestTUICmd_Use(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
}

func TestTUICmd_Long(t *testing.T) {
	assert.Contains(t, tuiCmd.Long, "Ctrl+O")
	assert.Contains(t, tuiCmd.Long, "F1")
}

func TestTUICmd_Flags(t *testing.T) {
	file := tuiCmd.Flags().Lookup("file")
	require.NotNil(t, file)
	assert.Equal(t, "f", file.Shorthand)

	session := tuiCmd.Flags().Lookup("session")
	require.NotNil(t, session)
	assert.Equal(t, "s", session.Shorthand)
}

// The program itself needs a terminal; failures before it starts are testable.
func TestTUICmd_ResumeFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.session.resumeErr = domain.ErrRetrievalUnavailable

	_, _, err := execute("tui", "--session", "gone")

	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
}

func TestTUICmd_FileFailure(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("tui", "--file", filepath.Join(t.TempDir(), "missing.pdf"))

	assert.ErrorIs(t, err, domain.ErrStorageIO)
}
